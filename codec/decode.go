package codec

import (
	"encoding/json"
	"strings"
)

// Decode converts a response body into T. It returns nil when the response was
// not successful, the body is blank, or the body does not decode into T.
// A string target receives raw unchanged; a []byte target receives its bytes.
func Decode[T any](raw string, successful bool) *T {
	if !successful || strings.TrimSpace(raw) == "" {
		return nil
	}

	var out T
	switch p := any(&out).(type) {
	case *string:
		*p = raw
		return &out
	case *[]byte:
		*p = []byte(raw)
		return &out
	}

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return &out
}
