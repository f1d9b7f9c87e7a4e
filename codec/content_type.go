package codec

import (
	"fmt"
	"mime"
	"strings"
)

// ContentType declares how a request body is encoded on the wire.
// The zero value is JSON.
type ContentType int

const (
	JSON ContentType = iota
	FormURLEncoded
	FormData
	Binary
)

// Wire media types
const (
	MediaTypeJSON           = "application/json"
	MediaTypeFormURLEncoded = "application/x-www-form-urlencoded"
	MediaTypeFormData       = "multipart/form-data"
	MediaTypeOctetStream    = "application/octet-stream"
)

func (ct ContentType) String() string {
	switch ct {
	case JSON:
		return "json"
	case FormURLEncoded:
		return "form-urlencoded"
	case FormData:
		return "form-data"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("ContentType(%d)", int(ct))
	}
}

// MediaType returns the media type without parameters.
func (ct ContentType) MediaType() string {
	switch ct {
	case FormURLEncoded:
		return MediaTypeFormURLEncoded
	case FormData:
		return MediaTypeFormData
	case Binary:
		return MediaTypeOctetStream
	default:
		return MediaTypeJSON
	}
}

// ParseContentType accepts a short name ("json", "form-urlencoded", "formdata",
// "binary", ...) or a media type such as "multipart/form-data; boundary=x".
// An empty string yields JSON.
func ParseContentType(s string) (ContentType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return JSON, nil
	}

	if strings.Contains(s, "/") {
		mediaType, _, err := mime.ParseMediaType(s)
		if err != nil {
			return JSON, fmt.Errorf("%w: %q: %v", ErrUnknownContentType, s, err)
		}
		switch mediaType {
		case MediaTypeJSON:
			return JSON, nil
		case MediaTypeFormURLEncoded:
			return FormURLEncoded, nil
		case MediaTypeFormData:
			return FormData, nil
		case MediaTypeOctetStream:
			return Binary, nil
		}
		return JSON, fmt.Errorf("%w: %q", ErrUnknownContentType, s)
	}

	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	switch normalized {
	case "json":
		return JSON, nil
	case "formurlencoded", "form", "urlencoded":
		return FormURLEncoded, nil
	case "formdata", "multipart":
		return FormData, nil
	case "binary", "octetstream":
		return Binary, nil
	}
	return JSON, fmt.Errorf("%w: %q", ErrUnknownContentType, s)
}
