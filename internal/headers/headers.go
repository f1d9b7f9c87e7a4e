// Package headers merges string header maps into http.Header with
// case-insensitive collisions and canonical keys.
package headers

import (
	"net/http"
	"strings"
)

// Lookup returns the first value stored under a key equal to name ignoring case.
// Keys written directly into the map in non-canonical form are found too.
func Lookup(h http.Header, name string) (string, bool) {
	if v := h.Values(name); len(v) > 0 {
		return v[0], true
	}
	for k, vals := range h {
		if strings.EqualFold(k, name) && len(vals) > 0 {
			return vals[0], true
		}
	}
	return "", false
}

// Set replaces every case-insensitive match of name with a single value
// stored under the canonical form of name.
func Set(h http.Header, name, value string) {
	Del(h, name)
	h.Set(name, value)
}

// Del removes every key equal to name ignoring case.
func Del(h http.Header, name string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
}

// Merge overlays each layer onto a new header in order; later layers win on
// case-insensitive collisions.
func Merge(layers ...map[string]string) http.Header {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	h := make(http.Header, size)
	for _, l := range layers {
		for k, v := range l {
			Set(h, k, v)
		}
	}
	return h
}
