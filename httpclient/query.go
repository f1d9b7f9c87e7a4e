package httpclient

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Query builds a query string that keeps parameter order. Adding an existing
// key replaces its value in place.
type Query struct {
	keys   []string
	values map[string]string
}

func NewQuery() *Query {
	return &Query{values: map[string]string{}}
}

// Add sets key to the string form of value; nil becomes an empty string.
func (q *Query) Add(key string, value any) *Query {
	if q.values == nil {
		q.values = map[string]string{}
	}
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = queryValue(value)
	return q
}

// AddAll adds every entry of params in key order.
func (q *Query) AddAll(params map[string]string) *Query {
	for _, k := range slices.Sorted(maps.Keys(params)) {
		q.Add(k, params[k])
	}
	return q
}

func (q *Query) Len() int {
	return len(q.keys)
}

// Encode renders "k=v&k2=v2" with spaces escaped as %20.
func (q *Query) Encode() string {
	parts := make([]string, 0, len(q.keys))
	for _, k := range q.keys {
		parts = append(parts, escapeQuery(k)+"="+escapeQuery(q.values[k]))
	}
	return strings.Join(parts, "&")
}

// String renders the query with a leading "?", or "" when empty.
func (q *Query) String() string {
	if q.Len() == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// AppendTo adds the query to rawURL, joining with "&" when rawURL already has one.
func (q *Query) AppendTo(rawURL string) string {
	if q.Len() == 0 {
		return rawURL
	}
	if strings.Contains(rawURL, "?") {
		if strings.HasSuffix(rawURL, "?") || strings.HasSuffix(rawURL, "&") {
			return rawURL + q.Encode()
		}
		return rawURL + "&" + q.Encode()
	}
	return rawURL + q.String()
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func queryValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
