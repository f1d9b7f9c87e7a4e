// Package codec turns request bodies into wire payloads and response text into
// typed values.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"reflect"
	"slices"
	"strconv"
)

var (
	// ErrUnsupportedBody reports a body value whose shape does not fit its content type.
	ErrUnsupportedBody = errors.New("unsupported body for content type")

	// ErrUnknownContentType reports a content type name that cannot be parsed.
	ErrUnknownContentType = errors.New("unknown content type")
)

// Body is a request body already resolved to one encoding.
// The set of implementations is closed: JSONBody, FormBody, MultipartBody, BinaryBody.
type Body interface {
	ContentType() ContentType
	isBody()
}

// JSONBody is serialized with encoding/json.
type JSONBody struct {
	Value any
}

// Field is a single form field.
type Field struct {
	Name  string
	Value string
}

// FormBody is sent as application/x-www-form-urlencoded in field order.
type FormBody struct {
	Fields []Field
}

// Part is a multipart section. File parts carry Data or Reader; text parts carry Text.
type Part struct {
	Name     string
	FileName string
	Text     string
	Data     []byte
	Reader   io.Reader
}

// IsFile reports whether the part is rendered with a filename.
func (p Part) IsFile() bool {
	return p.FileName != "" || p.Data != nil || p.Reader != nil
}

// MultipartBody is sent as multipart/form-data.
type MultipartBody struct {
	Parts []Part
}

// BinaryBody is sent verbatim as application/octet-stream.
type BinaryBody struct {
	Data   []byte
	Reader io.Reader
}

func (*JSONBody) ContentType() ContentType      { return JSON }
func (*FormBody) ContentType() ContentType      { return FormURLEncoded }
func (*MultipartBody) ContentType() ContentType { return FormData }
func (*BinaryBody) ContentType() ContentType    { return Binary }

func (*JSONBody) isBody()      {}
func (*FormBody) isBody()      {}
func (*MultipartBody) isBody() {}
func (*BinaryBody) isBody()    {}

func NewJSON(v any) *JSONBody {
	return &JSONBody{Value: v}
}

// NewForm builds a form body from a map, with keys sorted.
func NewForm(values map[string]string) *FormBody {
	fields := make([]Field, 0, len(values))
	for _, k := range slices.Sorted(maps.Keys(values)) {
		fields = append(fields, Field{Name: k, Value: values[k]})
	}
	return &FormBody{Fields: fields}
}

// NewFormFields keeps the given field order.
func NewFormFields(fields ...Field) *FormBody {
	return &FormBody{Fields: fields}
}

func NewMultipart(parts ...Part) *MultipartBody {
	return &MultipartBody{Parts: parts}
}

func TextPart(name, value string) Part {
	return Part{Name: name, Text: value}
}

func FilePart(name, fileName string, data []byte) Part {
	if data == nil {
		data = []byte{}
	}
	return Part{Name: name, FileName: fileName, Data: data}
}

func StreamPart(name, fileName string, r io.Reader) Part {
	return Part{Name: name, FileName: fileName, Reader: r}
}

func NewBinary(data []byte) *BinaryBody {
	return &BinaryBody{Data: data}
}

// NewStream wraps a reader. It is drained once when the body is encoded.
func NewStream(r io.Reader) *BinaryBody {
	return &BinaryBody{Reader: r}
}

// NewBody resolves a loosely typed value into a Body for the declared content type.
// A nil value yields a nil Body. A value that already is a Body is returned unchanged.
func NewBody(ct ContentType, v any) (Body, error) {
	if isNil(v) {
		return nil, nil
	}
	if b, ok := v.(Body); ok {
		return b, nil
	}

	switch ct {
	case JSON:
		return NewJSON(v), nil
	case FormURLEncoded:
		values, err := toStringMap(v)
		if err != nil {
			return nil, err
		}
		return NewForm(values), nil
	case FormData:
		return toMultipart(v)
	case Binary:
		switch b := v.(type) {
		case []byte:
			return NewBinary(b), nil
		case io.Reader:
			return NewStream(b), nil
		}
		return nil, fmt.Errorf("%w: binary requires []byte or io.Reader, got %T", ErrUnsupportedBody, v)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContentType, ct)
	}
}

func toStringMap(v any) (map[string]string, error) {
	switch m := v.(type) {
	case map[string]string:
		return m, nil
	case url.Values:
		out := make(map[string]string, len(m))
		for k := range m {
			out[k] = m.Get(k)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = stringify(val)
		}
		return out, nil
	}

	generic, err := roundTrip(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(generic))
	for k, val := range generic {
		out[k] = stringify(val)
	}
	return out, nil
}

func toMultipart(v any) (*MultipartBody, error) {
	var values map[string]any
	switch m := v.(type) {
	case map[string]any:
		values = m
	case map[string]string:
		values = make(map[string]any, len(m))
		for k, val := range m {
			values[k] = val
		}
	default:
		generic, err := roundTrip(v)
		if err != nil {
			return nil, err
		}
		values = generic
	}

	parts := make([]Part, 0, len(values))
	for _, k := range slices.Sorted(maps.Keys(values)) {
		switch val := values[k].(type) {
		case []byte:
			parts = append(parts, FilePart(k, k, val))
		case io.Reader:
			parts = append(parts, StreamPart(k, k, val))
		default:
			parts = append(parts, TextPart(k, stringify(val)))
		}
	}
	return NewMultipart(parts...), nil
}

// roundTrip converts an arbitrary value into a string-keyed map through JSON.
func roundTrip(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %T: %v", ErrUnsupportedBody, v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %T is not an object", ErrUnsupportedBody, v)
	}
	return out, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
