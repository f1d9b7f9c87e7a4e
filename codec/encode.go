package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"
)

// Payload is an encoded body ready to be attached to any number of attempts.
type Payload struct {
	Data        []byte
	ContentType string
}

// Reader returns a fresh reader over the payload.
func (p *Payload) Reader() io.Reader {
	return bytes.NewReader(p.Data)
}

// Len returns the payload size in bytes.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// Encode renders b into bytes plus its wire content type. A nil body encodes to a nil payload.
// Readers are drained here, so the payload can be replayed on retries.
func Encode(b Body) (*Payload, error) {
	if isNil(b) {
		return nil, nil
	}

	switch body := b.(type) {
	case *JSONBody:
		data, err := json.Marshal(body.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: json: %v", ErrUnsupportedBody, err)
		}
		return &Payload{Data: data, ContentType: MediaTypeJSON}, nil
	case *FormBody:
		return &Payload{Data: []byte(encodeForm(body.Fields)), ContentType: MediaTypeFormURLEncoded}, nil
	case *MultipartBody:
		return encodeMultipart(body.Parts)
	case *BinaryBody:
		data := body.Data
		if body.Reader != nil {
			read, err := io.ReadAll(body.Reader)
			if err != nil {
				return nil, fmt.Errorf("codec: read binary body: %w", err)
			}
			data = read
		}
		if data == nil {
			data = []byte{}
		}
		return &Payload{Data: data, ContentType: MediaTypeOctetStream}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedBody, b)
	}
}

func encodeForm(fields []Field) string {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(f.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(f.Value))
	}
	return sb.String()
}

func encodeMultipart(parts []Part) (*Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		if !p.IsFile() {
			if err := w.WriteField(p.Name, p.Text); err != nil {
				return nil, fmt.Errorf("codec: write field %q: %w", p.Name, err)
			}
			continue
		}

		fileName := p.FileName
		if fileName == "" {
			fileName = p.Name
		}
		fw, err := w.CreateFormFile(p.Name, fileName)
		if err != nil {
			return nil, fmt.Errorf("codec: create part %q: %w", p.Name, err)
		}
		if p.Reader != nil {
			if _, err := io.Copy(fw, p.Reader); err != nil {
				return nil, fmt.Errorf("codec: read part %q: %w", p.Name, err)
			}
			continue
		}
		if _, err := fw.Write(p.Data); err != nil {
			return nil, fmt.Errorf("codec: write part %q: %w", p.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: close multipart: %w", err)
	}
	return &Payload{Data: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}
