package httpclient

import (
	"context"
	"maps"
	nethttp "net/http"

	"github.com/gaborage/go-rest/codec"
)

// RequestBuilder assembles one call fluently and sends it with a verb method.
// A builder is not safe for concurrent use.
type RequestBuilder[T any] struct {
	client      *Client
	url         string
	headers     map[string]string
	query       *Query
	data        any
	hasData     bool
	contentType codec.ContentType
}

// NewRequest starts a builder bound to c whose responses decode into T.
func NewRequest[T any](c *Client) *RequestBuilder[T] {
	return &RequestBuilder[T]{
		client:  c,
		headers: map[string]string{},
		query:   NewQuery(),
	}
}

func (b *RequestBuilder[T]) URL(url string) *RequestBuilder[T] {
	b.url = url
	return b
}

func (b *RequestBuilder[T]) WithHeader(key, value string) *RequestBuilder[T] {
	b.headers[key] = value
	return b
}

func (b *RequestBuilder[T]) WithHeaders(headers map[string]string) *RequestBuilder[T] {
	maps.Copy(b.headers, headers)
	return b
}

func (b *RequestBuilder[T]) WithQuery(key string, value any) *RequestBuilder[T] {
	b.query.Add(key, value)
	return b
}

func (b *RequestBuilder[T]) WithQueries(params map[string]string) *RequestBuilder[T] {
	b.query.AddAll(params)
	return b
}

// WithBody sets an already resolved body; its own content type is used.
func (b *RequestBuilder[T]) WithBody(body codec.Body) *RequestBuilder[T] {
	b.data = body
	b.hasData = body != nil
	if body != nil {
		b.contentType = body.ContentType()
	}
	return b
}

// WithData sets a loosely typed body, resolved against the content type on send.
func (b *RequestBuilder[T]) WithData(data any) *RequestBuilder[T] {
	b.data = data
	b.hasData = data != nil
	return b
}

func (b *RequestBuilder[T]) WithContentType(ct codec.ContentType) *RequestBuilder[T] {
	b.contentType = ct
	return b
}

func (b *RequestBuilder[T]) WithBearerToken(token string) *RequestBuilder[T] {
	return b.WithHeader(HeaderAuthorization, Bearer(token))
}

func (b *RequestBuilder[T]) WithBasicAuth(username, password string) *RequestBuilder[T] {
	return b.WithHeader(HeaderAuthorization, Basic(username, password))
}

func (b *RequestBuilder[T]) WithAPIKey(headerName, key string) *RequestBuilder[T] {
	return b.WithHeader(APIKey(headerName, key))
}

// Build returns the Request the terminal methods send.
func (b *RequestBuilder[T]) Build() (*Request, error) {
	req := &Request{
		URL:     b.query.AppendTo(b.url),
		Headers: maps.Clone(b.headers),
	}
	if b.hasData {
		body, err := codec.NewBody(b.contentType, b.data)
		if err != nil {
			return nil, wrapValidationError("invalid request body", "body", err)
		}
		req.Body = body
	}
	return req, nil
}

func (b *RequestBuilder[T]) Get(ctx context.Context) (*Response[T], error) {
	return b.send(ctx, nethttp.MethodGet)
}

func (b *RequestBuilder[T]) Post(ctx context.Context) (*Response[T], error) {
	return b.send(ctx, nethttp.MethodPost)
}

func (b *RequestBuilder[T]) Put(ctx context.Context) (*Response[T], error) {
	return b.send(ctx, nethttp.MethodPut)
}

func (b *RequestBuilder[T]) Patch(ctx context.Context) (*Response[T], error) {
	return b.send(ctx, nethttp.MethodPatch)
}

func (b *RequestBuilder[T]) Delete(ctx context.Context) (*Response[T], error) {
	return b.send(ctx, nethttp.MethodDelete)
}

func (b *RequestBuilder[T]) Head(ctx context.Context) (*Response[T], error) {
	return b.send(ctx, nethttp.MethodHead)
}

func (b *RequestBuilder[T]) send(ctx context.Context, method string) (*Response[T], error) {
	req, err := b.Build()
	if err != nil {
		return nil, err
	}
	return Do[T](ctx, b.client, method, req)
}
