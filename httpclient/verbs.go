package httpclient

import (
	"context"
	nethttp "net/http"
)

// Get performs a GET request and decodes the body into T
func Get[T any](ctx context.Context, c *Client, req *Request) (*Response[T], error) {
	return Do[T](ctx, c, nethttp.MethodGet, req)
}

// Post performs a POST request and decodes the body into T
func Post[T any](ctx context.Context, c *Client, req *Request) (*Response[T], error) {
	return Do[T](ctx, c, nethttp.MethodPost, req)
}

// Put performs a PUT request and decodes the body into T
func Put[T any](ctx context.Context, c *Client, req *Request) (*Response[T], error) {
	return Do[T](ctx, c, nethttp.MethodPut, req)
}

// Patch performs a PATCH request and decodes the body into T
func Patch[T any](ctx context.Context, c *Client, req *Request) (*Response[T], error) {
	return Do[T](ctx, c, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request and decodes the body into T
func Delete[T any](ctx context.Context, c *Client, req *Request) (*Response[T], error) {
	return Do[T](ctx, c, nethttp.MethodDelete, req)
}

// Head performs a HEAD request
func Head[T any](ctx context.Context, c *Client, req *Request) (*Response[T], error) {
	return Do[T](ctx, c, nethttp.MethodHead, req)
}

// Get performs a GET request and returns the raw body.
// The raw-text methods return the body of non-2xx responses without an error,
// and the transport error once retries run out.
func (c *Client) Get(ctx context.Context, req *Request) (string, error) {
	return c.text(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request and returns the raw body
func (c *Client) Post(ctx context.Context, req *Request) (string, error) {
	return c.text(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request and returns the raw body
func (c *Client) Put(ctx context.Context, req *Request) (string, error) {
	return c.text(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request and returns the raw body
func (c *Client) Patch(ctx context.Context, req *Request) (string, error) {
	return c.text(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request and returns the raw body
func (c *Client) Delete(ctx context.Context, req *Request) (string, error) {
	return c.text(ctx, nethttp.MethodDelete, req)
}

// Head performs a HEAD request; the body is normally empty
func (c *Client) Head(ctx context.Context, req *Request) (string, error) {
	return c.text(ctx, nethttp.MethodHead, req)
}

func (c *Client) text(ctx context.Context, method string, req *Request) (string, error) {
	resp, err := Do[string](ctx, c, method, req)
	if err != nil {
		return "", err
	}
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.RawContent, nil
}
