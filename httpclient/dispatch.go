package httpclient

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gaborage/go-rest/codec"
	"github.com/gaborage/go-rest/config"
)

// RequestOptions describes a call for Dispatch. Zero-valued overrides keep the
// client's settings.
type RequestOptions struct {
	URL string
	// Method is case-insensitive; empty means GET.
	Method  string
	Headers map[string]string
	// Data is resolved with codec.NewBody. GET, DELETE and HEAD ignore it.
	Data        any
	ContentType codec.ContentType
	Timeout     time.Duration
	BaseURL     string
	MaxRetries  *int
	ValidateSSL *bool
}

func (o RequestOptions) overrides() bool {
	return o.Timeout > 0 || o.BaseURL != "" || o.MaxRetries != nil || o.ValidateSSL != nil
}

func (o RequestOptions) apply(cfg config.Client) config.Client {
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.MaxRetries != nil {
		cfg.MaxRetryAttempts = *o.MaxRetries
	}
	if o.ValidateSSL != nil {
		cfg.ValidateSSLCertificates = *o.ValidateSSL
	}
	return cfg
}

// Dispatch routes opts to the verb named by opts.Method. A missing URL, an
// unknown method or a body that does not fit ContentType is reported before
// any attempt. Overrides run on a derived client that shares c's logger and
// interceptors and is closed when the call returns.
func Dispatch[T any](ctx context.Context, c *Client, opts RequestOptions) (*Response[T], error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, NewValidationError("URL is required", "url")
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = nethttp.MethodGet
	}
	if !supportedMethods[method] {
		return nil, NewValidationError(fmt.Sprintf("unsupported HTTP method %q", opts.Method), "method")
	}

	req := &Request{URL: opts.URL, Headers: opts.Headers}
	switch method {
	case nethttp.MethodGet, nethttp.MethodDelete, nethttp.MethodHead:
	default:
		body, err := codec.NewBody(opts.ContentType, opts.Data)
		if err != nil {
			return nil, wrapValidationError("invalid request body", "data", err)
		}
		req.Body = body
	}

	if c.closed.Load() {
		return nil, NewValidationError("client is closed", "client")
	}

	target := c
	if opts.overrides() {
		target = c.derive(opts.apply(c.Config()))
		defer func() { _ = target.Close() }()
	}

	switch method {
	case nethttp.MethodGet:
		return Get[T](ctx, target, req)
	case nethttp.MethodPost:
		return Post[T](ctx, target, req)
	case nethttp.MethodPut:
		return Put[T](ctx, target, req)
	case nethttp.MethodPatch:
		return Patch[T](ctx, target, req)
	case nethttp.MethodDelete:
		return Delete[T](ctx, target, req)
	default:
		return Head[T](ctx, target, req)
	}
}
