package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gaborage/go-rest/codec"
	"github.com/gaborage/go-rest/internal/headers"
	"github.com/gaborage/go-rest/internal/tracking"
	"github.com/gaborage/go-rest/retry"
)

var supportedMethods = map[string]bool{
	nethttp.MethodGet:    true,
	nethttp.MethodPost:   true,
	nethttp.MethodPut:    true,
	nethttp.MethodPatch:  true,
	nethttp.MethodDelete: true,
	nethttp.MethodHead:   true,
}

// call is the per-call state shared by all attempts.
type call struct {
	method    string
	target    string
	host      string
	headers   map[string]string
	payload   *codec.Payload
	requestID string
}

// Do performs req with method and decodes a successful body into T.
//
// Configuration problems (nil request, empty or unusable URL, unsupported method,
// body that cannot be encoded, closed client) return a validation error before
// any attempt. Transport and interceptor failures are retried per the client's
// retry settings; when they run out the returned envelope has status 500 and Err
// set, with a nil error. Non-2xx statuses are never retried and never returned
// as errors. An error returned by an OnError interceptor aborts the call and is
// returned as is.
func Do[T any](ctx context.Context, c *Client, method string, req *Request) (*Response[T], error) {
	cl, err := c.prepare(method, req)
	if err != nil {
		return nil, err
	}

	ctx = c.propagator.Bind(ctx)
	start := time.Now()
	callCount := c.callCount.Add(1)

	var (
		result   *Response[T]
		hookErr  error
		attempts int
	)
	err = c.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		attempts = attempt
		resp, attemptErr := send[T](ctx, c, cl)
		if attemptErr == nil {
			result = resp
			return nil
		}

		if hookErr = c.chain.RunOnError(ctx, attemptErr); hookErr != nil {
			return retry.Permanent(hookErr)
		}
		if attempt < c.policy.MaxAttempts() {
			c.logRetry(cl, attempt, c.policy.Delay(attempt), attemptErr)
		}
		return attemptErr
	})

	stats := Stats{
		ElapsedTime: time.Since(start),
		CallCount:   callCount,
		Attempts:    attempts,
	}

	if hookErr != nil {
		c.record(ctx, cl, 0, stats, hookErr)
		c.logFailure(cl, stats, hookErr)
		return nil, hookErr
	}

	if err != nil {
		message := "request failed after retries"
		if isCanceled(ctx, err) {
			message = "request canceled"
		}
		failure := transportError(message, err, c.cfg.Timeout)
		c.record(ctx, cl, 0, stats, failure)
		c.logFailure(cl, stats, failure)
		return failureResponse[T](failure, stats), nil
	}

	result.Stats = stats
	c.record(ctx, cl, result.StatusCode, stats, nil)
	c.logResponse(result.StatusCode, result.RawContent, stats, cl.requestID)
	return result, nil
}

func (c *Client) prepare(method string, req *Request) (*call, error) {
	if c.closed.Load() {
		return nil, NewValidationError("client is closed", "client")
	}
	if req == nil {
		return nil, NewValidationError("request cannot be nil", "request")
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, NewValidationError("URL cannot be empty", "url")
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if !supportedMethods[method] {
		return nil, NewValidationError(fmt.Sprintf("unsupported HTTP method %q", method), "method")
	}

	target := c.resolveURL(req.URL)
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, wrapValidationError("invalid URL", "url", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, NewValidationError(fmt.Sprintf("URL %q is not absolute and no base URL is configured", target), "url")
	}

	payload, err := codec.Encode(req.Body)
	if err != nil {
		return nil, wrapValidationError("invalid request body", "body", err)
	}

	return &call{
		method:  method,
		target:  target,
		host:    parsed.Host,
		headers: req.Headers,
		payload: payload,
	}, nil
}

// resolveURL returns rawURL when it is absolute, otherwise joins it to the
// base URL with exactly one slash.
func (c *Client) resolveURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.IsAbs() {
		return rawURL
	}
	if c.cfg.BaseURL == "" {
		return rawURL
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(rawURL, "/")
}

// send runs one attempt: build, intercept, transmit, intercept, read, decode.
func send[T any](ctx context.Context, c *Client, cl *call) (*Response[T], error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := c.buildRequest(attemptCtx, cl)
	if err != nil {
		return nil, err
	}

	httpReq, err = c.chain.RunOnRequest(attemptCtx, httpReq)
	if err != nil {
		return nil, NewInterceptorError("request interceptor failed", "request", err)
	}

	httpResp, err := c.transport.Do(httpReq)
	if err != nil {
		return nil, transportError("request execution failed", err, c.cfg.Timeout)
	}
	if httpResp == nil {
		return nil, NewNetworkError("transport returned no response", nil)
	}
	defer closeBody(httpResp)

	intercepted, err := c.chain.RunOnResponse(attemptCtx, httpResp)
	if err != nil {
		if intercepted != nil && intercepted != httpResp {
			closeBody(intercepted)
		}
		return nil, NewInterceptorError("response interceptor failed", "response", err)
	}
	if intercepted != httpResp {
		defer closeBody(intercepted)
	}

	var raw []byte
	if intercepted.Body != nil {
		raw, err = io.ReadAll(intercepted.Body)
		if err != nil {
			return nil, transportError("failed to read response body", err, c.cfg.Timeout)
		}
	}

	return newResponse[T](intercepted, string(raw)), nil
}

// buildRequest creates a fresh request for one attempt so that interceptor
// mutations never leak into the next one.
func (c *Client) buildRequest(ctx context.Context, cl *call) (*nethttp.Request, error) {
	var body io.Reader = nethttp.NoBody
	if cl.payload != nil {
		body = cl.payload.Reader()
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, cl.method, cl.target, body)
	if err != nil {
		return nil, NewNetworkError("failed to create HTTP request", err)
	}

	httpReq.Header = headers.Merge(c.cfg.DefaultHeaders, cl.headers)
	if cl.payload != nil {
		headers.Set(httpReq.Header, headerContentType, cl.payload.ContentType)
	}
	cl.requestID = c.propagator.Inject(ctx, httpReq.Header)

	var logged []byte
	if cl.payload != nil {
		logged = cl.payload.Data
	}
	c.logRequest(httpReq, logged, cl.requestID)
	return httpReq, nil
}

func newResponse[T any](resp *nethttp.Response, raw string) *Response[T] {
	success := IsSuccessStatus(resp.StatusCode)
	out := &Response[T]{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    resp.Header.Clone(),
		RawContent: raw,
		IsSuccess:  success,
		Data:       codec.Decode[T](raw, success),
	}
	if out.Headers == nil {
		out.Headers = nethttp.Header{}
	}
	if !success {
		out.ErrorMessage = fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
	}
	return out
}

func failureResponse[T any](err error, stats Stats) *Response[T] {
	return &Response[T]{
		StatusCode:   nethttp.StatusInternalServerError,
		StatusText:   nethttp.StatusText(nethttp.StatusInternalServerError),
		Headers:      nethttp.Header{},
		ErrorMessage: err.Error(),
		Err:          err,
		Stats:        stats,
	}
}

// statusText prefers the reason phrase sent by the server.
func statusText(resp *nethttp.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return nethttp.StatusText(resp.StatusCode)
}

func closeBody(resp *nethttp.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}

func (c *Client) record(ctx context.Context, cl *call, status int, stats Stats, err error) {
	c.metrics.Record(context.WithoutCancel(ctx), tracking.Call{
		Method:     cl.method,
		Host:       cl.host,
		StatusCode: status,
		Attempts:   stats.Attempts,
		Duration:   stats.ElapsedTime,
		Err:        err,
	})
}

// isCanceled reports whether err stems from the caller's context rather than an attempt.
func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
