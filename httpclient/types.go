package httpclient

import (
	nethttp "net/http"
	"time"

	"github.com/gaborage/go-rest/codec"
	"github.com/gaborage/go-rest/trace"
)

const (
	// HeaderXRequestID is the standard header name for request tracing
	HeaderXRequestID = trace.HeaderXRequestID
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = trace.HeaderTraceParent
	// HeaderTraceState is the W3C trace context "tracestate" header name
	HeaderTraceState = trace.HeaderTraceState

	headerContentType = "Content-Type"
)

// Request represents one logical call. It is not modified by the client and
// may be reused.
type Request struct {
	// URL is absolute, or relative to the client's base URL.
	URL string
	// Headers overlay the client's default headers; names compare case-insensitively.
	Headers map[string]string
	// Body is optional. Build it with the codec constructors or codec.NewBody.
	Body codec.Body
}

// Response is the envelope returned for a logical call.
type Response[T any] struct {
	// Data is the decoded body; nil when the call failed, the body was blank, or decoding failed.
	Data       *T
	StatusCode int
	StatusText string
	Headers    nethttp.Header
	// RawContent is the full response body as text.
	RawContent string
	// IsSuccess reports a 2xx status.
	IsSuccess bool
	// ErrorMessage is set when IsSuccess is false.
	ErrorMessage string
	// Err is the transport or interceptor error of the last attempt when retries ran out.
	Err   error
	Stats Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
	// Attempts is the number of attempts made, including the first.
	Attempts int
}

// AsError returns Err when set, an HTTP error for a non-2xx status, and nil otherwise.
func (r *Response[T]) AsError() error {
	if r == nil {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	if !r.IsSuccess {
		return NewHTTPError(r.ErrorMessage, r.StatusCode, []byte(r.RawContent))
	}
	return nil
}
