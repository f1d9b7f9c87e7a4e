package httpclient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypes(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	tests := []struct {
		name    string
		err     ClientError
		typ     ErrorType
		message string
	}{
		{"network", NewNetworkError("request execution failed", cause), NetworkError, "network error: request execution failed: dial tcp: refused"},
		{"timeout", NewTimeoutError("request timeout", 5*time.Second, context.DeadlineExceeded), TimeoutError, "timeout error: request timeout (timeout: 5s)"},
		{"http", NewHTTPError("not found", 404, []byte("nope")), HTTPError, "HTTP error: not found (status: 404)"},
		{"validation", NewValidationError("URL cannot be empty", "url"), ValidationError, "validation error: URL cannot be empty (field: url)"},
		{"validation wrapped", wrapValidationError("invalid request body", "body", cause), ValidationError, "validation error: invalid request body (field: body): dial tcp: refused"},
		{"interceptor", NewInterceptorError("request interceptor failed", "request", cause), InterceptorError, "interceptor error: request interceptor failed (stage: request): dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type())
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, IsErrorType(fmt.Errorf("wrapped: %w", tt.err), tt.typ))
		})
	}
}

func TestIsErrorTypeWithPlainErrors(t *testing.T) {
	assert.False(t, IsErrorType(nil, NetworkError))
	assert.False(t, IsErrorType(errors.New("plain"), NetworkError))
}

func TestIsHTTPStatusError(t *testing.T) {
	err := NewHTTPError("server error", 503, nil)
	assert.True(t, IsHTTPStatusError(err, 503))
	assert.False(t, IsHTTPStatusError(err, 500))
	assert.False(t, IsHTTPStatusError(errors.New("x"), 503))
}

func TestIsSuccessStatus(t *testing.T) {
	assert.True(t, IsSuccessStatus(200))
	assert.True(t, IsSuccessStatus(299))
	assert.False(t, IsSuccessStatus(199))
	assert.False(t, IsSuccessStatus(300))
}

func TestTransportErrorClassification(t *testing.T) {
	timeout := transportError("request execution failed", fmt.Errorf("get: %w", context.DeadlineExceeded), time.Second)
	assert.True(t, IsErrorType(timeout, TimeoutError))
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)

	network := transportError("request execution failed", errors.New("refused"), time.Second)
	assert.True(t, IsErrorType(network, NetworkError))

	existing := NewInterceptorError("x", "request", errors.New("y"))
	assert.Same(t, existing, transportError("ignored", existing, time.Second))
}

func TestResponseAsError(t *testing.T) {
	var nilResp *Response[string]
	assert.NoError(t, nilResp.AsError())

	ok := &Response[string]{IsSuccess: true, StatusCode: 200}
	assert.NoError(t, ok.AsError())

	failed := &Response[string]{StatusCode: 404, ErrorMessage: "Request failed with status code 404", RawContent: "missing"}
	err := failed.AsError()
	assert.True(t, IsHTTPStatusError(err, 404))
}
