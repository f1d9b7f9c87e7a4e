package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-rest/config"
	"github.com/gaborage/go-rest/logger"
)

func newLoggingClient(log logger.Logger, logPayloads bool, maxBytes int) *Client {
	cfg := config.Default()
	cfg.LogPayloads = logPayloads
	cfg.MaxPayloadLogBytes = maxBytes
	return newClient(cfg, options{logger: log, transport: &recordingTransport{}})
}

// TestClientLogRequest tests the logRequest method
func TestClientLogRequest(t *testing.T) {
	t.Run("basic request logging", func(t *testing.T) {
		fakeLog := &fakeLogger{}
		c := newLoggingClient(fakeLog, false, 1024)

		req, err := nethttp.NewRequestWithContext(context.Background(), "POST", "https://api.example.com/users", nethttp.NoBody)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer token")
		req.Header.Set("Content-Type", testContentType)

		body := []byte(`{"name": "test user"}`)
		c.logRequest(req, body, "test-trace-123")

		infoEvents := fakeLog.eventsByLevel("info")
		require.Len(t, infoEvents, 1)

		infoEvent := infoEvents[0]
		assert.Equal(t, testRestClientRequest, infoEvent.message)
		assert.Equal(t, "outbound", infoEvent.fields["direction"])
		assert.Equal(t, "POST", infoEvent.fields["method"])
		assert.Equal(t, "https://api.example.com/users", infoEvent.fields["url"])
		assert.Equal(t, "test-trace-123", infoEvent.fields["request_id"])
		assert.Equal(t, 2, infoEvent.fields["header_count"])
		assert.Equal(t, len(body), infoEvent.fields["body_size"])

		// Should not have debug events when LogPayloads is false
		assert.Empty(t, fakeLog.eventsByLevel("debug"))
	})

	t.Run("request with empty body", func(t *testing.T) {
		fakeLog := &fakeLogger{}
		c := newLoggingClient(fakeLog, false, 1024)

		req, err := nethttp.NewRequestWithContext(context.Background(), "GET", "https://api.example.com/status", nethttp.NoBody)
		require.NoError(t, err)

		c.logRequest(req, nil, "trace-456")

		infoEvents := fakeLog.eventsByLevel("info")
		require.Len(t, infoEvents, 1)
		_, hasBodySize := infoEvents[0].fields["body_size"]
		assert.False(t, hasBodySize)
		_, hasHeaderCount := infoEvents[0].fields["header_count"]
		assert.False(t, hasHeaderCount)
	})

	t.Run("payload logging truncates", func(t *testing.T) {
		fakeLog := &fakeLogger{}
		c := newLoggingClient(fakeLog, true, 10)

		req, err := nethttp.NewRequestWithContext(context.Background(), "PUT", "https://api.example.com/resource", nethttp.NoBody)
		require.NoError(t, err)
		req.Header.Set(testAPIKey, "secret")

		body := []byte(`{"data": "some content for testing"}`)
		c.logRequest(req, body, "trace-789")

		debugEvents := fakeLog.eventsByLevel("debug")
		require.Len(t, debugEvents, 1)

		debugEvent := debugEvents[0]
		assert.Equal(t, testRestClientRequest, debugEvent.message)
		assert.Equal(t, "trace-789", debugEvent.fields["request_id"])
		assert.NotNil(t, debugEvent.fields["headers"])
		assert.Equal(t, len(body), debugEvent.fields["body_size"])
		assert.Equal(t, "true", debugEvent.fields["body_truncated"])
		assert.Equal(t, body[:10], debugEvent.fields["body_preview"])
	})
}

// TestClientLogResponse tests the logResponse method
func TestClientLogResponse(t *testing.T) {
	fakeLog := &fakeLogger{}
	c := newLoggingClient(fakeLog, true, 1024)

	stats := Stats{CallCount: 7, Attempts: 2}
	c.logResponse(nethttp.StatusCreated, `{"id":1}`, stats, "trace-response-123")

	infoEvents := fakeLog.eventsByLevel("info")
	require.Len(t, infoEvents, 1)
	infoEvent := infoEvents[0]
	assert.Equal(t, testRestClientResponse, infoEvent.message)
	assert.Equal(t, "inbound", infoEvent.fields["direction"])
	assert.Equal(t, nethttp.StatusCreated, infoEvent.fields["status"])
	assert.Equal(t, int64(7), infoEvent.fields["call_count"])
	assert.Equal(t, 2, infoEvent.fields["attempts"])
	assert.Equal(t, 8, infoEvent.fields["body_size"])

	debugEvents := fakeLog.eventsByLevel("debug")
	require.Len(t, debugEvents, 1)
	assert.Equal(t, "false", debugEvents[0].fields["body_truncated"])
	assert.Equal(t, []byte(`{"id":1}`), debugEvents[0].fields["body_preview"])
}

func TestLoggingIntegration(t *testing.T) {
	fakeLog := &fakeLogger{}
	rt := &recordingTransport{respond: func(*nethttp.Request) (*nethttp.Response, error) {
		return nil, errors.New("unreachable")
	}}
	c := NewBuilder(fakeLog).WithTransport(rt).WithRetries(1, 0).Build()

	_, err := Get[string](context.Background(), c, &Request{URL: "http://example.com"})
	require.NoError(t, err)

	assert.Len(t, fakeLog.eventsByLevel("info"), 2, "one request log per attempt")
	warns := fakeLog.eventsByLevel("warn")
	require.Len(t, warns, 1)
	assert.Equal(t, 2, warns[0].fields["max_attempts"])

	errs := fakeLog.eventsByLevel("error")
	require.Len(t, errs, 1)
	assert.Equal(t, "REST client request failed", errs[0].message)
	assert.Equal(t, 2, errs[0].fields["attempts"])
}

func TestAuthorizationIsMaskedInPayloadLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", nil)
	c := NewBuilder(log).WithTransport(&recordingTransport{}).WithLogPayloads(true, 64).Build()

	_, err := c.Get(context.Background(), &Request{
		URL:     "http://example.com",
		Headers: map[string]string{"Authorization": Bearer("super-secret")},
	})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "super-secret")

	var sawHeaders bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if h, ok := entry["headers"].(map[string]any); ok {
			sawHeaders = true
			assert.Equal(t, []any{"***"}, h["Authorization"])
		}
	}
	assert.True(t, sawHeaders)
}
