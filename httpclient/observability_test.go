package httpclient

import (
	"context"
	"errors"
	nethttp "net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gaborage/go-rest/internal/testutil"
	"github.com/gaborage/go-rest/internal/tracking"
	"github.com/gaborage/go-rest/logger"
	"github.com/gaborage/go-rest/trace"
)

var traceParentPattern = regexp.MustCompile(`^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`)

func TestTraceHeadersInjected(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		rt := &recordingTransport{}
		c := NewBuilder(logger.Nop()).
			WithTransport(rt).
			WithTraceIDGenerator(func() string { return "generated-id" }).
			Build()

		_, err := c.Get(context.Background(), &Request{URL: "http://example.com"})
		require.NoError(t, err)

		h := rt.last().Header
		assert.Equal(t, "generated-id", h.Get(HeaderXRequestID))
		assert.Regexp(t, traceParentPattern, h.Get(HeaderTraceParent))
		assert.Empty(t, h.Get(HeaderTraceState))
	})

	t.Run("from context", func(t *testing.T) {
		rt := &recordingTransport{}
		c := NewBuilder(logger.Nop()).WithTransport(rt).Build()

		ctx := trace.WithTraceID(context.Background(), "ctx-id")
		ctx = trace.WithTraceParent(ctx, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")
		ctx = trace.WithTraceState(ctx, "vendor=1")

		_, err := c.Get(ctx, &Request{URL: "http://example.com"})
		require.NoError(t, err)

		h := rt.last().Header
		assert.Equal(t, "ctx-id", h.Get(HeaderXRequestID))
		assert.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", h.Get(HeaderTraceParent))
		assert.Equal(t, "vendor=1", h.Get(HeaderTraceState))
	})

	t.Run("call header kept", func(t *testing.T) {
		rt := &recordingTransport{}
		c := NewBuilder(logger.Nop()).WithTransport(rt).Build()

		_, err := c.Get(context.Background(), &Request{
			URL:     "http://example.com",
			Headers: map[string]string{"x-request-id": "mine"},
		})
		require.NoError(t, err)

		h := rt.last().Header
		assert.Equal(t, []string{"mine"}, h.Values(HeaderXRequestID))
		assert.Len(t, h, 2)
	})

	t.Run("disabled", func(t *testing.T) {
		rt := &recordingTransport{}
		c := NewBuilder(logger.Nop()).WithTransport(rt).WithTraceIDHeader("").WithW3CTrace(false).Build()

		_, err := c.Get(context.Background(), &Request{URL: "http://example.com"})
		require.NoError(t, err)
		assert.Empty(t, rt.last().Header)
	})
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rt := &recordingTransport{}
	rt.respond = func(*nethttp.Request) (*nethttp.Response, error) {
		if rt.calls.Load() == 1 {
			return nil, errors.New("reset")
		}
		return textResponse(nethttp.StatusOK, "ok"), nil
	}
	c := NewBuilder(logger.Nop()).WithTransport(rt).WithRetries(2, 0).WithMeterProvider(provider).Build()

	_, err := c.Get(context.Background(), &Request{URL: "http://api.example.com/x"})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != tracking.MeterName {
			continue
		}
		for _, m := range sm.Metrics {
			found[m.Name] = m
		}
	}

	hist, ok := found[tracking.MetricRequestDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected duration histogram")
	require.Len(t, hist.DataPoints, 1)
	status, ok := hist.DataPoints[0].Attributes.Value(tracking.AttrStatusCode)
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())
	host, ok := hist.DataPoints[0].Attributes.Value(tracking.AttrServer)
	require.True(t, ok)
	assert.Equal(t, "api.example.com", host.AsString())

	retries, ok := found[tracking.MetricRequestRetries].Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected retries counter")
	require.Len(t, retries.DataPoints, 1)
	assert.Equal(t, int64(1), retries.DataPoints[0].Value)
}

func TestOTelTransportCreatesSpans(t *testing.T) {
	server := testutil.NewIPv4Server(t, echoHandler())

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c := NewBuilder(logger.Nop()).WithOTel(true).WithTracerProvider(tp).Build()
	resp, err := Get[echoed](context.Background(), c, &Request{URL: server.URL})
	require.NoError(t, err)
	require.True(t, resp.IsSuccess)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "client", spans[0].SpanKind.String())
}
