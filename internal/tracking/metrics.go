// Package tracking records OpenTelemetry metrics for outgoing REST calls.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// Meter name for REST client instrumentation
	MeterName = "go-rest/httpclient"

	// Metric names following OpenTelemetry semantic conventions
	MetricRequestDuration = "http.client.request.duration" // Histogram in seconds
	MetricRequestRetries  = "http.client.request.retries"  // Counter of retried attempts

	// Attribute keys per OTel semantic conventions
	AttrMethod     = "http.request.method"
	AttrServer     = "server.address"
	AttrStatusCode = "http.response.status_code"
	AttrErrorType  = "error.type"
)

// Call describes one finished logical call.
type Call struct {
	Method     string
	Host       string
	StatusCode int
	Attempts   int
	Duration   time.Duration
	Err        error
}

// Recorder owns the instruments of one client.
type Recorder struct {
	duration metric.Float64Histogram
	retries  metric.Int64Counter
}

// logMetricError logs a metric initialization error to stderr.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize REST client metric %s: %v\n", metricName, err)
	}
}

// NewRecorder creates the instruments on mp, or on the global provider when mp is nil.
// Instruments that fail to initialize are skipped.
func NewRecorder(mp metric.MeterProvider) *Recorder {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(MeterName)
	r := &Recorder{}

	var err error
	r.duration, err = meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("Duration of REST client calls including retries"),
		metric.WithUnit("s"),
	)
	logMetricError(MetricRequestDuration, err)

	r.retries, err = meter.Int64Counter(
		MetricRequestRetries,
		metric.WithDescription("Number of retried REST client attempts"),
		metric.WithUnit("{retry}"),
	)
	logMetricError(MetricRequestRetries, err)

	return r
}

// Record reports a finished call. A nil Recorder is a no-op.
func (r *Recorder) Record(ctx context.Context, call Call) {
	if r == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, call.Method),
	}
	if call.Host != "" {
		attrs = append(attrs, attribute.String(AttrServer, call.Host))
	}
	if call.StatusCode > 0 {
		attrs = append(attrs, attribute.Int(AttrStatusCode, call.StatusCode))
	}
	if errType := classifyError(call.Err, call.StatusCode); errType != "" {
		attrs = append(attrs, attribute.String(AttrErrorType, errType))
	}

	opts := metric.WithAttributes(attrs...)
	if r.duration != nil {
		r.duration.Record(ctx, call.Duration.Seconds(), opts)
	}
	if r.retries != nil && call.Attempts > 1 {
		r.retries.Add(ctx, int64(call.Attempts-1), opts)
	}
}

// classifyError returns the error.type attribute: a timeout or network class for
// transport failures, the status code for HTTP failures, empty on success.
func classifyError(err error, status int) string {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "timeout"
		}
		if errors.Is(err, context.Canceled) {
			return "canceled"
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "timeout"
		}
		return "network"
	}
	if status >= 400 {
		return strconv.Itoa(status)
	}
	return ""
}
