package httpclient

import (
	"crypto/tls"
	nethttp "net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gaborage/go-rest/config"
)

// Transport sends a single HTTP request. *http.Client satisfies it.
type Transport interface {
	Do(req *nethttp.Request) (*nethttp.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(req *nethttp.Request) (*nethttp.Response, error)

func (f TransportFunc) Do(req *nethttp.Request) (*nethttp.Response, error) {
	return f(req)
}

type idleCloser interface {
	CloseIdleConnections()
}

// newDefaultTransport builds the client-owned transport. Timeouts are applied
// per attempt through the request context, so the http.Client carries none.
func newDefaultTransport(cfg config.Client, tp oteltrace.TracerProvider, mp metric.MeterProvider) *nethttp.Client {
	base := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	if !cfg.ValidateSSLCertificates {
		base.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402 - explicitly requested through configuration
			MinVersion:         tls.VersionTLS12,
		}
	}

	var rt nethttp.RoundTripper = base
	if cfg.EnableOTel {
		var opts []otelhttp.Option
		if tp != nil {
			opts = append(opts, otelhttp.WithTracerProvider(tp))
		}
		if mp != nil {
			opts = append(opts, otelhttp.WithMeterProvider(mp))
		}
		rt = otelhttp.NewTransport(rt, opts...)
	}

	return &nethttp.Client{Transport: rt}
}
