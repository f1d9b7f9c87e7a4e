package httpclient

import (
	"maps"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gaborage/go-rest/config"
	"github.com/gaborage/go-rest/interceptor"
	"github.com/gaborage/go-rest/internal/tracking"
	"github.com/gaborage/go-rest/logger"
	"github.com/gaborage/go-rest/retry"
	"github.com/gaborage/go-rest/trace"
)

// Client executes REST calls. It is safe for concurrent use once its
// interceptor chain is set up.
type Client struct {
	cfg            config.Client
	transport      Transport
	ownsTransport  bool
	logger         logger.Logger
	chain          *interceptor.Chain
	policy         retry.Policy
	propagator     trace.Propagator
	metrics        *tracking.Recorder
	tracerProvider oteltrace.TracerProvider
	meterProvider  metric.MeterProvider
	callCount      atomic.Int64
	closed         atomic.Bool
}

type options struct {
	logger         logger.Logger
	transport      Transport
	chain          *interceptor.Chain
	newTraceID     func() string
	tracerProvider oteltrace.TracerProvider
	meterProvider  metric.MeterProvider
	metrics        *tracking.Recorder
}

// New creates a client with the default configuration.
func New(log logger.Logger) *Client {
	return NewWithConfig(log, config.Default())
}

// NewWithConfig creates a client from cfg. Out-of-range values are clamped, never rejected.
func NewWithConfig(log logger.Logger, cfg config.Client) *Client {
	return newClient(cfg, options{logger: log})
}

func newClient(cfg config.Client, o options) *Client {
	cfg = cfg.Normalize()
	if o.logger == nil {
		o.logger = logger.Nop()
	}
	if o.chain == nil {
		o.chain = interceptor.NewChain()
	}
	if o.metrics == nil {
		o.metrics = tracking.NewRecorder(o.meterProvider)
	}

	c := &Client{
		cfg:            cfg,
		transport:      o.transport,
		logger:         o.logger,
		chain:          o.chain,
		policy:         retry.NewPolicy(cfg.MaxRetryAttempts, cfg.RetryDelay, cfg.UseExponentialBackoff),
		propagator:     trace.Propagator{IDHeader: cfg.TraceIDHeader, W3C: cfg.EnableW3CTrace, NewID: o.newTraceID},
		metrics:        o.metrics,
		tracerProvider: o.tracerProvider,
		meterProvider:  o.meterProvider,
	}
	if c.transport == nil {
		c.transport = newDefaultTransport(cfg, o.tracerProvider, o.meterProvider)
		c.ownsTransport = true
	}
	return c
}

// derive returns a client with cfg that shares the logger, the interceptor chain,
// the metrics recorder and, where TLS settings allow, the transport of c.
// The caller closes the derived client.
func (c *Client) derive(cfg config.Client) *Client {
	o := options{
		logger:         c.logger,
		chain:          c.chain,
		newTraceID:     c.propagator.NewID,
		tracerProvider: c.tracerProvider,
		meterProvider:  c.meterProvider,
		metrics:        c.metrics,
	}
	cfg = cfg.Normalize()
	if !c.ownsTransport || cfg.ValidateSSLCertificates == c.cfg.ValidateSSLCertificates {
		o.transport = c.transport
	}
	return newClient(cfg, o)
}

// Interceptors returns the chain run around every attempt.
func (c *Client) Interceptors() *interceptor.Chain {
	return c.chain
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() config.Client {
	cfg := c.cfg
	cfg.DefaultHeaders = maps.Clone(c.cfg.DefaultHeaders)
	return cfg
}

// Close releases idle connections of a client-owned transport. Calls made
// after Close fail with a validation error. Close is idempotent.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if !c.ownsTransport {
		return nil
	}
	if ic, ok := c.transport.(idleCloser); ok {
		ic.CloseIdleConnections()
	}
	return nil
}

// Builder provides a fluent interface for configuring the REST client
type Builder struct {
	cfg  config.Client
	opts options
}

// NewBuilder creates a new client builder starting from config.Default.
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		cfg:  config.Default(),
		opts: options{logger: log, chain: interceptor.NewChain()},
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg config.Client) *Builder {
	b.cfg = cfg
	if b.cfg.DefaultHeaders == nil {
		b.cfg.DefaultHeaders = map[string]string{}
	} else {
		b.cfg.DefaultHeaders = maps.Clone(cfg.DefaultHeaders)
	}
	return b
}

func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.cfg.BaseURL = baseURL
	return b
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.cfg.Timeout = timeout
	return b
}

// WithRetries sets the retry configuration
func (b *Builder) WithRetries(maxRetries int, retryDelay time.Duration) *Builder {
	b.cfg.MaxRetryAttempts = maxRetries
	b.cfg.RetryDelay = retryDelay
	return b
}

func (b *Builder) WithExponentialBackoff(enabled bool) *Builder {
	b.cfg.UseExponentialBackoff = enabled
	return b
}

// WithSSLValidation toggles TLS certificate verification on the default transport.
func (b *Builder) WithSSLValidation(enabled bool) *Builder {
	b.cfg.ValidateSSLCertificates = enabled
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	if b.cfg.DefaultHeaders == nil {
		b.cfg.DefaultHeaders = map[string]string{}
	}
	b.cfg.DefaultHeaders[key] = value
	return b
}

// WithInterceptor appends an interceptor to the chain
func (b *Builder) WithInterceptor(it interceptor.Interceptor) *Builder {
	b.opts.chain.Add(it)
	return b
}

// WithTransport replaces the default transport. The client does not close it.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.opts.transport = t
	return b
}

// WithHTTPClient is WithTransport for a preconfigured *http.Client.
func (b *Builder) WithHTTPClient(hc Transport) *Builder {
	return b.WithTransport(hc)
}

// WithLogPayloads enables debug logging of bodies, truncated to maxBytes
func (b *Builder) WithLogPayloads(enabled bool, maxBytes int) *Builder {
	b.cfg.LogPayloads = enabled
	b.cfg.MaxPayloadLogBytes = maxBytes
	return b
}

// WithTraceIDHeader names the request-id header; empty disables it.
func (b *Builder) WithTraceIDHeader(header string) *Builder {
	b.cfg.TraceIDHeader = header
	return b
}

// WithTraceIDGenerator sets the request-id generator used when the context carries none.
func (b *Builder) WithTraceIDGenerator(gen func() string) *Builder {
	b.opts.newTraceID = gen
	return b
}

func (b *Builder) WithW3CTrace(enabled bool) *Builder {
	b.cfg.EnableW3CTrace = enabled
	return b
}

// WithOTel wraps the default transport with otelhttp instrumentation.
func (b *Builder) WithOTel(enabled bool) *Builder {
	b.cfg.EnableOTel = enabled
	return b
}

func (b *Builder) WithTracerProvider(tp oteltrace.TracerProvider) *Builder {
	b.opts.tracerProvider = tp
	return b
}

// WithMeterProvider sets the provider for client metrics and otelhttp metrics.
func (b *Builder) WithMeterProvider(mp metric.MeterProvider) *Builder {
	b.opts.meterProvider = mp
	return b
}

// Build creates the REST client with the configured options
func (b *Builder) Build() *Client {
	return newClient(b.cfg, b.opts)
}
