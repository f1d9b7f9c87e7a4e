// Package config holds the REST client settings and loads them from defaults,
// YAML and environment variables.
package config

import (
	"maps"
	"time"

	"github.com/gaborage/go-rest/trace"
)

const (
	// DefaultTimeout is the default per-attempt request timeout
	DefaultTimeout = 100 * time.Second

	// DefaultMaxRetryAttempts disables retries unless configured
	DefaultMaxRetryAttempts = 0

	// DefaultRetryDelay is the base delay between retries
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxPayloadLogBytes caps logged body bytes when payload logging is on
	DefaultMaxPayloadLogBytes = 1024
)

// Client holds the settings of one REST client instance.
// The zero value is not the default configuration: start from Default or Load,
// since several flags default to true.
type Client struct {
	// BaseURL is prefixed to relative request URLs.
	BaseURL string `koanf:"base_url" json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	// DefaultHeaders are sent with every request; call headers win on collision.
	DefaultHeaders map[string]string `koanf:"default_headers" json:"default_headers" yaml:"default_headers"`
	// Timeout bounds a single attempt, including reading the response body.
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`
	// MaxRetryAttempts is the number of retries after the first attempt.
	MaxRetryAttempts int `koanf:"max_retry_attempts" json:"max_retry_attempts" yaml:"max_retry_attempts" validate:"gte=0,lte=100"`
	// RetryDelay is the base backoff delay.
	RetryDelay time.Duration `koanf:"retry_delay" json:"retry_delay" yaml:"retry_delay" validate:"gte=0"`
	// UseExponentialBackoff doubles the delay on every retry when true.
	UseExponentialBackoff bool `koanf:"use_exponential_backoff" json:"use_exponential_backoff" yaml:"use_exponential_backoff"`
	// ValidateSSLCertificates turns TLS verification off on the default transport when false.
	ValidateSSLCertificates bool `koanf:"validate_ssl_certificates" json:"validate_ssl_certificates" yaml:"validate_ssl_certificates"`

	// LogPayloads enables debug-level logging of request and response bodies
	LogPayloads bool `koanf:"log_payloads" json:"log_payloads" yaml:"log_payloads"`
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int `koanf:"max_payload_log_bytes" json:"max_payload_log_bytes" yaml:"max_payload_log_bytes" validate:"gte=0"`
	// TraceIDHeader names the request-id header; empty disables request-id propagation
	TraceIDHeader string `koanf:"trace_id_header" json:"trace_id_header" yaml:"trace_id_header"`
	// EnableW3CTrace enables traceparent/tracestate propagation
	EnableW3CTrace bool `koanf:"enable_w3c_trace" json:"enable_w3c_trace" yaml:"enable_w3c_trace"`
	// EnableOTel wraps the default transport with OpenTelemetry instrumentation
	EnableOTel bool `koanf:"enable_otel" json:"enable_otel" yaml:"enable_otel"`
}

// Default returns the permissive defaults.
func Default() Client {
	return Client{
		DefaultHeaders:          map[string]string{},
		Timeout:                 DefaultTimeout,
		MaxRetryAttempts:        DefaultMaxRetryAttempts,
		RetryDelay:              DefaultRetryDelay,
		UseExponentialBackoff:   true,
		ValidateSSLCertificates: true,
		MaxPayloadLogBytes:      DefaultMaxPayloadLogBytes,
		TraceIDHeader:           trace.HeaderXRequestID,
		EnableW3CTrace:          true,
	}
}

// Normalize returns a copy that is safe to run with. It never fails: negative
// retry settings clamp to zero and a non-positive timeout falls back to
// DefaultTimeout. The header map is cloned so later edits by the caller do not leak in.
func (c Client) Normalize() Client {
	if c.MaxRetryAttempts < 0 {
		c.MaxRetryAttempts = 0
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxPayloadLogBytes <= 0 {
		c.MaxPayloadLogBytes = DefaultMaxPayloadLogBytes
	}
	if c.DefaultHeaders == nil {
		c.DefaultHeaders = map[string]string{}
	} else {
		c.DefaultHeaders = maps.Clone(c.DefaultHeaders)
	}
	return c
}
