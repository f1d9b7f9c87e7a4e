// Package trace carries request-id and W3C trace-context values through a
// context and injects them into outgoing request headers.
package trace

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/google/uuid"

	"github.com/gaborage/go-rest/internal/headers"
)

type contextKey string

const (
	traceIDKey     contextKey = "trace_id"
	traceParentKey contextKey = "traceparent"
	traceStateKey  contextKey = "tracestate"

	// HeaderXRequestID is the default header name for request tracing
	HeaderXRequestID = "X-Request-ID"
	// HeaderTraceParent is the W3C trace context header name
	HeaderTraceParent = "traceparent"
	// HeaderTraceState is the W3C trace context "tracestate" header name
	HeaderTraceState = "tracestate"
)

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// IDFromContext returns a trace ID from context if present
func IDFromContext(ctx context.Context) (string, bool) {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok && traceID != "" {
		return traceID, true
	}
	return "", false
}

// EnsureTraceID returns an existing trace ID from context or generates a new one
func EnsureTraceID(ctx context.Context) string {
	if traceID, ok := IDFromContext(ctx); ok {
		return traceID
	}
	return uuid.New().String()
}

// WithTraceParent adds a W3C traceparent value to the context
func WithTraceParent(ctx context.Context, traceParent string) context.Context {
	return context.WithValue(ctx, traceParentKey, traceParent)
}

// ParentFromContext returns a traceparent from context if present
func ParentFromContext(ctx context.Context) (string, bool) {
	if tp, ok := ctx.Value(traceParentKey).(string); ok && tp != "" {
		return tp, true
	}
	return "", false
}

// WithTraceState adds a W3C tracestate value to the context
func WithTraceState(ctx context.Context, traceState string) context.Context {
	return context.WithValue(ctx, traceStateKey, traceState)
}

// StateFromContext returns a tracestate from context if present
func StateFromContext(ctx context.Context) (string, bool) {
	if ts, ok := ctx.Value(traceStateKey).(string); ok && ts != "" {
		return ts, true
	}
	return "", false
}

// GenerateTraceParent creates a minimal W3C traceparent header value.
// Format: version(2)-trace-id(32)-span-id(16)-flags(2), e.g., "00-<32>-<16>-01"
func GenerateTraceParent() string {
	traceID := make([]byte, 16)
	spanID := make([]byte, 8)
	_, _ = crand.Read(traceID)
	_, _ = crand.Read(spanID)
	// All-zero ids are invalid per the W3C spec.
	if allZero(traceID) {
		traceID[len(traceID)-1] = 0x01
	}
	if allZero(spanID) {
		spanID[len(spanID)-1] = 0x01
	}
	return "00-" + hex.EncodeToString(traceID) + "-" + hex.EncodeToString(spanID) + "-01"
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Propagator decides which trace headers an outgoing request carries.
type Propagator struct {
	// IDHeader names the request-id header; empty disables request-id propagation.
	IDHeader string
	// W3C enables traceparent/tracestate propagation.
	W3C bool
	// NewID generates a request id when the context carries none (default: uuid).
	NewID func() string
}

// Bind fixes the request id and traceparent for one logical call by storing them
// in the returned context, so every attempt made with it carries the same values.
// Values already present in ctx are kept.
func (p Propagator) Bind(ctx context.Context) context.Context {
	if p.IDHeader != "" {
		if _, ok := IDFromContext(ctx); !ok {
			ctx = WithTraceID(ctx, p.requestID(ctx))
		}
	}
	if p.W3C {
		if _, ok := ParentFromContext(ctx); !ok {
			ctx = WithTraceParent(ctx, GenerateTraceParent())
		}
	}
	return ctx
}

// Inject adds trace headers missing from h and returns the request id in effect.
// Headers already present (in any letter case) are never overwritten; added
// headers use canonical keys.
func (p Propagator) Inject(ctx context.Context, h http.Header) string {
	var requestID string
	if p.IDHeader != "" {
		if existing, ok := headers.Lookup(h, p.IDHeader); ok {
			requestID = existing
		} else {
			requestID = p.requestID(ctx)
			h.Set(p.IDHeader, requestID)
		}
	}

	if !p.W3C {
		return requestID
	}
	if _, ok := headers.Lookup(h, HeaderTraceParent); !ok {
		tp, found := ParentFromContext(ctx)
		if !found {
			tp = GenerateTraceParent()
		}
		h.Set(HeaderTraceParent, tp)
	}
	if _, ok := headers.Lookup(h, HeaderTraceState); !ok {
		if ts, found := StateFromContext(ctx); found {
			h.Set(HeaderTraceState, ts)
		}
	}
	return requestID
}

func (p Propagator) requestID(ctx context.Context) string {
	if id, ok := IDFromContext(ctx); ok {
		return id
	}
	if p.NewID != nil {
		if id := p.NewID(); id != "" {
			return id
		}
	}
	return uuid.New().String()
}
