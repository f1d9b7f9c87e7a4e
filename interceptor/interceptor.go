// Package interceptor provides the ordered hook chain run around every request attempt.
package interceptor

import (
	"context"
	"net/http"
	"reflect"
	"slices"
	"sync"
)

// Interceptor observes or rewrites requests and responses and is told about failed attempts.
// Returning a nil request or response keeps the previous value.
type Interceptor interface {
	OnRequest(ctx context.Context, req *http.Request) (*http.Request, error)
	OnResponse(ctx context.Context, resp *http.Response) (*http.Response, error)
	OnError(ctx context.Context, err error) error
}

// RequestFunc rewrites an outgoing request.
type RequestFunc func(ctx context.Context, req *http.Request) (*http.Request, error)

// ResponseFunc rewrites an incoming response.
type ResponseFunc func(ctx context.Context, resp *http.Response) (*http.Response, error)

// ErrorFunc observes an attempt failure.
type ErrorFunc func(ctx context.Context, err error) error

// Funcs adapts any subset of hook functions to Interceptor. Nil hooks pass through.
type Funcs struct {
	Request  RequestFunc
	Response ResponseFunc
	Error    ErrorFunc
}

func (f *Funcs) OnRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	if f.Request == nil {
		return req, nil
	}
	return f.Request(ctx, req)
}

func (f *Funcs) OnResponse(ctx context.Context, resp *http.Response) (*http.Response, error) {
	if f.Response == nil {
		return resp, nil
	}
	return f.Response(ctx, resp)
}

func (f *Funcs) OnError(ctx context.Context, err error) error {
	if f.Error == nil {
		return nil
	}
	return f.Error(ctx, err)
}

// Chain is an ordered list of interceptors. Runs iterate over a snapshot, so
// concurrent calls are safe; changing the chain while calls are in flight is not supported.
type Chain struct {
	mu    sync.RWMutex
	items []Interceptor
}

// NewChain returns a chain holding the non-nil interceptors in order.
func NewChain(items ...Interceptor) *Chain {
	c := &Chain{}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

// Add appends it. Nil is ignored.
func (c *Chain) Add(it Interceptor) {
	if it == nil {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, it)
	c.mu.Unlock()
}

// Remove drops the first registration identical to it and reports whether one was found.
func (c *Chain) Remove(it Interceptor) bool {
	if it == nil || !reflect.TypeOf(it).Comparable() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.items {
		if reflect.TypeOf(existing).Comparable() && existing == it {
			c.items = slices.Delete(c.items, i, i+1)
			return true
		}
	}
	return false
}

func (c *Chain) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Interceptors returns a copy of the registered interceptors.
func (c *Chain) Interceptors() []Interceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// RunOnRequest folds req through every interceptor in registration order.
// The first error stops the fold; the request built so far is returned with it.
func (c *Chain) RunOnRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	for _, it := range c.Interceptors() {
		next, err := it.OnRequest(ctx, req)
		if next != nil {
			req = next
		}
		if err != nil {
			return req, err
		}
	}
	return req, nil
}

// RunOnResponse folds resp through every interceptor in registration order.
func (c *Chain) RunOnResponse(ctx context.Context, resp *http.Response) (*http.Response, error) {
	for _, it := range c.Interceptors() {
		next, err := it.OnResponse(ctx, resp)
		if next != nil {
			resp = next
		}
		if err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// RunOnError notifies every interceptor of err in order. An interceptor that
// returns an error stops the notification and that error is returned.
func (c *Chain) RunOnError(ctx context.Context, err error) error {
	for _, it := range c.Interceptors() {
		if hookErr := it.OnError(ctx, err); hookErr != nil {
			return hookErr
		}
	}
	return nil
}
