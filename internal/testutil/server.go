package testutil

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// NewIPv4Server starts an httptest server bound to 127.0.0.1 and closes it when the test ends.
// The test is skipped when no IPv4 loopback listener can be opened.
func NewIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := newIPv4Server(t, handler)
	server.Start()
	t.Cleanup(server.Close)
	return server
}

// NewIPv4TLSServer is NewIPv4Server with a self-signed TLS certificate.
func NewIPv4TLSServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := newIPv4Server(t, handler)
	server.StartTLS()
	t.Cleanup(server.Close)
	return server
}

func newIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test: unable to bind IPv4 listener: %v", err)
	}

	return &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second},
	}
}
