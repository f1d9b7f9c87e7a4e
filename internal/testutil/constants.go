// Package testutil provides shared constants and helpers for the REST client tests.
package testutil

// Error messages reused by transport and retry tests.
const (
	TestError = "test error"

	// TestConnectionRefused mimics the dial error surfaced by net/http.
	TestConnectionRefused = "connection refused"
)

// Header names and values that show up across request tests.
const (
	TestAPIKeyHeader  = "X-API-Key"
	TestJSONMediaType = "application/json"
)
