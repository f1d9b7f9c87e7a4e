// Package httpclient is a typed REST client with an interceptor chain,
// content negotiation and retry with backoff.
//
// Calls
//   - Typed: Get[T], Post[T], ... return *Response[T] with the body decoded into T.
//   - Raw text: (*Client).Get, Post, ... return the body as a string.
//   - Dispatch[T] takes a RequestOptions value with a method name and per-call overrides.
//   - NewRequest[T] starts a fluent RequestBuilder.
//
// Retries
//   - Controlled via Builder.WithRetries(maxRetries, retryDelay) or config.Client.
//   - Only transport failures, timeouts and interceptor hook failures are retried.
//   - Non-2xx responses are never retried; they come back with IsSuccess false.
//   - When retries run out the envelope has status 500 and Err set; no error is returned.
//
// Backoff Strategy
//   - Exponential: delay after failed attempt n is retryDelay * 2^(n-1), without a cap.
//   - Constant when exponential backoff is disabled.
//
// Notes
//   - The body is encoded once and replayed; the request is rebuilt on every attempt.
//   - Timeout bounds each attempt, including reading the response body.
//   - Default headers are overlaid by call headers; names compare case-insensitively.
package httpclient
