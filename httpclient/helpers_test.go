package httpclient

import (
	"encoding/json"
	"io"
	"maps"
	nethttp "net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gaborage/go-rest/internal/testutil"
	"github.com/gaborage/go-rest/logger"
)

// Test constants to avoid string duplication
const (
	testAPIKey             = testutil.TestAPIKeyHeader
	testContentType        = testutil.TestJSONMediaType
	testRestClientRequest  = "REST client request"
	testRestClientResponse = "REST client response"
)

// echoed is what echoHandler reports back about a request.
type echoed struct {
	Method      string              `json:"method"`
	Path        string              `json:"path"`
	Query       string              `json:"query"`
	Headers     map[string][]string `json:"headers"`
	Body        string              `json:"body"`
	ContentType string              `json:"content_type"`
}

func echoHandler() nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", testContentType)
		_ = json.NewEncoder(w).Encode(echoed{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			Headers:     r.Header,
			Body:        string(body),
			ContentType: r.Header.Get("Content-Type"),
		})
	})
}

// recordingTransport captures every request it is asked to send.
type recordingTransport struct {
	mu       sync.Mutex
	requests []*nethttp.Request
	bodies   []string
	calls    atomic.Int32
	respond  func(req *nethttp.Request) (*nethttp.Response, error)
}

func (rt *recordingTransport) Do(req *nethttp.Request) (*nethttp.Response, error) {
	rt.calls.Add(1)
	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	rt.mu.Lock()
	rt.requests = append(rt.requests, req)
	rt.bodies = append(rt.bodies, body)
	rt.mu.Unlock()
	if rt.respond == nil {
		return textResponse(nethttp.StatusOK, "ok"), nil
	}
	return rt.respond(req)
}

func (rt *recordingTransport) last() *nethttp.Request {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.requests) == 0 {
		return nil
	}
	return rt.requests[len(rt.requests)-1]
}

func textResponse(status int, body string) *nethttp.Response {
	return &nethttp.Response{
		StatusCode: status,
		Status:     nethttp.StatusText(status),
		Header:     nethttp.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// fakeLogEvent implements logger.LogEvent for testing
type fakeLogEvent struct {
	logger *fakeLogger
	level  string
	fields map[string]any
}

func (e *fakeLogEvent) Msg(msg string) {
	e.logger.mu.Lock()
	defer e.logger.mu.Unlock()
	e.logger.events = append(e.logger.events, loggedEvent{
		level:   e.level,
		fields:  maps.Clone(e.fields),
		message: msg,
	})
}

func (e *fakeLogEvent) Msgf(format string, _ ...any) {
	// For testing, we'll just capture the format as the message
	e.Msg(format)
}

func (e *fakeLogEvent) Err(err error) logger.LogEvent {
	e.fields["error"] = err
	return e
}

func (e *fakeLogEvent) Str(key, value string) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Int(key string, value int) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Int64(key string, value int64) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *fakeLogEvent) Dur(key string, d time.Duration) logger.LogEvent {
	e.fields[key] = d
	return e
}

func (e *fakeLogEvent) Interface(key string, i any) logger.LogEvent {
	e.fields[key] = i
	return e
}

func (e *fakeLogEvent) Bytes(key string, val []byte) logger.LogEvent {
	e.fields[key] = val
	return e
}

// fakeLogger implements logger.Logger for testing
type fakeLogger struct {
	mu     sync.Mutex
	events []loggedEvent
}

type loggedEvent struct {
	level   string
	fields  map[string]any
	message string
}

func (l *fakeLogger) event(level string) logger.LogEvent {
	return &fakeLogEvent{logger: l, level: level, fields: make(map[string]any)}
}

func (l *fakeLogger) Info() logger.LogEvent  { return l.event("info") }
func (l *fakeLogger) Error() logger.LogEvent { return l.event("error") }
func (l *fakeLogger) Debug() logger.LogEvent { return l.event("debug") }
func (l *fakeLogger) Warn() logger.LogEvent  { return l.event("warn") }

func (l *fakeLogger) WithFields(_ map[string]any) logger.Logger {
	// For testing, return the same logger
	return l
}

func (l *fakeLogger) eventsByLevel(level string) []loggedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var events []loggedEvent
	for _, event := range l.events {
		if event.level == level {
			events = append(events, event)
		}
	}
	return events
}
