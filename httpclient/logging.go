package httpclient

import (
	nethttp "net/http"
	"strconv"
	"time"
)

// logRequest logs the outgoing request; the payload goes to debug only when enabled
func (c *Client) logRequest(req *nethttp.Request, body []byte, requestID string) {
	logEvent := c.logger.Info().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", requestID)

	if n := len(req.Header); n > 0 {
		logEvent = logEvent.Int("header_count", n)
	}
	if len(body) > 0 {
		logEvent = logEvent.Int("body_size", len(body))
	}
	logEvent.Msg("REST client request")

	if !c.cfg.LogPayloads {
		return
	}
	preview, truncated := c.truncate(body)
	c.logger.Debug().
		Str("direction", "outbound").
		Str("method", req.Method).
		Str("request_id", requestID).
		Interface("headers", req.Header).
		Int("body_size", len(body)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg("REST client request")
}

// logResponse logs the final response of a call
func (c *Client) logResponse(status int, raw string, stats Stats, requestID string) {
	logEvent := c.logger.Info().
		Str("direction", "inbound").
		Int("status", status).
		Dur("elapsed", stats.ElapsedTime).
		Int64("call_count", stats.CallCount).
		Int("attempts", stats.Attempts).
		Str("request_id", requestID)

	if len(raw) > 0 {
		logEvent = logEvent.Int("body_size", len(raw))
	}
	logEvent.Msg("REST client response")

	if !c.cfg.LogPayloads {
		return
	}
	preview, truncated := c.truncate([]byte(raw))
	c.logger.Debug().
		Str("direction", "inbound").
		Int("status", status).
		Str("request_id", requestID).
		Int("body_size", len(raw)).
		Str("body_truncated", strconv.FormatBool(truncated)).
		Bytes("body_preview", preview).
		Msg("REST client response")
}

func (c *Client) logRetry(cl *call, attempt int, delay time.Duration, err error) {
	c.logger.Warn().
		Err(err).
		Str("method", cl.method).
		Str("url", cl.target).
		Str("request_id", cl.requestID).
		Int("attempt", attempt).
		Int("max_attempts", c.policy.MaxAttempts()).
		Dur("delay", delay).
		Msg("REST client attempt failed, retrying")
}

func (c *Client) logFailure(cl *call, stats Stats, err error) {
	c.logger.Error().
		Err(err).
		Str("method", cl.method).
		Str("url", cl.target).
		Str("request_id", cl.requestID).
		Int("attempts", stats.Attempts).
		Dur("elapsed", stats.ElapsedTime).
		Int64("call_count", stats.CallCount).
		Msg("REST client request failed")
}

func (c *Client) truncate(body []byte) ([]byte, bool) {
	limit := c.cfg.MaxPayloadLogBytes
	if limit <= 0 {
		limit = 1024
	}
	if len(body) <= limit {
		return body, false
	}
	return body[:limit], true
}
