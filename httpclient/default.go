package httpclient

import (
	"sync"

	"github.com/gaborage/go-rest/logger"
)

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// Default returns the process-wide client, created on first use with
// config.Default and a warn-level logger. Closing it disables it for the rest
// of the process; callers that need different settings should build their own.
func Default() *Client {
	defaultClientOnce.Do(func() {
		defaultClient = New(logger.New("warn", false))
	})
	return defaultClient
}
