package client

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithToken authenticates every request with the given session token.
func WithToken(token string) Option {
	return func(c *Client) error {
		if token != "" {
			c.rest.SetAuthToken(token)
		}
		return nil
	}
}

// WithHTTPTimeout bounds the total time spent on a single HTTP request.
// Prefer per-request context deadlines; the value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.rest.SetTimeout(d)
		return nil
	}
}

// WithDebugLogging logs each request and response when enabled. Bodies may
// carry session tokens; do not enable it in production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.rest.SetDebug(enabled)
		return nil
	}
}

// debugLoggingRequested reports whether TIMEWISE_DEBUG asks for debug logging.
func debugLoggingRequested() bool {
	v := strings.ToLower(os.Getenv("TIMEWISE_DEBUG"))
	return v == "1" || v == "true"
}
