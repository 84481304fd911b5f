package niramoy

import (
	"log/slog"
	"net/http"
	"time"
)

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the Gemini API key explicitly instead of reading it from
// the environment.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL sets the base URL for REST API requests (triage and reports).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithLiveURL sets the websocket endpoint for live sessions.
func WithLiveURL(url string) ClientOption {
	return func(c *Client) {
		c.liveURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithDialTimeout bounds live session connection and setup handshake time.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.dialTimeout = d
	}
}
