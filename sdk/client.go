// Package niramoy provides the Niramoy SDK for Go: a live audio/video
// companion over the Gemini Live websocket API and a symptom triage pipeline
// that matches patients with a specialist persona and produces consultation
// reports.
package niramoy

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/niramoy/niramoy-go/pkg/gemini"
)

// Client is the main entry point for the SDK.
type Client struct {
	Live   *LiveService
	Triage *TriageService

	// Internal
	apiKey      string
	baseURL     string
	liveURL     string
	httpClient  *http.Client
	logger      *slog.Logger
	provider    *gemini.Provider
	dialTimeout time.Duration
}

// NewClient creates a new client. The API key is loaded from GEMINI_API_KEY
// or GOOGLE_API_KEY unless set explicitly. A missing key is logged rather
// than fatal so construction always succeeds; calls will fail with
// authentication errors.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		liveURL:     DefaultLiveURL,
		httpClient:  &http.Client{},
		logger:      slog.Default(),
		dialTimeout: defaultLiveConnectTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("GEMINI_API_KEY")
		if c.apiKey == "" {
			c.apiKey = os.Getenv("GOOGLE_API_KEY")
		}
	}
	if c.apiKey == "" {
		c.logger.Warn("api key is missing; set GEMINI_API_KEY or GOOGLE_API_KEY")
	}

	providerOpts := []gemini.Option{gemini.WithHTTPClient(c.httpClient)}
	if c.baseURL != "" {
		providerOpts = append(providerOpts, gemini.WithBaseURL(c.baseURL))
	}
	c.provider = gemini.New(c.apiKey, providerOpts...)

	c.Live = &LiveService{client: c}
	c.Triage = &TriageService{client: c, generator: c.provider}
	return c
}

// Provider returns the underlying Gemini REST provider.
func (c *Client) Provider() *gemini.Provider {
	return c.provider
}
