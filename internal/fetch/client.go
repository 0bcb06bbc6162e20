package fetch

import (
	"log/slog"
	"net/http"
	"time"
)

// Client issues rate-limited, retried GET requests against one API base URL.
type Client struct {
	baseURL    string
	apiKey     string
	class      string
	httpClient *http.Client
	limiter    *Limiter
	logger     *slog.Logger

	attempts int
	backoff  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// NewClient creates a client for the given base URL and client class.
// The class names this client in the rate limiter and in logs; by convention
// it is the source name ("vlr", "grid"). An empty apiKey disables auth.
func NewClient(baseURL, apiKey, class string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		class:   class,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:  NewLimiter(nil),
		logger:   slog.Default(),
		attempts: 3,
		backoff:  1500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the total attempt count and the base backoff.
// The delay before attempt n+1 is backoff * n (linear).
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// WithLimiter sets the shared rate limiter.
func WithLimiter(l *Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}
