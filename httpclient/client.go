package httpclient

import (
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps a shared HTTP transport with download and retrying
// JSON request capabilities. One instance is safe for concurrent use;
// create it once and Close it at shutdown.
type Client struct {
	httpClient *http.Client
	opts       Options
	logger     Logger
	metrics    MetricsRecorder
	cache      ResponseCache
	cacheTTL   time.Duration
	// RateLimiter is an optional callback that returns a rate limiter for
	// the request, or nil to skip limiting
	rateLimiter func(*http.Request) *rate.Limiter
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithLogger sets the logger for the Client
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the Client
func WithMetrics(metrics MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithResponseCache enables caching of successful RequestJSON bodies
func WithResponseCache(cache ResponseCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRateLimiter sets a per-request rate limiter callback
func WithRateLimiter(fn func(*http.Request) *rate.Limiter) Option {
	return func(c *Client) {
		c.rateLimiter = fn
	}
}

// New creates a new Client with the given options
func New(opts Options, clientOpts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.ConnectTimeout,
				}).DialContext,
			},
			CheckRedirect: redirectPolicy(opts.MaxRedirects),
		},
		opts:    opts,
		logger:  NoopLogger{},
		metrics: NoopMetrics{},
	}

	for _, opt := range clientOpts {
		opt(c)
	}

	return c
}

// redirectPolicy builds the CheckRedirect function for the configured limit.
// A limit of zero returns redirect responses as-is instead of following them.
func redirectPolicy(maxRedirects int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if maxRedirects <= 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > maxRedirects {
			return errTooManyRedirects
		}
		return nil
	}
}

// Close releases idle transport resources. Best-effort: problems are
// logged, never returned.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	c.logger.Debug("closed HTTP client")
}

// headersFor copies the caller's base headers and injects the API key
// when the URL is under the configured API base URL. The key is never
// sent to other hosts.
func (c *Client) headersFor(url string, base map[string]string) map[string]string {
	headers := make(map[string]string, len(base)+1)
	for k, v := range base {
		headers[k] = v
	}
	if c.opts.APIBaseURL != "" && strings.HasPrefix(url, c.opts.APIBaseURL) {
		headers[APIKeyHeader] = c.opts.APIKey
	}
	return headers
}

// waitForLimiter blocks on the rate limiter for the request, if any
func (c *Client) waitForLimiter(req *http.Request) error {
	if c.rateLimiter == nil {
		return nil
	}
	limiter := c.rateLimiter(req)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(req.Context())
}
