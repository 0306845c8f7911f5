package httpclient

import "time"

const (
	// DefaultChunkSize is the copy buffer size for streaming downloads
	DefaultChunkSize = 8192

	// APIKeyHeader is injected for requests whose URL matches APIBaseURL
	APIKeyHeader = "X-API-Key"
)

// Options configures timeouts, redirect policy, retry policy and the
// collaborator values consumed by the client
type Options struct {
	ConnectTimeout  time.Duration // Timeout for establishing connection
	RequestTimeout  time.Duration // Wall-clock deadline for a single JSON request attempt
	DownloadTimeout time.Duration // Wall-clock deadline for a whole download
	MaxRedirects    int           // 0 disables redirect following
	MaxRetries      int           // total attempts for RequestJSON
	BackoffFactor   time.Duration // base delay multiplier for exponential backoff
	DownloadsDir    string        // root for derived download paths
	APIBaseURL      string        // URL prefix that triggers API key injection
	APIKey          string
}

// DefaultOptions returns default client options
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:  120 * time.Second,
		RequestTimeout:  120 * time.Second,
		DownloadTimeout: 120 * time.Second,
		MaxRedirects:    0, // redirects disabled unless explicitly enabled
		MaxRetries:      2,
		BackoffFactor:   time.Second,
		DownloadsDir:    "downloads",
	}
}
