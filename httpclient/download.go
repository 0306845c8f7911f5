package httpclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// maxErrorBodySize caps how much of an error response body is read for
// the failure message
const maxErrorBodySize = 64 * 1024

// DownloadParams are the optional inputs for Download
type DownloadParams struct {
	Path      string            // explicit destination; derived from the response when empty
	Overwrite bool              // refetch even if the destination exists
	Headers   map[string]string // base headers, merged with API key injection
}

// DownloadResult is the outcome of a download attempt. Success implies
// FilePath is set; failure implies Error is set. Never both.
type DownloadResult struct {
	Success  bool
	FilePath string
	Error    string
}

// Download streams the response body for url to local storage and
// returns the outcome. It never returns an error: all failure paths are
// classified, logged and reported through the result. Downloads are
// single-attempt; there is no retry and no partial-file cleanup.
func (c *Client) Download(ctx context.Context, rawURL string, params DownloadParams) DownloadResult {
	if rawURL == "" {
		msg := "empty URL provided"
		c.logger.Error(msg)
		return DownloadResult{Error: msg}
	}

	// Existing explicit destination is treated as completion evidence:
	// no network call, no content verification.
	if params.Path != "" && !params.Overwrite {
		if _, err := os.Stat(params.Path); err == nil {
			c.metrics.RecordRequest("download", "cached")
			return DownloadResult{Success: true, FilePath: params.Path}
		}
	}

	start := time.Now()
	filePath, written, err := c.fetchToFile(ctx, rawURL, params)
	if err != nil {
		_, msg := classifyError(err, rawURL)
		c.logger.Error(msg)
		c.metrics.RecordRequest("download", "error")
		return DownloadResult{Error: msg}
	}

	c.metrics.RecordRequest("download", "success")
	c.metrics.RecordDuration("download", time.Since(start))
	c.metrics.RecordDownloadBytes(written)
	c.logger.Debug("downloaded file", "url", rawURL, "path", filePath, "bytes", written)
	return DownloadResult{Success: true, FilePath: filePath}
}

// fetchToFile performs the GET and streams the body to the resolved
// destination in fixed-size chunks. The response body and file handle
// are released on every path.
func (c *Client) fetchToFile(ctx context.Context, rawURL string, params DownloadParams) (string, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	for k, v := range c.headersFor(rawURL, params.Headers) {
		req.Header.Set(k, v)
	}

	if err := c.waitForLimiter(req); err != nil {
		return "", 0, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", 0, &statusError{Code: resp.StatusCode, Body: body}
	}

	filePath := params.Path
	if filePath == "" {
		filePath = filepath.Join(c.opts.DownloadsDir, resolveFilename(resp, rawURL))
		// Derived paths can only be checked once the response headers
		// are known; the body is left unread on a hit.
		if !params.Overwrite {
			if _, err := os.Stat(filePath); err == nil {
				return filePath, 0, nil
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", 0, err
	}

	f, err := os.Create(filePath)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	// Media files can be large; stream in chunks instead of buffering
	// the whole body. A failure mid-stream leaves the partial file in
	// place; overwrite=true is the refetch mechanism. The file is
	// wrapped to hide its ReadFrom, which would make io.CopyBuffer
	// ignore the buffer and pick its own size.
	written, err := io.CopyBuffer(struct{ io.Writer }{f}, resp.Body, make([]byte, DefaultChunkSize))
	if err != nil {
		return "", 0, err
	}

	return filePath, written, nil
}

// resolveFilename derives a filename from the Content-Disposition
// header, falling back to the URL's last path segment, then to a random
// name
func resolveFilename(resp *http.Response, rawURL string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, cdParams, err := mime.ParseMediaType(cd); err == nil {
			if name := cdParams["filename"]; name != "" {
				if decoded, err := url.PathUnescape(name); err == nil {
					name = decoded
				}
				// Strip any directory components a hostile server sends
				if base := filepath.Base(name); base != "." && base != string(filepath.Separator) {
					return base
				}
			}
		}
	}

	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" {
			return base
		}
	}

	return uuid.New().String()
}
