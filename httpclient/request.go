package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// RequestParams are the optional inputs for RequestJSON. Zero values
// fall back to the client options.
type RequestParams struct {
	Headers    map[string]string
	MaxRetries int
	Backoff    time.Duration
}

// RequestJSON issues a GET request and decodes the JSON response into a
// generic map. Transient failures (HTTP status errors, redirect loops,
// transport errors) retry with exponential backoff up to the attempt
// limit; invalid JSON and unexpected failures stop immediately. All
// failures return nil with the detail in the log stream, never an error.
func (c *Client) RequestJSON(ctx context.Context, rawURL string, params RequestParams) map[string]interface{} {
	if rawURL == "" {
		c.logger.Warn("empty URL provided")
		return nil
	}

	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = c.opts.MaxRetries
	}
	backoff := params.Backoff
	if backoff <= 0 {
		backoff = c.opts.BackoffFactor
	}

	if c.cache != nil {
		if data, ok := c.cache.Get(rawURL); ok {
			var out map[string]interface{}
			if err := json.Unmarshal(data, &out); err == nil {
				c.metrics.RecordRequest("request", "cache_hit")
				c.logger.Debug("request served from cache", "url", rawURL)
				return out
			}
		}
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		headers := c.headersFor(rawURL, params.Headers)
		start := time.Now()
		out, body, err := c.doJSON(ctx, rawURL, headers)
		if err == nil {
			duration := time.Since(start)
			c.metrics.RecordRequest("request", "success")
			c.metrics.RecordDuration("request", duration)
			c.logger.Debug("request succeeded", "url", rawURL, "duration", duration)
			if c.cache != nil {
				c.cache.Set(rawURL, body, c.cacheTTL)
			}
			return out
		}

		kind, msg := classifyError(err, rawURL)
		if !kind.retryable() || attempt == maxRetries-1 {
			c.logger.Error(msg)
			c.metrics.RecordRequest("request", "error")
			return nil
		}

		c.logger.Warn(msg)
		c.metrics.RecordRetry("request")

		select {
		case <-time.After(backoffDuration(backoff, attempt)):
		case <-ctx.Done():
			c.logger.Error(msg)
			c.metrics.RecordRequest("request", "error")
			return nil
		}
	}

	c.logger.Error("all retries failed", "url", rawURL)
	return nil
}

// doJSON performs one GET attempt under the request deadline and decodes
// the body. Failures come back as classifiable errors.
func (c *Client) doJSON(ctx context.Context, rawURL string, headers map[string]string) (map[string]interface{}, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if err := c.waitForLimiter(req); err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &statusError{Code: resp.StatusCode, Body: body}
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, nil, &decodeError{err: err}
	}

	return out, body, nil
}
