package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// errTooManyRedirects is returned by the redirect policy when the chain
// exceeds the configured limit
var errTooManyRedirects = errors.New("too many redirects")

// statusError carries a non-2xx response for classification
type statusError struct {
	Code int
	Body []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP status %d", e.Code)
}

// decodeError marks a 2xx response whose body was not valid JSON.
// Permanent: retrying will not fix a broken payload.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("invalid JSON: %v", e.err)
}

func (e *decodeError) Unwrap() error {
	return e.err
}

// errorKind is the failure taxonomy for both operations
type errorKind int

const (
	kindHTTPStatus errorKind = iota
	kindTooManyRedirects
	kindTransport
	kindInvalidResponse
	kindUnexpected
)

// retryable reports whether the failure is transient. HTTP status
// errors, redirect loops and transport failures retry; a broken JSON
// payload or anything unexpected does not.
func (k errorKind) retryable() bool {
	switch k {
	case kindHTTPStatus, kindTooManyRedirects, kindTransport:
		return true
	default:
		return false
	}
}

// classifyError maps a failed attempt to its taxonomy kind and a
// human-readable message
func classifyError(err error, rawURL string) (errorKind, string) {
	var se *statusError
	var de *decodeError

	switch {
	case errors.As(err, &se):
		return kindHTTPStatus, statusErrorMessage(se, rawURL)
	case errors.As(err, &de):
		return kindInvalidResponse, fmt.Sprintf("invalid JSON response from %s: %v", rawURL, de.err)
	case errors.Is(err, errTooManyRedirects):
		return kindTooManyRedirects, fmt.Sprintf("too many redirects for %s: %v", rawURL, err)
	case errors.Is(err, context.Canceled):
		// Caller gave up; retrying would be pointless
		return kindUnexpected, fmt.Sprintf("request canceled for %s: %v", rawURL, err)
	case isTransportError(err):
		return kindTransport, fmt.Sprintf("request failed for %s: %v", rawURL, err)
	default:
		return kindUnexpected, fmt.Sprintf("unexpected error for %s: %v", rawURL, err)
	}
}

// isTransportError covers connection, DNS and timeout level failures
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// statusErrorMessage extracts a structured API error string from a JSON
// error body when present, otherwise falls back to the raw body text
func statusErrorMessage(se *statusError, rawURL string) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(se.Body, &payload); err == nil {
		if msg, ok := payload["error"].(string); ok && msg != "" {
			return fmt.Sprintf("API error %d for %s: %s", se.Code, rawURL, msg)
		}
	}
	return fmt.Sprintf("HTTP error %d for %s. Body: %s", se.Code, rawURL, string(se.Body))
}
