package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/zenaku555usm/fetchkit/httpclient/mock"
)

// mockTransport is a mock http.RoundTripper for testing custom behavior
type mockTransport struct {
	roundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.roundTripFunc(req)
}

func TestRequestJSON_Success(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		_, _ = w.Write([]byte(`{"result": 42}`))
	}))
	defer server.Close()

	client := New(DefaultOptions())
	result := client.RequestJSON(context.Background(), server.URL, RequestParams{})

	if result == nil {
		t.Fatal("expected decoded result")
	}
	if result["result"] != float64(42) {
		t.Errorf("expected result 42, got %v", result["result"])
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRequestJSON_EmptyURL(t *testing.T) {
	client := New(DefaultOptions())
	client.httpClient.Transport = &failingTransport{t: t}

	result := client.RequestJSON(context.Background(), "", RequestParams{})
	if result != nil {
		t.Errorf("expected nil result for empty URL, got %v", result)
	}
}

func TestRequestJSON_RetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"upstream exploded"}`))
	}))
	defer server.Close()

	client := New(DefaultOptions())
	start := time.Now()
	result := client.RequestJSON(context.Background(), server.URL, RequestParams{
		MaxRetries: 3,
		Backoff:    20 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if result != nil {
		t.Errorf("expected nil result after exhausted retries, got %v", result)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	// Sleeps of 20ms and 40ms sit between the three attempts
	if elapsed < 60*time.Millisecond {
		t.Errorf("expected backoff delays totalling at least 60ms, elapsed %v", elapsed)
	}
}

func TestRequestJSON_RetryLogging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"upstream exploded"}`))
	}))
	defer server.Close()

	ctrl := gomock.NewController(t)
	logger := mock.NewMockLogger(ctrl)
	// Non-final attempts warn, the final one errors
	logger.EXPECT().Warn(gomock.Any()).Times(2)
	logger.EXPECT().Error(gomock.Any()).Times(1)

	client := New(DefaultOptions(), WithLogger(logger))
	result := client.RequestJSON(context.Background(), server.URL, RequestParams{
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	})

	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestRequestJSON_InvalidJSONNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		_, _ = w.Write([]byte(`{not json at all`))
	}))
	defer server.Close()

	client := New(DefaultOptions())
	result := client.RequestJSON(context.Background(), server.URL, RequestParams{
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	})

	if result != nil {
		t.Errorf("expected nil result for malformed JSON, got %v", result)
	}
	if attempts != 1 {
		t.Errorf("expected no retries for malformed JSON, got %d attempts", attempts)
	}
}

func TestRequestJSON_TransportErrorRetried(t *testing.T) {
	attempts := 0
	client := New(DefaultOptions())
	client.httpClient.Transport = &mockTransport{
		roundTripFunc: func(req *http.Request) (*http.Response, error) {
			attempts++
			return nil, &tempNetError{}
		},
	}

	result := client.RequestJSON(context.Background(), "http://api.example.com/v1/track", RequestParams{
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	})

	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts for transport errors, got %d", attempts)
	}
}

func TestRequestJSON_HeadersOnEveryAttempt(t *testing.T) {
	opts := DefaultOptions()
	opts.APIBaseURL = "http://api.example.com"
	opts.APIKey = "secret"

	attempts := 0
	client := New(opts)
	client.httpClient.Transport = &mockTransport{
		roundTripFunc: func(req *http.Request) (*http.Response, error) {
			attempts++
			if got := req.Header.Get(APIKeyHeader); got != "secret" {
				t.Errorf("attempt %d: expected API key header, got %q", attempts, got)
			}
			if got := req.Header.Get("Accept"); got != "application/json" {
				t.Errorf("attempt %d: expected caller header, got %q", attempts, got)
			}
			return nil, &tempNetError{}
		},
	}

	client.RequestJSON(context.Background(), "http://api.example.com/v1/track", RequestParams{
		Headers:    map[string]string{"Accept": "application/json"},
		MaxRetries: 3,
		Backoff:    time.Millisecond,
	})

	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

// tempNetError implements net.Error for transport failure tests
type tempNetError struct{}

func (*tempNetError) Error() string   { return "connection reset by peer" }
func (*tempNetError) Timeout() bool   { return false }
func (*tempNetError) Temporary() bool { return true }

func TestRequestJSON_StatusErrorMessageExtraction(t *testing.T) {
	t.Run("structured error field", func(t *testing.T) {
		se := &statusError{Code: 503, Body: []byte(`{"error":"try later"}`)}
		msg := statusErrorMessage(se, "http://api.example.com/x")

		expected := "API error 503 for http://api.example.com/x: try later"
		if msg != expected {
			t.Errorf("expected %q, got %q", expected, msg)
		}
	})

	t.Run("non-JSON body falls back to raw text", func(t *testing.T) {
		se := &statusError{Code: 500, Body: []byte("plain text failure")}
		msg := statusErrorMessage(se, "http://api.example.com/x")

		expected := "HTTP error 500 for http://api.example.com/x. Body: plain text failure"
		if msg != expected {
			t.Errorf("expected %q, got %q", expected, msg)
		}
	})

	t.Run("JSON body without error field falls back to raw text", func(t *testing.T) {
		se := &statusError{Code: 400, Body: []byte(`{"detail":"nope"}`)}
		msg := statusErrorMessage(se, "http://api.example.com/x")

		expected := `HTTP error 400 for http://api.example.com/x. Body: {"detail":"nope"}`
		if msg != expected {
			t.Errorf("expected %q, got %q", expected, msg)
		}
	})
}

func TestRequestJSON_ResponseCache(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		_, _ = w.Write([]byte(`{"result": 42}`))
	}))
	defer server.Close()

	ctrl := gomock.NewController(t)
	cache := mock.NewMockResponseCache(ctrl)

	t.Run("miss fetches and stores", func(t *testing.T) {
		cache.EXPECT().Get(server.URL).Return(nil, false)
		cache.EXPECT().Set(server.URL, []byte(`{"result": 42}`), time.Minute)

		client := New(DefaultOptions(), WithResponseCache(cache, time.Minute))
		result := client.RequestJSON(context.Background(), server.URL, RequestParams{})

		if result == nil || result["result"] != float64(42) {
			t.Errorf("expected decoded result, got %v", result)
		}
		if attempts != 1 {
			t.Errorf("expected 1 network call, got %d", attempts)
		}
	})

	t.Run("hit skips the network", func(t *testing.T) {
		cache.EXPECT().Get(server.URL).Return([]byte(`{"result": 7}`), true)

		client := New(DefaultOptions(), WithResponseCache(cache, time.Minute))
		result := client.RequestJSON(context.Background(), server.URL, RequestParams{})

		if result == nil || result["result"] != float64(7) {
			t.Errorf("expected cached result, got %v", result)
		}
		if attempts != 1 {
			t.Errorf("expected no additional network call, got %d total", attempts)
		}
	})
}

func TestRequestJSON_MetricsRecorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	ctrl := gomock.NewController(t)
	metrics := mock.NewMockMetricsRecorder(ctrl)
	metrics.EXPECT().RecordRequest("request", "success")
	metrics.EXPECT().RecordDuration("request", gomock.Any())

	client := New(DefaultOptions(), WithMetrics(metrics))
	result := client.RequestJSON(context.Background(), server.URL, RequestParams{})

	if result == nil {
		t.Fatal("expected decoded result")
	}
}
