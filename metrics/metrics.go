package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zenaku555usm/fetchkit/httpclient"
)

const (
	DefaultNamespace = "fetchkit"
	DefaultSubsystem = "http"
)

// Ensure ClientMetrics implements httpclient.MetricsRecorder
var _ httpclient.MetricsRecorder = (*ClientMetrics)(nil)

// Config defines configuration for client metrics
type Config struct {
	Namespace string // e.g., "musicbot", "mediaproxy"
	Subsystem string // default: "http"
}

// ClientMetrics holds all fetch-related Prometheus metrics
type ClientMetrics struct {
	namespace string
	subsystem string

	// Counter metrics
	Requests      *prometheus.CounterVec
	Retries       *prometheus.CounterVec
	DownloadBytes prometheus.Counter

	// Histogram metrics
	Duration *prometheus.HistogramVec
}

// New creates a new ClientMetrics instance with the given configuration
func New(cfg Config) *ClientMetrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = DefaultSubsystem
	}

	m := &ClientMetrics{
		namespace: cfg.Namespace,
		subsystem: cfg.Subsystem,
	}

	m.Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of requests by operation and outcome",
		},
		[]string{"operation", "status"}, // operation: request|download
	)

	m.Retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "retries_total",
			Help:      "Total number of retry attempts",
		},
		[]string{"operation"},
	)

	m.DownloadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "download_bytes_total",
			Help:      "Bytes written to local storage by downloads",
		},
	)

	m.Duration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of successful operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	return m
}

// RecordRequest records an operation outcome
func (m *ClientMetrics) RecordRequest(operation, status string) {
	m.Requests.WithLabelValues(operation, status).Inc()
}

// RecordRetry records a retry attempt
func (m *ClientMetrics) RecordRetry(operation string) {
	m.Retries.WithLabelValues(operation).Inc()
}

// RecordDuration records how long a successful operation took
func (m *ClientMetrics) RecordDuration(operation string, d time.Duration) {
	m.Duration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordDownloadBytes records bytes streamed to disk
func (m *ClientMetrics) RecordDownloadBytes(n int64) {
	if n > 0 {
		m.DownloadBytes.Add(float64(n))
	}
}
