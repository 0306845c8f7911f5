package httpclient

import "time"

//go:generate mockgen -package=mock -source=interfaces.go -destination=mock/interfaces.go

// Logger defines the interface for logging operations
// This allows users to plug in their own logger (zap, logrus, etc.)
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MetricsRecorder defines the interface for recording client metrics
// Users can implement this to integrate with their metrics system (Prometheus, etc.)
type MetricsRecorder interface {
	RecordRequest(operation, status string)
	RecordRetry(operation string)
	RecordDuration(operation string, d time.Duration)
	RecordDownloadBytes(n int64)
}

// ResponseCache stores raw JSON response bodies keyed by URL.
// Implementations live in the respcache package.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, val []byte, ttl time.Duration)
}

// NoopLogger is a no-operation logger that discards all log messages
type NoopLogger struct{}

func (NoopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (NoopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (NoopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (NoopLogger) Error(msg string, keysAndValues ...interface{}) {}

// NoopMetrics is a no-operation metrics recorder that discards all metrics
type NoopMetrics struct{}

func (NoopMetrics) RecordRequest(operation, status string)           {}
func (NoopMetrics) RecordRetry(operation string)                     {}
func (NoopMetrics) RecordDuration(operation string, d time.Duration) {}
func (NoopMetrics) RecordDownloadBytes(n int64)                      {}
