// Package metrics defines the Prometheus collectors exported by the service.
//
// Every collector set tolerates a nil receiver so components can run without
// metrics in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quill"

// Cache operation and result label values.
const (
	CacheOpGet = "get"
	CacheOpPut = "put"

	CacheResultHit   = "hit"
	CacheResultMiss  = "miss"
	CacheResultOK    = "ok"
	CacheResultError = "error"
)

// Token issuance source label values.
const (
	SourceCache  = "cache"
	SourceMinted = "minted"
)

// Metrics bundles every collector set the service registers.
type Metrics struct {
	Pool  *PoolMetrics
	Cache *CacheMetrics
	Auth  *AuthMetrics
	HTTP  *HTTPMetrics
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Pool: &PoolMetrics{
			queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_queue_depth",
				Help:      "Messages waiting in a worker pool mailbox",
			}, []string{"pool"}),
			busyWorkers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_busy_workers",
				Help:      "Workers currently handling a message",
			}, []string{"pool"}),
			size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_size",
				Help:      "Configured number of workers",
			}, []string{"pool"}),
			handled: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pool_messages_handled_total",
				Help:      "Messages handled by a worker pool",
			}, []string{"pool", "message", "outcome"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pool_message_duration_seconds",
				Help:      "Time a worker spent on one message",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			}, []string{"pool", "message"}),
		},
		Cache: &CacheMetrics{
			ops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_cache_ops_total",
				Help:      "Token cache operations by outcome",
			}, []string{"op", "result"}),
		},
		Auth: &AuthMetrics{
			issued: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_issued_total",
				Help:      "Tokens returned to callers by issuance mode and source",
			}, []string{"mode", "source"}),
			mode: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "auth_mode",
				Help:      "Token issuance mode chosen at startup: 0 direct, 1 cached",
			}),
		},
		HTTP: &HTTPMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			}, []string{"method", "path", "status"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request latency",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			}, []string{"method", "path"}),
		},
	}

	reg.MustRegister(
		m.Pool.queueDepth, m.Pool.busyWorkers, m.Pool.size, m.Pool.handled, m.Pool.duration,
		m.Cache.ops,
		m.Auth.issued, m.Auth.mode,
		m.HTTP.requests, m.HTTP.duration,
	)
	return m
}

// PoolMetrics tracks worker pool load.
type PoolMetrics struct {
	queueDepth  *prometheus.GaugeVec
	busyWorkers *prometheus.GaugeVec
	size        *prometheus.GaugeVec
	handled     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// SetSize records the worker count of pool.
func (m *PoolMetrics) SetSize(pool string, n int) {
	if m == nil {
		return
	}
	m.size.WithLabelValues(pool).Set(float64(n))
}

// SetQueueDepth records the current mailbox length of pool.
func (m *PoolMetrics) SetQueueDepth(pool string, n int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(pool).Set(float64(n))
}

// WorkerBusy adjusts the busy worker gauge by delta.
func (m *PoolMetrics) WorkerBusy(pool string, delta int) {
	if m == nil {
		return
	}
	m.busyWorkers.WithLabelValues(pool).Add(float64(delta))
}

// Handled records one finished message.
func (m *PoolMetrics) Handled(pool, message, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.handled.WithLabelValues(pool, message, outcome).Inc()
	m.duration.WithLabelValues(pool, message).Observe(elapsed.Seconds())
}

// CacheMetrics counts token cache operations.
type CacheMetrics struct {
	ops *prometheus.CounterVec
}

// Observe counts one cache operation.
func (m *CacheMetrics) Observe(op, result string) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, result).Inc()
}

// AuthMetrics counts issued tokens.
type AuthMetrics struct {
	issued *prometheus.CounterVec
	mode   prometheus.Gauge
}

// Issued counts one token returned to a caller.
func (m *AuthMetrics) Issued(mode, source string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(mode, source).Inc()
}

// SetCached records whether the cache-backed mode was selected.
func (m *AuthMetrics) SetCached(cached bool) {
	if m == nil {
		return
	}
	if cached {
		m.mode.Set(1)
		return
	}
	m.mode.Set(0)
}
