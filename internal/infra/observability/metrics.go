package observability

import (
	"time"

	"github.com/denkfield/msl-calllog-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the call log service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	recordsLogged   *prometheus.CounterVec
	seedFallbacks   prometheus.Counter
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calllog_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calllog_store_errors_total",
				Help: "Total errors from the document store.",
			},
			[]string{"store"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calllog_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calllog_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		recordsLogged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calllog_records_logged_total",
				Help: "Total call/plan records appended.",
			},
			[]string{"kind"},
		),
		seedFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "calllog_seed_fallbacks_total",
				Help: "Config reads answered from the fixed seed because the store was unreachable.",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calllog_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the store error counter.
func (m *Metrics) IncrStoreError(store string) {
	m.storeErrors.WithLabelValues(store).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRecordLogged counts an appended record ("call" or "plan").
func (m *Metrics) IncrRecordLogged(kind string) {
	m.recordsLogged.WithLabelValues(kind).Inc()
}

// IncrSeedFallback counts a degrade-to-seed config read.
func (m *Metrics) IncrSeedFallback() {
	m.seedFallbacks.Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetUsageSnapshot returns a snapshot of service counters suitable for
// the GET /v1/metrics/usage endpoint.
func (m *Metrics) GetUsageSnapshot() *domain.UsageMetrics {
	// Prometheus counters expose cumulative values. The request counter is
	// labelled by status class; 4xx and 5xx both count as errors.
	success := getCounterValue(m.requestsTotal, "2xx")
	clientErrors := getCounterValue(m.requestsTotal, "4xx")
	serverErrors := getCounterValue(m.requestsTotal, "5xx")
	totalRequests := success + clientErrors + serverErrors
	errorCount := clientErrors + serverErrors
	callsLogged := getCounterValue(m.recordsLogged, "call")
	plansLogged := getCounterValue(m.recordsLogged, "plan")
	cacheHits := getCounterValue(m.cacheHits, "config")
	cacheMisses := getCounterValue(m.cacheMisses, "config")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.UsageMetrics{
		TotalRequests: int64(totalRequests),
		ErrorRate:     errorRate,
		CallsLogged:   int64(callsLogged),
		PlansLogged:   int64(plansLogged),
		CacheHitRate:  cacheHitRate,
		SeedFallbacks: int64(counterValue(m.seedFallbacks)),
		Period:        "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return counterValue(cv.WithLabelValues(label))
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
