package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the profile search run.
type Metrics struct {
	Registry                *prometheus.Registry
	RequestsTotal           *prometheus.CounterVec
	RequestDuration         prometheus.Histogram
	ProfilesNormalizedTotal prometheus.Counter
	RecordsSkippedTotal     prometheus.Counter
	RetriesTotal            prometheus.Counter
	CacheHitsTotal          prometheus.Counter
	ErrorsTotal             *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapsearch_requests_total",
			Help: "Total HTTP search requests issued.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapsearch_request_duration_seconds",
			Help:    "HTTP search request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	profilesNormalized := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snapsearch_profiles_normalized_total",
			Help: "Total number of profiles normalized across all keywords.",
		},
	)
	recordsSkipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snapsearch_records_skipped_total",
			Help: "Total number of raw records skipped during normalization.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snapsearch_retries_total",
			Help: "Total number of retry attempts issued.",
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snapsearch_cache_hits_total",
			Help: "Total number of keyword payloads served from the cache.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapsearch_errors_total",
			Help: "Total number of search errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, profilesNormalized, recordsSkipped, retries, cacheHits, errorsTotal)

	return &Metrics{
		Registry:                registry,
		RequestsTotal:           requests,
		RequestDuration:         requestDuration,
		ProfilesNormalizedTotal: profilesNormalized,
		RecordsSkippedTotal:     recordsSkipped,
		RetriesTotal:            retries,
		CacheHitsTotal:          cacheHits,
		ErrorsTotal:             errorsTotal,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncProfiles increments the normalized profile counter.
func (m *Metrics) IncProfiles() {
	if m == nil {
		return
	}
	m.ProfilesNormalizedTotal.Inc()
}

// IncSkipped increments the skipped record counter.
func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	m.RecordsSkippedTotal.Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncCacheHit increments the cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
