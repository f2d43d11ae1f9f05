// Package observability holds the Prometheus collectors and tracing setup
// shared by the engine, the cache and the HTTP surface.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the service exports. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	Queries          *prometheus.CounterVec
	ComputeDuration  prometheus.Histogram
	ProviderFailures *prometheus.CounterVec

	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheCoalesced   prometheus.Counter
	CacheEvictions   prometheus.Counter
	CacheCorruptions prometheus.Counter
	CacheEntries     prometheus.Gauge

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice on the same registry returns the
// existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{gatherer: gatherer}
	var err error

	if m.Queries, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsp_queries_total",
		Help: "Sky queries handled, labeled by outcome (ok, invalid, error).",
	}, []string{"outcome"}), "lsp_queries_total"); err != nil {
		return nil, err
	}
	if m.ComputeDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lsp_engine_compute_duration_seconds",
		Help:    "Engine computation latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}), "lsp_engine_compute_duration_seconds"); err != nil {
		return nil, err
	}
	if m.ProviderFailures, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsp_provider_failures_total",
		Help: "Bodies omitted because the ephemeris provider failed, labeled by provider and body.",
	}, []string{"provider", "body"}), "lsp_provider_failures_total"); err != nil {
		return nil, err
	}

	counters := []struct {
		dst  *prometheus.Counter
		name string
		help string
	}{
		{&m.CacheHits, "lsp_cache_hits_total", "Cache lookups answered from a live entry."},
		{&m.CacheMisses, "lsp_cache_misses_total", "Cache lookups that ran a computation."},
		{&m.CacheCoalesced, "lsp_cache_coalesced_total", "Callers that shared an in-flight computation."},
		{&m.CacheEvictions, "lsp_cache_evictions_total", "Entries removed by expiry or the size bound."},
		{&m.CacheCorruptions, "lsp_cache_corruptions_total", "Entries discarded as corrupt."},
	}
	for _, c := range counters {
		if *c.dst, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: c.name,
			Help: c.help,
		}), c.name); err != nil {
			return nil, err
		}
	}

	if m.CacheEntries, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lsp_cache_entries",
		Help: "Current number of cached results.",
	}), "lsp_cache_entries"); err != nil {
		return nil, err
	}

	if m.HTTPRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsp_http_requests_total",
		Help: "HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}), "lsp_http_requests_total"); err != nil {
		return nil, err
	}
	if m.HTTPDurations, err = registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lsp_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route"}), "lsp_http_request_duration_seconds"); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// QueryDone counts one finished query.
func (m *Metrics) QueryDone(outcome string) {
	if m == nil || m.Queries == nil {
		return
	}
	m.Queries.WithLabelValues(outcome).Inc()
}

// ObserveCompute records one engine run.
func (m *Metrics) ObserveCompute(d time.Duration) {
	if m == nil || m.ComputeDuration == nil {
		return
	}
	m.ComputeDuration.Observe(d.Seconds())
}

// ProviderFailure counts a body dropped from a result.
func (m *Metrics) ProviderFailure(provider, body string) {
	if m == nil || m.ProviderFailures == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider, body).Inc()
}

func (m *Metrics) CacheHit() {
	if m != nil && m.CacheHits != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil && m.CacheMisses != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) CacheShared() {
	if m != nil && m.CacheCoalesced != nil {
		m.CacheCoalesced.Inc()
	}
}

func (m *Metrics) CacheEvicted() {
	if m != nil && m.CacheEvictions != nil {
		m.CacheEvictions.Inc()
	}
}

func (m *Metrics) CacheCorrupted() {
	if m != nil && m.CacheCorruptions != nil {
		m.CacheCorruptions.Inc()
	}
}

// SetCacheEntries publishes the current cache size.
func (m *Metrics) SetCacheEntries(n int) {
	if m != nil && m.CacheEntries != nil {
		m.CacheEntries.Set(float64(n))
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if m.HTTPRequests != nil {
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	}
	if m.HTTPDurations != nil {
		m.HTTPDurations.WithLabelValues(route).Observe(d.Seconds())
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
