package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flightdeals"

type Metrics struct {
	UpstreamRequests    *prometheus.CounterVec
	UpstreamLatency     *prometheus.HistogramVec
	RateLimitWait       *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
	MissingPrices       *prometheus.CounterVec
	SearchTasks         *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	DealsReturned       *prometheus.HistogramVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	Registry            *prometheus.Registry
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream flight API calls by outcome",
		}, []string{"upstream", "outcome"}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream flight API calls",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"upstream"}),
		RateLimitWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ratelimit_wait_seconds",
			Help:      "Time spent waiting for an upstream token",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"upstream"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Upstream payload cache lookups by result",
		}, []string{"upstream", "result"}),
		MissingPrices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_prices_total",
			Help:      "Itineraries accepted with a missing or zero price",
		}, []string{"route"}),
		SearchTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_tasks_total",
			Help:      "Search tasks by route and outcome",
		}, []string{"route", "outcome"}),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of a whole search",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"route"}),
		DealsReturned: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deals_returned",
			Help:      "Deals in the completion event",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"route"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		Registry: reg,
	}

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamLatency,
		m.RateLimitWait,
		m.CacheLookups,
		m.MissingPrices,
		m.SearchTasks,
		m.SearchDuration,
		m.DealsReturned,
		m.HTTPRequestDuration,
		m.HTTPRequestsTotal,
	)

	return m
}

// Outcomes for UpstreamRequests.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeCache = "cache"
)

// Outcomes for SearchTasks.
const (
	TaskDeal   = "deal"
	TaskEmpty  = "empty"
	TaskFailed = "failed"
)

func (m *Metrics) ObserveUpstream(upstream, outcome string, elapsed time.Duration) {
	m.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
	if outcome != OutcomeCache {
		m.UpstreamLatency.WithLabelValues(upstream).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ObserveRateLimitWait(upstream string, waited time.Duration) {
	m.RateLimitWait.WithLabelValues(upstream).Observe(waited.Seconds())
}

func (m *Metrics) IncCacheLookup(upstream string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(upstream, result).Inc()
}

func (m *Metrics) IncMissingPrice(route string) {
	m.MissingPrices.WithLabelValues(route).Inc()
}

func (m *Metrics) IncTask(route, outcome string) {
	m.SearchTasks.WithLabelValues(route, outcome).Inc()
}

func (m *Metrics) ObserveSearch(route string, elapsed time.Duration, deals int) {
	m.SearchDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	m.DealsReturned.WithLabelValues(route).Observe(float64(deals))
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
