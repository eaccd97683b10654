package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contentscore"

// Metrics holds the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	analyses     *prometheus.CounterVec
	scores       *prometheus.HistogramVec
	issues       *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// New creates the collectors and registers them on registry. A nil registry
// gets a fresh one with the Go and process collectors.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses run, by kind (seo, aio) and source (inline, url, feed).",
		}, []string{"kind", "source"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_score",
			Help:      "Distribution of analysis scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"kind"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Issues reported, by kind, type and severity.",
		}, []string{"kind", "type", "severity"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Page fetches by result (hit, miss, error).",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
	}

	registry.MustRegister(
		m.analyses, m.scores, m.issues, m.fetches,
		m.httpRequests, m.httpDuration, m.httpInFlight,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IssueLabel is the type/severity pair of one reported issue.
type IssueLabel struct {
	Type     string
	Severity string
}

// ObserveAnalysis records one analysis with its score and issues.
func (m *Metrics) ObserveAnalysis(kind, source string, score int, issues []IssueLabel) {
	m.analyses.WithLabelValues(kind, source).Inc()
	m.scores.WithLabelValues(kind).Observe(float64(score))
	for _, issue := range issues {
		m.issues.WithLabelValues(kind, issue.Type, issue.Severity).Inc()
	}
}

// ObserveFetch records a page fetch result: "hit", "miss" or "error".
func (m *Metrics) ObserveFetch(result string) {
	m.fetches.WithLabelValues(result).Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// InFlight returns the in-flight gauge.
func (m *Metrics) InFlight() prometheus.Gauge {
	return m.httpInFlight
}
