package monitoring

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geo"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	FetchErrorsTotal    *prometheus.CounterVec
	ProviderFacetsTotal *prometheus.CounterVec
	ReportsTotal        *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the service metrics, plus Go and process collectors,
// on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by letter grade and metrics availability.",
		}, []string{"grade", "metrics"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time from request to aggregated analysis.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),
		FetchErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Page fetch failures by kind.",
		}, []string{"kind"}),
		ProviderFacetsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_facets_total",
			Help:      "Metrics provider facet outcomes.",
		}, []string{"facet", "outcome"}),
		ReportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Report deliveries by status.",
		}, []string{"status"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// AnalysisCompleted implements analyzer.Observer.
func (m *Metrics) AnalysisCompleted(a *analyzer.Analysis, metricsAvailable bool, elapsed time.Duration) {
	m.AnalysesTotal.WithLabelValues(a.Grade, strconv.FormatBool(metricsAvailable)).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
}

// FetchFailed implements analyzer.Observer.
func (m *Metrics) FetchFailed(err error) {
	m.FetchErrorsTotal.WithLabelValues(FetchErrorKind(err)).Inc()
}

// ProviderFacet records one provider facet outcome. Its signature matches
// provider.WithObserver.
func (m *Metrics) ProviderFacet(facet string, ok bool) {
	outcome := "no_data"
	if ok {
		outcome = "ok"
	}
	m.ProviderFacetsTotal.WithLabelValues(facet, outcome).Inc()
}

// ReportSent records a report delivery attempt.
func (m *Metrics) ReportSent(err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.ReportsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
}

// FetchErrorKind maps a fetch error to a low-cardinality label.
func FetchErrorKind(err error) string {
	switch {
	case errors.Is(err, analyzer.ErrDomainNotFound):
		return "domain_not_found"
	case errors.Is(err, analyzer.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, analyzer.ErrPageNotFound):
		return "page_not_found"
	case errors.Is(err, analyzer.ErrTimeout):
		return "timeout"
	case errors.Is(err, analyzer.ErrInvalidURL):
		return "invalid_url"
	default:
		return "other"
	}
}
