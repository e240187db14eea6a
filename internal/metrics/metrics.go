package metrics

import (
	"context"
	"errors"
	"strings"

	"github.com/newthinker/screener/internal/collector"
	"github.com/newthinker/screener/internal/core"
	"github.com/newthinker/screener/internal/screener"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Screening metrics
	recordsScanned  prometheus.Counter
	matchesTotal    *prometheus.CounterVec
	categoryMatches *prometheus.GaugeVec
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	lastRun         prometheus.Gauge
	pagesFetched    *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.recordsScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screener_records_scanned_total",
			Help: "Total number of market records screened",
		},
	)
	r.matchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_matches_total",
			Help: "Total number of category matches",
		},
		[]string{"category", "direction", "qualifier"},
	)
	r.categoryMatches = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "screener_category_matches",
			Help: "Matches per category in the most recent run",
		},
		[]string{"category"},
	)
	r.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_runs_total",
			Help: "Total number of screening runs",
		},
		[]string{"status"},
	)
	r.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screener_run_duration_seconds",
			Help:    "Screening run duration in seconds, fetch included",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
	r.lastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screener_last_run_timestamp_seconds",
			Help: "Unix time of the last successful run",
		},
	)
	r.pagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_pages_fetched_total",
			Help: "Total number of market data pages fetched",
		},
		[]string{"source"},
	)
	r.fetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_fetch_errors_total",
			Help: "Total number of failed page fetches",
		},
		[]string{"source", "reason"},
	)

	reg.MustRegister(r.recordsScanned)
	reg.MustRegister(r.matchesTotal)
	reg.MustRegister(r.categoryMatches)
	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.lastRun)
	reg.MustRegister(r.pagesFetched)
	reg.MustRegister(r.fetchErrors)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordRun records a finished run. A nil error counts as success.
func (r *Registry) RecordRun(err error, duration float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration)
}

// RecordReport records the contents of a successful report.
func (r *Registry) RecordReport(report *screener.Report) {
	r.recordsScanned.Add(float64(report.Scanned))
	r.lastRun.Set(float64(report.GeneratedAt.Unix()))

	for _, g := range report.Groups {
		r.categoryMatches.WithLabelValues(g.Category.Key).Set(float64(len(g.Matches)))
		for _, m := range g.Matches {
			r.matchesTotal.WithLabelValues(
				g.Category.Key, string(g.Category.Direction), m.Qualifier.String(),
			).Inc()
		}
	}
}

// RecordPage records a fetched page.
func (r *Registry) RecordPage(source string) {
	r.pagesFetched.WithLabelValues(source).Inc()
}

// RecordFetchError records a failed page fetch labelled by error code.
func (r *Registry) RecordFetchError(source string, err error) {
	r.fetchErrors.WithLabelValues(source, reason(err)).Inc()
}

// PaginatorHooks returns collector hooks feeding the fetch metrics.
func (r *Registry) PaginatorHooks() collector.Hooks {
	return collector.Hooks{
		OnPage: func(source string, _, _ int) {
			r.RecordPage(source)
		},
		OnError: func(source string, _ int, err error) {
			r.RecordFetchError(source, err)
		},
	}
}

func reason(err error) string {
	var ce *core.Error
	switch {
	case errors.As(err, &ce):
		return strings.ToLower(ce.Code)
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
