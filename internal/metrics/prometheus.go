package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "achalasia"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Analysis metrics
	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by extraction outcome",
		},
		[]string{"outcome"},
	)

	analysisFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_failures_total",
			Help:      "Failed analysis requests by error kind",
		},
		[]string{"kind"},
	)

	analysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Latency of the upstream model call",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider"},
	)

	invariantViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_violations_total",
			Help:      "Contract violations found in parsed results, by field",
		},
		[]string{"field"},
	)

	// Report metrics
	reportsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rendered_total",
			Help:      "Total number of rendered reports",
		},
	)

	reportPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_pages",
			Help:      "Pages per rendered report",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12},
		},
	)

	reportsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Report uploads by storage driver and status",
		},
		[]string{"driver", "status"},
	)
)

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func IncInFlight() { httpRequestsInFlight.Inc() }

func DecInFlight() { httpRequestsInFlight.Dec() }

func RecordAnalysis(provider, outcome string, duration time.Duration) {
	analysesTotal.WithLabelValues(outcome).Inc()
	analysisDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func RecordAnalysisFailure(kind string) {
	analysisFailures.WithLabelValues(kind).Inc()
}

func RecordViolation(field string) {
	invariantViolations.WithLabelValues(field).Inc()
}

func RecordReport(pages int) {
	reportsRendered.Inc()
	reportPages.Observe(float64(pages))
}

func RecordPublish(driver string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	reportsPublished.WithLabelValues(driver, status).Inc()
}
