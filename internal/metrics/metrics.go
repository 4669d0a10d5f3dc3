package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes reported by the catalog cache.
const (
	OutcomeHit             = "hit"
	OutcomeLive            = "live"
	OutcomeStaleFallback   = "stale_fallback"
	OutcomeDefaultFallback = "default_fallback"
	OutcomeSkipped         = "skipped"
	OutcomeUnsupported     = "unsupported"
)

// UnknownProvider is the provider label used for unsupported provider names,
// keeping label cardinality bounded.
const UnknownProvider = "unknown"

// Recorder receives catalog cache observations.
type Recorder interface {
	ObserveLookup(provider, outcome string)
	ObserveFetch(provider string, elapsed time.Duration, err error)
	HTTPHandler() http.Handler
}

// PrometheusRecorder exports catalog metrics on its own registry.
type PrometheusRecorder struct {
	registry      *prometheus.Registry
	lookups       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder with process and Go collectors registered.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: reg,
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelcatalog",
				Name:      "lookups_total",
				Help:      "Catalog lookups by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modelcatalog",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of live model-list fetches",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"provider"},
		),
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modelcatalog",
				Name:      "fetch_errors_total",
				Help:      "Failed live model-list fetches",
			},
			[]string{"provider"},
		),
	}

	reg.MustRegister(
		r.lookups,
		r.fetchDuration,
		r.fetchErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *PrometheusRecorder) ObserveLookup(provider, outcome string) {
	r.lookups.WithLabelValues(provider, outcome).Inc()
}

func (r *PrometheusRecorder) ObserveFetch(provider string, elapsed time.Duration, err error) {
	r.fetchDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if err != nil {
		r.fetchErrors.WithLabelValues(provider).Inc()
	}
}

// HTTPHandler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// NoopRecorder discards observations.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (NoopRecorder) ObserveLookup(string, string) {}

func (NoopRecorder) ObserveFetch(string, time.Duration, error) {}

func (NoopRecorder) HTTPHandler() http.Handler {
	return http.NotFoundHandler()
}
