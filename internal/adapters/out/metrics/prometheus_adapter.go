package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
)

const namespace = "slot_scheduler"

// PrometheusAdapter implements out.MetricsPort. Metrics live in their own
// registry so several adapters can coexist in one process.
type PrometheusAdapter struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	resyncDuration prometheus.Histogram
	cacheRequests  *prometheus.CounterVec
	mergeAnomalies *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

func NewPrometheusAdapter() *PrometheusAdapter {
	a := &PrometheusAdapter{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Schedule mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		resyncDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resync_duration_seconds",
				Help:      "Time to reload and merge a date after a mutation",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
		),
		cacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_requests_total",
				Help:      "Schedule cache lookups by result",
			},
			[]string{"result"},
		),
		mergeAnomalies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merge_anomalies_total",
				Help:      "Store records ignored by the merge",
			},
			[]string{"kind"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	a.registry.MustRegister(
		a.operations,
		a.resyncDuration,
		a.cacheRequests,
		a.mergeAnomalies,
		a.httpRequests,
		a.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return a
}

func (a *PrometheusAdapter) Registry() *prometheus.Registry {
	return a.registry
}

func (a *PrometheusAdapter) Handler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry})
}

func (a *PrometheusAdapter) ObserveOperation(operation string, err error) {
	a.operations.WithLabelValues(operation, Outcome(err)).Inc()
}

func (a *PrometheusAdapter) ObserveResync(duration time.Duration) {
	a.resyncDuration.Observe(duration.Seconds())
}

func (a *PrometheusAdapter) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	a.cacheRequests.WithLabelValues(result).Inc()
}

func (a *PrometheusAdapter) ObserveMergeAnomaly(kind string) {
	a.mergeAnomalies.WithLabelValues(kind).Inc()
}

func (a *PrometheusAdapter) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	a.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	a.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Outcome maps an operation error onto a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "error"
}
