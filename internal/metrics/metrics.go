// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patisserie/models"
)

const namespace = "patisserie"

var (
	// HTTPRequestsTotal counts served requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ValuationsTotal counts scaled value computations by field and outcome.
	ValuationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuations_total",
			Help:      "Scaled ingredient values computed, by field and outcome",
		},
		[]string{"field", "outcome"},
	)

	// DeletionsTotal counts guarded deletions by entity kind and outcome.
	DeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Guarded deletions, by entity kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

// Outcome classifies err into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrReferentialConflict):
		return "blocked"
	case errors.Is(err, models.ErrMissingReference):
		return "missing_reference"
	case errors.Is(err, models.ErrIncompatibleUnits):
		return "incompatible_units"
	case errors.Is(err, models.ErrCyclicUnitGraph):
		return "cyclic_unit_graph"
	case errors.Is(err, models.ErrCrossTenant):
		return "cross_tenant"
	default:
		return "error"
	}
}

// ObserveValuation records one scaled value computation.
func ObserveValuation(field string, err error) {
	ValuationsTotal.WithLabelValues(field, Outcome(err)).Inc()
}

// ObserveDeletion records one guarded deletion attempt.
func ObserveDeletion(kind string, err error) {
	DeletionsTotal.WithLabelValues(kind, Outcome(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and latency. route maps a request to a
// stable label so that ids in paths do not explode cardinality.
func Middleware(route func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		label := route(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, label, strconv.Itoa(recorder.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, label).Observe(time.Since(start).Seconds())
	})
}
