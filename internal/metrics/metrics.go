package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folderedit",
			Subsystem: "mutation",
			Name:      "total",
			Help:      "Number of finished save/delete workflows by outcome.",
		}, []string{"op", "outcome"},
	)
	mutationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "folderedit",
			Subsystem: "mutation",
			Name:      "duration_seconds",
			Help:      "Time spent waiting on the folder service per mutation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"},
	)
	inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "folderedit",
			Subsystem: "mutation",
			Name:      "in_flight",
			Help:      "Mutations currently waiting on the folder service.",
		},
	)
	appEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folderedit",
			Subsystem: "app",
			Name:      "events_total",
			Help:      "Analytics events tracked by the application.",
		}, []string{"event"},
	)
	storeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folderedit",
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Folder service HTTP requests by method and status code.",
		}, []string{"method", "status"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{mutations, mutationDuration, inFlight, appEvents, storeRequests}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncMutation(op, outcome string) {
	if regOK.Load() {
		mutations.WithLabelValues(op, outcome).Inc()
	}
}

func ObserveMutationDuration(op string, seconds float64) {
	if regOK.Load() {
		mutationDuration.WithLabelValues(op).Observe(seconds)
	}
}

func IncInFlight() {
	if regOK.Load() {
		inFlight.Inc()
	}
}

func DecInFlight() {
	if regOK.Load() {
		inFlight.Dec()
	}
}

func IncAppEvent(event string) {
	if regOK.Load() {
		appEvents.WithLabelValues(event).Inc()
	}
}

func IncStoreRequest(method, status string) {
	if regOK.Load() {
		storeRequests.WithLabelValues(method, status).Inc()
	}
}
