// Package metrics exposes GateKeeper's operational counters in
// Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts admission decisions, authentication failures, and
// store failures. All methods are safe for concurrent use.
type Recorder struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	authFails *prometheus.CounterVec
	storeErrs prometheus.Counter
}

// NewRecorder registers the GateKeeper metric families on a private
// registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_decisions_total",
		Help: "Admission decisions by outcome.",
	}, []string{"outcome"})

	authFails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_auth_failures_total",
		Help: "Authentication failures by reason.",
	}, []string{"reason"})

	storeErrs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_store_failures_total",
		Help: "Counter or config store failures absorbed by the fail-open policy.",
	})

	registry.MustRegister(decisions, authFails, storeErrs)

	return &Recorder{
		registry:  registry,
		decisions: decisions,
		authFails: authFails,
		storeErrs: storeErrs,
	}
}

// Decision records one admission outcome.
func (r *Recorder) Decision(allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	r.decisions.WithLabelValues(outcome).Inc()
}

// AuthFailure records a failed authentication attempt.
func (r *Recorder) AuthFailure(reason string) {
	r.authFails.WithLabelValues(reason).Inc()
}

// StoreFailure records a store error absorbed by the fail-open policy.
func (r *Recorder) StoreFailure() {
	r.storeErrs.Inc()
}

// Handler serves the registered metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
