package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation outcomes reported by the decision engine.
const (
	OutcomeBlocked = "blocked"
	OutcomeNormal  = "normal"
	OutcomeAnomaly = "anomaly"
)

var (
	evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirage_evaluations_total",
		Help: "Total number of honeypot interactions evaluated, by outcome",
	}, []string{"outcome"})
	modelFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirage_model_failures_total",
		Help: "Total number of anomaly model inferences that failed and defaulted to normal",
	})
	decoyRegenerationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirage_decoy_regenerations_total",
		Help: "Total number of decoy credential bundle regenerations, by result",
	}, []string{"result"})
	forensicFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirage_forensic_append_failures_total",
		Help: "Total number of forensic log appends that failed",
	})
	storeDegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirage_store_degraded_total",
		Help: "Total number of advisory store lookups that failed and fell back to a default",
	}, []string{"lookup"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry prometheus.Registerer) {
	registry.MustRegister(evaluationsTotal, modelFailuresTotal, decoyRegenerationsTotal, forensicFailuresTotal, storeDegradedTotal)
}

// IncEvaluation increments the evaluation counter for the given outcome.
func IncEvaluation(outcome string) { evaluationsTotal.WithLabelValues(outcome).Inc() }

// IncModelFailure increments the failed inference counter.
func IncModelFailure() { modelFailuresTotal.Inc() }

// IncDecoyRegeneration records a bundle regeneration attempt.
func IncDecoyRegeneration(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	decoyRegenerationsTotal.WithLabelValues(result).Inc()
}

// IncForensicFailure increments the failed append counter.
func IncForensicFailure() { forensicFailuresTotal.Inc() }

// IncStoreDegraded records a failed advisory lookup ("blocklist", "rate").
func IncStoreDegraded(lookup string) { storeDegradedTotal.WithLabelValues(lookup).Inc() }
