// Package metrics exposes prometheus instrumentation for the workflow
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors published on /metrics
type Metrics struct {
	TransactionsCreated prometheus.Counter
	SessionsCreated     prometheus.Counter
	SessionsCompleted   prometheus.Counter
	SessionsFailed      prometheus.Counter

	Transitions         *prometheus.CounterVec
	RejectedTransitions *prometheus.CounterVec
}

// New registers the workflow collectors on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "notary",
			Name:      "transactions_created_total",
			Help:      "Transactions created at the point of sale.",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "notary",
			Name:      "sessions_created_total",
			Help:      "Sessions created on payment confirmation.",
		}),
		SessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "notary",
			Name:      "sessions_completed_total",
			Help:      "Sessions that reached the completed state.",
		}),
		SessionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "notary",
			Name:      "sessions_failed_total",
			Help:      "Sessions force-transitioned to failed.",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notary",
			Name:      "session_transitions_total",
			Help:      "Applied session state transitions.",
		}, []string{"from", "to", "trigger"}),
		RejectedTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notary",
			Name:      "session_transitions_rejected_total",
			Help:      "Transition attempts rejected by the state machine.",
		}, []string{"status", "trigger"}),
	}
}
