package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KeyValidations counts key validations by outcome ("valid", "not_found", ...,
	// or "error" for store failures).
	KeyValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentauth_key_validations_total",
			Help: "Total number of API key validations by outcome",
		},
		[]string{"outcome"},
	)

	// KeysExpired counts lazy active-to-expired transitions written by validators.
	KeysExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentauth_keys_expired_total",
			Help: "Total number of API keys moved to expired on validation",
		},
	)

	// PresenceUpserts counts heartbeat writes by result ("ok", "rejected", "error").
	PresenceUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentauth_presence_upserts_total",
			Help: "Total number of agent presence heartbeats by result",
		},
		[]string{"result"},
	)

	// PresenceSwept counts presence rows removed by the hygiene sweeper.
	PresenceSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agentauth_presence_swept_total",
			Help: "Total number of expired presence rows purged",
		},
	)
)
