package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the submission pipeline
var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_submissions_total",
			Help: "Submissions by pipeline outcome",
		},
		[]string{"outcome"},
	)

	PolicyVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_policy_verdicts_total",
			Help: "Content policy verdicts by kind and reason",
		},
		[]string{"verdict", "reason"},
	)

	AccessDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_access_denied_total",
			Help: "Submissions refused by the access controller",
		},
		[]string{"reason"},
	)

	ModerationDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_moderation_decisions_total",
			Help: "Moderator decision callbacks by result",
		},
		[]string{"result"},
	)

	ModerationPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "onyx_moderation_pending",
			Help: "Tickets waiting for a moderator decision",
		},
	)

	TransportFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onyx_transport_failures_total",
			Help: "Failed outbound calls to the messaging platform",
		},
		[]string{"action"},
	)
)

// Register registers all pipeline metrics with reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(SubmissionsTotal)
	reg.MustRegister(PolicyVerdictsTotal)
	reg.MustRegister(AccessDeniedTotal)
	reg.MustRegister(ModerationDecisionsTotal)
	reg.MustRegister(ModerationPending)
	reg.MustRegister(TransportFailuresTotal)
}
