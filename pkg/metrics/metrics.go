package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitationsSent counts dispatched claim invitations by result (sent|failed).
	InvitationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_invitations_total",
			Help: "Total number of claim invitations attempted",
		},
		[]string{"result"},
	)

	// BatchRuns counts invitation worker invocations by outcome (sending|completed|aborted).
	BatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_batch_runs_total",
			Help: "Total number of invitation batch invocations",
		},
		[]string{"outcome"},
	)

	// EngagementEvents counts delivery-provider engagement callbacks by kind.
	EngagementEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_engagement_events_total",
			Help: "Total number of recorded engagement events",
		},
		[]string{"kind"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outreach_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
