package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEventsTotal counts received billing webhook events by type
	// and processing outcome (processed, ignored, duplicate, failed).
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thrivekit",
		Name:      "billing_webhook_events_total",
		Help:      "Billing webhook events received, by event type and outcome.",
	}, []string{"event_type", "outcome"})

	// CodeGenerationAttempts observes how many candidates were tried
	// before a tenant code was settled.
	CodeGenerationAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "thrivekit",
		Name:      "implementation_code_generation_attempts",
		Help:      "Candidate codes tried per implementation signup.",
		Buckets:   []float64{1, 2, 3, 4},
	})

	// CodeFallbacksTotal counts last-resort high-entropy code fallbacks.
	CodeFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "thrivekit",
		Name:      "implementation_code_fallbacks_total",
		Help:      "Times tenant code generation exhausted retries and fell back.",
	})
)

const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)
