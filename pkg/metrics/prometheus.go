package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "astro"

var (
	// ProviderAttempts counts AI provider calls by outcome (success, auth, http, parse, transport).
	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "AI provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderLatency observes the duration of single provider calls.
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of AI provider calls in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
		},
		[]string{"provider"},
	)

	// ProviderTokens counts tokens reported by providers.
	ProviderTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Tokens reported by AI providers",
		},
		[]string{"provider", "kind"},
	)

	// ReportsTotal counts report generations by outcome code ("ok" on success).
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Report generations by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration observes pipeline stage durations.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_stage_duration_seconds",
			Help:      "Duration of report pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

// RecordProviderCall records a provider attempt.
func RecordProviderCall(provider, outcome string, seconds float64) {
	ProviderAttempts.WithLabelValues(provider, outcome).Inc()
	ProviderLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordTokenUsage adds provider reported usage.
func RecordTokenUsage(provider string, usage TokenUsage) {
	if usage.IsZero() {
		return
	}
	usage = usage.Normalized()
	ProviderTokens.WithLabelValues(provider, "prompt").Add(float64(usage.PromptTokens))
	ProviderTokens.WithLabelValues(provider, "completion").Add(float64(usage.CompletionTokens))
}

// RecordReport records a finished report generation.
func RecordReport(outcome string) {
	ReportsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records a pipeline stage duration.
func ObserveStage(stage string, seconds float64) {
	StageDuration.WithLabelValues(stage).Observe(seconds)
}
