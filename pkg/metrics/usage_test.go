package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTokenUsageNormalized(t *testing.T) {
	require.Equal(t, TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, TokenUsage{PromptTokens: 10, CompletionTokens: 5}.Normalized())
	require.Equal(t, TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, TokenUsage{PromptTokens: 10, TotalTokens: 15}.Normalized())
	require.True(t, TokenUsage{}.IsZero())
}

func TestRecordTokenUsage(t *testing.T) {
	RecordTokenUsage("metrics-test", TokenUsage{PromptTokens: 7, TotalTokens: 10})
	require.InDelta(t, 7, testutil.ToFloat64(ProviderTokens.WithLabelValues("metrics-test", "prompt")), 1e-9)
	require.InDelta(t, 3, testutil.ToFloat64(ProviderTokens.WithLabelValues("metrics-test", "completion")), 1e-9)

	series := testutil.CollectAndCount(ProviderTokens)
	RecordTokenUsage("metrics-empty", TokenUsage{})
	require.Equal(t, series, testutil.CollectAndCount(ProviderTokens))
}

func TestRecordReport(t *testing.T) {
	before := testutil.ToFloat64(ReportsTotal.WithLabelValues("ok"))
	RecordReport("ok")
	require.InDelta(t, before+1, testutil.ToFloat64(ReportsTotal.WithLabelValues("ok")), 1e-9)
}
