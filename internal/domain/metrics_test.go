package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_SetAndValue(t *testing.T) {
	var m Metrics

	_, ok := m.Value(MetricARR)
	assert.False(t, ok, "unset metric should be absent, not zero")

	m.Set(MetricARR, 120_000)
	v, ok := m.Value(MetricARR)
	require.True(t, ok)
	assert.Equal(t, 120_000.0, v)
}

func TestMetrics_SetRejectsUncleanValues(t *testing.T) {
	tests := []struct {
		name  string
		key   MetricKey
		value float64
	}{
		{"NaN", MetricARR, math.NaN()},
		{"positive infinity", MetricMRR, math.Inf(1)},
		{"negative infinity", MetricLTV, math.Inf(-1)},
		{"negative headcount", MetricHeadcount, -5},
		{"unknown key", MetricKey("revenue"), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Metrics
			m.Set(tt.key, tt.value)
			_, ok := m.Value(tt.key)
			assert.False(t, ok, "unclean value should yield absence")
		})
	}
}

func TestMetrics_ZeroIsAValue(t *testing.T) {
	var m Metrics
	m.Set(MetricChurnRate, 0)

	v, ok := m.Value(MetricChurnRate)
	require.True(t, ok, "an explicit zero is a real observation")
	assert.Equal(t, 0.0, v)
}

func TestMergeMetrics_LaterSourceWins(t *testing.T) {
	var regex, llm Metrics
	regex.Set(MetricARR, 1)
	llm.Set(MetricARR, 2)

	merged := MergeMetrics(regex, llm)

	v, ok := merged.Value(MetricARR)
	require.True(t, ok)
	assert.Equal(t, 2.0, v, "the later source should win outright")
}

func TestMergeMetrics_AbsentNeverOverwrites(t *testing.T) {
	var regex, llm Metrics
	regex.Set(MetricMRR, 10_000)
	regex.Sector = "fintech"
	llm.Set(MetricChurnRate, 0.03)

	merged := MergeMetrics(regex, llm)

	mrr, ok := merged.Value(MetricMRR)
	require.True(t, ok, "value known only in the earlier source must survive")
	assert.Equal(t, 10_000.0, mrr)

	churn, ok := merged.Value(MetricChurnRate)
	require.True(t, ok)
	assert.Equal(t, 0.03, churn)

	assert.Equal(t, "fintech", merged.Sector)
}

func TestMetrics_IsEmpty(t *testing.T) {
	var m Metrics
	assert.True(t, m.IsEmpty())

	m.Sector = "saas"
	assert.False(t, m.IsEmpty())

	var n Metrics
	n.Set(MetricARR, 1)
	assert.False(t, n.IsEmpty())
}

func TestExtractedMetrics_EnrichIsAdditive(t *testing.T) {
	var e ExtractedMetrics
	e.Enrich(DocumentEntities{
		FinancialValues: []string{"$1.2M"},
		Organizations:   []string{"Acme Corp"},
		People:          []string{"J. Doe"},
	})
	e.Enrich(DocumentEntities{Organizations: []string{"Beta Inc"}})

	assert.Equal(t, []string{"$1.2M"}, e.DocumentAIFinancial)
	assert.Equal(t, []string{"Acme Corp", "Beta Inc"}, e.Organizations, "repeated enrichment should append")
	assert.Equal(t, []string{"J. Doe"}, e.Founders)
}

func TestMetricKey_HigherIsBetter(t *testing.T) {
	assert.False(t, MetricChurnRate.HigherIsBetter())
	assert.False(t, MetricCAC.HigherIsBetter())
	assert.True(t, MetricGrowthYoY.HigherIsBetter())
	assert.True(t, MetricARR.HigherIsBetter())
}
