package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareToBenchmark_PercentileClamps(t *testing.T) {
	row := BenchmarkRow{Sector: "saas", Stage: "seed", Metric: MetricARR, Median: 20, P25: 10, P75: 30}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"at p25 pins to floor", 10, 0.10},
		{"at p75 pins to ceiling", 30, 0.90},
		{"midpoint interpolates", 20, 0.50},
		{"below p25 pins to floor", 5, 0.10},
		{"above p75 pins to ceiling", 100, 0.90},
		{"interior interpolation", 25, 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, ok := CompareToBenchmark(tt.value, row, true)
			require.True(t, ok)
			assert.InDelta(t, tt.want, cmp.Percentile, 1e-9)
		})
	}
}

func TestCompareToBenchmark_StatusFollowsPolarity(t *testing.T) {
	row := BenchmarkRow{Median: 0.04, P25: 0.02, P75: 0.06}

	// Lower-is-better: a churn below the median is favorable.
	cmp, ok := CompareToBenchmark(0.03, row, false)
	require.True(t, ok)
	assert.Equal(t, StatusAbove, cmp.Status)

	cmp, ok = CompareToBenchmark(0.05, row, false)
	require.True(t, ok)
	assert.Equal(t, StatusBelow, cmp.Status)

	// Higher-is-better: same values, opposite reading.
	cmp, ok = CompareToBenchmark(0.05, row, true)
	require.True(t, ok)
	assert.Equal(t, StatusAbove, cmp.Status)
}

func TestCompareToBenchmark_RejectsBadInput(t *testing.T) {
	good := BenchmarkRow{Median: 20, P25: 10, P75: 30}

	_, ok := CompareToBenchmark(math.NaN(), good, true)
	assert.False(t, ok, "NaN value should be rejected")

	inverted := BenchmarkRow{Median: 20, P25: 30, P75: 10}
	_, ok = CompareToBenchmark(20, inverted, true)
	assert.False(t, ok, "inverted quartiles should be rejected")

	infinite := BenchmarkRow{Median: math.Inf(1), P25: 10, P75: 30}
	_, ok = CompareToBenchmark(20, infinite, true)
	assert.False(t, ok, "non-finite statistics should be rejected")
}

func TestCompareToBenchmark_EmptyIQRTolerated(t *testing.T) {
	row := BenchmarkRow{Median: 10, P25: 10, P75: 10}

	cmp, ok := CompareToBenchmark(10, row, true)
	require.True(t, ok, "p25 == p75 is a valid degenerate row")
	assert.Equal(t, 0.10, cmp.Percentile, "the tail clamp covers the degenerate range")
}

func TestCompareMetrics_SkipsAbsentAndMissing(t *testing.T) {
	var m Metrics
	m.Set(MetricARR, 120_000)
	m.Set(MetricChurnRate, 0.03)

	rows := map[MetricKey]BenchmarkRow{
		MetricARR: {Sector: "saas", Stage: "seed", Metric: MetricARR, Median: 100_000, P25: 50_000, P75: 150_000},
		// No churnRate row for the cohort, no rows for absent metrics.
	}
	lookup := func(sector, stage string, metric MetricKey) (BenchmarkRow, bool) {
		row, ok := rows[metric]
		return row, ok
	}

	out := CompareMetrics(m, Cohort{Sector: "saas", Stage: "seed"}, lookup)

	require.Len(t, out, 1, "only metrics with both a value and a row should appear")
	cmp := out[MetricARR]
	assert.InDelta(t, 0.66, cmp.Percentile, 0.05)
	assert.Equal(t, StatusAbove, cmp.Status)
}

func TestCompareMetrics_EmptyCohortYieldsNothing(t *testing.T) {
	var m Metrics
	m.Set(MetricARR, 1)

	out := CompareMetrics(m, Cohort{}, func(string, string, MetricKey) (BenchmarkRow, bool) {
		t.Fatal("lookup should not be called for an empty cohort")
		return BenchmarkRow{}, false
	})
	assert.Empty(t, out)
}
