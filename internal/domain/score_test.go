package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comparison(p float64) BenchmarkComparison {
	return BenchmarkComparison{Percentile: p, Status: StatusAbove}
}

func TestScoreFromComparisons_RenormalizesWeights(t *testing.T) {
	comparisons := map[MetricKey]BenchmarkComparison{
		MetricGrowthYoY: comparison(0.90),
		MetricChurnRate: comparison(0.50),
	}

	result := ScoreFromComparisons(comparisons, nil)

	require.NotNil(t, result.Composite)
	// 0.25 and 0.20 renormalize to 5/9 and 4/9.
	want := (0.25*0.90 + 0.20*0.50) / 0.45
	assert.InDelta(t, want, *result.Composite, 1e-9)
	assert.InDelta(t, 1.0, result.Weights[MetricGrowthYoY]+result.Weights[MetricChurnRate], 1e-9,
		"effective weights must sum to 1")
	assert.Equal(t, VerdictProceed, result.Verdict)
}

func TestScoreFromComparisons_VerdictThresholds(t *testing.T) {
	tests := []struct {
		name       string
		percentile float64
		want       Verdict
	}{
		{"proceed at threshold", 0.70, VerdictProceed},
		{"track below proceed", 0.69, VerdictTrack},
		{"track at threshold", 0.50, VerdictTrack},
		{"pass below track", 0.49, VerdictPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreFromComparisons(map[MetricKey]BenchmarkComparison{
				MetricGrowthYoY: comparison(tt.percentile),
			}, nil)
			require.NotNil(t, result.Composite)
			assert.Equal(t, tt.want, result.Verdict)
		})
	}
}

func TestScoreFromComparisons_EmptyIsInsufficient(t *testing.T) {
	result := ScoreFromComparisons(nil, nil)

	assert.Nil(t, result.Composite)
	assert.Equal(t, VerdictInsufficient, result.Verdict)
	assert.Empty(t, result.Weights)
	assert.Empty(t, result.MetricScores)
}

func TestScoreFromComparisons_UnweightedMetricsAreInsufficient(t *testing.T) {
	// ARR informs benchmarks but carries no scoring weight, so a deck
	// with only ARR must not produce a verdict.
	result := ScoreFromComparisons(map[MetricKey]BenchmarkComparison{
		MetricARR: comparison(0.90),
		MetricMRR: comparison(0.90),
	}, nil)

	assert.Nil(t, result.Composite)
	assert.Equal(t, VerdictInsufficient, result.Verdict)
}

func TestScoreFromComparisons_Monotonic(t *testing.T) {
	base := map[MetricKey]BenchmarkComparison{
		MetricGrowthYoY: comparison(0.50),
		MetricChurnRate: comparison(0.50),
	}
	better := map[MetricKey]BenchmarkComparison{
		MetricGrowthYoY: comparison(0.80),
		MetricChurnRate: comparison(0.50),
	}

	lo := ScoreFromComparisons(base, nil)
	hi := ScoreFromComparisons(better, nil)
	require.NotNil(t, lo.Composite)
	require.NotNil(t, hi.Composite)
	assert.Greater(t, *hi.Composite, *lo.Composite,
		"raising one percentile with all else equal must raise the composite")
}

func TestScoreFromComparisons_IgnoresDegenerateWeights(t *testing.T) {
	comparisons := map[MetricKey]BenchmarkComparison{
		MetricGrowthYoY: comparison(0.60),
		MetricChurnRate: comparison(0.20),
	}
	weights := map[MetricKey]float64{
		MetricGrowthYoY: 0.5,
		MetricChurnRate: -1, // dropped
	}

	result := ScoreFromComparisons(comparisons, weights)

	require.NotNil(t, result.Composite)
	assert.InDelta(t, 0.60, *result.Composite, 1e-9)
	assert.NotContains(t, result.Weights, MetricChurnRate)
}
