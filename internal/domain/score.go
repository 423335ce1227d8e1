package domain

import "math"

// Verdict is the categorical investment recommendation derived from the
// composite score.
type Verdict string

const (
	VerdictProceed      Verdict = "Proceed"
	VerdictTrack        Verdict = "Track"
	VerdictPass         Verdict = "Pass"
	VerdictInsufficient Verdict = "Insufficient Data"
)

// Composite score thresholds for verdict mapping.
const (
	proceedThreshold = 0.70
	trackThreshold   = 0.50
)

// DefaultScoreWeights is the fixed weight table for the composite
// score. Only metrics present in the comparison map contribute; their
// weights are renormalized so the effective weights always sum to 1.
var DefaultScoreWeights = map[MetricKey]float64{
	MetricGrowthYoY:    0.25,
	MetricChurnRate:    0.20,
	MetricGrossMargin:  0.15,
	MetricCAC:          0.15,
	MetricLTV:          0.15,
	MetricRunwayMonths: 0.10,
}

// ScoreResult is the outcome of composite scoring. Composite is nil
// when no weighted metric had a benchmark comparison; Weights holds the
// renormalized weights actually applied and MetricScores the
// percentiles that entered the sum.
type ScoreResult struct {
	Composite    *float64              `json:"composite"`
	Verdict      Verdict               `json:"verdict"`
	Weights      map[MetricKey]float64 `json:"weights"`
	MetricScores map[MetricKey]float64 `json:"metricScores"`
}

// InsufficientScore returns the canonical empty score result.
func InsufficientScore() ScoreResult {
	return ScoreResult{
		Composite:    nil,
		Verdict:      VerdictInsufficient,
		Weights:      map[MetricKey]float64{},
		MetricScores: map[MetricKey]float64{},
	}
}

// ScoreFromComparisons computes the weighted composite score from
// per-metric benchmark percentiles. It is a pure function: identical
// input always yields identical output, with no hidden state or I/O.
//
// The weight table is restricted to metrics present in both the table
// and the comparison map, then renormalized to sum to 1, so absent
// metrics redistribute their weight mass instead of dragging the
// composite toward zero. A nil weights argument selects
// DefaultScoreWeights.
func ScoreFromComparisons(comparisons map[MetricKey]BenchmarkComparison, weights map[MetricKey]float64) ScoreResult {
	if len(comparisons) == 0 {
		return InsufficientScore()
	}
	if weights == nil {
		weights = DefaultScoreWeights
	}

	restricted := make(map[MetricKey]float64, len(weights))
	var total float64
	for key, w := range weights {
		if _, ok := comparisons[key]; !ok {
			continue
		}
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		restricted[key] = w
		total += w
	}
	if total == 0 {
		// Comparisons exist but none carry weight (e.g. ARR only).
		return InsufficientScore()
	}

	metricScores := make(map[MetricKey]float64, len(restricted))
	var composite float64
	for key, w := range restricted {
		normalized := w / total
		restricted[key] = normalized
		perc := comparisons[key].Percentile
		metricScores[key] = perc
		composite += normalized * perc
	}

	verdict := VerdictPass
	switch {
	case composite >= proceedThreshold:
		verdict = VerdictProceed
	case composite >= trackThreshold:
		verdict = VerdictTrack
	}

	return ScoreResult{
		Composite:    &composite,
		Verdict:      verdict,
		Weights:      restricted,
		MetricScores: metricScores,
	}
}
