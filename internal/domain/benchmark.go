package domain

import (
	"math"
	"time"
)

// BenchmarkRow holds the distributional statistics for one
// (sector, stage, metric) triple of the benchmark dataset.
// p25 <= median <= p75 is expected but not enforced at load time;
// rows that violate it badly enough to produce nonsensical percentiles
// are rejected at comparison time instead.
type BenchmarkRow struct {
	Sector string    `json:"sector"`
	Stage  string    `json:"stage"`
	Metric MetricKey `json:"metric"`

	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// Comparable reports whether the row can produce a meaningful
// percentile: all statistics finite and the interquartile range not
// inverted. An empty IQR (p25 == p75) is tolerated because the tail
// clamps cover every value.
func (r BenchmarkRow) Comparable() bool {
	for _, v := range []float64{r.Median, r.P25, r.P75} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.P25 <= r.P75
}

// ComparisonStatus marks whether a company value is favorable relative
// to the benchmark median, accounting for metric polarity.
type ComparisonStatus string

const (
	StatusAbove ComparisonStatus = "above"
	StatusBelow ComparisonStatus = "below"
)

// BenchmarkComparison is the per-metric result of comparing a company
// value against its benchmark row. It is derived data, embedded in the
// evaluation report and never persisted on its own.
type BenchmarkComparison struct {
	CompanyValue float64          `json:"companyValue"`
	Median       float64          `json:"median"`
	P25          float64          `json:"p25"`
	P75          float64          `json:"p75"`
	Percentile   float64          `json:"percentile"`
	Status       ComparisonStatus `json:"status"`
}

// Percentile clamp bounds. The estimate pins values at or outside the
// interquartile range to the 10th/90th percentile and never emits the
// degenerate 0/1 extremes.
const (
	percentileFloor   = 0.10
	percentileCeiling = 0.90
	percentileMin     = 0.01
	percentileMax     = 0.99
)

// CompareToBenchmark estimates the company's percentile position
// against a benchmark row and derives above/below-median status from
// the metric's polarity.
//
// The percentile is a crude, deterministic linear interpolation within
// the interquartile range, clamped at the tails. It is intentionally
// kept exactly as the scoring behavior downstream depends on it; it is
// not a statistically rigorous percentile-from-quartiles estimator.
func CompareToBenchmark(value float64, row BenchmarkRow, higherIsBetter bool) (BenchmarkComparison, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) || !row.Comparable() {
		return BenchmarkComparison{}, false
	}

	var perc float64
	switch {
	case value <= row.P25:
		perc = percentileFloor
	case value >= row.P75:
		perc = percentileCeiling
	default:
		perc = percentileFloor + 0.80*((value-row.P25)/(row.P75-row.P25))
	}
	perc = math.Max(percentileMin, math.Min(percentileMax, perc))

	status := StatusBelow
	if (higherIsBetter && value >= row.Median) || (!higherIsBetter && value <= row.Median) {
		status = StatusAbove
	}

	return BenchmarkComparison{
		CompanyValue: value,
		Median:       row.Median,
		P25:          row.P25,
		P75:          row.P75,
		Percentile:   perc,
		Status:       status,
	}, true
}

// CompareMetrics runs the benchmark comparison for every metric in the
// polarity vocabulary that is present in the metric set and has a row
// for the cohort. Metrics with no value or no row are silently skipped;
// they never appear in the map and are never treated as zero.
func CompareMetrics(metrics Metrics, cohort Cohort, lookup func(sector, stage string, metric MetricKey) (BenchmarkRow, bool)) map[MetricKey]BenchmarkComparison {
	out := make(map[MetricKey]BenchmarkComparison)
	if cohort.Sector == "" || cohort.Stage == "" || lookup == nil {
		return out
	}
	for _, key := range NumericMetricKeys {
		value, ok := metrics.Value(key)
		if !ok {
			continue
		}
		row, ok := lookup(cohort.Sector, cohort.Stage, key)
		if !ok {
			continue
		}
		if cmp, ok := CompareToBenchmark(value, row, key.HigherIsBetter()); ok {
			out[key] = cmp
		}
	}
	return out
}

// BenchmarkSourceInfo describes where the in-memory benchmark table
// came from and when it was last (re)loaded.
type BenchmarkSourceInfo struct {
	Source   string    `json:"source"` // "local", "url", or "error"
	Path     string    `json:"path,omitempty"`
	URL      string    `json:"url,omitempty"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loadedAt"`
	Error    string    `json:"error,omitempty"`
}
