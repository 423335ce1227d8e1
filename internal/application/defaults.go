package application

import (
	"math"

	"github.com/ahrav/dealdesk/internal/domain"
)

// defaultEstimatesByStage holds conservative benchmark medians keyed by
// funding stage. They substitute for the LLM benchmark estimator when
// it is unavailable or returns nothing usable, so reports always carry
// a non-empty benchmark context. Rates are fractions; currency amounts
// are USD.
var defaultEstimatesByStage = map[string]map[domain.MetricKey]domain.BenchmarkEstimate{
	"pre-seed": {
		domain.MetricARR:          {Median: 30_000, Unit: "USD"},
		domain.MetricMRR:          {Median: 2_500, Unit: "USD"},
		domain.MetricGrowthYoY:    {Median: 1.50, Unit: "ratio"},
		domain.MetricGrowthMoM:    {Median: 0.15, Unit: "ratio"},
		domain.MetricChurnRate:    {Median: 0.06, Unit: "ratio"},
		domain.MetricGrossMargin:  {Median: 0.65, Unit: "ratio"},
		domain.MetricCAC:          {Median: 150, Unit: "USD"},
		domain.MetricLTV:          {Median: 600, Unit: "USD"},
		domain.MetricRunwayMonths: {Median: 12, Unit: "months"},
		domain.MetricHeadcount:    {Median: 4, Unit: "people"},
	},
	"seed": {
		domain.MetricARR:          {Median: 250_000, Unit: "USD"},
		domain.MetricMRR:          {Median: 20_000, Unit: "USD"},
		domain.MetricGrowthYoY:    {Median: 1.00, Unit: "ratio"},
		domain.MetricGrowthMoM:    {Median: 0.10, Unit: "ratio"},
		domain.MetricChurnRate:    {Median: 0.04, Unit: "ratio"},
		domain.MetricGrossMargin:  {Median: 0.70, Unit: "ratio"},
		domain.MetricCAC:          {Median: 300, Unit: "USD"},
		domain.MetricLTV:          {Median: 1_200, Unit: "USD"},
		domain.MetricRunwayMonths: {Median: 14, Unit: "months"},
		domain.MetricHeadcount:    {Median: 10, Unit: "people"},
	},
	"series-a": {
		domain.MetricARR:          {Median: 1_500_000, Unit: "USD"},
		domain.MetricMRR:          {Median: 125_000, Unit: "USD"},
		domain.MetricGrowthYoY:    {Median: 0.80, Unit: "ratio"},
		domain.MetricGrowthMoM:    {Median: 0.07, Unit: "ratio"},
		domain.MetricChurnRate:    {Median: 0.03, Unit: "ratio"},
		domain.MetricGrossMargin:  {Median: 0.72, Unit: "ratio"},
		domain.MetricCAC:          {Median: 500, Unit: "USD"},
		domain.MetricLTV:          {Median: 2_500, Unit: "USD"},
		domain.MetricRunwayMonths: {Median: 18, Unit: "months"},
		domain.MetricHeadcount:    {Median: 30, Unit: "people"},
	},
	"series-b": {
		domain.MetricARR:          {Median: 7_000_000, Unit: "USD"},
		domain.MetricMRR:          {Median: 580_000, Unit: "USD"},
		domain.MetricGrowthYoY:    {Median: 0.60, Unit: "ratio"},
		domain.MetricGrowthMoM:    {Median: 0.05, Unit: "ratio"},
		domain.MetricChurnRate:    {Median: 0.02, Unit: "ratio"},
		domain.MetricGrossMargin:  {Median: 0.74, Unit: "ratio"},
		domain.MetricCAC:          {Median: 800, Unit: "USD"},
		domain.MetricLTV:          {Median: 4_500, Unit: "USD"},
		domain.MetricRunwayMonths: {Median: 20, Unit: "months"},
		domain.MetricHeadcount:    {Median: 80, Unit: "people"},
	},
	"series-c": {
		domain.MetricARR:          {Median: 20_000_000, Unit: "USD"},
		domain.MetricMRR:          {Median: 1_700_000, Unit: "USD"},
		domain.MetricGrowthYoY:    {Median: 0.50, Unit: "ratio"},
		domain.MetricGrowthMoM:    {Median: 0.04, Unit: "ratio"},
		domain.MetricChurnRate:    {Median: 0.015, Unit: "ratio"},
		domain.MetricGrossMargin:  {Median: 0.75, Unit: "ratio"},
		domain.MetricCAC:          {Median: 1_200, Unit: "USD"},
		domain.MetricLTV:          {Median: 7_000, Unit: "USD"},
		domain.MetricRunwayMonths: {Median: 22, Unit: "months"},
		domain.MetricHeadcount:    {Median: 180, Unit: "people"},
	},
	"growth": {
		domain.MetricARR:          {Median: 50_000_000, Unit: "USD"},
		domain.MetricMRR:          {Median: 4_200_000, Unit: "USD"},
		domain.MetricGrowthYoY:    {Median: 0.40, Unit: "ratio"},
		domain.MetricGrowthMoM:    {Median: 0.03, Unit: "ratio"},
		domain.MetricChurnRate:    {Median: 0.01, Unit: "ratio"},
		domain.MetricGrossMargin:  {Median: 0.76, Unit: "ratio"},
		domain.MetricCAC:          {Median: 2_000, Unit: "USD"},
		domain.MetricLTV:          {Median: 12_000, Unit: "USD"},
		domain.MetricRunwayMonths: {Median: 24, Unit: "months"},
		domain.MetricHeadcount:    {Median: 400, Unit: "people"},
	},
}

const defaultContextNotes = "Default cohort benchmarks; live estimates were unavailable. Validate against the local dataset."

// nearBand is the relative distance from the median treated as "near".
const nearBand = 0.10

// DefaultBenchmarkContext builds the static benchmark context for a
// resolved cohort. Relative positions are computed numerically for
// metrics the company actually reported; estimates for unknown-stage
// cohorts fall back to the seed table.
func DefaultBenchmarkContext(cohort domain.Cohort, metrics domain.Metrics) domain.BenchmarkContext {
	estimates, ok := defaultEstimatesByStage[cohort.Stage]
	if !ok {
		estimates = defaultEstimatesByStage[domain.DefaultStage]
	}

	out := domain.BenchmarkContext{
		Cohort:    domain.CohortGuess{Sector: cohort.Sector, Stage: cohort.Stage},
		Estimates: make(map[domain.MetricKey]domain.BenchmarkEstimate, len(estimates)),
		Relative:  map[domain.MetricKey]string{},
		Notes:     defaultContextNotes,
	}
	for key, est := range estimates {
		out.Estimates[key] = est
		if value, has := metrics.Value(key); has {
			out.Relative[key] = relativePosition(value, est.Median)
		}
	}
	return out
}

// relativePosition classifies a company value against a median:
// within ±10% is "near", otherwise "above" or "below".
func relativePosition(value, median float64) string {
	if median != 0 && math.Abs(value-median)/math.Abs(median) <= nearBand {
		return "near"
	}
	if value > median {
		return "above"
	}
	if value < median {
		return "below"
	}
	return "near"
}
