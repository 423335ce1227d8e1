// Package domain contains pure, dependency-light domain models and
// computation for the pitch evaluation core.
package domain

import (
	"math"
)

// MetricKey identifies one of the fixed vocabulary of numeric metrics
// the evaluation core understands. Sector and stage travel separately
// on Metrics because they are textual, not numeric.
type MetricKey string

// The closed metric vocabulary. Keys match the wire names used in
// benchmark datasets and evaluation reports.
const (
	MetricARR          MetricKey = "arr"
	MetricMRR          MetricKey = "mrr"
	MetricCAC          MetricKey = "cac"
	MetricLTV          MetricKey = "ltv"
	MetricChurnRate    MetricKey = "churnRate"
	MetricGrowthYoY    MetricKey = "growthYoY"
	MetricGrowthMoM    MetricKey = "growthMoM"
	MetricHeadcount    MetricKey = "headcount"
	MetricRunwayMonths MetricKey = "runwayMonths"
	MetricGrossMargin  MetricKey = "grossMargin"
)

// NumericMetricKeys lists every numeric metric in the order benchmark
// comparisons are attempted. The order is fixed so reports are
// deterministic.
var NumericMetricKeys = []MetricKey{
	MetricARR,
	MetricMRR,
	MetricGrowthYoY,
	MetricGrowthMoM,
	MetricGrossMargin,
	MetricLTV,
	MetricHeadcount,
	MetricRunwayMonths,
	MetricChurnRate,
	MetricCAC,
}

// HigherIsBetter reports the polarity of a metric: whether a larger
// value is favorable when judging above/below-median status. Churn and
// CAC are the only lower-is-better metrics.
func (k MetricKey) HigherIsBetter() bool {
	switch k {
	case MetricChurnRate, MetricCAC:
		return false
	default:
		return true
	}
}

// Metrics is a typed record of extracted observations. A nil numeric
// field means the metric is unknown; absence is never represented as
// zero. Sector and Stage hold raw (pre-normalization) strings and are
// empty when unknown.
type Metrics struct {
	ARR          *float64 `json:"arr,omitempty"`
	MRR          *float64 `json:"mrr,omitempty"`
	CAC          *float64 `json:"cac,omitempty"`
	LTV          *float64 `json:"ltv,omitempty"`
	ChurnRate    *float64 `json:"churnRate,omitempty"`
	GrowthYoY    *float64 `json:"growthYoY,omitempty"`
	GrowthMoM    *float64 `json:"growthMoM,omitempty"`
	Headcount    *float64 `json:"headcount,omitempty"`
	RunwayMonths *float64 `json:"runwayMonths,omitempty"`
	GrossMargin  *float64 `json:"grossMargin,omitempty"`

	Sector string `json:"sector,omitempty"`
	Stage  string `json:"stage,omitempty"`
}

// field returns the pointer slot backing a metric key, or nil for an
// unknown key. Unknown keys are rejected at this boundary so loosely
// typed sources cannot smuggle new metrics into the record.
func (m *Metrics) field(k MetricKey) **float64 {
	switch k {
	case MetricARR:
		return &m.ARR
	case MetricMRR:
		return &m.MRR
	case MetricCAC:
		return &m.CAC
	case MetricLTV:
		return &m.LTV
	case MetricChurnRate:
		return &m.ChurnRate
	case MetricGrowthYoY:
		return &m.GrowthYoY
	case MetricGrowthMoM:
		return &m.GrowthMoM
	case MetricHeadcount:
		return &m.Headcount
	case MetricRunwayMonths:
		return &m.RunwayMonths
	case MetricGrossMargin:
		return &m.GrossMargin
	default:
		return nil
	}
}

// Value returns the observation for a metric key and whether it is
// known.
func (m Metrics) Value(k MetricKey) (float64, bool) {
	slot := (&m).field(k)
	if slot == nil || *slot == nil {
		return 0, false
	}
	return **slot, true
}

// Set records an observation for a metric key. Non-finite values and
// negative headcounts are dropped rather than stored: extraction that
// cannot produce a clean number yields absence, not a sentinel.
func (m *Metrics) Set(k MetricKey, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if k == MetricHeadcount && v < 0 {
		return
	}
	slot := m.field(k)
	if slot == nil {
		return
	}
	val := v
	*slot = &val
}

// IsEmpty reports whether the record carries no observations at all.
func (m Metrics) IsEmpty() bool {
	for _, k := range NumericMetricKeys {
		if _, ok := m.Value(k); ok {
			return false
		}
	}
	return m.Sector == "" && m.Stage == ""
}

// MergeMetrics combines metric records from ordered sources. Later
// sources take precedence: when the same key is known in more than one
// source the later value wins outright, with no averaging. Unknown
// fields never overwrite known ones.
func MergeMetrics(sources ...Metrics) Metrics {
	var out Metrics
	for _, src := range sources {
		for _, k := range NumericMetricKeys {
			if v, ok := src.Value(k); ok {
				out.Set(k, v)
			}
		}
		if src.Sector != "" {
			out.Sector = src.Sector
		}
		if src.Stage != "" {
			out.Stage = src.Stage
		}
	}
	return out
}

// DocumentEntities carries structured entities pulled from documents by
// an external parsing collaborator. These enrich a metric record
// additively; they never compete with extracted numbers.
type DocumentEntities struct {
	FinancialValues []string `json:"financial_values,omitempty"`
	Organizations   []string `json:"organizations,omitempty"`
	People          []string `json:"people,omitempty"`

	EntityCount int `json:"entity_count"`
	TableCount  int `json:"table_count"`
}

// ExtractedMetrics is the merged metric set that appears in an
// evaluation report: the typed record plus the additive enrichment
// lists contributed by document-entity extraction.
type ExtractedMetrics struct {
	Metrics

	DocumentAIFinancial []string `json:"documentai_financial,omitempty"`
	Organizations       []string `json:"organizations,omitempty"`
	Founders            []string `json:"founders,omitempty"`
}

// Enrich attaches document entities to the record. Enrichment keys are
// additive only, so repeated calls append rather than replace.
func (e *ExtractedMetrics) Enrich(ents DocumentEntities) {
	e.DocumentAIFinancial = append(e.DocumentAIFinancial, ents.FinancialValues...)
	e.Organizations = append(e.Organizations, ents.Organizations...)
	e.Founders = append(e.Founders, ents.People...)
}
