package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/dealdesk/internal/domain"
)

func TestMetricExtractor_UnitMultipliers(t *testing.T) {
	tests := []struct {
		name string
		text string
		key  domain.MetricKey
		want float64
	}{
		{"crore", "ARR: 1.5 cr", domain.MetricARR, 15_000_000},
		{"crore spelled out", "arr 2 crore", domain.MetricARR, 20_000_000},
		{"millions shorthand", "ARR: 2m", domain.MetricARR, 2_000_000},
		{"millions mn", "MRR: 1.2mn", domain.MetricMRR, 1_200_000},
		{"thousands", "MRR = 20k", domain.MetricMRR, 20_000},
		{"billions", "ARR: 1.1bn", domain.MetricARR, 1_100_000_000},
		{"plain number no unit", "ARR: 120000", domain.MetricARR, 120_000},
		{"currency symbol stripped", "CAC: $300", domain.MetricCAC, 300},
		{"rupee with separators", "LTV: ₹1,200", domain.MetricLTV, 1_200},
	}

	e := NewMetricExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := e.Extract(tt.text)
			v, ok := m.Value(tt.key)
			require.True(t, ok, "metric should be extracted from %q", tt.text)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestMetricExtractor_PercentMetricsAreFractions(t *testing.T) {
	e := NewMetricExtractor()
	m := e.Extract("Monthly churn is 3%, growth 80% YoY, growth 12% MoM, gross margin 70%")

	churn, ok := m.Value(domain.MetricChurnRate)
	require.True(t, ok)
	assert.Equal(t, 0.03, churn)

	yoy, ok := m.Value(domain.MetricGrowthYoY)
	require.True(t, ok)
	assert.Equal(t, 0.80, yoy)

	mom, ok := m.Value(domain.MetricGrowthMoM)
	require.True(t, ok)
	assert.Equal(t, 0.12, mom)

	margin, ok := m.Value(domain.MetricGrossMargin)
	require.True(t, ok)
	assert.Equal(t, 0.70, margin)
}

func TestMetricExtractor_RunwayAndHeadcount(t *testing.T) {
	e := NewMetricExtractor()

	m := e.Extract("Runway: 14 months, headcount 12")
	runway, ok := m.Value(domain.MetricRunwayMonths)
	require.True(t, ok)
	assert.Equal(t, 14.0, runway)
	heads, ok := m.Value(domain.MetricHeadcount)
	require.True(t, ok)
	assert.Equal(t, 12.0, heads)

	m = e.Extract("Team size: 8 across product and GTM")
	heads, ok = m.Value(domain.MetricHeadcount)
	require.True(t, ok, "team size is the fallback headcount source")
	assert.Equal(t, 8.0, heads)
}

func TestMetricExtractor_HeadcountBeatsTeamSize(t *testing.T) {
	e := NewMetricExtractor()
	m := e.Extract("Headcount: 25. Team size: 8 in engineering.")

	v, ok := m.Value(domain.MetricHeadcount)
	require.True(t, ok)
	assert.Equal(t, 25.0, v)
}

func TestMetricExtractor_SectorAndStage(t *testing.T) {
	e := NewMetricExtractor()
	m := e.Extract("Sector: SaaS\nStage: Series A")

	assert.Equal(t, "saas", m.Sector)
	assert.Equal(t, "series a", m.Stage)
}

func TestMetricExtractor_Deterministic(t *testing.T) {
	const text = "ARR: 1.5 cr, churn 4%, CAC $250, stage: seed"
	e := NewMetricExtractor()

	first := e.Extract(text)
	second := e.Extract(text)
	assert.Equal(t, first, second, "extraction must be a pure function of the text")
}

func TestMetricExtractor_UnmatchedTextYieldsAbsence(t *testing.T) {
	e := NewMetricExtractor()
	m := e.Extract("We build delightful software for dentists.")

	assert.True(t, m.IsEmpty())
	_, ok := m.Value(domain.MetricARR)
	assert.False(t, ok, "absence, never zero, for unmatched metrics")
}

func TestMetricExtractor_EmptyText(t *testing.T) {
	e := NewMetricExtractor()
	assert.True(t, e.Extract("").IsEmpty())
}

func TestMetricExtractor_PitchDeckScenario(t *testing.T) {
	const text = `Acme Payroll - Seed Round
Sector: saas, Stage: seed
ARR: 120000 with churn of 3% monthly
Growth 80% YoY driven by SMB demand`

	m := NewMetricExtractor().Extract(text)

	arr, ok := m.Value(domain.MetricARR)
	require.True(t, ok)
	assert.Equal(t, 120_000.0, arr)

	churn, ok := m.Value(domain.MetricChurnRate)
	require.True(t, ok)
	assert.Equal(t, 0.03, churn)

	yoy, ok := m.Value(domain.MetricGrowthYoY)
	require.True(t, ok)
	assert.Equal(t, 0.80, yoy)

	assert.Equal(t, "saas", m.Sector)
	assert.Equal(t, "seed", m.Stage)
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"1.5 cr", 15_000_000, true},
		{"2m", 2_000_000, true},
		{"₹4,00,000", 400_000, true},
		{"120000", 120_000, true},
		{"$1,200", 1_200, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, ok := toNumber(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}
