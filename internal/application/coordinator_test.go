package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/dealdesk/internal/domain"
	"github.com/ahrav/dealdesk/internal/ports"
)

type stubTexts struct{ files map[string]string }

func (s *stubTexts) Extract(_ context.Context, path string) (string, error) {
	text, ok := s.files[path]
	if !ok {
		return "", fmt.Errorf("unsupported file format %q: %s", ".bin", path)
	}
	return text, nil
}

type patternFunc func(string) domain.Metrics

func (f patternFunc) Extract(text string) domain.Metrics { return f(text) }

type stubAnalyzer struct {
	analysis domain.Analysis
	status   domain.LLMStatus
}

func (s *stubAnalyzer) Analyze(context.Context, string) (domain.Analysis, domain.LLMStatus) {
	return s.analysis, s.status
}

type stubMetricInferrer struct {
	result ports.Maybe[domain.Metrics]
	called bool
}

func (s *stubMetricInferrer) InferMetrics(context.Context, string) ports.Maybe[domain.Metrics] {
	s.called = true
	return s.result
}

type stubEstimator struct {
	result ports.Maybe[domain.BenchmarkContext]
	called bool
}

func (s *stubEstimator) EstimateBenchmarks(
	context.Context, string, domain.Cohort, domain.Metrics,
) ports.Maybe[domain.BenchmarkContext] {
	s.called = true
	return s.result
}

type stubStore struct{ rows map[string]domain.BenchmarkRow }

func storeKey(sector, stage string, metric domain.MetricKey) string {
	return sector + "/" + stage + "/" + string(metric)
}

func (s *stubStore) Lookup(sector, stage string, metric domain.MetricKey) (domain.BenchmarkRow, bool) {
	row, ok := s.rows[storeKey(sector, stage, metric)]
	return row, ok
}

func (s *stubStore) Reload(context.Context) (domain.BenchmarkSourceInfo, error) {
	return domain.BenchmarkSourceInfo{}, nil
}

func (s *stubStore) SourceInfo() domain.BenchmarkSourceInfo { return domain.BenchmarkSourceInfo{} }

func healthyAnalysis() domain.Analysis {
	return domain.Analysis{
		ExecutiveSummary: "Strong seed-stage SaaS with efficient growth.",
		MarketAnalysis: domain.MarketAnalysis{
			MarketSize:    "$5B",
			GrowthRate:    "18% CAGR",
			Competition:   "Fragmented",
			EntryBarriers: "Workflow lock-in",
			Regulation:    "Standard data privacy obligations",
		},
		Risks:           []domain.Risk{{Factor: "Concentration", Impact: "medium", Description: "Top customer is 30% of ARR."}},
		Recommendations: []domain.Recommendation{{Title: "Diversify", Description: "Broaden the customer base."}},
	}
}

func seedStore() *stubStore {
	return &stubStore{rows: map[string]domain.BenchmarkRow{
		storeKey("saas", "seed", domain.MetricARR):       {Sector: "saas", Stage: "seed", Metric: domain.MetricARR, Median: 100_000, P25: 50_000, P75: 150_000},
		storeKey("saas", "seed", domain.MetricChurnRate): {Sector: "saas", Stage: "seed", Metric: domain.MetricChurnRate, Median: 0.04, P25: 0.02, P75: 0.06},
		storeKey("saas", "seed", domain.MetricGrowthYoY): {Sector: "saas", Stage: "seed", Metric: domain.MetricGrowthYoY, Median: 0.60, P25: 0.30, P75: 1.00},
	}}
}

const deckText = "ARR: 120000, churn 3%, growth 80% YoY, sector: saas, stage: seed"

func patternTier(string) domain.Metrics {
	var m domain.Metrics
	m.Set(domain.MetricARR, 120_000)
	m.Set(domain.MetricChurnRate, 0.03)
	m.Set(domain.MetricGrowthYoY, 0.80)
	m.Sector = "saas"
	m.Stage = "seed"
	return m
}

func TestCoordinator_EvaluateText_FullPipeline(t *testing.T) {
	estimator := &stubEstimator{result: ports.Unavailable[domain.BenchmarkContext]("no estimates")}
	deps := Dependencies{
		Patterns:  patternFunc(patternTier),
		Analyzer:  &stubAnalyzer{analysis: healthyAnalysis(), status: domain.LLMStatus{OK: true}},
		Metrics:   &stubMetricInferrer{result: ports.Unavailable[domain.Metrics]("nothing extra")},
		Estimator: estimator,
		Store:     seedStore(),
	}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateText(context.Background(), deckText)

	require.True(t, result.Success)
	assert.Equal(t, "saas", result.Cohort.Sector)
	assert.Equal(t, "seed", result.Cohort.Stage)
	assert.Equal(t, domain.CohortSourceExtracted, result.Cohort.Source)

	// ARR carries no scoring weight; churn and growth drive the verdict.
	require.Len(t, result.Benchmarks, 3)
	require.NotNil(t, result.Score.Composite)
	assert.InDelta(t, 0.51, *result.Score.Composite, 0.01)
	assert.Equal(t, domain.VerdictTrack, result.Score.Verdict)
	assert.Contains(t, result.VerdictExplanation, "Verdict: Track")

	assert.True(t, result.LLMStatus.OK)
	require.NotNil(t, result.LLMBenchmark)
	assert.Equal(t, defaultContextNotes, result.LLMBenchmark.Notes,
		"an unavailable estimate substitutes the static default context")
	assert.True(t, estimator.called)

	assert.Equal(t, "Strong seed-stage SaaS with efficient growth.", result.ExecutiveSummary)
	assert.Empty(t, result.RedFlags)
	assert.Equal(t, len(deckText), result.ProcessingInfo.TotalTextLength)
	assert.True(t, result.ProcessingInfo.LLMAvailable)
}

func TestCoordinator_LLMMetricsWinOnOverlap(t *testing.T) {
	var llmMetrics domain.Metrics
	llmMetrics.Set(domain.MetricARR, 150_000)
	llmMetrics.Set(domain.MetricLTV, 1_500)

	deps := Dependencies{
		Patterns: patternFunc(patternTier),
		Analyzer: &stubAnalyzer{analysis: healthyAnalysis(), status: domain.LLMStatus{OK: true}},
		Metrics:  &stubMetricInferrer{result: ports.Available(llmMetrics)},
		Store:    seedStore(),
	}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateText(context.Background(), deckText)

	arr, ok := result.ExtractedMetrics.Value(domain.MetricARR)
	require.True(t, ok)
	assert.Equal(t, 150_000.0, arr, "the LLM tier overrides the pattern tier on overlap")

	ltv, ok := result.ExtractedMetrics.Value(domain.MetricLTV)
	require.True(t, ok)
	assert.Equal(t, 1_500.0, ltv, "LLM-only metrics merge in")

	churn, ok := result.ExtractedMetrics.Value(domain.MetricChurnRate)
	require.True(t, ok)
	assert.Equal(t, 0.03, churn, "pattern-only metrics survive the merge")
}

func TestCoordinator_DegradedWithoutLLM(t *testing.T) {
	inferrer := &stubMetricInferrer{result: ports.Available(domain.Metrics{})}
	estimator := &stubEstimator{result: ports.Available(domain.BenchmarkContext{})}
	deps := Dependencies{
		Patterns:  patternFunc(patternTier),
		Metrics:   inferrer,
		Estimator: estimator,
		Store:     seedStore(),
	}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateText(context.Background(), deckText)

	require.True(t, result.Success, "a missing analyzer degrades, it does not fail")
	assert.False(t, result.LLMStatus.OK)
	assert.Equal(t, domain.FallbackAnalysis().ExecutiveSummary, result.ExecutiveSummary)
	assert.False(t, inferrer.called, "the LLM metric tier must not run when unhealthy")
	assert.False(t, estimator.called, "the estimator must not run when unhealthy")

	require.NotNil(t, result.LLMBenchmark)
	assert.Equal(t, defaultContextNotes, result.LLMBenchmark.Notes)
	assert.True(t, result.LLMBenchmark.Usable())

	// The deterministic tier still produces a full scored report.
	require.NotNil(t, result.Score.Composite)
	assert.NotContains(t, result.MarketAnalysis.Regulation, "Unknown",
		"the regulation guarantee replaces the fallback placeholder")
}

func TestCoordinator_EvaluateFiles_SkipsUnreadable(t *testing.T) {
	deps := Dependencies{
		Texts:    &stubTexts{files: map[string]string{"deck.txt": deckText}},
		Patterns: patternFunc(patternTier),
		Store:    seedStore(),
	}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateFiles(context.Background(), []string{"deck.txt", "photo.bin"})

	require.True(t, result.Success, "one readable file is enough")
	assert.Equal(t, []string{"deck.txt", "photo.bin"}, result.ProcessingInfo.FilesProcessed)
	assert.Contains(t, result.ProcessingInfo.FileErrors, "photo.bin")
	assert.NotContains(t, result.ProcessingInfo.FileErrors, "deck.txt")
}

func TestCoordinator_EvaluateFiles_AllUnreadable(t *testing.T) {
	deps := Dependencies{
		Texts:    &stubTexts{files: map[string]string{}},
		Patterns: patternFunc(patternTier),
	}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateFiles(context.Background(), []string{"a.bin", "b.bin"})

	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrNoText.Error(), result.Error)
	assert.Len(t, result.ProcessingInfo.FileErrors, 2)
	assert.Equal(t, domain.VerdictInsufficient, result.Score.Verdict)
	assert.Equal(t, domain.CohortSourceError, result.Cohort.Source)
}

func TestCoordinator_EvaluateText_EmptyText(t *testing.T) {
	deps := Dependencies{Patterns: patternFunc(patternTier)}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateText(context.Background(), "   \n\t")

	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrNoText.Error(), result.Error)
}

func TestCoordinator_NoStoreStillSucceeds(t *testing.T) {
	deps := Dependencies{Patterns: patternFunc(patternTier)}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateText(context.Background(), deckText)

	require.True(t, result.Success)
	assert.Empty(t, result.Benchmarks)
	assert.Equal(t, domain.VerdictInsufficient, result.Score.Verdict)
	assert.Contains(t, result.VerdictExplanation, "Insufficient benchmark data")
}

func TestCoordinator_EstimatorResultReplacesDefault(t *testing.T) {
	estimate := domain.BenchmarkContext{
		Cohort:    domain.CohortGuess{Sector: "saas", Stage: "seed"},
		Estimates: map[domain.MetricKey]domain.BenchmarkEstimate{domain.MetricARR: {Median: 300_000, Unit: "USD"}},
		Relative:  map[domain.MetricKey]string{domain.MetricARR: "below"},
		Notes:     "Peer medians from recent seed rounds.",
	}
	deps := Dependencies{
		Patterns:  patternFunc(patternTier),
		Analyzer:  &stubAnalyzer{analysis: healthyAnalysis(), status: domain.LLMStatus{OK: true}},
		Estimator: &stubEstimator{result: ports.Available(estimate)},
		Store:     seedStore(),
	}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateText(context.Background(), deckText)

	require.NotNil(t, result.LLMBenchmark)
	assert.Equal(t, "Peer medians from recent seed rounds.", result.LLMBenchmark.Notes)
	assert.Equal(t, 300_000.0, result.LLMBenchmark.Estimates[domain.MetricARR].Median)
}

func TestCoordinator_RedFlagsSurface(t *testing.T) {
	highChurn := func(string) domain.Metrics {
		var m domain.Metrics
		m.Set(domain.MetricChurnRate, 0.12)
		m.Sector = "saas"
		m.Stage = "seed"
		return m
	}
	deps := Dependencies{Patterns: patternFunc(highChurn), Store: seedStore()}
	c := NewCoordinator(deps, 4, nil, prometheus.NewRegistry())

	result := c.EvaluateText(context.Background(), "churn 12%")

	require.NotEmpty(t, result.RedFlags)
	assert.Equal(t, "high_churn", result.RedFlags[0].Type)
	assert.Equal(t, "high", result.RedFlags[0].Severity)
}
