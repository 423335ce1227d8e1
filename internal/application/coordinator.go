package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/dealdesk/internal/domain"
	"github.com/ahrav/dealdesk/internal/logger"
	"github.com/ahrav/dealdesk/internal/ports"
)

// PatternExtractor is the deterministic, always-available extraction
// tier. It is a pure function of its input and never fails.
type PatternExtractor interface {
	Extract(text string) domain.Metrics
}

// Dependencies holds the collaborators a Coordinator orchestrates.
// Patterns is the only hard requirement; every other collaborator may
// be nil, degrading its pipeline stage to the documented default.
type Dependencies struct {
	Texts     ports.TextExtractor
	Patterns  PatternExtractor
	Entities  ports.EntityExtractor
	Analyzer  ports.Analyzer
	Metrics   ports.MetricInferrer
	Cohorts   ports.CohortInferrer
	Estimator ports.BenchmarkEstimator
	Store     ports.BenchmarkStore
}

// Coordinator runs the full evaluation pipeline: parse, analyze,
// benchmark. Any stage failure degrades to a well-typed default for
// that stage; the output contract guarantees every top-level result
// key is always present.
type Coordinator struct {
	deps    Dependencies
	cohorts *CohortResolver

	maxConcurrent int
	log           *zap.Logger
	tracer        trace.Tracer

	evaluations *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewCoordinator wires the pipeline. A nil logger defaults to no-op; a
// nil registerer uses the default Prometheus registry.
func NewCoordinator(deps Dependencies, maxConcurrentFiles int, log *zap.Logger, reg prometheus.Registerer) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if maxConcurrentFiles <= 0 {
		maxConcurrentFiles = 4
	}
	factory := promauto.With(reg)

	return &Coordinator{
		deps:          deps,
		cohorts:       NewCohortResolver(deps.Cohorts, log),
		maxConcurrent: maxConcurrentFiles,
		log:           log,
		tracer:        otel.Tracer("dealdesk/application"),
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evaluations_total",
				Help: "Total number of evaluation requests by verdict.",
			},
			[]string{"verdict"},
		),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "evaluation_duration_seconds",
			Help:    "End-to-end evaluation latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// EvaluateFiles extracts text from the given documents concurrently
// and evaluates the combined content. Unreadable files are recorded
// per path and skipped; the request fails only when no file yielded
// any text.
func (c *Coordinator) EvaluateFiles(ctx context.Context, paths []string) domain.EvaluationResult {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "evaluate.files",
		trace.WithAttributes(attribute.Int("files", len(paths))))
	defer span.End()

	texts := make([]string, len(paths))
	fileErrors := make(map[string]string)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)
	for i, path := range paths {
		g.Go(func() error {
			text, err := c.deps.Texts.Extract(gctx, path)
			if err != nil {
				mu.Lock()
				fileErrors[path] = err.Error()
				mu.Unlock()
				c.log.Warn("file skipped", zap.String("path", path), zap.Error(err))
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	_ = g.Wait()
	parseMs := time.Since(start).Milliseconds()

	var nonEmpty []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	combined := strings.Join(nonEmpty, "\n\n")

	if strings.TrimSpace(combined) == "" {
		c.evaluations.WithLabelValues("error").Inc()
		result := domain.ErrorResult(domain.ErrNoText.Error(), paths, fileErrors)
		result.ProcessingInfo.Timing = domain.PhaseTiming{
			TotalMs: time.Since(start).Milliseconds(),
			ParseMs: parseMs,
		}
		return result
	}

	return c.evaluate(ctx, combined, paths, fileErrors, parseMs, start)
}

// EvaluateText evaluates already-extracted text, bypassing the file
// parsing phase.
func (c *Coordinator) EvaluateText(ctx context.Context, text string) domain.EvaluationResult {
	start := time.Now()
	if strings.TrimSpace(text) == "" {
		c.evaluations.WithLabelValues("error").Inc()
		return domain.ErrorResult(domain.ErrNoText.Error(), nil, nil)
	}
	return c.evaluate(ctx, text, nil, nil, 0, start)
}

// evaluate runs the analysis and benchmark phases on combined text and
// assembles the final result.
func (c *Coordinator) evaluate(
	ctx context.Context,
	text string,
	files []string,
	fileErrors map[string]string,
	parseMs int64,
	start time.Time,
) domain.EvaluationResult {
	ctx, span := c.tracer.Start(ctx, "evaluate.pipeline",
		trace.WithAttributes(attribute.Int("text_length", len(text))))
	defer span.End()

	c.log.Debug("evaluating combined text",
		zap.Int("length", len(text)),
		zap.String("excerpt", logger.TruncateForLog(text, 120)))

	// Analysis phase: qualitative analysis plus two-tier metric
	// extraction. The pattern tier always runs; the LLM tier only when
	// the collaborator reported healthy, and its values win on overlap.
	analysisStart := time.Now()
	analysis, llmStatus := c.analyze(ctx, text)

	patternMetrics := c.deps.Patterns.Extract(text)
	var llmMetrics domain.Metrics
	if llmStatus.OK && c.deps.Metrics != nil {
		if m, ok := c.deps.Metrics.InferMetrics(ctx, text).Get(); ok {
			llmMetrics = m
		}
	}
	merged := domain.MergeMetrics(patternMetrics, llmMetrics)

	extracted := domain.ExtractedMetrics{Metrics: merged}
	var entityCount, tableCount int
	if c.deps.Entities != nil {
		if ents, ok := c.deps.Entities.Entities(ctx, text).Get(); ok {
			extracted.Enrich(ents)
			entityCount, tableCount = ents.EntityCount, ents.TableCount
		}
	}

	cohort := c.cohorts.Resolve(ctx, merged, text, llmStatus.OK)
	extracted.Sector, extracted.Stage = cohort.Sector, cohort.Stage

	analysis = domain.EnsureRegulation(analysis, cohort.Sector)
	analysisMs := time.Since(analysisStart).Milliseconds()

	// Benchmark phase: dataset comparison, scoring, and the qualitative
	// benchmark context (LLM estimate or static default).
	benchmarkStart := time.Now()
	comparisons := map[domain.MetricKey]domain.BenchmarkComparison{}
	if c.deps.Store != nil {
		comparisons = domain.CompareMetrics(extracted.Metrics, cohort, c.deps.Store.Lookup)
	}
	score := domain.ScoreFromComparisons(comparisons, nil)
	explanation := domain.BuildVerdictExplanation(score, comparisons, cohort)
	redFlags := domain.DetectRedFlags(analysis.MarketAnalysis, extracted.Metrics)

	benchmarkContext := DefaultBenchmarkContext(cohort, extracted.Metrics)
	if llmStatus.OK && c.deps.Estimator != nil {
		if bc, ok := c.deps.Estimator.EstimateBenchmarks(ctx, text, cohort, extracted.Metrics).Get(); ok {
			benchmarkContext = bc
		}
	}
	benchmarkMs := time.Since(benchmarkStart).Milliseconds()

	span.SetAttributes(
		attribute.String("verdict", string(score.Verdict)),
		attribute.String("cohort.sector", cohort.Sector),
		attribute.String("cohort.stage", cohort.Stage),
	)
	c.evaluations.WithLabelValues(string(score.Verdict)).Inc()
	c.duration.Observe(time.Since(start).Seconds())
	c.log.Info("evaluation complete",
		zap.String("verdict", string(score.Verdict)),
		zap.String("sector", cohort.Sector),
		zap.String("stage", cohort.Stage),
		zap.String("cohort_source", string(cohort.Source)),
		zap.Int("benchmarked_metrics", len(comparisons)),
		zap.Bool("llm_available", llmStatus.OK),
	)

	return domain.EvaluationResult{
		ExecutiveSummary: analysis.ExecutiveSummary,
		MarketAnalysis:   analysis.MarketAnalysis,
		Risks:            analysis.Risks,
		Recommendations:  analysis.Recommendations,

		ExtractedMetrics: extracted,
		Cohort:           cohort,

		Benchmarks:         comparisons,
		Score:              score,
		VerdictExplanation: explanation,
		RedFlags:           redFlags,

		LLMBenchmark: &benchmarkContext,
		LLMStatus:    llmStatus,

		ProcessingInfo: domain.ProcessingInfo{
			FilesProcessed:    files,
			FileErrors:        fileErrors,
			TotalTextLength:   len(text),
			EntitiesExtracted: entityCount,
			TablesExtracted:   tableCount,
			LLMAvailable:      llmStatus.OK,
			Timing: domain.PhaseTiming{
				TotalMs:     time.Since(start).Milliseconds(),
				ParseMs:     parseMs,
				AnalysisMs:  analysisMs,
				BenchmarkMs: benchmarkMs,
			},
		},
		Success: true,
	}
}

func (c *Coordinator) analyze(ctx context.Context, text string) (domain.Analysis, domain.LLMStatus) {
	if c.deps.Analyzer == nil {
		return domain.FallbackAnalysis(), domain.LLMStatus{OK: false, Error: "LLM analyzer not configured"}
	}
	return c.deps.Analyzer.Analyze(ctx, text)
}
