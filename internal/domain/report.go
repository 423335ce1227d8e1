package domain

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// BenchmarkEstimate is one LLM-suggested benchmark median with its
// unit, used for context when the local dataset has no row.
type BenchmarkEstimate struct {
	Median float64 `json:"median"`
	Unit   string  `json:"unit"`
}

// BenchmarkContext is the qualitative benchmark payload attached to a
// report: estimated cohort medians plus a coarse above/near/below read
// of the company against them. When the LLM estimator is unavailable a
// static default payload is substituted so downstream consumers always
// receive a non-empty context object.
type BenchmarkContext struct {
	Cohort    CohortGuess                     `json:"cohort"`
	Estimates map[MetricKey]BenchmarkEstimate `json:"estimates"`
	Relative  map[MetricKey]string            `json:"relative"`
	Notes     string                          `json:"notes"`
}

// Usable reports whether the context carries at least one estimate.
func (b BenchmarkContext) Usable() bool { return len(b.Estimates) > 0 }

// PhaseTiming records per-phase wall-clock durations in milliseconds.
type PhaseTiming struct {
	TotalMs     int64 `json:"total_ms"`
	ParseMs     int64 `json:"parser_ms"`
	AnalysisMs  int64 `json:"analysis_ms"`
	BenchmarkMs int64 `json:"benchmark_ms"`
}

// ProcessingInfo is the metadata block attached to every evaluation
// result, successful or not.
type ProcessingInfo struct {
	FilesProcessed    []string          `json:"files_processed"`
	FileErrors        map[string]string `json:"file_errors,omitempty"`
	TotalTextLength   int               `json:"total_text_length"`
	EntitiesExtracted int               `json:"entities_extracted"`
	TablesExtracted   int               `json:"tables_extracted"`
	LLMAvailable      bool              `json:"llm_available"`
	Timing            PhaseTiming       `json:"timing"`
}

// EvaluationResult is the JSON-serializable output of one evaluation
// request. Every top-level key is always present with a well-typed
// value; degraded stages contribute defaults rather than omissions.
type EvaluationResult struct {
	ExecutiveSummary string           `json:"executiveSummary"`
	MarketAnalysis   MarketAnalysis   `json:"marketAnalysis"`
	Risks            []Risk           `json:"risks"`
	Recommendations  []Recommendation `json:"recommendations"`

	ExtractedMetrics ExtractedMetrics `json:"extractedMetrics"`
	Cohort           Cohort           `json:"cohort"`

	Benchmarks         map[MetricKey]BenchmarkComparison `json:"benchmarks"`
	Score              ScoreResult                       `json:"score"`
	VerdictExplanation string                            `json:"verdictExplanation"`
	RedFlags           []RedFlag                         `json:"redFlags,omitempty"`

	LLMBenchmark *BenchmarkContext `json:"llmBenchmark"`
	LLMStatus    LLMStatus         `json:"llmStatus"`

	ProcessingInfo ProcessingInfo `json:"processingInfo"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
}

// ErrorResult builds the well-formed failure result for a request that
// could not be processed at all. All narrative fields are populated
// with a processing-failed explanation; nothing is left absent.
func ErrorResult(message string, filesProcessed []string, fileErrors map[string]string) EvaluationResult {
	return EvaluationResult{
		ExecutiveSummary: fmt.Sprintf("Analysis failed: %s", message),
		MarketAnalysis: MarketAnalysis{
			MarketSize:    "N/A",
			GrowthRate:    "N/A",
			Competition:   "N/A",
			EntryBarriers: "N/A",
			Regulation:    "N/A",
		},
		Risks: []Risk{{
			Factor:      "Data Processing Error",
			Impact:      "high",
			Description: message,
		}},
		Recommendations: []Recommendation{{
			Title:       "Resubmit Documents",
			Description: "Please ensure documents are readable and try again.",
		}},
		ExtractedMetrics: ExtractedMetrics{},
		Cohort:           Cohort{Sector: "unknown", Stage: "unknown", Source: CohortSourceError},
		Benchmarks:       map[MetricKey]BenchmarkComparison{},
		Score:            InsufficientScore(),
		LLMBenchmark:     nil,
		LLMStatus:        LLMStatus{OK: false, Error: message},
		ProcessingInfo: ProcessingInfo{
			FilesProcessed: filesProcessed,
			FileErrors:     fileErrors,
		},
		Success: false,
		Error:   message,
	}
}

// Thresholds for highlighting metrics in the verdict explanation.
const (
	strengthPercentile = 0.75
	weaknessPercentile = 0.25
)

// BuildVerdictExplanation renders the human-readable reasoning behind a
// verdict: composite, cohort, above/below counts, top strengths and
// weak areas, and a per-verdict recommendation.
func BuildVerdictExplanation(score ScoreResult, benchmarks map[MetricKey]BenchmarkComparison, cohort Cohort) string {
	if score.Composite == nil {
		return fmt.Sprintf(
			"Insufficient benchmark data available for %s/%s cohort. Consider manual evaluation based on qualitative factors.",
			cohort.Sector, cohort.Stage)
	}

	var above, below int
	for _, b := range benchmarks {
		if b.Status == StatusAbove {
			above++
		} else {
			below++
		}
	}

	parts := []string{
		fmt.Sprintf("**Verdict: %s**", score.Verdict),
		fmt.Sprintf("\nComposite Score: %.1f/100", *score.Composite*100),
		fmt.Sprintf("\nCohort: %s/%s", titleCase(cohort.Sector), titleCase(cohort.Stage)),
		"\n**Benchmark Performance:**",
		fmt.Sprintf("- %d/%d metrics above median", above, len(benchmarks)),
		fmt.Sprintf("- %d/%d metrics below median", below, len(benchmarks)),
	}

	switch score.Verdict {
	case VerdictProceed:
		parts = append(parts, "\n**Recommendation:** Strong metrics relative to cohort. Consider advancing to due diligence.")
	case VerdictTrack:
		parts = append(parts, "\n**Recommendation:** Mixed performance. Monitor progress and re-evaluate in 3-6 months.")
	case VerdictPass:
		parts = append(parts, "\n**Recommendation:** Metrics below cohort standards. Requires significant improvement before investment.")
	}

	if top := selectByPercentile(benchmarks, func(p float64) bool { return p >= strengthPercentile }, true); len(top) > 0 {
		parts = append(parts, "\n**Top Strengths:**")
		for _, key := range top {
			parts = append(parts, fmt.Sprintf("- %s: %.0fth percentile", key, benchmarks[key].Percentile*100))
		}
	}
	if weak := selectByPercentile(benchmarks, func(p float64) bool { return p <= weaknessPercentile }, false); len(weak) > 0 {
		parts = append(parts, "\n**Areas for Improvement:**")
		for _, key := range weak {
			parts = append(parts, fmt.Sprintf("- %s: %.0fth percentile", key, benchmarks[key].Percentile*100))
		}
	}

	return strings.Join(parts, "\n")
}

// selectByPercentile picks up to three metrics matching the predicate,
// sorted by percentile (descending for strengths, ascending for
// weaknesses) with the key as a deterministic tiebreak.
func selectByPercentile(benchmarks map[MetricKey]BenchmarkComparison, match func(float64) bool, descending bool) []MetricKey {
	var keys []MetricKey
	for key, b := range benchmarks {
		if match(b.Percentile) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := benchmarks[keys[i]].Percentile, benchmarks[keys[j]].Percentile
		if pi != pj {
			if descending {
				return pi > pj
			}
			return pi < pj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > 3 {
		keys = keys[:3]
	}
	return keys
}

// RedFlag is one detected warning sign in the startup data. Red flags
// are advisory context only; they never feed the composite score.
type RedFlag struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"` // "low" | "medium" | "high"
	Description string `json:"description"`
	Detected    bool   `json:"detected"`
}

// Red-flag thresholds. Churn and growth are stored as fractions.
const (
	churnWarnThreshold   = 0.05 // monthly churn above 5% is concerning
	churnSevereThreshold = 0.10
	ltvCACHealthyRatio   = 3.0
	lowGrowthMoM         = 0.05
	arrMRRTolerance      = 0.25 // ARR deviating >25% from 12x MRR
)

var trillionTAMPattern = regexp.MustCompile(`(?i)\$?\s*[\d,.]+\s*(trillion|T\b)`)

// DetectRedFlags scans the qualitative market analysis and the merged
// metric set for specific warning signs: inflated TAM, high churn, poor
// unit economics, low growth, and ARR/MRR inconsistency.
func DetectRedFlags(market MarketAnalysis, metrics Metrics) []RedFlag {
	var flags []RedFlag

	if tam := market.MarketSize; tam != "" {
		lower := strings.ToLower(tam)
		if strings.Contains(lower, "inflated") || strings.Contains(lower, "unrealistic") || strings.Contains(lower, "overstated") {
			flags = append(flags, RedFlag{
				Type:        "inflated_tam",
				Severity:    "high",
				Description: fmt.Sprintf("Market size claims may be inflated: %s", truncate(tam, 100)),
				Detected:    true,
			})
		} else if trillionTAMPattern.MatchString(tam) {
			flags = append(flags, RedFlag{
				Type:        "inflated_tam",
				Severity:    "medium",
				Description: "TAM exceeds $1 trillion - verify market sizing methodology",
				Detected:    true,
			})
		}
	}

	if churn, ok := metrics.Value(MetricChurnRate); ok && churn > churnWarnThreshold {
		severity := "medium"
		if churn > churnSevereThreshold {
			severity = "high"
		}
		flags = append(flags, RedFlag{
			Type:        "high_churn",
			Severity:    severity,
			Description: fmt.Sprintf("Monthly churn rate of %.1f%% is above healthy threshold (3-5%% for SaaS)", churn*100),
			Detected:    true,
		})
	}

	ltv, hasLTV := metrics.Value(MetricLTV)
	cac, hasCAC := metrics.Value(MetricCAC)
	if hasLTV && hasCAC && cac > 0 {
		if ratio := ltv / cac; ratio < ltvCACHealthyRatio {
			flags = append(flags, RedFlag{
				Type:        "poor_unit_economics",
				Severity:    "high",
				Description: fmt.Sprintf("LTV:CAC ratio of %.1f:1 is below healthy threshold (3:1)", ratio),
				Detected:    true,
			})
		}
	}

	if growth, ok := metrics.Value(MetricGrowthMoM); ok && growth < lowGrowthMoM {
		flags = append(flags, RedFlag{
			Type:        "low_growth",
			Severity:    "medium",
			Description: fmt.Sprintf("Month-over-month growth of %.1f%% is below expected rate (10-20%% for early stage)", growth*100),
			Detected:    true,
		})
	}

	arr, hasARR := metrics.Value(MetricARR)
	mrr, hasMRR := metrics.Value(MetricMRR)
	if hasARR && hasMRR && mrr > 0 {
		implied := mrr * 12
		if deviation := math.Abs(arr-implied) / implied; deviation > arrMRRTolerance {
			flags = append(flags, RedFlag{
				Type:        "inconsistent_metrics",
				Severity:    "medium",
				Description: fmt.Sprintf("Reported ARR deviates %.0f%% from 12x MRR; revenue definitions may be inconsistent", deviation*100),
				Detected:    true,
			})
		}
	}

	return flags
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
