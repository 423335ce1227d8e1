package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ahrav/dealdesk/internal/domain"
	"github.com/ahrav/dealdesk/internal/ports"
)

// Compile-time checks that Analyst satisfies every LLM collaborator
// port.
var (
	_ ports.Analyzer           = (*Analyst)(nil)
	_ ports.MetricInferrer     = (*Analyst)(nil)
	_ ports.CohortInferrer     = (*Analyst)(nil)
	_ ports.BenchmarkEstimator = (*Analyst)(nil)
)

// Prompt text caps. Longer documents are trimmed before being embedded
// in a prompt.
const (
	analysisTextCap  = 8000
	cohortTextCap    = 6000
	benchmarkTextCap = 2000
)

// Analyst implements the LLM-backed collaborators of the evaluation
// pipeline on top of a single completion client: qualitative analysis,
// metric inference, cohort inference, and benchmark estimation. Every
// method degrades to an explicit unavailable result instead of
// propagating provider failures.
type Analyst struct {
	client   ports.LLMClient
	log      *zap.Logger
	validate *validator.Validate
}

// NewAnalyst builds an analyst over the given completion client.
// A nil logger defaults to a no-op logger.
func NewAnalyst(client ports.LLMClient, log *zap.Logger) *Analyst {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyst{
		client:   client,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

const analysisPrompt = `You are an experienced venture capital investment analyst.
Your job is to rigorously analyze startup-related documents and produce ONLY a valid JSON object.
Follow the schema EXACTLY: no extra text, no explanations, no placeholders, no "N/A".
If information is missing, intelligently infer reasonable assumptions based on typical startups in the sector/stage.

OUTPUT SCHEMA:
{
    "executiveSummary": string,
    "marketAnalysis": {
        "marketSize": string,
        "growthRate": string,
        "competition": string,
        "entryBarriers": string,
        "regulation": string
    },
    "risks": [
        {"factor": string, "impact": "low" | "medium" | "high", "description": string}
    ],
    "recommendations": [
        {"title": string, "description": string}
    ]
}

RULES:
- Output must be STRICT JSON, parseable without errors.
- Be concise but analytical, as if writing due diligence notes for a VC firm.
- Never include commentary outside the JSON block.
- If data is not explicitly in the document, infer based on common industry knowledge.
- Keep all values realistic, professional, and startup-relevant.

DOCUMENT CONTENT (trimmed):
%s`

// analysisResponse mirrors the analysis schema for validation before
// the payload is coerced into the domain type.
type analysisResponse struct {
	ExecutiveSummary string                `json:"executiveSummary"`
	MarketAnalysis   domain.MarketAnalysis `json:"marketAnalysis"`
	Risks            []struct {
		Factor      string `json:"factor"`
		Impact      string `json:"impact" validate:"omitempty,oneof=low medium high"`
		Description string `json:"description"`
	} `json:"risks" validate:"dive"`
	Recommendations []domain.Recommendation `json:"recommendations"`
}

// Analyze runs the qualitative analysis. On any provider or parse
// failure it returns the neutral fallback analysis together with a
// status describing the failure; it never returns a partial object.
func (a *Analyst) Analyze(ctx context.Context, text string) (domain.Analysis, domain.LLMStatus) {
	if strings.TrimSpace(text) == "" {
		return domain.FallbackAnalysis(), domain.LLMStatus{OK: false, Error: "no text extracted from documents"}
	}

	prompt := fmt.Sprintf(analysisPrompt, trim(text, analysisTextCap))
	raw, err := a.client.Complete(ctx, prompt, map[string]any{
		"temperature": 0.2,
		"max_tokens":  2048,
	})
	if err != nil {
		a.log.Warn("analysis request failed", zap.Error(err))
		return domain.FallbackAnalysis(), statusFromError(err)
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		a.log.Warn("analysis response contained no JSON", zap.Int("response_len", len(raw)))
		return domain.FallbackAnalysis(), domain.LLMStatus{OK: false, Error: "model returned non-JSON output"}
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		a.log.Warn("analysis response failed to parse", zap.Error(err))
		return domain.FallbackAnalysis(), domain.LLMStatus{OK: false, Error: "model returned non-JSON output"}
	}

	if err := a.validate.Struct(resp); err != nil {
		// Out-of-vocabulary impact levels are normalized rather than
		// discarding an otherwise usable analysis.
		a.log.Debug("analysis response failed validation", zap.Error(err))
		for i := range resp.Risks {
			switch resp.Risks[i].Impact {
			case "low", "medium", "high":
			default:
				resp.Risks[i].Impact = ""
			}
		}
	}

	analysis := domain.Analysis{
		ExecutiveSummary: resp.ExecutiveSummary,
		MarketAnalysis:   resp.MarketAnalysis,
		Recommendations:  resp.Recommendations,
	}
	for _, r := range resp.Risks {
		analysis.Risks = append(analysis.Risks, domain.Risk{
			Factor:      r.Factor,
			Impact:      r.Impact,
			Description: r.Description,
		})
	}

	return analysis.Coerced(), domain.LLMStatus{OK: true}
}

const metricsPrompt = `Read the startup documents below and output STRICT JSON mapping metric names to numbers.
Allowed keys (omit any you cannot determine, never write null):
  "arr", "mrr", "cac", "ltv" - absolute currency amounts, expanded (e.g. 1.5 cr means 15000000)
  "churnRate", "growthYoY", "growthMoM", "grossMargin" - fractions (7%% means 0.07)
  "headcount", "runwayMonths" - plain numbers
Also allowed: "sector" and "stage" as short lowercase strings.
Only return the JSON object.

DOCUMENT (trimmed):
%s`

// InferMetrics asks the model for a partial metric set. Unknown keys
// and non-numeric values are dropped; an empty or failed result is
// reported as unavailable.
func (a *Analyst) InferMetrics(ctx context.Context, text string) ports.Maybe[domain.Metrics] {
	prompt := fmt.Sprintf(metricsPrompt, trim(text, analysisTextCap))
	raw, err := a.client.Complete(ctx, prompt, map[string]any{
		"temperature": 0.0,
		"max_tokens":  512,
	})
	if err != nil {
		a.log.Warn("metric inference failed", zap.Error(err))
		return ports.Unavailable[domain.Metrics](err.Error())
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return ports.Unavailable[domain.Metrics]("model returned non-JSON output")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return ports.Unavailable[domain.Metrics]("model returned non-JSON output")
	}

	var metrics domain.Metrics
	for key, value := range payload {
		switch key {
		case "sector":
			if s, ok := value.(string); ok {
				metrics.Sector = strings.TrimSpace(strings.ToLower(s))
			}
		case "stage":
			if s, ok := value.(string); ok {
				metrics.Stage = strings.TrimSpace(strings.ToLower(s))
			}
		default:
			if num, ok := value.(float64); ok {
				metrics.Set(domain.MetricKey(key), num)
			}
		}
	}

	if metrics.IsEmpty() && metrics.Sector == "" && metrics.Stage == "" {
		return ports.Unavailable[domain.Metrics]("model returned no usable metrics")
	}
	return ports.Available(metrics)
}

const cohortPrompt = `Read the startup documents below and output STRICT JSON with:
{
  "sector": string,
  "stage": string
}
The sector is a short lowercase label (examples: saas, fintech, bfsi, hr, ecommerce, healthtech, edtech, logistics, ai, marketplace).
The stage is one of: pre-seed, seed, series a, series b, series c, growth.
If unclear, leave the value as an empty string. Only return JSON.

DOCUMENT (trimmed):
%s`

// InferCohort guesses the sector/stage pair from raw text. Both fields
// may come back empty; an entirely empty guess is unavailable.
func (a *Analyst) InferCohort(ctx context.Context, text string) ports.Maybe[domain.CohortGuess] {
	prompt := fmt.Sprintf(cohortPrompt, trim(text, cohortTextCap))
	raw, err := a.client.Complete(ctx, prompt, map[string]any{
		"temperature": 0.0,
		"max_tokens":  128,
	})
	if err != nil {
		a.log.Warn("cohort inference failed", zap.Error(err))
		return ports.Unavailable[domain.CohortGuess](err.Error())
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return ports.Unavailable[domain.CohortGuess]("model returned non-JSON output")
	}

	var guess domain.CohortGuess
	if err := json.Unmarshal([]byte(jsonStr), &guess); err != nil {
		return ports.Unavailable[domain.CohortGuess]("model returned non-JSON output")
	}

	guess.Sector = strings.TrimSpace(strings.ToLower(guess.Sector))
	guess.Stage = strings.TrimSpace(strings.ToLower(guess.Stage))
	if guess.Sector == "" && guess.Stage == "" {
		return ports.Unavailable[domain.CohortGuess]("model could not determine cohort")
	}
	return ports.Available(guess)
}

const benchmarkPrompt = `You are a VC analyst. Based on the excerpt and the cohort, suggest typical medians for the given metrics and qualitatively compare the company's values vs those medians. Output STRICT JSON only with this schema:
{
  "cohort": {"sector": string, "stage": string},
  "estimates": { [metric: string]: { "median": number, "unit": string } },
  "relative": { [metric: string]: "above"|"near"|"below" },
  "notes": string
}

Cohort: sector='%s', stage='%s'.
Company metrics (unit as implied): %s.
Excerpt: %s
Use conservative, broadly-cited figures for early-stage startups. If uncertain for a metric, omit it.`

const defaultBenchmarkNotes = "Estimates are directional; validate against dataset medians for the cohort."

// EstimateBenchmarks asks the model for typical cohort medians and a
// coarse above/near/below read of the company's present metrics.
// With no present metrics there is nothing to compare, so the result
// is unavailable.
func (a *Analyst) EstimateBenchmarks(
	ctx context.Context,
	text string,
	cohort domain.Cohort,
	metrics domain.Metrics,
) ports.Maybe[domain.BenchmarkContext] {
	present := map[string]float64{}
	for _, key := range domain.NumericMetricKeys {
		if v, ok := metrics.Value(key); ok {
			present[string(key)] = v
		}
	}
	if len(present) == 0 {
		return ports.Unavailable[domain.BenchmarkContext]("no metrics to benchmark")
	}

	presentJSON, err := json.Marshal(present)
	if err != nil {
		return ports.Unavailable[domain.BenchmarkContext](err.Error())
	}

	prompt := fmt.Sprintf(benchmarkPrompt,
		cohort.Sector, cohort.Stage, string(presentJSON), trim(text, benchmarkTextCap))
	raw, err := a.client.Complete(ctx, prompt, map[string]any{
		"temperature": 0.1,
		"max_tokens":  768,
	})
	if err != nil {
		a.log.Warn("benchmark estimation failed", zap.Error(err))
		return ports.Unavailable[domain.BenchmarkContext](err.Error())
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return ports.Unavailable[domain.BenchmarkContext]("model returned non-JSON output")
	}

	var bc domain.BenchmarkContext
	if err := json.Unmarshal([]byte(jsonStr), &bc); err != nil {
		return ports.Unavailable[domain.BenchmarkContext]("model returned non-JSON output")
	}

	bc.Cohort.Sector = strings.TrimSpace(strings.ToLower(bc.Cohort.Sector))
	bc.Cohort.Stage = strings.TrimSpace(strings.ToLower(bc.Cohort.Stage))
	if bc.Cohort.Sector == "" {
		bc.Cohort.Sector = cohort.Sector
	}
	if bc.Cohort.Stage == "" {
		bc.Cohort.Stage = cohort.Stage
	}
	if bc.Estimates == nil {
		bc.Estimates = map[domain.MetricKey]domain.BenchmarkEstimate{}
	}
	if bc.Relative == nil {
		bc.Relative = map[domain.MetricKey]string{}
	}
	if strings.TrimSpace(bc.Notes) == "" {
		bc.Notes = defaultBenchmarkNotes
	}

	if !bc.Usable() {
		return ports.Unavailable[domain.BenchmarkContext]("model returned no estimates")
	}
	return ports.Available(bc)
}

// statusFromError converts a provider failure into the status shape
// carried on evaluation results. HTTP status and the retry hint are
// surfaced when the error was classified.
func statusFromError(err error) domain.LLMStatus {
	status := domain.LLMStatus{OK: false, Error: "LLM service is temporarily unavailable."}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		status.Status = provErr.StatusCode
		if provErr.RetryAfter > 0 {
			status.RetryAfterSec = int(provErr.RetryAfter.Seconds())
		}
	}
	return status
}

func trim(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

// extractJSON pulls a JSON object out of a model response that may
// wrap it in markdown fences or surrounding prose. It prefers fenced
// blocks, then falls back to brace matching from the first '{'.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if idx := strings.Index(response, "```"); idx != -1 {
		start := idx + 3
		// Skip a language identifier line if present.
		if nl := strings.Index(response[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(response[start : start+end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escapeNext := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		switch ch {
		case '\\':
			escapeNext = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return response[start : i+1]
				}
			}
		}
	}
	return ""
}
