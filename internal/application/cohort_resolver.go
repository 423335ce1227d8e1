package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ahrav/dealdesk/internal/domain"
	"github.com/ahrav/dealdesk/internal/ports"
)

// CohortResolver resolves the (sector, stage) cohort for an evaluation
// from extracted metrics, falling back to LLM inference and then to
// hard defaults. Resolution never fails: malformed or absent input
// degrades to the default cohort with its provenance recorded.
type CohortResolver struct {
	inferrer ports.CohortInferrer
	log      *zap.Logger
}

// NewCohortResolver builds a resolver. The inferrer may be nil, in
// which case the LLM step is skipped entirely.
func NewCohortResolver(inferrer ports.CohortInferrer, log *zap.Logger) *CohortResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &CohortResolver{inferrer: inferrer, log: log}
}

// Resolve determines the cohort for the given metric set.
//
// Provenance: "extracted" when both sector and stage came from the
// metrics; "llm" when the inferrer filled at least one missing piece;
// "default" otherwise. Both fields are normalized to the closed
// vocabulary afterward, so the result is always complete and canonical.
func (r *CohortResolver) Resolve(ctx context.Context, metrics domain.Metrics, text string, llmOK bool) domain.Cohort {
	sector := strings.TrimSpace(strings.ToLower(metrics.Sector))
	stage := strings.TrimSpace(strings.ToLower(metrics.Stage))

	source := domain.CohortSourceDefault
	if sector != "" && stage != "" {
		source = domain.CohortSourceExtracted
	}

	if (sector == "" || stage == "") && llmOK && r.inferrer != nil {
		if guess, ok := r.inferrer.InferCohort(ctx, text).Get(); ok {
			if guess.Sector != "" || guess.Stage != "" {
				source = domain.CohortSourceLLM
			}
			if sector == "" {
				sector = guess.Sector
			}
			if stage == "" {
				stage = guess.Stage
			}
		}
	}

	cohort := domain.NormalizeCohort(domain.Cohort{Sector: sector, Stage: stage, Source: source})

	r.log.Debug("cohort resolved",
		zap.String("sector", cohort.Sector),
		zap.String("stage", cohort.Stage),
		zap.String("source", string(cohort.Source)))
	return cohort
}
