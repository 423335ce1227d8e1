package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/dealdesk/internal/domain"
	"github.com/ahrav/dealdesk/internal/ports"
)

// stubCohortInferrer returns a fixed guess and records invocations.
type stubCohortInferrer struct {
	guess  ports.Maybe[domain.CohortGuess]
	called bool
}

func (s *stubCohortInferrer) InferCohort(context.Context, string) ports.Maybe[domain.CohortGuess] {
	s.called = true
	return s.guess
}

func TestCohortResolver_ExtractedWhenComplete(t *testing.T) {
	inferrer := &stubCohortInferrer{guess: ports.Available(domain.CohortGuess{Sector: "fintech", Stage: "growth"})}
	r := NewCohortResolver(inferrer, nil)

	cohort := r.Resolve(context.Background(), domain.Metrics{Sector: "SaaS", Stage: "Seed"}, "text", true)

	assert.Equal(t, "saas", cohort.Sector)
	assert.Equal(t, "seed", cohort.Stage)
	assert.Equal(t, domain.CohortSourceExtracted, cohort.Source)
	assert.False(t, inferrer.called, "no LLM call when the metrics carry a full cohort")
}

func TestCohortResolver_LLMFillsMissingPiece(t *testing.T) {
	inferrer := &stubCohortInferrer{guess: ports.Available(domain.CohortGuess{Stage: "series a"})}
	r := NewCohortResolver(inferrer, nil)

	cohort := r.Resolve(context.Background(), domain.Metrics{Sector: "fintech"}, "text", true)

	assert.Equal(t, "fintech", cohort.Sector)
	assert.Equal(t, "series-a", cohort.Stage)
	assert.Equal(t, domain.CohortSourceLLM, cohort.Source)
}

func TestCohortResolver_DefaultWhenNothingAvailable(t *testing.T) {
	r := NewCohortResolver(nil, nil)

	cohort := r.Resolve(context.Background(), domain.Metrics{}, "text", false)

	assert.Equal(t, domain.DefaultSector, cohort.Sector)
	assert.Equal(t, domain.DefaultStage, cohort.Stage)
	assert.Equal(t, domain.CohortSourceDefault, cohort.Source)
}

func TestCohortResolver_SkipsLLMWhenUnhealthy(t *testing.T) {
	inferrer := &stubCohortInferrer{guess: ports.Available(domain.CohortGuess{Sector: "fintech", Stage: "seed"})}
	r := NewCohortResolver(inferrer, nil)

	cohort := r.Resolve(context.Background(), domain.Metrics{}, "text", false)

	assert.False(t, inferrer.called, "an unhealthy collaborator must not be queried")
	assert.Equal(t, domain.CohortSourceDefault, cohort.Source)
}

func TestCohortResolver_UnavailableGuessFallsThrough(t *testing.T) {
	inferrer := &stubCohortInferrer{guess: ports.Unavailable[domain.CohortGuess]("no signal")}
	r := NewCohortResolver(inferrer, nil)

	cohort := r.Resolve(context.Background(), domain.Metrics{}, "text", true)

	assert.True(t, inferrer.called)
	assert.Equal(t, domain.CohortSourceDefault, cohort.Source)
	assert.Equal(t, domain.DefaultSector, cohort.Sector)
}

func TestCohortResolver_NormalizesLLMGuess(t *testing.T) {
	inferrer := &stubCohortInferrer{guess: ports.Available(domain.CohortGuess{Sector: "bfsi", Stage: "late stage"})}
	r := NewCohortResolver(inferrer, nil)

	cohort := r.Resolve(context.Background(), domain.Metrics{}, "text", true)

	assert.Equal(t, "fintech", cohort.Sector)
	assert.Equal(t, "growth", cohort.Stage)
	assert.Equal(t, domain.CohortSourceLLM, cohort.Source)
}
