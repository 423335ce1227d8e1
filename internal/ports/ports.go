// Package ports defines the interfaces that form the contract between
// the evaluation core and its external collaborators: text extraction,
// LLM-backed analysis, document-entity enrichment, and the benchmark
// dataset. These interfaces enable dependency inversion and make the
// pipeline testable without network access.
package ports

import (
	"context"

	"github.com/ahrav/dealdesk/internal/domain"
)

// Maybe is a tagged collaborator result: either an available value or
// an explicit "unavailable" with a reason. Collaborator failures are
// converted to Unavailable at the call site instead of propagating as
// errors, so the default-on-failure path is visible in signatures
// rather than hidden in recover blocks.
type Maybe[T any] struct {
	value  T
	ok     bool
	reason string
}

// Available wraps a successfully obtained collaborator value.
func Available[T any](v T) Maybe[T] { return Maybe[T]{value: v, ok: true} }

// Unavailable marks a collaborator result as absent, with a short
// reason suitable for logs and processing metadata.
func Unavailable[T any](reason string) Maybe[T] { return Maybe[T]{reason: reason} }

// Get returns the value and whether it is available.
func (m Maybe[T]) Get() (T, bool) { return m.value, m.ok }

// Ok reports availability.
func (m Maybe[T]) Ok() bool { return m.ok }

// Reason returns why the value is unavailable; empty when available.
func (m Maybe[T]) Reason() string { return m.reason }

// TextExtractor pulls raw text out of a single document file. A failure
// is localized to that file: the coordinator skips it and keeps
// processing the others.
type TextExtractor interface {
	// Extract returns the text content of the file at path. It returns
	// an error for unsupported formats or unreadable files.
	Extract(ctx context.Context, path string) (string, error)
}

// EntityExtractor supplies structured entities (financial values,
// organizations, people) found in document text. Results merge
// additively into the metric set.
type EntityExtractor interface {
	Entities(ctx context.Context, text string) Maybe[domain.DocumentEntities]
}

// Analyzer is the qualitative LLM analysis collaborator. The returned
// status carries availability; when the collaborator is unreachable the
// analysis is a defensive fallback, never a partial object.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, domain.LLMStatus)
}

// MetricInferrer extracts a partial metric set from raw text using an
// LLM. It is only invoked when the qualitative collaborator reported
// healthy.
type MetricInferrer interface {
	InferMetrics(ctx context.Context, text string) Maybe[domain.Metrics]
}

// CohortInferrer guesses the sector/stage pair from raw text. Either
// field of the guess may be empty.
type CohortInferrer interface {
	InferCohort(ctx context.Context, text string) Maybe[domain.CohortGuess]
}

// BenchmarkEstimator asks an LLM for typical cohort medians and a
// coarse relative read of the company against them.
type BenchmarkEstimator interface {
	EstimateBenchmarks(
		ctx context.Context,
		text string,
		cohort domain.Cohort,
		metrics domain.Metrics,
	) Maybe[domain.BenchmarkContext]
}

// BenchmarkStore is the in-memory benchmark dataset. Lookups run
// against an immutable snapshot; Reload swaps the snapshot atomically
// after a successful parse so concurrent readers never observe a
// partially loaded table.
type BenchmarkStore interface {
	// Lookup returns the row for an exact (sector, stage, metric)
	// match. The caller passes already-normalized values.
	Lookup(sector, stage string, metric domain.MetricKey) (domain.BenchmarkRow, bool)

	// Reload repopulates the table from its configured source. A failed
	// reload leaves previously loaded rows intact and reports the
	// failure in the returned source info.
	Reload(ctx context.Context) (domain.BenchmarkSourceInfo, error)

	// SourceInfo describes the currently active snapshot.
	SourceInfo() domain.BenchmarkSourceInfo
}

// LLMClient is the minimal completion interface the analyst needs from
// an LLM provider. Implementations handle authentication, retries,
// rate limiting, and timeouts.
type LLMClient interface {
	// Complete sends a prompt and returns the generated text. The
	// options map carries provider-tunable parameters such as
	// "temperature" and "max_tokens".
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// GetModel returns the model identifier, for logging and for
	// capability checks.
	GetModel() string
}
