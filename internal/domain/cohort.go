package domain

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// CohortSource records which mechanism supplied a resolved cohort.
type CohortSource string

const (
	// CohortSourceExtracted means both sector and stage came from the
	// merged metric set.
	CohortSourceExtracted CohortSource = "extracted"

	// CohortSourceLLM means at least one missing piece was filled in by
	// the LLM cohort-inference collaborator.
	CohortSourceLLM CohortSource = "llm"

	// CohortSourceDefault means the hard defaults were used.
	CohortSourceDefault CohortSource = "default"

	// CohortSourceError marks the degraded cohort on a failed request.
	CohortSourceError CohortSource = "error"
)

// Default cohort values used when nothing usable could be resolved.
const (
	DefaultSector = "saas"
	DefaultStage  = "seed"
)

// Cohort is the resolved (sector, stage) pair used to select the
// benchmark slice, plus the provenance of the resolution. After
// resolution both fields are non-empty and canonical.
type Cohort struct {
	Sector string       `json:"sector"`
	Stage  string       `json:"stage"`
	Source CohortSource `json:"source"`
}

// CohortGuess is a raw (possibly empty) sector/stage pair suggested by
// an inference collaborator, before normalization.
type CohortGuess struct {
	Sector string `json:"sector"`
	Stage  string `json:"stage"`
}

// foldCaser is a package-level Unicode case folder so normalization
// does not allocate a new caser per call.
var foldCaser = cases.Fold()

// sectorSynonyms maps each canonical sector to the raw variants that
// should collapse into it. Variant matching is substring-based on the
// cleaned input, with a small edit-distance fallback for typos.
var sectorSynonyms = map[string][]string{
	"saas":      {"saas", "software", "software as a service", "b2b saas", "enterprise software"},
	"fintech":   {"fintech", "finance", "financial services", "payments", "banking", "bfsi"},
	"healthtech": {"healthtech", "healthcare", "health", "medical", "med tech", "digital health"},
	"ecommerce": {"ecommerce", "e-commerce", "marketplace", "retail", "commerce", "resale"},
	"ai-ml":     {"ai", "ml", "artificial intelligence", "machine learning", "ai/ml", "deep learning"},
	"edtech":    {"edtech", "education", "e-learning", "learning"},
	"logistics": {"logistics", "supply chain", "transportation", "delivery"},
	"hr-tech":   {"hr", "hr tech", "human resources", "workforce", "recruitment"},
}

// canonicalSectors fixes the iteration order over sectorSynonyms so
// normalization is deterministic when variants of different sectors
// both appear in the input.
var canonicalSectors = []string{
	"saas", "fintech", "healthtech", "ecommerce", "ai-ml", "edtech", "logistics", "hr-tech",
}

// sectorNoiseTokens are stripped from raw sector strings before
// matching. Pitch decks frequently put social links or boilerplate on
// the same line as the sector label.
var sectorNoiseTokens = []string{
	"linkedin", "facebook", "twitter", "instagram", "social", "media", "platform",
}

// stageAliases is the exact-match table for funding stages.
var stageAliases = map[string]string{
	"pre-seed":   "pre-seed",
	"preseed":    "pre-seed",
	"seed":       "seed",
	"series a":   "series-a",
	"series-a":   "series-a",
	"a":          "series-a",
	"series b":   "series-b",
	"series-b":   "series-b",
	"b":          "series-b",
	"series c":   "series-c",
	"series-c":   "series-c",
	"c":          "series-c",
	"growth":     "growth",
	"late stage": "growth",
	"late-stage": "growth",
}

// cleanCohortToken strips newlines and carriage returns, collapses
// internal whitespace, case-folds, and trims.
func cleanCohortToken(raw string) string {
	s := strings.NewReplacer("\n", " ", "\r", " ").Replace(raw)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(foldCaser.String(s))
}

// NormalizeSector canonicalizes a raw sector string to the closed
// sector vocabulary. Noise tokens are stripped first; unmatched or
// too-short inputs fall back to the default sector. Normalization
// never fails.
func NormalizeSector(raw string) string {
	s := cleanCohortToken(raw)
	for _, noise := range sectorNoiseTokens {
		s = strings.ReplaceAll(s, noise, " ")
	}
	s = strings.Join(strings.Fields(s), " ")

	if len(s) <= 2 {
		return DefaultSector
	}

	for _, canonical := range canonicalSectors {
		for _, variant := range sectorSynonyms[canonical] {
			if strings.Contains(s, variant) {
				return canonical
			}
		}
	}

	// Edit-distance fallback catches near-misses like "fintec" or
	// "helthcare" without reopening the vocabulary.
	for _, canonical := range canonicalSectors {
		for _, variant := range sectorSynonyms[canonical] {
			if len(variant) > 3 && levenshtein.ComputeDistance(s, variant) <= 2 {
				return canonical
			}
		}
	}

	return DefaultSector
}

// NormalizeStage canonicalizes a raw stage string via the exact-match
// alias table; unmatched input falls back to the default stage.
func NormalizeStage(raw string) string {
	s := cleanCohortToken(raw)
	if canonical, ok := stageAliases[s]; ok {
		return canonical
	}
	return DefaultStage
}

// NormalizeCohort canonicalizes a cohort in place, guaranteeing
// non-empty sector and stage.
func NormalizeCohort(c Cohort) Cohort {
	c.Sector = NormalizeSector(c.Sector)
	c.Stage = NormalizeStage(c.Stage)
	return c
}
