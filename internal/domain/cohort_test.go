package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSector(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact canonical", "saas", "saas"},
		{"synonym", "software as a service", "saas"},
		{"substring match", "b2b saas for plumbers", "saas"},
		{"fintech synonym", "payments", "fintech"},
		{"bfsi alias", "bfsi", "fintech"},
		{"case folded", "FinTech", "fintech"},
		{"noise tokens stripped", "linkedin social media saas platform", "saas"},
		{"typo within distance", "fintec", "fintech"},
		{"typo healthcare", "helthcare", "healthtech"},
		{"unmatched falls back", "agriculture drones", "saas"},
		{"too short falls back", "ml", "saas"},
		{"empty falls back", "", "saas"},
		{"whitespace and newlines", "  health\ntech  ", "healthtech"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSector(tt.raw))
		})
	}
}

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"seed", "seed", "seed"},
		{"preseed variant", "preseed", "pre-seed"},
		{"series a spaced", "series a", "series-a"},
		{"bare letter", "b", "series-b"},
		{"late stage", "late stage", "growth"},
		{"unmatched falls back", "ipo", "seed"},
		{"empty falls back", "", "seed"},
		{"case folded", "Series A", "series-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStage(tt.raw))
		})
	}
}

func TestNormalizeCohort_NeverEmpty(t *testing.T) {
	c := NormalizeCohort(Cohort{Source: CohortSourceDefault})

	assert.Equal(t, DefaultSector, c.Sector)
	assert.Equal(t, DefaultStage, c.Stage)
	assert.Equal(t, CohortSourceDefault, c.Source, "provenance should pass through untouched")
}
