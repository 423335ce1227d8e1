package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternEntityExtractor_FindsEntities(t *testing.T) {
	const text = `Acme Payroll Pvt Ltd raised $1.2m at a $8m cap.
Founders: Asha Rao, Vikram Mehta
Current MRR is ₹4,00,000 with 3% churn.`

	got := NewPatternEntityExtractor().Entities(context.Background(), text)
	require.True(t, got.Ok())
	ents, _ := got.Get()

	assert.Contains(t, ents.Organizations, "Acme Payroll Pvt Ltd")
	assert.Contains(t, ents.People, "Asha Rao")
	assert.Contains(t, ents.People, "Vikram Mehta")
	assert.NotEmpty(t, ents.FinancialValues)
	assert.Equal(t, len(ents.FinancialValues)+len(ents.Organizations)+len(ents.People), ents.EntityCount)
}

func TestPatternEntityExtractor_FounderLineVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"founded by", "Founded by: Jane Doe & John Roe", []string{"Jane Doe", "John Roe"}},
		{"co-founders", "Co-founders: A. Kumar, B. Singh and C. Das", []string{"A. Kumar", "B. Singh and C. Das"}},
		{"single founder", "Founder - Priya Nair", []string{"Priya Nair"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPatternEntityExtractor().Entities(context.Background(), tt.text)
			require.True(t, got.Ok())
			ents, _ := got.Get()
			for _, name := range tt.want {
				assert.Contains(t, ents.People, name)
			}
		})
	}
}

func TestPatternEntityExtractor_CountsTables(t *testing.T) {
	const text = `Metrics table:
| metric | value |
| arr    | 120k  |
| churn  | 3%    |

Narrative paragraph with no pipes.

| cohort | median |
| seed   | 250k   |`

	got := NewPatternEntityExtractor().Entities(context.Background(), text)
	require.True(t, got.Ok())
	ents, _ := got.Get()
	assert.Equal(t, 2, ents.TableCount)
}

func TestPatternEntityExtractor_EmptyTextIsAvailable(t *testing.T) {
	got := NewPatternEntityExtractor().Entities(context.Background(), "nothing structured here")
	require.True(t, got.Ok(), "no entities is still a successful extraction")
	ents, _ := got.Get()
	assert.Zero(t, ents.EntityCount)
	assert.Zero(t, ents.TableCount)
}

func TestPatternEntityExtractor_DeduplicatesMentions(t *testing.T) {
	const text = "Acme Inc partnered with Acme Inc after Acme Inc raised $5m."

	got := NewPatternEntityExtractor().Entities(context.Background(), text)
	require.True(t, got.Ok())
	ents, _ := got.Get()
	assert.Len(t, ents.Organizations, 1)
}

func TestPatternEntityExtractor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := NewPatternEntityExtractor().Entities(ctx, "Acme Inc")
	assert.False(t, got.Ok())
}
