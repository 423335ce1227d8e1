package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/ahrav/dealdesk/internal/domain"
	"github.com/ahrav/dealdesk/internal/ports"
)

var _ ports.EntityExtractor = (*PatternEntityExtractor)(nil)

var (
	financialValuePattern = regexp.MustCompile(`[₹$€£]\s?[\d,]+(?:\.\d+)?\s*(?:k|m|mn|b|bn|cr|crore|l|lakh|million|billion)?\b`)
	organizationPattern   = regexp.MustCompile(`\b([A-Z][A-Za-z0-9&.\- ]{1,40}?\s(?:Pvt\.?\s?Ltd\.?|Private Limited|Inc\.?|LLC|Ltd\.?|Corp\.?|Technologies|Labs))`)
	founderLinePattern    = regexp.MustCompile(`(?im)^\s*(?:co-?founders?|founders?|founded by)\s*[:\-]\s*(.+)$`)
	tableRowPattern       = regexp.MustCompile(`(?m)^[^\n|]*\|[^\n|]*\|`)
)

const maxEntitiesPerKind = 20

// PatternEntityExtractor pulls structured entities (financial figures,
// organization names, founders) out of document text with fixed
// pattern rules. It stands in for an external document-parsing service
// and shares its additive enrichment contract: results only ever add
// context, never override extracted metrics.
type PatternEntityExtractor struct{}

// NewPatternEntityExtractor returns the pattern-based entity source.
func NewPatternEntityExtractor() *PatternEntityExtractor { return &PatternEntityExtractor{} }

// Entities scans the text for entity mentions. Extraction never fails;
// text with no recognizable entities yields an available, empty set.
func (p *PatternEntityExtractor) Entities(ctx context.Context, text string) ports.Maybe[domain.DocumentEntities] {
	if err := ctx.Err(); err != nil {
		return ports.Unavailable[domain.DocumentEntities](err.Error())
	}

	var ents domain.DocumentEntities

	ents.FinancialValues = dedupe(financialValuePattern.FindAllString(text, maxEntitiesPerKind))

	for _, m := range organizationPattern.FindAllStringSubmatch(text, maxEntitiesPerKind) {
		ents.Organizations = append(ents.Organizations, strings.TrimSpace(m[1]))
	}
	ents.Organizations = dedupe(ents.Organizations)

	for _, m := range founderLinePattern.FindAllStringSubmatch(text, maxEntitiesPerKind) {
		for _, name := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == '&' }) {
			name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "and "))
			if name != "" {
				ents.People = append(ents.People, name)
			}
		}
	}
	ents.People = dedupe(ents.People)

	ents.EntityCount = len(ents.FinancialValues) + len(ents.Organizations) + len(ents.People)
	ents.TableCount = countTables(text)

	return ports.Available(ents)
}

// countTables approximates the number of pipe-delimited tables by
// counting runs of consecutive table-looking rows.
func countTables(text string) int {
	rows := tableRowPattern.FindAllStringIndex(text, -1)
	if len(rows) == 0 {
		return 0
	}
	tables := 1
	for i := 1; i < len(rows); i++ {
		// A gap of more than one line between rows starts a new table.
		gap := text[rows[i-1][1]:rows[i][0]]
		if strings.Count(gap, "\n") > 1 {
			tables++
		}
	}
	return tables
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(v))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
