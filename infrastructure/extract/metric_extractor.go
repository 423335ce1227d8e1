// Package extract implements the deterministic, pattern-based tier of
// metric extraction, plus the file text source used by the pipeline.
// The regex extractor is low-recall/high-precision by design: it is the
// fast fallback tier that always runs, with LLM extraction layered on
// top when available.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ahrav/dealdesk/internal/domain"
)

// unitMultipliers maps trailing unit tokens to their scale factors.
// Indian units (crore/lakh) are included because the source decks
// frequently quote INR figures.
var unitMultipliers = map[string]float64{
	"k":       1_000,
	"m":       1_000_000,
	"mn":      1_000_000,
	"million": 1_000_000,
	"b":       1_000_000_000,
	"bn":      1_000_000_000,
	"billion": 1_000_000_000,
	"cr":      10_000_000,
	"crore":   10_000_000,
	"l":       100_000,
	"lakh":    100_000,
}

// currencyStripper removes currency symbols and codes before numeric
// parsing. Thousands separators are stripped alongside.
var currencyStripper = strings.NewReplacer(
	",", "",
	"₹", "",
	"$", "",
	"€", "",
	"£", "",
	"inr", "",
)

var (
	numberPattern = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*([a-z]+)?`)

	arrPattern = regexp.MustCompile(`arr\s*[:=]?\s*([\w.,]+)\s*(cr|crore|mn|m|k|b|bn|million|billion)?`)
	mrrPattern = regexp.MustCompile(`mrr\s*[:=]?\s*([\w.,]+)\s*(cr|crore|mn|m|k|b|bn|million|billion)?`)
	cacPattern = regexp.MustCompile(`cac\s*[:=]?\s*([₹$€£]?[\w.,]+)\s*(cr|crore|mn|m|k|b|bn|million|billion)?`)
	ltvPattern = regexp.MustCompile(`ltv\s*[:=]?\s*([₹$€£]?[\w.,]+)\s*(cr|crore|mn|m|k|b|bn|million|billion)?`)

	churnPattern       = regexp.MustCompile(`churn[^\d%]*([\d]{1,2}(?:\.\d+)?)\s*%`)
	growthYoYPattern   = regexp.MustCompile(`growth[^\d%]*([\-\d]{1,3}(?:\.\d+)?)\s*%\s*yo?y`)
	growthMoMPattern   = regexp.MustCompile(`growth[^\d%]*([\-\d]{1,3}(?:\.\d+)?)\s*%\s*mom`)
	grossMarginPattern = regexp.MustCompile(`gross\s*margin[^\d%]*([\d]{1,3}(?:\.\d+)?)\s*%`)
	runwayPattern      = regexp.MustCompile(`runway[^\d]*([\d]{1,3})\s*(?:months|mos|m)\b`)

	headcountPattern = regexp.MustCompile(`headcount[^\d]*([\d]{1,5})\b`)
	teamSizePattern  = regexp.MustCompile(`team\s*size[^\d]*([\d]{1,5})\b`)

	sectorPattern = regexp.MustCompile(`sector\s*[:=]?\s*([\w\- ]+)\b`)
	stagePattern  = regexp.MustCompile(`stage\s*[:=]?\s*(pre-seed|seed|series\s*a|series\s*b|growth|late)\b`)
)

const maxSectorLength = 50

// MetricExtractor parses raw document text with fixed pattern rules to
// produce a best-effort metric set. It is a pure function of its input:
// identical text always yields an identical metric set, and patterns
// that do not match simply leave the key absent. No errors escape.
type MetricExtractor struct{}

// NewMetricExtractor returns the pattern-based extractor.
func NewMetricExtractor() *MetricExtractor { return &MetricExtractor{} }

// Extract applies every metric rule independently to the text,
// first match wins per metric.
func (e *MetricExtractor) Extract(text string) domain.Metrics {
	var out domain.Metrics
	if text == "" {
		return out
	}

	t := strings.ToLower(text)

	setAmount := func(key domain.MetricKey, p *regexp.Regexp) {
		m := p.FindStringSubmatch(t)
		if m == nil {
			return
		}
		if v, ok := toNumber(strings.TrimSpace(m[1] + " " + m[2])); ok {
			out.Set(key, v)
		}
	}
	setAmount(domain.MetricARR, arrPattern)
	setAmount(domain.MetricMRR, mrrPattern)
	setAmount(domain.MetricCAC, cacPattern)
	setAmount(domain.MetricLTV, ltvPattern)

	setPercent := func(key domain.MetricKey, p *regexp.Regexp) {
		m := p.FindStringSubmatch(t)
		if m == nil {
			return
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.Set(key, v/100.0)
		}
	}
	setPercent(domain.MetricChurnRate, churnPattern)
	setPercent(domain.MetricGrowthYoY, growthYoYPattern)
	setPercent(domain.MetricGrowthMoM, growthMoMPattern)
	setPercent(domain.MetricGrossMargin, grossMarginPattern)

	if m := runwayPattern.FindStringSubmatch(t); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.Set(domain.MetricRunwayMonths, v)
		}
	}

	if m := headcountPattern.FindStringSubmatch(t); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.Set(domain.MetricHeadcount, v)
		}
	}
	if _, ok := out.Value(domain.MetricHeadcount); !ok {
		if m := teamSizePattern.FindStringSubmatch(t); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				out.Set(domain.MetricHeadcount, v)
			}
		}
	}

	if m := sectorPattern.FindStringSubmatch(t); m != nil {
		sector := strings.TrimSpace(m[1])
		if len(sector) > maxSectorLength {
			sector = sector[:maxSectorLength]
		}
		out.Sector = sector
	}
	if m := stagePattern.FindStringSubmatch(t); m != nil {
		out.Stage = strings.TrimSpace(m[1])
	}

	return out
}

// toNumber parses a value like "1.5 cr", "2m", or "₹4,00,000" into a
// plain float. A trailing unit token multiplies by its scale factor;
// absent unit means a multiplier of 1. Inputs that cannot produce a
// clean number report !ok rather than zero.
func toNumber(raw string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSpace(currencyStripper.Replace(s))
	if s == "" {
		return 0, false
	}

	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	mul := 1.0
	if m[2] != "" {
		if factor, ok := unitMultipliers[m[2]]; ok {
			mul = factor
		}
	}
	return num * mul, true
}
