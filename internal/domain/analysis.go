package domain

import "strings"

// Risk is one identified risk factor from the qualitative analysis.
type Risk struct {
	Factor      string `json:"factor"`
	Impact      string `json:"impact"` // "low" | "medium" | "high"
	Description string `json:"description"`
}

// Recommendation is one actionable suggestion from the qualitative
// analysis.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MarketAnalysis is the market-opportunity section of the qualitative
// analysis.
type MarketAnalysis struct {
	MarketSize    string `json:"marketSize"`
	GrowthRate    string `json:"growthRate"`
	Competition   string `json:"competition"`
	EntryBarriers string `json:"entryBarriers"`
	Regulation    string `json:"regulation"`
}

// Analysis is the structured qualitative analysis produced by the LLM
// collaborator. The core treats it as an opaque narrative blob except
// for defaulting required fields and the regulation guarantee.
type Analysis struct {
	ExecutiveSummary string           `json:"executiveSummary"`
	MarketAnalysis   MarketAnalysis   `json:"marketAnalysis"`
	Risks            []Risk           `json:"risks"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// LLMStatus communicates collaborator availability upward so UI layers
// can explain degraded quality without crashing.
type LLMStatus struct {
	OK            bool   `json:"ok"`
	Status        int    `json:"status,omitempty"`
	RetryAfterSec int    `json:"retryAfterSec,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Coerced fills defaults for every required field so a partial
// collaborator response never surfaces empty sections.
func (a Analysis) Coerced() Analysis {
	if a.ExecutiveSummary == "" {
		a.ExecutiveSummary = "Summary not provided."
	}
	defaultStr(&a.MarketAnalysis.MarketSize, "N/A")
	defaultStr(&a.MarketAnalysis.GrowthRate, "N/A")
	defaultStr(&a.MarketAnalysis.Competition, "N/A")
	defaultStr(&a.MarketAnalysis.EntryBarriers, "N/A")
	defaultStr(&a.MarketAnalysis.Regulation, "N/A")
	if len(a.Risks) == 0 {
		a.Risks = []Risk{{
			Factor:      "Information Risk",
			Impact:      "medium",
			Description: "Insufficient data in documents.",
		}}
	}
	for i := range a.Risks {
		defaultStr(&a.Risks[i].Factor, "Unknown")
		defaultStr(&a.Risks[i].Impact, "medium")
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = []Recommendation{{
			Title:       "Provide More Data",
			Description: "Upload more comprehensive documents for deeper insights.",
		}}
	}
	for i := range a.Recommendations {
		defaultStr(&a.Recommendations[i].Title, "Next Steps")
		defaultStr(&a.Recommendations[i].Description, "Provide more details to improve analysis quality.")
	}
	return a
}

func defaultStr(s *string, def string) {
	if strings.TrimSpace(*s) == "" {
		*s = def
	}
}

// FallbackAnalysis is the neutral, user-friendly analysis used when the
// LLM collaborator is unavailable or returned unusable output. It never
// exposes backend error details.
func FallbackAnalysis() Analysis {
	return Analysis{
		ExecutiveSummary: "Preliminary summary based on the uploaded documents. " +
			"Some details may be inferred; please review benchmarks, risks, and recommendations for context.",
		MarketAnalysis: MarketAnalysis{
			MarketSize:    "N/A",
			GrowthRate:    "N/A",
			Competition:   "Unknown",
			EntryBarriers: "Unknown",
			Regulation:    "Unknown",
		},
		Risks: []Risk{{
			Factor:      "Data Quality",
			Impact:      "medium",
			Description: "Limited or missing data may affect analysis accuracy.",
		}},
		Recommendations: []Recommendation{
			{Title: "Add Financials", Description: "Include revenue projections and unit economics for better assessment."},
			{Title: "Clarify GTM", Description: "Detail your go-to-market plan and milestones."},
		},
	}
}

// regulationPlaceholders are the literals that count as "no regulation
// information" and trigger the sector boilerplate substitution.
var regulationPlaceholders = map[string]struct{}{
	"n/a":           {},
	"na":            {},
	"unknown":       {},
	"not specified": {},
	"none":          {},
	"no data":       {},
}

// sectorRegulations is the fixed per-sector boilerplate used when the
// LLM left the regulation field absent or placeholder-like.
var sectorRegulations = map[string]string{
	"fintech":    "Financial services typically require licensing and ongoing KYC/AML controls; data privacy and PCI-like standards may apply across markets.",
	"healthtech": "Healthcare offerings face patient data protection (e.g., HIPAA/GDPR) and clinical/medical device guidelines; consent and record-keeping are critical.",
	"hr-tech":    "HR solutions must align with labor and employment laws, consented data processing, and cross-border transfers under GDPR/DPDP where applicable.",
	"ecommerce":  "Marketplaces must comply with consumer protection, platform liability, taxation, and seller KYC where mandated; data privacy applies.",
	"ai-ml":      "AI solutions should address data provenance, privacy, model transparency, and emerging AI governance rules; sector-specific obligations may apply.",
	"saas":       "SaaS platforms generally adhere to data privacy/security (GDPR/DPDP), contractual SLAs, and sector-specific obligations if processing regulated data.",
	"edtech":     "EdTech platforms must comply with student data protection laws (COPPA, FERPA), parental consent requirements, and educational content regulations.",
	"logistics":  "Logistics operations require compliance with transportation regulations, customs, labor laws, and data security for tracking information.",
}

const genericRegulation = "General compliance considerations include data privacy, information security, and fair business practices; specific licenses may be needed depending on geography and offering."

// SectorRegulation returns the boilerplate regulation sentence for a
// normalized sector, falling back to the generic phrasing.
func SectorRegulation(sector string) string {
	if reg, ok := sectorRegulations[sector]; ok {
		return reg
	}
	return genericRegulation
}

// EnsureRegulation guarantees the regulation field carries something
// substantive: absent or placeholder-like values are replaced with the
// sector boilerplate.
func EnsureRegulation(a Analysis, sector string) Analysis {
	reg := strings.ToLower(strings.TrimSpace(a.MarketAnalysis.Regulation))
	if _, placeholder := regulationPlaceholders[reg]; reg == "" || placeholder {
		a.MarketAnalysis.Regulation = SectorRegulation(sector)
	}
	return a
}
