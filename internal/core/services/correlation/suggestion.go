package correlation

import (
	"strings"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/samber/lo"
)

// SuggestionRule maps description keywords to a remediation.
type SuggestionRule struct {
	Keywords   []string
	Suggestion string
}

// DefaultSuggestion is returned when no rule matches.
const DefaultSuggestion = "Check security settings or contact support"

// DefaultSuggestionRules are evaluated in order; the first match wins.
var DefaultSuggestionRules = []SuggestionRule{
	{Keywords: []string{"default password"}, Suggestion: "Change default password"},
	{Keywords: []string{"remote"}, Suggestion: "Disable remote access"},
	{Keywords: []string{"firmware", "update"}, Suggestion: "Update device firmware"},
	{Keywords: []string{"unauthorized", "unauthenticated"}, Suggestion: "Enable two-factor authentication"},
	{Keywords: []string{"denial of service"}, Suggestion: "Restrict network access"},
}

// SuggestionEngine derives a remediation from a vulnerability description.
type SuggestionEngine struct {
	rules    []SuggestionRule
	fallback string
}

// NewSuggestionEngine builds an engine; nil rules select the defaults.
func NewSuggestionEngine(rules []SuggestionRule) *SuggestionEngine {
	if rules == nil {
		rules = DefaultSuggestionRules
	}
	normalized := lo.Map(rules, func(r SuggestionRule, _ int) SuggestionRule {
		return SuggestionRule{
			Keywords:   lo.Map(r.Keywords, func(k string, _ int) string { return strings.ToLower(k) }),
			Suggestion: r.Suggestion,
		}
	})
	return &SuggestionEngine{rules: normalized, fallback: DefaultSuggestion}
}

// Suggest returns the remediation for description.
func (e *SuggestionEngine) Suggest(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range e.rules {
		if lo.SomeBy(rule.Keywords, func(k string) bool { return strings.Contains(desc, k) }) {
			return rule.Suggestion
		}
	}
	return e.fallback
}

// Annotate pairs each record with its suggestion.
func (e *SuggestionEngine) Annotate(records []domain.VulnerabilityRecord) []domain.AnnotatedVulnerability {
	return lo.Map(records, func(r domain.VulnerabilityRecord, _ int) domain.AnnotatedVulnerability {
		return domain.AnnotatedVulnerability{VulnerabilityRecord: r, Suggestion: e.Suggest(r.Description)}
	})
}
