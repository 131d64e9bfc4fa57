package correlation

import (
	"slices"
	"strings"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/samber/lo"
)

// DefaultCategories are the description phrases that make a vulnerability
// relevant to consumer IoT devices.
var DefaultCategories = []string{
	"default password",
	"remote access",
	"firmware",
	"unauthorized",
	"unauthenticated",
	"denial of service",
}

// DefaultLimit is the number of records kept per device or lookup.
const DefaultLimit = 3

const unrankedSeverity = 5

var severityRanks = map[domain.Severity]int{
	domain.SeverityCritical: 1,
	domain.SeverityHigh:     2,
	domain.SeverityMedium:   3,
	domain.SeverityLow:      4,
}

// SeverityRank orders severity labels, lower is more severe. Unknown labels
// rank after low.
func SeverityRank(s domain.Severity) int {
	if r, ok := severityRanks[s.Normalize()]; ok {
		return r
	}
	return unrankedSeverity
}

// RelevanceFilter gates, ranks and caps vulnerability records.
type RelevanceFilter struct {
	categories []string
	limit      int
}

// NewRelevanceFilter builds a filter. Empty categories or a non-positive
// limit select the defaults.
func NewRelevanceFilter(categories []string, limit int) *RelevanceFilter {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RelevanceFilter{
		categories: lo.Map(categories, func(c string, _ int) string { return strings.ToLower(c) }),
		limit:      limit,
	}
}

// Gate keeps records whose description mentions a relevant category.
func (f *RelevanceFilter) Gate(records []domain.VulnerabilityRecord) []domain.VulnerabilityRecord {
	return lo.Filter(records, func(r domain.VulnerabilityRecord, _ int) bool {
		desc := strings.ToLower(r.Description)
		return lo.SomeBy(f.categories, func(c string) bool { return strings.Contains(desc, c) })
	})
}

// Rank returns a copy sorted by severity. Equal severities keep their order.
func (f *RelevanceFilter) Rank(records []domain.VulnerabilityRecord) []domain.VulnerabilityRecord {
	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, func(a, b domain.VulnerabilityRecord) int {
		return SeverityRank(a.Severity) - SeverityRank(b.Severity)
	})
	return ranked
}

// Cap returns at most the first limit records.
func (f *RelevanceFilter) Cap(records []domain.VulnerabilityRecord) []domain.VulnerabilityRecord {
	if len(records) <= f.limit {
		return records
	}
	return records[:f.limit]
}

// Filter is Gate, Rank then Cap. Used by general vendor lookups.
func (f *RelevanceFilter) Filter(records []domain.VulnerabilityRecord) []domain.VulnerabilityRecord {
	return f.Cap(f.Rank(f.Gate(records)))
}

// FilterUnranked is Gate then Cap, keeping upstream order. Used per device.
func (f *RelevanceFilter) FilterUnranked(records []domain.VulnerabilityRecord) []domain.VulnerabilityRecord {
	return f.Cap(f.Gate(records))
}
