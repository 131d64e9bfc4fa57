package correlation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/samber/lo"
)

// VendorLookup answers device-independent vendor queries. It never writes.
type VendorLookup struct {
	source          ports.VulnerabilitySource
	filter          *RelevanceFilter
	suggester       *SuggestionEngine
	fallbackVendors []string
	logger          *slog.Logger
}

// NewVendorLookup creates a lookup. fallbackVendors are queried when the
// requested vendor is blank or a placeholder.
func NewVendorLookup(source ports.VulnerabilitySource, filter *RelevanceFilter, suggester *SuggestionEngine, fallbackVendors []string, logger *slog.Logger) *VendorLookup {
	if filter == nil {
		filter = NewRelevanceFilter(nil, DefaultLimit)
	}
	if suggester == nil {
		suggester = NewSuggestionEngine(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	fallback := lo.Uniq(lo.FilterMap(fallbackVendors, func(v string, _ int) (string, bool) {
		v = strings.TrimSpace(v)
		return v, !domain.IsUnknownVendor(v)
	}))
	return &VendorLookup{
		source:          source,
		filter:          filter,
		suggester:       suggester,
		fallbackVendors: fallback,
		logger:          logger,
	}
}

// Lookup returns the most severe relevant vulnerabilities for vendor.
func (l *VendorLookup) Lookup(ctx context.Context, vendor string) []domain.AnnotatedVulnerability {
	vendors := []string{strings.TrimSpace(vendor)}
	if domain.IsUnknownVendor(vendor) {
		vendors = l.fallbackVendors
		l.logger.Debug("Vendor unknown, using fallback vendors", "fallback", vendors)
	}

	var records []domain.VulnerabilityRecord
	for _, v := range vendors {
		records = append(records, l.source.FetchByVendor(ctx, v)...)
	}
	records = lo.UniqBy(records, func(r domain.VulnerabilityRecord) string { return r.ID })

	return l.suggester.Annotate(l.filter.Filter(records))
}
