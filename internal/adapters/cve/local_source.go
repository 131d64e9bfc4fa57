package cve

import (
	"context"
	"log/slog"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/lcalzada-xor/iotsec/internal/telemetry"
	"github.com/samber/lo"
)

// LocalSource serves vulnerability lookups from the local CVE mirror.
type LocalSource struct {
	repo   ports.CVERepository
	limit  int
	logger *slog.Logger
}

// NewLocalSource wraps a mirror repository as a VulnerabilitySource.
func NewLocalSource(repo ports.CVERepository, limit int, logger *slog.Logger) *LocalSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalSource{repo: repo, limit: limit, logger: logger}
}

// FetchByVendor implements ports.VulnerabilitySource. Query errors yield an
// empty result.
func (s *LocalSource) FetchByVendor(ctx context.Context, vendor string) []domain.VulnerabilityRecord {
	cves, err := s.repo.SearchByVendor(ctx, vendor, s.limit)
	if err != nil {
		s.logger.Warn("Local CVE search failed", "vendor", vendor, "error", err)
		telemetry.VulnerabilityLookups.WithLabelValues("local", "error").Inc()
		return []domain.VulnerabilityRecord{}
	}

	records := lo.Map(cves, func(c domain.CVERecord, _ int) domain.VulnerabilityRecord {
		return c.Record()
	})
	telemetry.VulnerabilityLookups.WithLabelValues("local", lookupResult(records)).Inc()
	return records
}

func lookupResult(records []domain.VulnerabilityRecord) string {
	if len(records) == 0 {
		return "empty"
	}
	return "hit"
}
