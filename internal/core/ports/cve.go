package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

// VulnerabilitySource queries a vulnerability database by vendor keyword.
// Implementations never fail: any lookup problem yields an empty slice.
type VulnerabilitySource interface {
	FetchByVendor(ctx context.Context, vendor string) []domain.VulnerabilityRecord
}

// CVERepository defines the local CVE mirror operations.
type CVERepository interface {
	SearchByVendor(ctx context.Context, vendor string, limit int) ([]domain.CVERecord, error)
	GetByID(ctx context.Context, cveID string) (*domain.CVERecord, error)

	UpsertCVE(ctx context.Context, cve domain.CVERecord) error
	GetLastSyncTime(ctx context.Context) (time.Time, error)
	UpdateSyncStatus(ctx context.Context, status domain.CVESyncStatus) error

	GetTotalCount(ctx context.Context) (int, error)
	Close() error
}
