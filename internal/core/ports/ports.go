package ports

import (
	"context"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

// VendorIdentifier resolves a device's vendor from its hardware address or name.
type VendorIdentifier interface {
	// Identify returns the canonical vendor and true, or "" and false when
	// no signal identifies the device. It never fails.
	Identify(ctx context.Context, mac, name string) (string, bool)
}

// ScanIngestor persists newly discovered devices for an owner.
type ScanIngestor interface {
	Ingest(ctx context.Context, ownerID string, raw []domain.RawDevice) ([]domain.Device, error)
	IngestRaw(ctx context.Context, ownerID string, data []byte) ([]domain.Device, error)
}

// AlertPersister stores alert drafts that are not stored yet.
type AlertPersister interface {
	Persist(ctx context.Context, drafts []domain.AlertDraft) ([]domain.SecurityAlert, error)
}

// Correlator runs vendor/vulnerability correlation for an owner's devices.
type Correlator interface {
	Correlate(ctx context.Context, ownerID string, devices []domain.Device) ([]domain.CorrelationResult, error)
	CorrelateOwner(ctx context.Context, ownerID string, deviceIDs []string) ([]domain.CorrelationResult, error)
}

// VendorLookup answers general, device-independent vendor queries.
type VendorLookup interface {
	Lookup(ctx context.Context, vendor string) []domain.AnnotatedVulnerability
}
