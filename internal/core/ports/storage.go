package ports

import (
	"context"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

// DeviceRepository persists devices keyed by (owner, ip).
type DeviceRepository interface {
	// InsertNewDevices inserts every device whose (OwnerID, IPAddress) is not
	// stored yet, inside a single transaction. It returns the inserted devices.
	InsertNewDevices(ctx context.Context, devices []domain.Device) ([]domain.Device, error)
	ListDevices(ctx context.Context, ownerID string, ids []string) ([]domain.Device, error)
}

// AlertRepository persists alerts keyed by (device, vulnerability).
type AlertRepository interface {
	AlertExists(ctx context.Context, deviceID, vulnerabilityID string) (bool, error)
	// InsertAlert stores the alert unless the pair already exists. It reports
	// whether a row was written.
	InsertAlert(ctx context.Context, alert domain.SecurityAlert) (bool, error)
	ListAlerts(ctx context.Context, ownerID string, limit int) ([]domain.SecurityAlert, error)
}
