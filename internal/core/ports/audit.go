package ports

import (
	"context"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

// AuditRepository stores audit entries.
type AuditRepository interface {
	SaveAuditLog(ctx context.Context, log domain.AuditLog) error
	ListAuditLogs(ctx context.Context, ownerID string, limit int) ([]domain.AuditLog, error)
}

// AuditService records engine operations per owner.
type AuditService interface {
	Log(ctx context.Context, ownerID string, action domain.AuditAction, target, details string) error
	GetLogs(ctx context.Context, ownerID string, limit int) ([]domain.AuditLog, error)
}
