package storage

import (
	"context"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/samber/lo"
)

var _ ports.AuditRepository = (*SQLiteAdapter)(nil)

// AuditLogModel is the GORM model for audit entries.
type AuditLogModel struct {
	ID        uint   `gorm:"primaryKey"`
	OwnerID   string `gorm:"not null;index"`
	Action    string `gorm:"not null"`
	Target    string
	Details   string
	Timestamp time.Time `gorm:"index"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }

func (a *SQLiteAdapter) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	model := toAuditLogModel(log)
	return a.db.WithContext(ctx).Create(&model).Error
}

func (a *SQLiteAdapter) ListAuditLogs(ctx context.Context, ownerID string, limit int) ([]domain.AuditLog, error) {
	query := a.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("timestamp desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []AuditLogModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return lo.Map(models, func(m AuditLogModel, _ int) domain.AuditLog { return toDomainAuditLog(m) }), nil
}
