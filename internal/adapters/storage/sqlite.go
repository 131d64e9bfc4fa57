package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var (
	_ ports.DeviceRepository = (*SQLiteAdapter)(nil)
	_ ports.AlertRepository  = (*SQLiteAdapter)(nil)
)

// SQLiteAdapter implements the engine's repositories using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// DeviceModel is the GORM model for devices.
type DeviceModel struct {
	ID         string    `gorm:"primaryKey"`
	OwnerID    string    `gorm:"not null;uniqueIndex:idx_devices_owner_ip"`
	DeviceName string    `gorm:"not null"`
	IPAddress  string    `gorm:"not null;uniqueIndex:idx_devices_owner_ip"`
	MACAddress string
	ScanDate   time.Time `gorm:"index"`
}

func (DeviceModel) TableName() string { return "devices" }

// AlertModel is the GORM model for security alerts.
type AlertModel struct {
	ID              string `gorm:"primaryKey"`
	OwnerID         string `gorm:"not null;index"`
	DeviceID        string `gorm:"not null;uniqueIndex:idx_alerts_device_vuln"`
	DeviceName      string
	Vendor          string
	VulnerabilityID string `gorm:"not null;uniqueIndex:idx_alerts_device_vuln"`
	Severity        string
	Description     string
	Suggestion      string
	CreatedAt       time.Time `gorm:"index"`
}

func (AlertModel) TableName() string { return "security_alerts" }

// NewSQLiteAdapter opens the database at path and migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install tracing plugin: %w", err)
	}

	// SQLite allows a single writer; one connection keeps transactions and
	// :memory: databases consistent.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&DeviceModel{}, &AlertModel{}, &UserModel{}, &AuditLogModel{}); err != nil {
		return nil, err
	}

	return &SQLiteAdapter{db: db}, nil
}

// Close closes the underlying connection pool.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertNewDevices stores every device whose (owner, ip) pair is unknown.
// The whole batch runs in one transaction; any error rolls it back.
func (a *SQLiteAdapter) InsertNewDevices(ctx context.Context, devices []domain.Device) ([]domain.Device, error) {
	if len(devices) == 0 {
		return []domain.Device{}, nil
	}

	inserted := make([]domain.Device, 0, len(devices))
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byOwner := lo.GroupBy(devices, func(d domain.Device) string { return d.OwnerID })
		known := make(map[string]map[string]struct{}, len(byOwner))
		for owner, group := range byOwner {
			ips := lo.Map(group, func(d domain.Device, _ int) string { return d.IPAddress })
			var existing []string
			if err := tx.Model(&DeviceModel{}).
				Where("owner_id = ? AND ip_address IN ?", owner, ips).
				Pluck("ip_address", &existing).Error; err != nil {
				return err
			}
			known[owner] = lo.SliceToMap(existing, func(ip string) (string, struct{}) { return ip, struct{}{} })
		}

		for _, d := range devices {
			if _, seen := known[d.OwnerID][d.IPAddress]; seen {
				continue
			}
			model := toDeviceModel(d)
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			known[d.OwnerID][d.IPAddress] = struct{}{}
			inserted = append(inserted, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// ListDevices returns the owner's devices, restricted to ids when given.
func (a *SQLiteAdapter) ListDevices(ctx context.Context, ownerID string, ids []string) ([]domain.Device, error) {
	query := a.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", lo.Uniq(ids))
	}

	var models []DeviceModel
	if err := query.Order("scan_date ASC, ip_address ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return lo.Map(models, func(m DeviceModel, _ int) domain.Device { return toDomainDevice(m) }), nil
}

// AlertExists reports whether an alert for the pair is stored.
func (a *SQLiteAdapter) AlertExists(ctx context.Context, deviceID, vulnerabilityID string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&AlertModel{}).
		Where("device_id = ? AND vulnerability_id = ?", deviceID, vulnerabilityID).
		Count(&count).Error
	return count > 0, err
}

// InsertAlert stores alert unless its (device, vulnerability) pair exists.
// A conflicting insert is not an error; it reports false.
func (a *SQLiteAdapter) InsertAlert(ctx context.Context, alert domain.SecurityAlert) (bool, error) {
	model := toAlertModel(alert)
	res := a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListAlerts returns the owner's alerts, newest first. limit <= 0 means all.
func (a *SQLiteAdapter) ListAlerts(ctx context.Context, ownerID string, limit int) ([]domain.SecurityAlert, error) {
	query := a.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []AlertModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return lo.Map(models, func(m AlertModel, _ int) domain.SecurityAlert { return toDomainAlert(m) }), nil
}
