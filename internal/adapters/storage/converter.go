package storage

import (
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

func toDeviceModel(d domain.Device) DeviceModel {
	return DeviceModel{
		ID:         d.ID,
		OwnerID:    d.OwnerID,
		DeviceName: d.DeviceName,
		IPAddress:  d.IPAddress,
		MACAddress: d.MACAddress,
		ScanDate:   d.ScanDate.UTC(),
	}
}

func toDomainDevice(m DeviceModel) domain.Device {
	return domain.Device{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		DeviceName: m.DeviceName,
		IPAddress:  m.IPAddress,
		MACAddress: m.MACAddress,
		ScanDate:   m.ScanDate.UTC(),
	}
}

func toAlertModel(a domain.SecurityAlert) AlertModel {
	return AlertModel{
		ID:              a.ID,
		OwnerID:         a.OwnerID,
		DeviceID:        a.DeviceID,
		DeviceName:      a.DeviceName,
		Vendor:          a.Vendor,
		VulnerabilityID: a.VulnerabilityID,
		Severity:        string(a.Severity),
		Description:     a.Description,
		Suggestion:      a.Suggestion,
		CreatedAt:       a.CreatedAt.UTC(),
	}
}

func toDomainAlert(m AlertModel) domain.SecurityAlert {
	return domain.SecurityAlert{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		DeviceID:        m.DeviceID,
		DeviceName:      m.DeviceName,
		Vendor:          m.Vendor,
		VulnerabilityID: m.VulnerabilityID,
		Severity:        domain.Severity(m.Severity),
		Description:     m.Description,
		Suggestion:      m.Suggestion,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

func toUserModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func toDomainUser(m UserModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func toAuditLogModel(l domain.AuditLog) AuditLogModel {
	return AuditLogModel{
		ID:        l.ID,
		OwnerID:   l.OwnerID,
		Action:    string(l.Action),
		Target:    l.Target,
		Details:   l.Details,
		Timestamp: l.Timestamp.UTC(),
	}
}

func toDomainAuditLog(m AuditLogModel) domain.AuditLog {
	return domain.AuditLog{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Action:    domain.AuditAction(m.Action),
		Target:    m.Target,
		Details:   m.Details,
		Timestamp: m.Timestamp.UTC(),
	}
}
