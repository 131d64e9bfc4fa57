package server_test

import (
	"context"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) CreateUser(ctx context.Context, user domain.User, password string) error {
	return m.Called(ctx, user, password).Error(0)
}

type MockAuditService struct{ mock.Mock }

func (m *MockAuditService) Log(ctx context.Context, ownerID string, action domain.AuditAction, target, details string) error {
	return m.Called(ctx, ownerID, action, target, details).Error(0)
}

func (m *MockAuditService) GetLogs(ctx context.Context, ownerID string, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

type MockIngestor struct{ mock.Mock }

func (m *MockIngestor) Ingest(ctx context.Context, ownerID string, raw []domain.RawDevice) ([]domain.Device, error) {
	args := m.Called(ctx, ownerID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

func (m *MockIngestor) IngestRaw(ctx context.Context, ownerID string, data []byte) ([]domain.Device, error) {
	args := m.Called(ctx, ownerID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

type MockCorrelator struct{ mock.Mock }

func (m *MockCorrelator) Correlate(ctx context.Context, ownerID string, devices []domain.Device) ([]domain.CorrelationResult, error) {
	args := m.Called(ctx, ownerID, devices)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorrelationResult), args.Error(1)
}

func (m *MockCorrelator) CorrelateOwner(ctx context.Context, ownerID string, deviceIDs []string) ([]domain.CorrelationResult, error) {
	args := m.Called(ctx, ownerID, deviceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CorrelationResult), args.Error(1)
}

type MockLookup struct{ mock.Mock }

func (m *MockLookup) Lookup(ctx context.Context, vendor string) []domain.AnnotatedVulnerability {
	args := m.Called(ctx, vendor)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.AnnotatedVulnerability)
}

type MockDeviceRepository struct{ mock.Mock }

func (m *MockDeviceRepository) InsertNewDevices(ctx context.Context, devices []domain.Device) ([]domain.Device, error) {
	args := m.Called(ctx, devices)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

func (m *MockDeviceRepository) ListDevices(ctx context.Context, ownerID string, ids []string) ([]domain.Device, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

type MockAlertRepository struct{ mock.Mock }

func (m *MockAlertRepository) AlertExists(ctx context.Context, deviceID, vulnerabilityID string) (bool, error) {
	args := m.Called(ctx, deviceID, vulnerabilityID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) InsertAlert(ctx context.Context, alert domain.SecurityAlert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) ListAlerts(ctx context.Context, ownerID string, limit int) ([]domain.SecurityAlert, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SecurityAlert), args.Error(1)
}
