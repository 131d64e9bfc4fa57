package correlation

import (
	"context"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockIdentifier struct {
	mock.Mock
}

func (m *MockIdentifier) Identify(ctx context.Context, mac, name string) (string, bool) {
	args := m.Called(ctx, mac, name)
	return args.String(0), args.Bool(1)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchByVendor(ctx context.Context, vendor string) []domain.VulnerabilityRecord {
	args := m.Called(ctx, vendor)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.VulnerabilityRecord)
}

type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Persist(ctx context.Context, drafts []domain.AlertDraft) ([]domain.SecurityAlert, error) {
	args := m.Called(ctx, drafts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SecurityAlert), args.Error(1)
}

type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) InsertNewDevices(ctx context.Context, devices []domain.Device) ([]domain.Device, error) {
	args := m.Called(ctx, devices)
	return args.Get(0).([]domain.Device), args.Error(1)
}

func (m *MockDeviceRepository) ListDevices(ctx context.Context, ownerID string, ids []string) ([]domain.Device, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Device), args.Error(1)
}

func rec(id, severity, description string) domain.VulnerabilityRecord {
	return domain.VulnerabilityRecord{ID: id, Severity: domain.Severity(severity), Description: description}
}
