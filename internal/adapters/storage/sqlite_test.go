package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupInMemoryDB creates a new SQLiteAdapter used for testing
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	t.Helper()
	adapter, err := NewSQLiteAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func device(id, owner, ip string) domain.Device {
	return domain.Device{
		ID:         id,
		OwnerID:    owner,
		DeviceName: "dev-" + id,
		IPAddress:  ip,
		ScanDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInsertNewDevices(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	inserted, err := adapter.InsertNewDevices(ctx, []domain.Device{
		device("d1", "u1", "192.168.1.10"),
		device("d2", "u1", "192.168.1.11"),
	})
	require.NoError(t, err)
	assert.Len(t, inserted, 2)

	// one known ip, one new, and the same ip under another owner
	inserted, err = adapter.InsertNewDevices(ctx, []domain.Device{
		device("d3", "u1", "192.168.1.10"),
		device("d4", "u1", "192.168.1.12"),
		device("d5", "u2", "192.168.1.10"),
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, "d4", inserted[0].ID)
	assert.Equal(t, "d5", inserted[1].ID)

	// everything known
	inserted, err = adapter.InsertNewDevices(ctx, []domain.Device{device("d6", "u1", "192.168.1.11")})
	require.NoError(t, err)
	assert.NotNil(t, inserted)
	assert.Empty(t, inserted)

	devices, err := adapter.ListDevices(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, devices, 3)
}

func TestInsertNewDevices_AbsorbsConflicts(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	_, err := adapter.InsertNewDevices(ctx, []domain.Device{device("dup", "u1", "10.0.0.1")})
	require.NoError(t, err)

	// reused primary key is absorbed by DO NOTHING and not reported
	inserted, err := adapter.InsertNewDevices(ctx, []domain.Device{
		device("fresh", "u1", "10.0.0.2"),
		device("dup", "u1", "10.0.0.3"),
	})
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	assert.Equal(t, "fresh", inserted[0].ID)
}

func TestInsertNewDevices_RollsBack(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	err := adapter.db.Callback().Create().After("gorm:create").Register("test:fail", func(db *gorm.DB) {
		if m, ok := db.Statement.Dest.(*DeviceModel); ok && m.ID == "boom" {
			db.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = adapter.InsertNewDevices(ctx, []domain.Device{
		device("ok", "u1", "10.0.0.1"),
		device("boom", "u1", "10.0.0.2"),
	})
	require.Error(t, err)

	devices, err := adapter.ListDevices(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, devices, "first insert must be rolled back")
}

func TestInsertNewDevices_ClosedDB(t *testing.T) {
	adapter := setupInMemoryDB(t)
	require.NoError(t, adapter.Close())

	_, err := adapter.InsertNewDevices(context.Background(), []domain.Device{device("late", "u1", "10.0.0.9")})
	assert.Error(t, err)
}

func TestListDevices_ByIDs(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	_, err := adapter.InsertNewDevices(ctx, []domain.Device{
		device("a", "u1", "10.0.0.1"),
		device("b", "u1", "10.0.0.2"),
		device("c", "u2", "10.0.0.3"),
	})
	require.NoError(t, err)

	devices, err := adapter.ListDevices(ctx, "u1", []string{"b", "c", "b"})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "b", devices[0].ID)
	assert.Equal(t, "dev-b", devices[0].DeviceName)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), devices[0].ScanDate)
}

func alert(id, device, vuln string, at time.Time) domain.SecurityAlert {
	return domain.SecurityAlert{
		ID:              id,
		OwnerID:         "u1",
		DeviceID:        device,
		DeviceName:      "Bulb",
		Vendor:          "yeelight",
		VulnerabilityID: vuln,
		Severity:        domain.SeverityHigh,
		Description:     "Remote access enabled",
		Suggestion:      "Disable remote access",
		CreatedAt:       at,
	}
}

func TestAlerts(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	exists, err := adapter.AlertExists(ctx, "d1", "CVE-1")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err := adapter.InsertAlert(ctx, alert("a1", "d1", "CVE-1", t0))
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err = adapter.AlertExists(ctx, "d1", "CVE-1")
	require.NoError(t, err)
	assert.True(t, exists)

	// same pair, new id: absorbed by the unique index
	ok, err = adapter.InsertAlert(ctx, alert("a2", "d1", "CVE-1", t0))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = adapter.InsertAlert(ctx, alert("a3", "d1", "CVE-2", t0.Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, ok)

	alerts, err := adapter.ListAlerts(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "a3", alerts[0].ID)
	assert.Equal(t, domain.SeverityHigh, alerts[0].Severity)

	alerts, err = adapter.ListAlerts(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	alerts, err = adapter.ListAlerts(ctx, "other", 0)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestInsertAlert_ConcurrentDuplicates(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := adapter.InsertAlert(ctx, alert(fmt.Sprintf("a%d", i), "d1", "CVE-1", time.Now()))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestUsers(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	user := domain.User{ID: "u1", Username: "alice", PasswordHash: "hash", Role: domain.RoleOperator, CreatedAt: time.Now()}
	require.NoError(t, adapter.SaveUser(ctx, user))

	got, err := adapter.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, domain.RoleOperator, got.Role)

	got, err = adapter.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = adapter.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = adapter.GetUserByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuditLogs(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []domain.AuditAction{domain.ActionLogin, domain.ActionIngest, domain.ActionCorrelate} {
		entry, err := domain.NewAuditLog("u1", action, "", "", t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, adapter.SaveAuditLog(ctx, *entry))
	}

	logs, err := adapter.ListAuditLogs(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionCorrelate, logs[0].Action)
	assert.Equal(t, domain.ActionIngest, logs[1].Action)
}
