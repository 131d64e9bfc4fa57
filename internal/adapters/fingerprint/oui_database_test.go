package fingerprint

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *OUIDatabase {
	t.Helper()
	db, err := NewOUIDatabase(filepath.Join(t.TempDir(), "oui.db"), 100)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOUIDatabaseBasic(t *testing.T) {
	db := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, db.InsertOUI(ctx, OUIEntry{
		Prefix:      "00-00-00",
		Vendor:      "Test Vendor 1",
		VendorShort: "TestVendor1",
		LastUpdated: time.Now(),
	}))
	require.NoError(t, db.InsertOUI(ctx, OUIEntry{
		Prefix:      "111111",
		Vendor:      "Test Vendor 2 Inc.",
		LastUpdated: time.Now(),
	}))

	vendor, err := db.LookupVendor(ctx, MustParseMAC("00:00:00:11:22:33"))
	require.NoError(t, err)
	assert.Equal(t, "TestVendor1", vendor)

	// falls back to the full name when no short name is stored
	vendor, err = db.LookupVendor(ctx, MustParseMAC("11:11:11:11:22:33"))
	require.NoError(t, err)
	assert.Equal(t, "Test Vendor 2 Inc.", vendor)

	_, err = db.LookupVendor(ctx, MustParseMAC("22:22:22:11:22:33"))
	assert.ErrorIs(t, err, ErrVendorNotFound)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
}

func TestOUIDatabaseBulkInsert(t *testing.T) {
	db := newTestRegistry(t)
	ctx := context.Background()

	entries := make([]OUIEntry, 0, 101)
	for i := 0; i < 100; i++ {
		entries = append(entries, OUIEntry{
			Prefix:      fmt.Sprintf("%02X:%02X:%02X", i, i, i),
			Vendor:      fmt.Sprintf("Vendor %d", i),
			VendorShort: fmt.Sprintf("V%d", i),
			LastUpdated: time.Now(),
		})
	}
	entries = append(entries, OUIEntry{Prefix: "zz", Vendor: "skipped"})

	require.NoError(t, db.BulkInsertOUIs(ctx, entries))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalEntries)

	vendor, err := db.LookupVendor(ctx, MustParseMAC("32:32:32:00:00:00"))
	require.NoError(t, err)
	assert.Equal(t, "V50", vendor)
}

func TestOUIDatabaseCache(t *testing.T) {
	db := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, db.InsertOUI(ctx, OUIEntry{Prefix: "AA:BB:CC", Vendor: "Cached", LastUpdated: time.Now()}))

	mac := MustParseMAC("AA:BB:CC:00:00:01")
	for i := 0; i < 3; i++ {
		_, err := db.LookupVendor(ctx, mac)
		require.NoError(t, err)
	}

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func TestOUIDatabaseClosed(t *testing.T) {
	db, err := NewOUIDatabase(filepath.Join(t.TempDir(), "oui.db"), 10)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.LookupVendor(context.Background(), MustParseMAC("AA:BB:CC:00:00:01"))
	assert.ErrorIs(t, err, ErrRepositoryClosed)
	assert.ErrorIs(t, db.InsertOUI(context.Background(), OUIEntry{Prefix: "AABBCC", Vendor: "x"}), ErrRepositoryClosed)
}

func TestShortVendor(t *testing.T) {
	assert.Equal(t, "Qingdao Yeelink Information Technology", ShortVendor("Qingdao Yeelink Information Technology Co., Ltd."))
	assert.Equal(t, "Cisco Systems", ShortVendor("Cisco Systems, Inc"))
	assert.Equal(t, "Apple", ShortVendor(" Apple, Inc. "))
	assert.Equal(t, "Siemens", ShortVendor("Siemens AG"))
}
