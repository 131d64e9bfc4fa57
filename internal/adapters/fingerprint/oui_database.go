package fingerprint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// OUIDatabase serves vendor lookups from an IEEE OUI registry stored in SQLite.
// It implements VendorRepository and VendorWriter.
type OUIDatabase struct {
	db     *sql.DB
	cache  *OUICache
	mu     sync.RWMutex
	closed bool

	lookupStmt *sql.Stmt
}

// OUIEntry represents a single OUI registry entry
type OUIEntry struct {
	Prefix      string
	Vendor      string
	VendorShort string
	Country     string
	LastUpdated time.Time
}

// NewOUIDatabase opens (or creates) the registry at dbPath.
func NewOUIDatabase(dbPath string, cacheSize int) (*OUIDatabase, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, &DatabaseError{Op: "open", Err: err}
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "ping", Err: err}
	}

	o := &OUIDatabase{
		db:    db,
		cache: NewOUICache(cacheSize),
	}

	if err := o.initializeSchema(); err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "initialize_schema", Err: err}
	}

	stmt, err := db.Prepare("SELECT COALESCE(NULLIF(vendor_short, ''), vendor) FROM oui_registry WHERE prefix = ?")
	if err != nil {
		db.Close()
		return nil, &DatabaseError{Op: "prepare_statement", Err: err}
	}
	o.lookupStmt = stmt

	return o, nil
}

func (o *OUIDatabase) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS oui_registry (
		prefix TEXT PRIMARY KEY,
		vendor TEXT NOT NULL,
		vendor_short TEXT,
		country TEXT,
		last_updated INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_oui_vendor_short ON oui_registry(vendor_short);
	`
	if _, err := o.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LookupVendor implements VendorRepository.
func (o *OUIDatabase) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return "", ErrRepositoryClosed
	}

	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	prefix := mac.OUI()
	if vendor, ok := o.cache.Get(prefix); ok {
		return vendor, nil
	}

	var vendor string
	err := o.lookupStmt.QueryRowContext(ctx, prefix).Scan(&vendor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrVendorNotFound
	}
	if err != nil {
		return "", &DatabaseError{Op: "lookup", Err: err}
	}

	o.cache.Set(prefix, vendor)
	return vendor, nil
}

const upsertOUI = `
	INSERT OR REPLACE INTO oui_registry (prefix, vendor, vendor_short, country, last_updated)
	VALUES (?, ?, ?, ?, ?)
`

// InsertOUI implements VendorWriter.
func (o *OUIDatabase) InsertOUI(ctx context.Context, entry OUIEntry) error {
	return o.BulkInsertOUIs(ctx, []OUIEntry{entry})
}

// BulkInsertOUIs writes entries in one transaction. Prefixes are normalized
// and entries without a usable prefix are skipped.
func (o *OUIDatabase) BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrRepositoryClosed
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return &DatabaseError{Op: "begin_transaction", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertOUI)
	if err != nil {
		return &DatabaseError{Op: "prepare_bulk_insert", Err: err}
	}
	defer stmt.Close()

	for _, entry := range entries {
		prefix := NormalizePrefix(entry.Prefix)
		if prefix == "" || strings.TrimSpace(entry.Vendor) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			prefix,
			entry.Vendor,
			entry.VendorShort,
			entry.Country,
			entry.LastUpdated.Unix(),
		); err != nil {
			return &DatabaseError{Op: "bulk_insert_entry", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &DatabaseError{Op: "commit_transaction", Err: err}
	}

	// cached values may be stale now
	o.cache.Clear()
	return nil
}

// GetStats returns registry size and cache counters.
func (o *OUIDatabase) GetStats(ctx context.Context) (RepositoryStats, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		return RepositoryStats{}, ErrRepositoryClosed
	}

	var count int
	var lastUpdateUnix int64
	err := o.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(MAX(last_updated), 0) FROM oui_registry",
	).Scan(&count, &lastUpdateUnix)
	if err != nil {
		return RepositoryStats{}, &DatabaseError{Op: "get_stats", Err: err}
	}

	cacheStats := o.cache.Stats()
	return RepositoryStats{
		TotalEntries: count,
		CacheHits:    cacheStats.Hits,
		CacheMisses:  cacheStats.Misses,
		LastUpdated:  time.Unix(lastUpdateUnix, 0).UTC().Format("2006-01-02"),
	}, nil
}

// Close implements VendorRepository.
func (o *OUIDatabase) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true

	if o.lookupStmt != nil {
		o.lookupStmt.Close()
	}
	o.cache.Clear()
	return o.db.Close()
}

var vendorSuffixes = []string{
	" Co., Ltd.", " Co.,Ltd.", " Co., Ltd", " Co.,Ltd",
	" Inc.", " Inc", " Corporation", " Corp.", " Corp",
	" Ltd.", " Ltd", " Limited", " Co.", " LLC", " GmbH", " S.A.", " AG",
}

// ShortVendor trims legal suffixes and comma tails from a registry
// organization name, e.g. "Qingdao Yeelink Information Technology Co., Ltd."
// becomes "Qingdao Yeelink Information Technology".
func ShortVendor(vendor string) string {
	vendor = strings.TrimSpace(vendor)
	for _, suffix := range vendorSuffixes {
		vendor = strings.TrimSuffix(vendor, suffix)
	}
	if idx := strings.Index(vendor, ","); idx > 0 {
		vendor = vendor[:idx]
	}
	return strings.TrimSpace(vendor)
}
