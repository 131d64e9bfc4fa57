package cve

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const recordColumns = `cve_id, vendor, product, description, severity, published_date, refs`

// SQLiteRepository implements ports.CVERepository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the mirror at dbPath and applies the schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// likeEscaper makes LIKE wildcards in a vendor name match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByVendor returns records whose vendor column equals vendor or whose
// description mentions it, case-insensitively, newest first.
func (r *SQLiteRepository) SearchByVendor(ctx context.Context, vendor string, limit int) ([]domain.CVERecord, error) {
	vendor = strings.ToLower(strings.TrimSpace(vendor))
	if vendor == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + recordColumns + `
		FROM cve_records
		WHERE LOWER(vendor) = ? OR LOWER(description) LIKE ? ESCAPE '\'
		ORDER BY published_date DESC, cve_id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, vendor, "%"+likeEscaper.Replace(vendor)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("vendor search failed: %w", err)
	}
	defer rows.Close()

	var cves []domain.CVERecord
	for rows.Next() {
		cve, err := scanCVERecord(rows)
		if err != nil {
			return nil, err
		}
		cves = append(cves, cve)
	}
	return cves, rows.Err()
}

// GetByID retrieves a specific CVE by its ID. It returns nil, nil when absent.
func (r *SQLiteRepository) GetByID(ctx context.Context, cveID string) (*domain.CVERecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM cve_records WHERE cve_id = ?`, cveID)
	cve, err := scanCVERecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get CVE: %w", err)
	}
	return &cve, nil
}

// UpsertCVE inserts or updates a CVE record.
func (r *SQLiteRepository) UpsertCVE(ctx context.Context, cve domain.CVERecord) error {
	if strings.TrimSpace(cve.ID) == "" {
		return fmt.Errorf("%w: missing cve_id", domain.ErrInvalidInput)
	}

	refsJSON, err := json.Marshal(cve.References)
	if err != nil {
		return fmt.Errorf("failed to marshal references: %w", err)
	}

	query := `
		INSERT INTO cve_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cve_id) DO UPDATE SET
			vendor = excluded.vendor,
			product = excluded.product,
			description = excluded.description,
			severity = excluded.severity,
			published_date = excluded.published_date,
			refs = excluded.refs,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = r.db.ExecContext(ctx, query,
		cve.ID, strings.ToLower(cve.Vendor), cve.Product, cve.Description,
		string(cve.Severity.Normalize()), cve.PublishedDate.UTC().Format(time.RFC3339), string(refsJSON),
	)
	return err
}

// GetLastSyncTime returns the timestamp of the last mirror load.
func (r *SQLiteRepository) GetLastSyncTime(ctx context.Context) (time.Time, error) {
	var lastSync string
	err := r.db.QueryRowContext(ctx, "SELECT last_sync_time FROM cve_sync_status WHERE id = 1").Scan(&lastSync)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, lastSync)
}

// UpdateSyncStatus records the outcome of a mirror load.
func (r *SQLiteRepository) UpdateSyncStatus(ctx context.Context, status domain.CVESyncStatus) error {
	query := `
		INSERT INTO cve_sync_status (id, last_sync_time, record_count, error_message, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			last_sync_time = excluded.last_sync_time,
			record_count = excluded.record_count,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query,
		status.LastSyncTime.UTC().Format(time.RFC3339),
		status.RecordCount,
		status.ErrorMessage,
	)
	return err
}

// GetTotalCount returns the total number of CVE records.
func (r *SQLiteRepository) GetTotalCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cve_records").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCVERecord(row rowScanner) (domain.CVERecord, error) {
	var cve domain.CVERecord
	var product, publishedDate, refsJSON sql.NullString
	var severity string

	if err := row.Scan(
		&cve.ID, &cve.Vendor, &product, &cve.Description, &severity, &publishedDate, &refsJSON,
	); err != nil {
		return cve, err
	}

	cve.Product = product.String
	cve.Severity = domain.Severity(severity)
	cve.PublishedDate, _ = time.Parse(time.RFC3339, publishedDate.String)
	if refsJSON.String != "" {
		_ = json.Unmarshal([]byte(refsJSON.String), &cve.References)
	}

	return cve, nil
}
