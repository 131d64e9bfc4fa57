package fingerprint

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// DefaultImportBatch is the number of registry rows written per transaction.
const DefaultImportBatch = 1000

// CSVLayout locates the prefix and organization columns of a registry export.
type CSVLayout struct {
	PrefixColumn int
	VendorColumn int
}

var (
	// LayoutMaclookup reads "Mac Prefix,Vendor Name,Private,Block Type,Last Update".
	LayoutMaclookup = CSVLayout{PrefixColumn: 0, VendorColumn: 1}
	// LayoutIEEE reads "Registry,Assignment,Organization Name,Organization Address".
	LayoutIEEE = CSVLayout{PrefixColumn: 1, VendorColumn: 2}
)

// ImportStats summarizes a registry import.
type ImportStats struct {
	Imported int
	Skipped  int
}

// ImportCSV reads a registry CSV export and writes it to w in batches.
// The header row is skipped. Malformed lines are counted and skipped.
func ImportCSV(ctx context.Context, r io.Reader, layout CSVLayout, w VendorWriter, batch int, now time.Time) (ImportStats, error) {
	if batch <= 0 {
		batch = DefaultImportBatch
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return ImportStats{}, fmt.Errorf("failed to read header: %w", err)
	}

	var stats ImportStats
	entries := make([]OUIEntry, 0, batch)
	flush := func() error {
		if len(entries) == 0 {
			return nil
		}
		if err := w.BulkInsertOUIs(ctx, entries); err != nil {
			return err
		}
		stats.Imported += len(entries)
		entries = entries[:0]
		return nil
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			log.Printf("[OUI-IMPORT] Skipping line %d: %v", line, err)
			stats.Skipped++
			continue
		}
		if len(record) <= max(layout.PrefixColumn, layout.VendorColumn) {
			stats.Skipped++
			continue
		}

		prefix := NormalizePrefix(record[layout.PrefixColumn])
		vendor := strings.TrimSpace(record[layout.VendorColumn])
		if prefix == "" || vendor == "" {
			stats.Skipped++
			continue
		}

		entries = append(entries, OUIEntry{
			Prefix:      prefix,
			Vendor:      vendor,
			VendorShort: ShortVendor(vendor),
			LastUpdated: now,
		})
		if len(entries) >= batch {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}
