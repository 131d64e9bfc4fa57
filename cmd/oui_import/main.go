package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/adapters/fingerprint"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// IEEE OUI registry URL
const ieeeOUIURL = "https://standards-oui.ieee.org/oui/oui.csv"

func main() {
	csvPath := flag.String("csv", "data/oui/maclookup.csv", "Path to CSV file")
	url := flag.String("url", "", "Download the registry instead of reading -csv (use \"ieee\" for the IEEE registry)")
	format := flag.String("format", "maclookup", "CSV layout: maclookup or ieee")
	dbPath := flag.String("db", "data/oui/ieee_oui.db", "Path to OUI database")
	batch := flag.Int("batch", fingerprint.DefaultImportBatch, "Rows per transaction")
	flag.Parse()

	if *url == "ieee" {
		*url = ieeeOUIURL
		*format = "ieee"
	}

	var layout fingerprint.CSVLayout
	switch *format {
	case "maclookup":
		layout = fingerprint.LayoutMaclookup
	case "ieee":
		layout = fingerprint.LayoutIEEE
	default:
		log.Fatalf("Unknown format: %s", *format)
	}

	src, err := openSource(*csvPath, *url)
	if err != nil {
		log.Fatalf("Failed to open registry source: %v", err)
	}
	defer src.Close()

	log.Printf("Importing OUI data into %s (%s layout)", *dbPath, *format)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := fingerprint.NewOUIDatabase(*dbPath, 1000)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	result, err := fingerprint.ImportCSV(ctx, src, layout, db, *batch, time.Now())
	if err != nil {
		log.Fatalf("Import failed after %d entries: %v", result.Imported, err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		log.Fatalf("Failed to get stats: %v", err)
	}

	log.Printf("Import complete: %d imported, %d skipped", result.Imported, result.Skipped)
	log.Printf("  Total entries: %d", stats.TotalEntries)
	log.Printf("  Last updated: %s", stats.LastUpdated)
}

func openSource(path, url string) (io.ReadCloser, error) {
	if url == "" {
		log.Printf("CSV: %s", path)
		return os.Open(path)
	}

	log.Printf("Downloading OUI registry from %s...", url)
	client := &http.Client{
		Timeout:   5 * time.Minute,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
