package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/iotsec/internal/adapters/cve"
	"k8s.io/utils/clock"
)

func main() {
	dbPath := flag.String("db-path", "./data/cve.db", "Path to CVE database")
	flag.Parse()

	seedFiles := flag.Args()
	if len(seedFiles) == 0 {
		seedFiles = []string{"./configs/cve_seed.json"}
	}

	log.Println("=== CVE Seed Loader ===")
	log.Printf("Seed files: %v", seedFiles)
	log.Printf("Database: %s", *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	repo, err := cve.NewSQLiteRepository(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	loader := cve.NewSeedLoader(repo, clock.RealClock{})
	ctx := context.Background()

	if loaded := loader.LoadFromMultipleFiles(ctx, seedFiles); loaded == 0 {
		log.Printf("Warning: no CVEs were loaded")
	}

	count, err := repo.GetTotalCount(ctx)
	if err != nil {
		log.Fatalf("Failed to count CVEs: %v", err)
	}
	last, _ := repo.GetLastSyncTime(ctx)
	log.Printf("Database now contains %d CVEs (last sync %s)", count, last.Format("2006-01-02 15:04:05"))
}
