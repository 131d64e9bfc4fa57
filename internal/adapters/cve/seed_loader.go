package cve

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"k8s.io/utils/clock"
)

// SeedLoader loads CVE records from JSON files into the local mirror.
type SeedLoader struct {
	repo  ports.CVERepository
	clock clock.Clock
}

// NewSeedLoader creates a new seed loader.
func NewSeedLoader(repo ports.CVERepository, clk clock.Clock) *SeedLoader {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &SeedLoader{repo: repo, clock: clk}
}

// LoadFromFile loads a JSON array of CVE records and returns how many were
// stored. Individual record failures are logged and skipped.
func (s *SeedLoader) LoadFromFile(ctx context.Context, path string) (int, error) {
	log.Printf("[CVE-SEED] Loading CVEs from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var cves []domain.CVERecord
	if err := json.Unmarshal(data, &cves); err != nil {
		return 0, fmt.Errorf("%w: failed to parse seed file: %w", domain.ErrInvalidInput, err)
	}

	loaded, failed := 0, 0
	for _, cve := range cves {
		if err := s.repo.UpsertCVE(ctx, cve); err != nil {
			log.Printf("[CVE-SEED] Failed to load %s: %v", cve.ID, err)
			failed++
			continue
		}
		loaded++
	}

	log.Printf("[CVE-SEED] Loaded %d CVEs (%d failed)", loaded, failed)

	status := domain.CVESyncStatus{
		LastSyncTime: s.clock.Now(),
		RecordCount:  loaded,
	}
	if failed > 0 {
		status.ErrorMessage = fmt.Sprintf("%d records failed", failed)
	}
	if err := s.repo.UpdateSyncStatus(ctx, status); err != nil {
		log.Printf("[CVE-SEED] Failed to update sync status: %v", err)
	}

	return loaded, nil
}

// LoadFromMultipleFiles loads every file, skipping the ones that fail.
func (s *SeedLoader) LoadFromMultipleFiles(ctx context.Context, paths []string) int {
	total, files := 0, 0
	for _, path := range paths {
		n, err := s.LoadFromFile(ctx, path)
		if err != nil {
			log.Printf("[CVE-SEED] Failed to load %s: %v", path, err)
			continue
		}
		total += n
		files++
	}

	log.Printf("[CVE-SEED] Loaded from %d/%d files", files, len(paths))
	return total
}
