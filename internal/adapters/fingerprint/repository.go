package fingerprint

import (
	"context"
	"errors"
)

// VendorRepository looks up device vendors by MAC address.
type VendorRepository interface {
	// LookupVendor returns the vendor for the address's OUI or ErrVendorNotFound.
	LookupVendor(ctx context.Context, mac MACAddress) (string, error)

	// Close releases any resources held by the repository
	Close() error
}

// VendorWriter defines the interface for writing registry data
type VendorWriter interface {
	InsertOUI(ctx context.Context, entry OUIEntry) error
	BulkInsertOUIs(ctx context.Context, entries []OUIEntry) error
}

// RepositoryStats contains statistics about a vendor repository
type RepositoryStats struct {
	TotalEntries int
	CacheHits    int64
	CacheMisses  int64
	LastUpdated  string
}

// CompositeVendorRepository tries multiple repositories in order.
type CompositeVendorRepository struct {
	repositories []VendorRepository
}

// NewCompositeVendorRepository creates a repository chain. Nil entries are skipped.
func NewCompositeVendorRepository(repos ...VendorRepository) *CompositeVendorRepository {
	chain := make([]VendorRepository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			chain = append(chain, r)
		}
	}
	return &CompositeVendorRepository{repositories: chain}
}

// LookupVendor returns the first non-empty vendor in chain order.
func (c *CompositeVendorRepository) LookupVendor(ctx context.Context, mac MACAddress) (string, error) {
	if !mac.IsValid() {
		return "", ErrInvalidMAC
	}

	var lastErr error
	for _, repo := range c.repositories {
		vendor, err := repo.LookupVendor(ctx, mac)
		if err == nil && vendor != "" {
			return vendor, nil
		}
		if err != nil && !errors.Is(err, ErrVendorNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrVendorNotFound
}

// Close closes all repositories
func (c *CompositeVendorRepository) Close() error {
	var errs []error
	for _, repo := range c.repositories {
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StaticVendorRepository serves lookups from an in-memory OUI table.
type StaticVendorRepository struct {
	vendors map[string]string
}

// NewStaticVendorRepository normalizes the table keys to "XX:XX:XX".
func NewStaticVendorRepository(vendors map[string]string) *StaticVendorRepository {
	normalized := make(map[string]string, len(vendors))
	for prefix, vendor := range vendors {
		if p := NormalizePrefix(prefix); p != "" {
			normalized[p] = vendor
		}
	}
	return &StaticVendorRepository{vendors: normalized}
}

// LookupVendor looks up a vendor in the static map
func (s *StaticVendorRepository) LookupVendor(_ context.Context, mac MACAddress) (string, error) {
	if vendor, ok := s.vendors[mac.OUI()]; ok {
		return vendor, nil
	}
	return "", ErrVendorNotFound
}

// Close is a no-op for static repository
func (s *StaticVendorRepository) Close() error {
	return nil
}
