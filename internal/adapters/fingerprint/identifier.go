package fingerprint

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

// VendorIdentifier resolves device vendors from the OUI of the MAC address,
// falling back to keyword matches on the device name.
type VendorIdentifier struct {
	repo     VendorRepository
	keywords []KeywordRule
	aliases  map[string]string
	logger   *slog.Logger
}

// NewVendorIdentifier builds an identifier over the given tables. The static
// OUI table is consulted before registry, which may be nil.
func NewVendorIdentifier(tables Tables, registry VendorRepository, logger *slog.Logger) *VendorIdentifier {
	if logger == nil {
		logger = slog.Default()
	}

	keywords := make([]KeywordRule, 0, len(tables.Keywords))
	for _, k := range tables.Keywords {
		kw := strings.ToLower(strings.TrimSpace(k.Keyword))
		if kw == "" {
			continue
		}
		keywords = append(keywords, KeywordRule{Keyword: kw, Vendor: k.Vendor})
	}

	aliases := make(map[string]string, len(tables.Aliases))
	for from, to := range tables.Aliases {
		aliases[strings.ToLower(strings.TrimSpace(from))] = to
	}

	return &VendorIdentifier{
		repo:     NewCompositeVendorRepository(NewStaticVendorRepository(tables.OUI), registry),
		keywords: keywords,
		aliases:  aliases,
		logger:   logger,
	}
}

// Identify returns the canonical vendor and true, or "" and false when
// neither the MAC nor the name identifies the device.
func (v *VendorIdentifier) Identify(ctx context.Context, mac, name string) (string, bool) {
	if vendor, ok := v.fromMAC(ctx, mac); ok {
		if canonical := v.canonical(vendor, false); !domain.IsUnknownVendor(canonical) {
			return canonical, true
		}
	}

	if vendor, ok := v.fromName(name); ok {
		if canonical := v.canonical(vendor, true); !domain.IsUnknownVendor(canonical) {
			return canonical, true
		}
	}

	return "", false
}

func (v *VendorIdentifier) fromMAC(ctx context.Context, raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}

	mac, err := ParseMAC(raw)
	if err != nil {
		v.logger.Debug("Unparseable MAC, falling back to name", "mac", raw)
		return "", false
	}

	vendor, err := v.repo.LookupVendor(ctx, mac)
	if err != nil {
		if !errors.Is(err, ErrVendorNotFound) {
			v.logger.Warn("OUI lookup failed", "oui", mac.OUI(), "error", err)
		}
		return "", false
	}
	return vendor, vendor != ""
}

func (v *VendorIdentifier) fromName(name string) (string, bool) {
	lower := strings.ToLower(name)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, rule := range v.keywords {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Vendor, true
		}
	}
	return "", false
}

// canonical applies the alias table. Names from the keyword table are
// lowercased when no alias exists; OUI values pass through unchanged.
func (v *VendorIdentifier) canonical(vendor string, lowerUnmapped bool) string {
	key := strings.ToLower(strings.TrimSpace(vendor))
	if alias, ok := v.aliases[key]; ok {
		return alias
	}
	if lowerUnmapped {
		return key
	}
	return strings.TrimSpace(vendor)
}
