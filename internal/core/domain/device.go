package domain

import (
	"strings"
	"time"
)

// DefaultDeviceName is used when the scan reports no hostname.
const DefaultDeviceName = "Unknown Device"

// RawDevice is a single host as reported by the external network scan.
type RawDevice struct {
	Hostname string `json:"Hostname,omitempty"`
	IP       string `json:"IP"`
	MAC      string `json:"MAC,omitempty"`
}

// Device is a host stored for an owner. At most one Device exists
// per (OwnerID, IPAddress); it is never updated after creation.
type Device struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	DeviceName string    `json:"device_name"`
	IPAddress  string    `json:"ip_address"`
	MACAddress string    `json:"mac_address,omitempty"`
	ScanDate   time.Time `json:"scan_date"`
}

// unknownVendors are placeholder strings the scan layer reports in place of a vendor.
var unknownVendors = map[string]struct{}{
	"unknown":       {},
	"not available": {},
	"null":          {},
}

// IsUnknownVendor reports whether vendor carries no identification:
// empty, or one of the placeholder sentinels (case-insensitive).
func IsUnknownVendor(vendor string) bool {
	v := strings.ToLower(strings.TrimSpace(vendor))
	if v == "" {
		return true
	}
	_, ok := unknownVendors[v]
	return ok
}
