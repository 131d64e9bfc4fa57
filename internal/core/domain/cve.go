package domain

import (
	"strings"
	"time"
)

// Severity is the upstream severity label of a vulnerability.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Normalize lowercases and trims the label.
func (s Severity) Normalize() Severity {
	return Severity(strings.ToLower(strings.TrimSpace(string(s))))
}

// VulnerabilityRecord is a candidate vulnerability returned by a
// vulnerability source. It is never persisted as-is.
type VulnerabilityRecord struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// CVERecord is a row of the local CVE mirror.
type CVERecord struct {
	ID            string    `json:"cve_id"`
	Vendor        string    `json:"vendor"`
	Product       string    `json:"product"`
	Description   string    `json:"description"`
	Severity      Severity  `json:"severity"`
	PublishedDate time.Time `json:"published_date"`
	References    []string  `json:"references,omitempty"`
}

// Record projects the mirror row onto the transient record used by correlation.
func (c CVERecord) Record() VulnerabilityRecord {
	return VulnerabilityRecord{
		ID:          c.ID,
		Description: c.Description,
		Severity:    c.Severity,
	}
}

// CVESyncStatus tracks the last load of the local CVE mirror.
type CVESyncStatus struct {
	LastSyncTime time.Time `json:"last_sync_time"`
	RecordCount  int       `json:"record_count"`
	ErrorMessage string    `json:"error_message,omitempty"`
}
