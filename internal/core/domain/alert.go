package domain

import "time"

// AlertDraft is a candidate SecurityAlert produced by correlation and
// not yet persisted.
type AlertDraft struct {
	OwnerID         string   `json:"owner_id"`
	DeviceID        string   `json:"device_id"`
	DeviceName      string   `json:"device_name"`
	Vendor          string   `json:"vendor"`
	VulnerabilityID string   `json:"vulnerability_id"`
	Severity        Severity `json:"severity"`
	Description     string   `json:"description"`
	Suggestion      string   `json:"suggestion"`
}

// SecurityAlert is a persisted alert. At most one exists per
// (DeviceID, VulnerabilityID).
type SecurityAlert struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	DeviceID        string    `json:"device_id"`
	DeviceName      string    `json:"device_name"`
	Vendor          string    `json:"vendor"`
	VulnerabilityID string    `json:"vulnerability_id"`
	Severity        Severity  `json:"severity"`
	Description     string    `json:"description"`
	Suggestion      string    `json:"suggestion"`
	CreatedAt       time.Time `json:"created_at"`
}

// AnnotatedVulnerability is a retained record with its remediation suggestion.
type AnnotatedVulnerability struct {
	VulnerabilityRecord
	Suggestion string `json:"suggestion"`
}

// CorrelationResult summarizes one correlated device.
type CorrelationResult struct {
	DeviceID        string                   `json:"device_id"`
	DeviceName      string                   `json:"device_name"`
	IPAddress       string                   `json:"ip_address"`
	Vendor          string                   `json:"vendor"`
	Vulnerabilities []AnnotatedVulnerability `json:"vulnerabilities"`
}
