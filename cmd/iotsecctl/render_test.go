package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

func init() {
	color.NoColor = true
}

func TestColorizeSeverity(t *testing.T) {
	assert.Equal(t, "critical", colorizeSeverity("CRITICAL"))
	assert.Equal(t, "low", colorizeSeverity(domain.SeverityLow))
	assert.Equal(t, "unknown", colorizeSeverity(""))
	assert.Equal(t, "none", colorizeSeverity("none"))
}

func TestRenderResults(t *testing.T) {
	var buf bytes.Buffer
	renderResults(&buf, []domain.CorrelationResult{{
		DeviceID:   "d1",
		DeviceName: "yeelight-lamp",
		IPAddress:  "192.168.1.23",
		Vendor:     "yeelight",
		Vulnerabilities: []domain.AnnotatedVulnerability{{
			VulnerabilityRecord: domain.VulnerabilityRecord{
				ID:          "CVE-2024-0001",
				Description: "unauthenticated command execution",
				Severity:    domain.SeverityHigh,
			},
			Suggestion: "Enable two-factor authentication",
		}},
	}})

	out := buf.String()
	assert.Contains(t, out, "yeelight-lamp 192.168.1.23 (d1) vendor=yeelight")
	assert.Contains(t, out, "CVE-2024-0001")
	assert.Contains(t, out, "high unauthenticated command execution")
	assert.Contains(t, out, "-> Enable two-factor authentication")
}

func TestRenderVulnerabilities_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderVulnerabilities(&buf, "acme", nil)
	assert.Equal(t, "no relevant vulnerabilities for \"acme\"\n", buf.String())
}

func TestRenderAlerts(t *testing.T) {
	var buf bytes.Buffer
	renderAlerts(&buf, []domain.SecurityAlert{{
		DeviceName:      "cam",
		Vendor:          "hikvision",
		VulnerabilityID: "CVE-2021-36260",
		Severity:        domain.SeverityCritical,
		Suggestion:      "Update device firmware",
		CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}})

	out := buf.String()
	assert.Contains(t, out, "CREATED")
	assert.Contains(t, out, "2026-03-01 12:00")
	assert.Contains(t, out, "CVE-2021-36260")
	assert.Contains(t, out, "critical")
}
