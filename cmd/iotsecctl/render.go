package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

var severityColor = map[domain.Severity]func(a ...interface{}) string{
	domain.SeverityCritical: color.New(color.FgRed, color.Bold).SprintFunc(),
	domain.SeverityHigh:     color.New(color.FgHiRed).SprintFunc(),
	domain.SeverityMedium:   color.New(color.FgYellow).SprintFunc(),
	domain.SeverityLow:      color.New(color.FgBlue).SprintFunc(),
}

func configureColor(disabled bool) {
	if disabled {
		color.NoColor = true
	}
}

func colorizeSeverity(s domain.Severity) string {
	label := string(s.Normalize())
	if label == "" {
		label = "unknown"
	}
	if fn, ok := severityColor[s.Normalize()]; ok {
		return fn(label)
	}
	return color.New(color.FgCyan).SprintFunc()(label)
}

func renderDevices(w io.Writer, devices []domain.Device) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tIP\tMAC")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.DeviceName, d.IPAddress, d.MACAddress)
	}
	tw.Flush()
}

func renderResults(w io.Writer, results []domain.CorrelationResult) {
	bold := color.New(color.Bold).SprintFunc()
	for _, r := range results {
		fmt.Fprintf(w, "%s %s (%s) vendor=%s\n", bold(r.DeviceName), r.IPAddress, r.DeviceID, r.Vendor)
		for _, v := range r.Vulnerabilities {
			fmt.Fprintf(w, "  %-16s %s %s\n", v.ID, colorizeSeverity(v.Severity), v.Description)
			fmt.Fprintf(w, "  %-16s -> %s\n", "", v.Suggestion)
		}
	}
}

func renderVulnerabilities(w io.Writer, vendor string, vulns []domain.AnnotatedVulnerability) {
	if len(vulns) == 0 {
		fmt.Fprintf(w, "no relevant vulnerabilities for %q\n", vendor)
		return
	}
	for _, v := range vulns {
		fmt.Fprintf(w, "%-16s %s %s\n", v.ID, colorizeSeverity(v.Severity), v.Description)
		fmt.Fprintf(w, "%-16s -> %s\n", "", v.Suggestion)
	}
}

func renderAlerts(w io.Writer, alerts []domain.SecurityAlert) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tDEVICE\tVENDOR\tCVE\tSEVERITY\tSUGGESTION")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.CreatedAt.Format("2006-01-02 15:04"), a.DeviceName, a.Vendor, a.VulnerabilityID,
			colorizeSeverity(a.Severity), a.Suggestion)
	}
	tw.Flush()
}
