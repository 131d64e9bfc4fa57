package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/lcalzada-xor/iotsec/internal/telemetry"
	"k8s.io/utils/clock"
)

// ScanIngestor normalizes raw scan output and stores devices not seen
// before for the owner.
type ScanIngestor struct {
	repo   ports.DeviceRepository
	clock  clock.Clock
	logger *slog.Logger
}

// NewScanIngestor creates the ingestor.
func NewScanIngestor(repo ports.DeviceRepository, clk clock.Clock, logger *slog.Logger) *ScanIngestor {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanIngestor{repo: repo, clock: clk, logger: logger}
}

type scanEnvelope struct {
	Devices []domain.RawDevice `json:"devices"`
}

// Parse decodes scan output: either a JSON array of devices or an object
// with a "devices" array.
func Parse(data []byte) ([]domain.RawDevice, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty scan payload", domain.ErrInvalidInput)
	}

	if trimmed[0] == '{' {
		var env scanEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		if env.Devices == nil {
			return nil, fmt.Errorf("%w: missing devices array", domain.ErrInvalidInput)
		}
		return env.Devices, nil
	}

	var raw []domain.RawDevice
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return raw, nil
}

// IngestRaw parses data and ingests the result.
func (s *ScanIngestor) IngestRaw(ctx context.Context, ownerID string, data []byte) ([]domain.Device, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	raw, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return s.Ingest(ctx, ownerID, raw)
}

// Ingest stores the valid, previously unknown devices in one transaction
// and returns them. Invalid records are dropped and logged; repeated IPs
// keep their first occurrence. The result is empty, not an error, when
// every device was already known.
func (s *ScanIngestor) Ingest(ctx context.Context, ownerID string, raw []domain.RawDevice) ([]domain.Device, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	now := s.clock.Now().UTC()
	seen := make(map[string]struct{}, len(raw))
	devices := make([]domain.Device, 0, len(raw))

	for i, r := range raw {
		ip := strings.TrimSpace(r.IP)
		if !domain.IsValidIP(ip) {
			s.logger.Warn("Dropping scan record with invalid IP", "index", i, "ip", r.IP, "hostname", r.Hostname)
			telemetry.ScanRecordsDropped.WithLabelValues("invalid_ip").Inc()
			continue
		}
		ip = canonicalIP(ip)
		if _, dup := seen[ip]; dup {
			telemetry.ScanRecordsDropped.WithLabelValues("duplicate_ip").Inc()
			continue
		}
		seen[ip] = struct{}{}

		devices = append(devices, domain.Device{
			ID:         uuid.New().String(),
			OwnerID:    ownerID,
			DeviceName: deviceName(r.Hostname),
			IPAddress:  ip,
			MACAddress: normalizeMAC(r.MAC),
			ScanDate:   now,
		})
	}

	if len(devices) == 0 {
		return nil, domain.ErrNoDevicesFound
	}

	inserted, err := s.repo.InsertNewDevices(ctx, devices)
	if err != nil {
		s.logger.Error("Failed to store scanned devices", "owner", ownerID, "count", len(devices), "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageFailure, err)
	}

	telemetry.DevicesIngested.Add(float64(len(inserted)))
	s.logger.Info("Scan ingested", "owner", ownerID, "valid", len(devices), "new", len(inserted))
	return inserted, nil
}

// canonicalIP renders one textual form per host: IPv4-mapped IPv6 becomes
// plain IPv4 and IPv6 is lower-cased and zero-compressed.
func canonicalIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	return addr.Unmap().String()
}

func deviceName(hostname string) string {
	if name := strings.TrimSpace(hostname); name != "" {
		return name
	}
	return domain.DefaultDeviceName
}

// normalizeMAC upper-cases well-formed addresses with colon separators and
// keeps anything else as reported. The MAC never causes a drop.
func normalizeMAC(raw string) string {
	raw = strings.TrimSpace(raw)
	if domain.IsValidMAC(raw) {
		return strings.ToUpper(strings.ReplaceAll(raw, "-", ":"))
	}
	return raw
}
