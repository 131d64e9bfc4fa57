package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
)

// ScanHandler accepts scan output and serves the caller's device inventory.
type ScanHandler struct {
	Ingestor ports.ScanIngestor
	Devices  ports.DeviceRepository
	Audit    ports.AuditService
	logger   *slog.Logger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(ingestor ports.ScanIngestor, devices ports.DeviceRepository, audit ports.AuditService, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{Ingestor: ingestor, Devices: devices, Audit: audit, logger: orDefault(logger)}
}

// HandleIngest stores the newly discovered devices of a raw scan.
// It answers 201 with the saved devices, or 200 when nothing was new.
func (h *ScanHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	saved, err := h.Ingestor.IngestRaw(r.Context(), owner, body)
	if err != nil {
		writeEngineError(w, h.logger, "ingest", err)
		return
	}
	if len(saved) == 0 {
		writeStatus(w, http.StatusOK, "no_devices_found")
		return
	}

	audit(r, h.Audit, h.logger, owner, domain.ActionIngest, "scan", fmt.Sprintf("%d new devices", len(saved)))
	writeJSON(w, http.StatusCreated, saved)
}

// HandleListDevices returns the caller's stored devices.
func (h *ScanHandler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}

	devices, err := h.Devices.ListDevices(r.Context(), owner, nil)
	if err != nil {
		writeEngineError(w, h.logger, "list_devices", err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
