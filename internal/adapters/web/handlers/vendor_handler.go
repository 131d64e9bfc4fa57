package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
)

// VendorVulnerabilities is the answer to a general vendor lookup.
type VendorVulnerabilities struct {
	Vendor          string                          `json:"vendor"`
	Vulnerabilities []domain.AnnotatedVulnerability `json:"vulnerabilities"`
}

// VendorHandler answers device-independent vendor lookups.
type VendorHandler struct {
	Lookup ports.VendorLookup
	Audit  ports.AuditService
	logger *slog.Logger
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(lookup ports.VendorLookup, audit ports.AuditService, logger *slog.Logger) *VendorHandler {
	return &VendorHandler{Lookup: lookup, Audit: audit, logger: orDefault(logger)}
}

// HandleLookup returns the relevant vulnerabilities of a vendor. An
// unknown vendor placeholder searches the configured fallback vendors.
func (h *VendorHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	vendor := mux.Vars(r)["vendor"]

	vulns := h.Lookup.Lookup(r.Context(), vendor)
	audit(r, h.Audit, h.logger, ownerID(r), domain.ActionLookup, vendor, fmt.Sprintf("%d vulnerabilities", len(vulns)))

	writeJSON(w, http.StatusOK, VendorVulnerabilities{
		Vendor:          vendor,
		Vulnerabilities: vulns,
	})
}
