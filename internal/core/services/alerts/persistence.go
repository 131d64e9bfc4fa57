package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/lcalzada-xor/iotsec/internal/telemetry"
	"k8s.io/utils/clock"
)

// AlertPersistence stores alert drafts whose (device, vulnerability) pair
// is not stored yet.
type AlertPersistence struct {
	repo   ports.AlertRepository
	clock  clock.Clock
	logger *slog.Logger
}

// NewAlertPersistence creates the persister.
func NewAlertPersistence(repo ports.AlertRepository, clk clock.Clock, logger *slog.Logger) *AlertPersistence {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertPersistence{repo: repo, clock: clk, logger: logger}
}

// Persist handles each draft independently: one failure does not stop the
// others. It returns the alerts actually created and, if any draft failed,
// an error wrapping domain.ErrStorageFailure that joins every failure.
func (p *AlertPersistence) Persist(ctx context.Context, drafts []domain.AlertDraft) ([]domain.SecurityAlert, error) {
	created := make([]domain.SecurityAlert, 0, len(drafts))
	var errs []error

	for _, d := range drafts {
		if d.DeviceID == "" || d.VulnerabilityID == "" {
			p.logger.Warn("Skipping incomplete alert draft", "device", d.DeviceID, "vulnerability", d.VulnerabilityID)
			continue
		}

		alert, ok, err := p.persistOne(ctx, d)
		if err != nil {
			p.logger.Warn("Failed to store alert", "device", d.DeviceID, "vulnerability", d.VulnerabilityID, "error", err)
			telemetry.AlertPersistErrors.Inc()
			errs = append(errs, fmt.Errorf("%s/%s: %w", d.DeviceID, d.VulnerabilityID, err))
			continue
		}
		if ok {
			telemetry.AlertsCreated.WithLabelValues(string(alert.Severity)).Inc()
			created = append(created, alert)
		}
	}

	if len(errs) > 0 {
		return created, fmt.Errorf("%w: %w", domain.ErrStorageFailure, errors.Join(errs...))
	}
	return created, nil
}

func (p *AlertPersistence) persistOne(ctx context.Context, d domain.AlertDraft) (domain.SecurityAlert, bool, error) {
	exists, err := p.repo.AlertExists(ctx, d.DeviceID, d.VulnerabilityID)
	if err != nil {
		return domain.SecurityAlert{}, false, err
	}
	if exists {
		return domain.SecurityAlert{}, false, nil
	}

	alert := domain.SecurityAlert{
		ID:              uuid.New().String(),
		OwnerID:         d.OwnerID,
		DeviceID:        d.DeviceID,
		DeviceName:      d.DeviceName,
		Vendor:          d.Vendor,
		VulnerabilityID: d.VulnerabilityID,
		Severity:        d.Severity.Normalize(),
		Description:     d.Description,
		Suggestion:      d.Suggestion,
		CreatedAt:       p.clock.Now(),
	}

	// the unique index absorbs a concurrent insert of the same pair
	inserted, err := p.repo.InsertAlert(ctx, alert)
	if err != nil {
		return domain.SecurityAlert{}, false, err
	}
	return alert, inserted, nil
}
