package audit

import (
	"context"
	"log/slog"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"k8s.io/utils/clock"
)

// AuditService records engine operations per owner.
type AuditService struct {
	repo   ports.AuditRepository
	clock  clock.Clock
	logger *slog.Logger
}

func NewAuditService(repo ports.AuditRepository, clk clock.Clock, logger *slog.Logger) *AuditService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{repo: repo, clock: clk, logger: logger}
}

func (s *AuditService) Log(ctx context.Context, ownerID string, action domain.AuditAction, target, details string) error {
	entry, err := domain.NewAuditLog(ownerID, action, target, details, s.clock.Now())
	if err != nil {
		return err
	}

	if err := s.repo.SaveAuditLog(ctx, *entry); err != nil {
		s.logger.Warn("Failed to write audit log", "action", action, "owner", ownerID, "error", err)
		return err
	}
	return nil
}

func (s *AuditService) GetLogs(ctx context.Context, ownerID string, limit int) ([]domain.AuditLog, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.ListAuditLogs(ctx, ownerID, limit)
}
