package domain

import (
	"errors"
	"time"
)

// AuditAction identifies an engine operation recorded in the audit log.
type AuditAction string

const (
	ActionLogin     AuditAction = "LOGIN"
	ActionIngest    AuditAction = "SCAN_INGESTED"
	ActionCorrelate AuditAction = "CORRELATION_RUN"
	ActionLookup    AuditAction = "VENDOR_LOOKUP"
)

var (
	ErrInvalidAction = errors.New("invalid audit action")
	ErrMissingOwner  = errors.New("owner identification is required for auditing")
)

// AuditLog records who ran which engine operation and what it produced.
type AuditLog struct {
	ID        uint        `json:"id"`
	OwnerID   string      `json:"owner_id"`
	Action    AuditAction `json:"action"`
	Target    string      `json:"target"`
	Details   string      `json:"details"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewAuditLog builds a validated audit entry.
func NewAuditLog(ownerID string, action AuditAction, target, details string, at time.Time) (*AuditLog, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	switch action {
	case ActionLogin, ActionIngest, ActionCorrelate, ActionLookup:
	default:
		return nil, ErrInvalidAction
	}

	return &AuditLog{
		OwnerID:   ownerID,
		Action:    action,
		Target:    target,
		Details:   details,
		Timestamp: at.UTC(),
	}, nil
}
