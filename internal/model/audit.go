package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Severity is the importance of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Audit actions emitted by the auth service.
const (
	ActionLogin          = "login"
	ActionLockout        = "lockout"
	ActionAddUser        = "add_user"
	ActionChangePassword = "change_password"
	ActionDeleteUser     = "delete_user"
	ActionListLocked     = "list_locked"
)

// AuditEvent is a security-relevant record for later inspection.
type AuditEvent struct {
	ID         uuid.UUID
	OccurredAt time.Time
	Severity   Severity
	Action     string
	Username   string
	Message    string
}

// NewAuditEvent builds an event with a fresh ID.
func NewAuditEvent(at time.Time, severity Severity, action, username, message string) AuditEvent {
	return AuditEvent{
		ID:         uuid.New(),
		OccurredAt: at,
		Severity:   severity,
		Action:     action,
		Username:   username,
		Message:    message,
	}
}

// AuditSink receives audit events. Emit is fire-and-forget: it must not
// block for long and never reports failure to the caller.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}
