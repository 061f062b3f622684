package postgres

import (
	"context"
	"database/sql"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.AuditSink = (*AuditRepository)(nil)

// AuditRepository stores audit events in the audit_events table. Write
// failures are logged and never reach the caller.
type AuditRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

func NewAuditRepository(db *sql.DB, logger *logger.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AuditRepository) Emit(ctx context.Context, event model.AuditEvent) {
	query := `INSERT INTO audit_events (id, occurred_at, severity, action, username, message)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID.String(), event.OccurredAt, string(event.Severity),
		event.Action, event.Username, event.Message,
	)
	if err != nil {
		r.logger.Error("Audit repository: failed to insert event",
			"action", event.Action,
			"username", event.Username,
			"error", err.Error())
	}
}
