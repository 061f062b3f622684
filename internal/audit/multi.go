package audit

import (
	"context"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.AuditSink = Multi(nil)

// Multi fans an event out to every sink in order.
type Multi []model.AuditSink

func (m Multi) Emit(ctx context.Context, event model.AuditEvent) {
	for _, sink := range m {
		sink.Emit(ctx, event)
	}
}
