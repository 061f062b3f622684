package testutil

import (
	"context"
	"sync"

	"github.com/dtroode/gatekeeper/internal/model"
)

// AuditRecorder keeps emitted audit events in memory.
type AuditRecorder struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (r *AuditRecorder) Emit(_ context.Context, event model.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns the recorded events in emission order.
func (r *AuditRecorder) Events() []model.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditEvent(nil), r.events...)
}

// Severities returns the severities of the recorded events in emission order.
func (r *AuditRecorder) Severities() []model.Severity {
	events := r.Events()
	out := make([]model.Severity, 0, len(events))
	for _, e := range events {
		out = append(out, e.Severity)
	}
	return out
}

// Reset drops all recorded events.
func (r *AuditRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
