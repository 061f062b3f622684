package audit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.AuditSink = (*Metrics)(nil)

// Metrics counts audit events by severity and action.
type Metrics struct {
	events *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatekeeper_audit_events_total",
				Help: "Total audit events by severity and action",
			},
			[]string{"severity", "action"},
		),
	}
}

func (m *Metrics) Emit(_ context.Context, event model.AuditEvent) {
	m.events.WithLabelValues(string(event.Severity), event.Action).Inc()
}
