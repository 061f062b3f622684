package audit

import (
	"context"
	"io"
	"log/slog"

	"github.com/dtroode/gatekeeper/internal/model"
)

// LevelCritical sits above slog.LevelError for lockout events.
const LevelCritical = slog.Level(12)

var _ model.AuditSink = (*Logger)(nil)

// Logger writes audit events as JSON lines.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(w io.Writer) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey {
				return a
			}
			if level, ok := a.Value.Any().(slog.Level); ok && level == LevelCritical {
				a.Value = slog.StringValue("CRITICAL")
			}
			return a
		},
	})

	return &Logger{logger: slog.New(handler)}
}

func (l *Logger) Emit(ctx context.Context, event model.AuditEvent) {
	attrs := []slog.Attr{
		slog.String("id", event.ID.String()),
		slog.Time("occurred_at", event.OccurredAt),
		slog.String("action", event.Action),
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", event.Username))
	}

	l.logger.LogAttrs(ctx, level(event.Severity), event.Message, attrs...)
}

func level(severity model.Severity) slog.Level {
	switch severity {
	case model.SeverityCritical:
		return LevelCritical
	case model.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
