package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// SlogStorage writes audit events to a structured logger. Useful when the
// deployment ships application logs to a system that doubles as the audit
// trail.
type SlogStorage struct {
	log *slog.Logger
}

// NewSlogStorage creates a storage that logs every event at Info level.
func NewSlogStorage(log *slog.Logger) *SlogStorage {
	if log == nil {
		log = slog.Default()
	}
	return &SlogStorage{log: log}
}

func (s *SlogStorage) Store(ctx context.Context, event Event) error {
	attrs := []slog.Attr{
		slog.String("audit_id", event.ID.String()),
		slog.String("action", event.Action),
		slog.String("outcome", string(event.Outcome)),
	}
	if event.TenantID != uuid.Nil {
		attrs = append(attrs, slog.String("tenant_id", event.TenantID.String()))
	}
	if event.ActorID != uuid.Nil {
		attrs = append(attrs, slog.String("actor_id", event.ActorID.String()))
	}
	if event.ResourceID != uuid.Nil {
		attrs = append(attrs, slog.String("resource_id", event.ResourceID.String()))
	}
	if event.EntityType != "" {
		attrs = append(attrs, slog.String("entity_type", event.EntityType), slog.String("entity_id", event.EntityID))
	}
	if event.Message != "" {
		attrs = append(attrs, slog.String("message", event.Message))
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}

	s.log.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	return nil
}
