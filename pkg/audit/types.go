package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is the recorded result of an audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// Event is a single audit record. Identifier fields are zero UUIDs when the
// value is unknown at the failure point (e.g. a tenant that was never
// created because its code collided).
type Event struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id,omitempty"`
	ActorID    uuid.UUID      `json:"actor_id,omitempty"`
	ResourceID uuid.UUID      `json:"resource_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Outcome    Outcome        `json:"outcome"`
	Message    string         `json:"message,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Validate checks the event carries the required fields.
func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	if e.Outcome != OutcomeSuccess && e.Outcome != OutcomeFailure {
		return fmt.Errorf("%w: unknown outcome %q", ErrEventValidation, e.Outcome)
	}
	return nil
}

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// EventOption mutates an event during creation.
type EventOption func(*Event)

// WithTenant sets the tenant the event belongs to.
func WithTenant(id uuid.UUID) EventOption {
	return func(e *Event) { e.TenantID = id }
}

// WithActor sets the acting user.
func WithActor(id uuid.UUID) EventOption {
	return func(e *Event) { e.ActorID = id }
}

// WithResource sets the resource the action touched.
func WithResource(id uuid.UUID) EventOption {
	return func(e *Event) { e.ResourceID = id }
}

// WithEntity sets the entity type/id pair the action mutated.
func WithEntity(entityType, entityID string) EventOption {
	return func(e *Event) {
		e.EntityType = entityType
		e.EntityID = entityID
	}
}

// WithMessage sets the human-readable message.
func WithMessage(msg string) EventOption {
	return func(e *Event) { e.Message = msg }
}

// WithMetadata attaches a key/value pair to the event.
func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}
