package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetch/accesskit/pkg/audit"
)

// AuditStorage is the pgx-backed audit.Storage. Events written inside an
// ambient transaction share its fate; the bootstrap flow relies on that.
type AuditStorage struct {
	pool *pgxpool.Pool
}

// NewAuditStorage creates a storage over the pool.
func NewAuditStorage(pool *pgxpool.Pool) *AuditStorage {
	return &AuditStorage{pool: pool}
}

func (s *AuditStorage) Store(ctx context.Context, e audit.Event) error {
	q := querierFrom(ctx, s.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO audit_log
		 (id, tenant_id, actor_id, resource_id, action, entity_type, entity_id,
		  outcome, message, request_id, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, nullableUUID(e.TenantID), nullableUUID(e.ActorID), nullableUUID(e.ResourceID),
		e.Action, e.EntityType, e.EntityID, string(e.Outcome), e.Message,
		e.RequestID, e.Metadata, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store audit event: %w", err)
	}
	return nil
}

// nullableUUID maps the zero UUID to NULL so absent identifiers stay absent
// in the log instead of pointing at a phantom row.
func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
