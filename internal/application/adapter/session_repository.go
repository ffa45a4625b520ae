package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/entity"
)

// SessionRepository defines persistence operations for reconciliation
// sessions, the per-import audit record of a matching run.
type SessionRepository interface {
	// Save persists a new session.
	Save(ctx context.Context, session *entity.ReconciliationSession) error

	// GetByStatement retrieves the latest session for a statement, or nil
	// when none exists.
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*entity.ReconciliationSession, error)

	// Update persists counter and status changes of an existing session.
	Update(ctx context.Context, session *entity.ReconciliationSession) error
}
