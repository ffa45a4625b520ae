package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	"github.com/concilia/backend/internal/integration/persistence/model"
)

// sessionRepository implements the adapter.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new reconciliation session repository instance.
func NewSessionRepository(db *gorm.DB) adapter.SessionRepository {
	return &sessionRepository{db: db}
}

// Save persists a new session.
func (r *sessionRepository) Save(ctx context.Context, session *entity.ReconciliationSession) error {
	return r.db.WithContext(ctx).
		Create(model.ReconciliationSessionModelFromEntity(session)).Error
}

// GetByStatement retrieves the latest session for a statement, or nil.
func (r *sessionRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*entity.ReconciliationSession, error) {
	var m model.ReconciliationSessionModel
	err := r.db.WithContext(ctx).
		Where("statement_id = ?", statementID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Update persists counter and status changes of an existing session.
func (r *sessionRepository) Update(ctx context.Context, session *entity.ReconciliationSession) error {
	return r.db.WithContext(ctx).
		Model(&model.ReconciliationSessionModel{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"status":             string(session.Status),
			"total_transactions": session.TotalTransactions,
			"matched":            session.Matched,
			"suggested":          session.Suggested,
			"transfers":          session.Transfers,
			"pending":            session.Pending,
			"updated_at":         session.UpdatedAt,
		}).Error
}
