package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/persistence/model"
)

// ledgerEntryRepository implements the adapter.LedgerEntryRepository interface.
type ledgerEntryRepository struct {
	db *gorm.DB
}

// NewLedgerEntryRepository creates a new ledger entry repository instance.
func NewLedgerEntryRepository(db *gorm.DB) adapter.LedgerEntryRepository {
	return &ledgerEntryRepository{db: db}
}

// GetByID retrieves a ledger entry with company ownership verification.
func (r *ledgerEntryRepository) GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.LedgerEntry, error) {
	entries, err := r.GetByIDs(ctx, []uuid.UUID{id}, companyID)
	if err != nil {
		return nil, err
	}
	return entries[0], nil
}

// GetByIDs retrieves multiple ledger entries; missing IDs are an error.
func (r *ledgerEntryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID, companyID uuid.UUID) ([]*entity.LedgerEntry, error) {
	var models []model.LedgerEntryModel
	err := r.db.WithContext(ctx).
		Where("id IN ? AND company_id = ?", ids, companyID).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*model.LedgerEntryModel, len(models))
	for i := range models {
		byID[models[i].ID] = &models[i]
	}

	out := make([]*entity.LedgerEntry, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return nil, domainerror.NewReconciliationError(
				domainerror.ErrCodeLedgerEntryNotFound,
				"ledger entry "+id.String()+" not found",
				domainerror.ErrLedgerEntryNotFound,
			)
		}
		out = append(out, m.ToEntity())
	}
	return out, nil
}

// ListCandidates retrieves match-eligible entries within a date window.
func (r *ledgerEntryRepository) ListCandidates(ctx context.Context, companyID uuid.UUID, center time.Time, windowDays int) ([]*entity.LedgerEntry, error) {
	window := time.Duration(windowDays) * 24 * time.Hour
	var models []model.LedgerEntryModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND date >= ? AND date <= ?", companyID, center.Add(-window), center.Add(window)).
		Where("status IN ?", []string{string(entity.LedgerStatusPago), string(entity.LedgerStatusComSugestao)}).
		Order("date ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entity.LedgerEntry, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

// UpdateStatus sets the ledger-side reconciliation status of an entry.
func (r *ledgerEntryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.LedgerStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.LedgerEntryModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.NewReconciliationError(
			domainerror.ErrCodeLedgerEntryNotFound,
			"ledger entry not found",
			domainerror.ErrLedgerEntryNotFound,
		)
	}
	return nil
}
