// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/persistence/model"
)

// bankTransactionRepository implements the adapter.BankTransactionRepository interface.
type bankTransactionRepository struct {
	db *gorm.DB
}

// NewBankTransactionRepository creates a new bank transaction repository instance.
func NewBankTransactionRepository(db *gorm.DB) adapter.BankTransactionRepository {
	return &bankTransactionRepository{db: db}
}

// GetByID retrieves a bank transaction with company ownership verification.
func (r *bankTransactionRepository) GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.BankTransaction, error) {
	var m model.BankTransactionModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerror.NewReconciliationError(
				domainerror.ErrCodeBankTransactionNotFound,
				"bank transaction not found",
				domainerror.ErrBankTransactionNotFound,
			)
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// List retrieves bank transactions for a company applying the filter.
func (r *bankTransactionRepository) List(ctx context.Context, companyID uuid.UUID, filter adapter.BankTransactionFilter) ([]*entity.BankTransaction, error) {
	q := r.db.WithContext(ctx).
		Model(&model.BankTransactionModel{}).
		Where("company_id = ?", companyID)

	if filter.AccountID != nil {
		q = q.Where("account_id = ?", *filter.AccountID)
	}
	if filter.StatementID != nil {
		q = q.Where("statement_id = ?", *filter.StatementID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.PeriodStart != nil {
		q = q.Where("posted_at >= ?", *filter.PeriodStart)
	}
	if filter.PeriodEnd != nil {
		q = q.Where("posted_at <= ?", *filter.PeriodEnd)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var models []model.BankTransactionModel
	if err := q.Order("posted_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// ListByStatement retrieves all transactions imported from one statement.
func (r *bankTransactionRepository) ListByStatement(ctx context.Context, statementID uuid.UUID) ([]*entity.BankTransaction, error) {
	var models []model.BankTransactionModel
	err := r.db.WithContext(ctx).
		Where("statement_id = ?", statementID).
		Order("posted_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// ExistingFitIDs returns which of the given FITIDs already exist for the account.
func (r *bankTransactionRepository) ExistingFitIDs(ctx context.Context, accountID uuid.UUID, fitIDs []string) (map[string]bool, error) {
	if len(fitIDs) == 0 {
		return map[string]bool{}, nil
	}
	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.BankTransactionModel{}).
		Where("account_id = ? AND fit_id IN ?", accountID, fitIDs).
		Pluck("fit_id", &found).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(found))
	for _, f := range found {
		out[f] = true
	}
	return out, nil
}

// FindByFitID returns all transaction rows of the account carrying the given bank identifier.
func (r *bankTransactionRepository) FindByFitID(ctx context.Context, accountID uuid.UUID, fitID string) ([]*entity.BankTransaction, error) {
	var models []model.BankTransactionModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND fit_id = ?", accountID, fitID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// ListForPeriod returns the account transactions of the period.
func (r *bankTransactionRepository) ListForPeriod(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]*entity.BankTransaction, error) {
	var models []model.BankTransactionModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND posted_at >= ? AND posted_at <= ?", accountID, periodStart, periodEnd).
		Order("posted_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// UpdateStatus sets the reconciliation status of a single transaction.
func (r *bankTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReconciliationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.BankTransactionModel{}).
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
			domainerror.ErrCodeBankTransactionNotFound,
			"bank transaction not found",
			domainerror.ErrBankTransactionNotFound,
		)
	}
	return nil
}

// CountByStatus aggregates transaction counts per status for a company over a
// period, optionally narrowed to one account.
func (r *bankTransactionRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, accountID *uuid.UUID, periodStart, periodEnd time.Time) (map[entity.ReconciliationStatus]int, error) {
	var rows []struct {
		Status string
		Total  int
	}
	query := r.db.WithContext(ctx).
		Model(&model.BankTransactionModel{}).
		Select("status, COUNT(*) as total").
		Where("company_id = ? AND posted_at >= ? AND posted_at <= ?", companyID, periodStart, periodEnd)
	if accountID != nil {
		query = query.Where("account_id = ?", *accountID)
	}
	err := query.Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[entity.ReconciliationStatus]int, len(rows))
	for _, row := range rows {
		out[entity.ReconciliationStatus(row.Status)] = row.Total
	}
	return out, nil
}

func toEntities(models []model.BankTransactionModel) []*entity.BankTransaction {
	out := make([]*entity.BankTransaction, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out
}
