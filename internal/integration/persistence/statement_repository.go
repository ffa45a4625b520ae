package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/persistence/model"
)

// statementRepository implements the adapter.StatementRepository interface.
type statementRepository struct {
	db *gorm.DB
}

// NewStatementRepository creates a new statement repository instance.
func NewStatementRepository(db *gorm.DB) adapter.StatementRepository {
	return &statementRepository{db: db}
}

// FindByContentHash retrieves a previously imported statement with the same
// normalized content for the account, or nil when none exists.
func (r *statementRepository) FindByContentHash(ctx context.Context, accountID uuid.UUID, contentHash string) (*entity.BankStatement, error) {
	var m model.BankStatementModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND content_hash = ?", accountID, contentHash).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// GetByID retrieves a statement with company ownership verification.
func (r *statementRepository) GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.BankStatement, error) {
	var m model.BankStatementModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerror.NewStatementError(
				domainerror.ErrCodeStatementNotFound,
				"statement not found",
				domainerror.ErrStatementNotFound,
			)
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// SaveWithTransactions persists a statement and its transactions in one
// database transaction.
func (r *statementRepository) SaveWithTransactions(ctx context.Context, statement *entity.BankStatement, transactions []*entity.BankTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertStatement(tx, statement, transactions)
	})
}

// ReplaceWithTransactions atomically removes a previous import of the same
// content and persists the new statement. Matches referencing the replaced
// transactions are removed and their ledger entries released.
func (r *statementRepository) ReplaceWithTransactions(ctx context.Context, previousID uuid.UUID, statement *entity.BankStatement, transactions []*entity.BankTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldTxnIDs []uuid.UUID
		if err := tx.Model(&model.BankTransactionModel{}).
			Where("statement_id = ?", previousID).
			Pluck("id", &oldTxnIDs).Error; err != nil {
			return err
		}

		if len(oldTxnIDs) > 0 {
			var oldMatches []model.TransactionMatchModel
			if err := tx.Where("bank_transaction_id IN ?", oldTxnIDs).Find(&oldMatches).Error; err != nil {
				return err
			}
			for _, m := range oldMatches {
				if err := releaseEntry(tx, m.LedgerEntryID); err != nil {
					return err
				}
			}
			if err := tx.Where("bank_transaction_id IN ?", oldTxnIDs).
				Delete(&model.TransactionMatchModel{}).Error; err != nil {
				return err
			}
			if err := tx.Where("statement_id = ?", previousID).
				Delete(&model.BankTransactionModel{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("statement_id = ?", previousID).
			Delete(&model.ReconciliationSessionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", previousID).
			Delete(&model.BankStatementModel{}).Error; err != nil {
			return err
		}

		return insertStatement(tx, statement, transactions)
	})
}

// List retrieves statements imported for a company, newest first.
func (r *statementRepository) List(ctx context.Context, companyID uuid.UUID, accountID *uuid.UUID, limit, offset int) ([]*entity.BankStatement, error) {
	var models []model.BankStatementModel
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if accountID != nil {
		query = query.Where("account_id = ?", *accountID)
	}
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entity.BankStatement, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

func insertStatement(tx *gorm.DB, statement *entity.BankStatement, transactions []*entity.BankTransaction) error {
	if err := tx.Create(model.BankStatementModelFromEntity(statement)).Error; err != nil {
		return err
	}
	if len(transactions) == 0 {
		return nil
	}
	models := make([]*model.BankTransactionModel, len(transactions))
	for i, t := range transactions {
		models[i] = model.BankTransactionModelFromEntity(t)
	}
	return tx.CreateInBatches(models, 200).Error
}
