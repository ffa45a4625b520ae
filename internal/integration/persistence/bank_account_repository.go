package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concilia/backend/internal/application/adapter"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/persistence/model"
)

// bankAccountRepository implements the adapter.AccountReader interface.
type bankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository creates a new bank account repository instance.
func NewBankAccountRepository(db *gorm.DB) adapter.AccountReader {
	return &bankAccountRepository{db: db}
}

// GetByID retrieves an account with company ownership verification.
func (r *bankAccountRepository) GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*adapter.AccountInfo, error) {
	var m model.BankAccountModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerror.NewStatementError(
				domainerror.ErrCodeAccountNotFound,
				"account not found",
				domainerror.ErrAccountNotFound,
			)
		}
		return nil, err
	}
	return &adapter.AccountInfo{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		BankCode:      m.BankCode,
		AccountNumber: m.AccountNumber,
	}, nil
}
