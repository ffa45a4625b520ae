package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
)

// ValidateTransactionInput identifies the bank transaction to validate before
// a reconciliation write.
type ValidateTransactionInput struct {
	CompanyID         uuid.UUID
	BankTransactionID uuid.UUID
}

// ValidateTransactionOutput reports the verdict. Warnings do not block.
type ValidateTransactionOutput struct {
	BankTransactionID uuid.UUID
	Valid             bool
	Warnings          []string
}

// IntegrityReportInput scopes the account-level report.
type IntegrityReportInput struct {
	CompanyID   uuid.UUID
	AccountID   uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// DuplicateIdentifierGroup lists transaction rows sharing one bank identifier.
type DuplicateIdentifierGroup struct {
	FitID          string
	TransactionIDs []uuid.UUID
	AnyConfirmed   bool
}

// IntegrityReportOutput summarizes identifier health over a period.
type IntegrityReportOutput struct {
	TotalTransactions  int
	WithBankIdentifier int
	// IdentifierCoverage is the fraction of transactions carrying a stable
	// bank-assigned identifier, in [0, 1].
	IdentifierCoverage float64
	Duplicates         []DuplicateIdentifierGroup
}

// IntegrityUseCase validates bank identifiers before reconciliation writes
// and produces the account-level identifier report.
type IntegrityUseCase struct {
	bankTxnRepo adapter.BankTransactionRepository
}

// NewIntegrityUseCase creates a new IntegrityUseCase instance.
func NewIntegrityUseCase(bankTxnRepo adapter.BankTransactionRepository) *IntegrityUseCase {
	return &IntegrityUseCase{bankTxnRepo: bankTxnRepo}
}

// Validate checks one transaction. A missing or synthesized identifier passes
// with a warning; an already reconciled transaction or an identifier already
// confirmed on another row blocks.
func (uc *IntegrityUseCase) Validate(ctx context.Context, input ValidateTransactionInput) (*ValidateTransactionOutput, error) {
	txn, err := uc.bankTxnRepo.GetByID(ctx, input.BankTransactionID, input.CompanyID)
	if err != nil {
		return nil, err
	}

	if txn.Status == entity.ReconciliationStatusConciliado {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeAlreadyReconciled,
			"bank transaction already reconciled",
			domainerror.ErrAlreadyReconciled,
		)
	}

	out := &ValidateTransactionOutput{BankTransactionID: txn.ID, Valid: true}
	if !txn.HasBankIdentifier() {
		out.Warnings = append(out.Warnings, "transaction has no stable bank identifier, duplicate detection is weakened")
		return out, nil
	}

	if err := ensureIdentifierUnconfirmed(ctx, uc.bankTxnRepo, txn); err != nil {
		return nil, err
	}
	return out, nil
}

// Report builds the identifier coverage and duplicate report for an account
// over a period.
func (uc *IntegrityUseCase) Report(ctx context.Context, input IntegrityReportInput) (*IntegrityReportOutput, error) {
	if input.PeriodEnd.Before(input.PeriodStart) {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeInvalidPeriod,
			"period end precedes period start",
			domainerror.ErrInvalidPeriod,
		)
	}

	transactions, err := uc.bankTxnRepo.ListForPeriod(ctx, input.AccountID, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		return nil, err
	}

	out := &IntegrityReportOutput{TotalTransactions: len(transactions)}
	byFitID := make(map[string][]*entity.BankTransaction)
	for _, txn := range transactions {
		if !txn.HasBankIdentifier() {
			continue
		}
		out.WithBankIdentifier++
		byFitID[txn.FitID] = append(byFitID[txn.FitID], txn)
	}
	if out.TotalTransactions > 0 {
		out.IdentifierCoverage = float64(out.WithBankIdentifier) / float64(out.TotalTransactions)
	}

	for fitID, group := range byFitID {
		if len(group) < 2 {
			continue
		}
		dup := DuplicateIdentifierGroup{FitID: fitID}
		for _, txn := range group {
			dup.TransactionIDs = append(dup.TransactionIDs, txn.ID)
			if txn.Status == entity.ReconciliationStatusConciliado {
				dup.AnyConfirmed = true
			}
		}
		out.Duplicates = append(out.Duplicates, dup)
	}
	return out, nil
}
