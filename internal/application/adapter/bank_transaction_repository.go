// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/entity"
)

// BankTransactionFilter narrows bank transaction listings.
type BankTransactionFilter struct {
	AccountID   *uuid.UUID
	StatementID *uuid.UUID
	Status      *entity.ReconciliationStatus
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Limit       int
	Offset      int
}

// BankTransactionRepository defines persistence operations for imported bank
// transactions.
type BankTransactionRepository interface {
	// GetByID retrieves a bank transaction with company ownership verification.
	GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.BankTransaction, error)

	// List retrieves bank transactions for a company applying the filter.
	List(ctx context.Context, companyID uuid.UUID, filter BankTransactionFilter) ([]*entity.BankTransaction, error)

	// ListByStatement retrieves all transactions imported from one statement.
	ListByStatement(ctx context.Context, statementID uuid.UUID) ([]*entity.BankTransaction, error)

	// ExistingFitIDs returns which of the given FITIDs already exist for the
	// account, for import-time deduplication.
	ExistingFitIDs(ctx context.Context, accountID uuid.UUID, fitIDs []string) (map[string]bool, error)

	// FindByFitID returns all transaction rows of the account carrying the
	// given bank identifier.
	FindByFitID(ctx context.Context, accountID uuid.UUID, fitID string) ([]*entity.BankTransaction, error)

	// ListForPeriod returns the account transactions of the period.
	ListForPeriod(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]*entity.BankTransaction, error)

	// UpdateStatus sets the reconciliation status of a single transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ReconciliationStatus) error

	// CountByStatus aggregates transaction counts per status for a company
	// over a period, optionally narrowed to one account.
	CountByStatus(ctx context.Context, companyID uuid.UUID, accountID *uuid.UUID, periodStart, periodEnd time.Time) (map[entity.ReconciliationStatus]int, error)
}
