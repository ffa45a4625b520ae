package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/entity"
)

// StatementRepository defines persistence operations for imported bank
// statements and their transactions.
type StatementRepository interface {
	// FindByContentHash retrieves a previously imported statement with the
	// same normalized file content for the account, or nil when none exists.
	FindByContentHash(ctx context.Context, accountID uuid.UUID, contentHash string) (*entity.BankStatement, error)

	// GetByID retrieves a statement with company ownership verification.
	GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.BankStatement, error)

	// SaveWithTransactions persists a statement and its transactions in one
	// transaction. The statement ID is assigned to every transaction.
	SaveWithTransactions(ctx context.Context, statement *entity.BankStatement, transactions []*entity.BankTransaction) error

	// ReplaceWithTransactions atomically removes a previous import of the same
	// content and persists the new statement with its transactions. Matches
	// referencing the replaced transactions are removed and their ledger
	// entries released.
	ReplaceWithTransactions(ctx context.Context, previousID uuid.UUID, statement *entity.BankStatement, transactions []*entity.BankTransaction) error

	// List retrieves statements imported for a company, newest first,
	// optionally filtered by account.
	List(ctx context.Context, companyID uuid.UUID, accountID *uuid.UUID, limit, offset int) ([]*entity.BankStatement, error)
}

// AccountInfo is the minimal account projection the statement flow needs.
type AccountInfo struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	BankCode      string
	AccountNumber string
}

// AccountReader resolves registered bank accounts for statement validation.
type AccountReader interface {
	// GetByID retrieves an account with company ownership verification.
	GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*AccountInfo, error)
}
