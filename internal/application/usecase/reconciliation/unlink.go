package reconciliation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/adapter"
	domainerror "github.com/concilia/backend/internal/domain/error"
)

// UnlinkInput removes the match group of a bank transaction.
type UnlinkInput struct {
	CompanyID         uuid.UUID
	BankTransactionID uuid.UUID
}

// UnlinkOutput reports how many ledger entries were released.
type UnlinkOutput struct {
	BankTransactionID uuid.UUID
	EntriesReleased   int
}

// UnlinkUseCase removes an existing match group, resetting the bank
// transaction to sem_match and releasing its ledger entries to pago.
type UnlinkUseCase struct {
	matchRepo adapter.MatchRepository
	lock      adapter.TransactionLock
	logger    *slog.Logger
}

// NewUnlinkUseCase creates a new UnlinkUseCase instance.
func NewUnlinkUseCase(matchRepo adapter.MatchRepository, lock adapter.TransactionLock, logger *slog.Logger) *UnlinkUseCase {
	return &UnlinkUseCase{matchRepo: matchRepo, lock: lock, logger: logger}
}

// Execute performs the unlink operation.
func (uc *UnlinkUseCase) Execute(ctx context.Context, input UnlinkInput) (*UnlinkOutput, error) {
	release, ok, err := uc.lock.Acquire(ctx, input.BankTransactionID, LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeReconciliationLocked,
			"bank transaction is being reconciled by another request",
			domainerror.ErrReconciliationLocked,
		)
	}
	defer release()

	group, err := uc.matchRepo.GetGroup(ctx, input.BankTransactionID, input.CompanyID)
	if err != nil {
		return nil, err
	}

	if err := uc.matchRepo.DeleteGroup(ctx, input.BankTransactionID); err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "match group unlinked",
		slog.String("bank_transaction_id", input.BankTransactionID.String()),
		slog.Int("entries_released", len(group.LedgerEntries)),
	)

	return &UnlinkOutput{
		BankTransactionID: input.BankTransactionID,
		EntriesReleased:   len(group.LedgerEntries),
	}, nil
}
