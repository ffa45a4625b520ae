package reconciliation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
)

// CreateMatchInput links one bank transaction to one or more ledger entries.
// A single entry creates a one-to-one match; multiple entries create a
// many-to-one group.
type CreateMatchInput struct {
	CompanyID         uuid.UUID
	BankTransactionID uuid.UUID
	LedgerEntryIDs    []uuid.UUID
}

// CreateMatchOutput describes the persisted match group.
type CreateMatchOutput struct {
	BankTransactionID uuid.UUID
	Status            entity.MatchStatus
	GroupSize         int
	MatchedAmount     decimal.Decimal
	AmountDifference  decimal.Decimal
}

// CreateMatchUseCase handles operator-created matches. Writes are serialized
// per bank transaction through the lock and applied atomically.
type CreateMatchUseCase struct {
	bankTxnRepo adapter.BankTransactionRepository
	ledgerRepo  adapter.LedgerEntryRepository
	matchRepo   adapter.MatchRepository
	lock        adapter.TransactionLock
	logger      *slog.Logger
}

// NewCreateMatchUseCase creates a new CreateMatchUseCase instance.
func NewCreateMatchUseCase(
	bankTxnRepo adapter.BankTransactionRepository,
	ledgerRepo adapter.LedgerEntryRepository,
	matchRepo adapter.MatchRepository,
	lock adapter.TransactionLock,
	logger *slog.Logger,
) *CreateMatchUseCase {
	return &CreateMatchUseCase{
		bankTxnRepo: bankTxnRepo,
		ledgerRepo:  ledgerRepo,
		matchRepo:   matchRepo,
		lock:        lock,
		logger:      logger,
	}
}

// Execute validates and persists the match.
func (uc *CreateMatchUseCase) Execute(ctx context.Context, input CreateMatchInput) (*CreateMatchOutput, error) {
	if len(input.LedgerEntryIDs) == 0 {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeEmptyLedgerEntryIDs,
			"at least one ledger entry is required",
			domainerror.ErrEmptyLedgerEntryIDs,
		)
	}

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

	txn, err := uc.bankTxnRepo.GetByID(ctx, input.BankTransactionID, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if txn.Status == entity.ReconciliationStatusConciliado {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeAlreadyReconciled,
			"bank transaction already reconciled, unlink it first",
			domainerror.ErrAlreadyReconciled,
		)
	}
	if err := ensureIdentifierUnconfirmed(ctx, uc.bankTxnRepo, txn); err != nil {
		return nil, err
	}

	entries, err := uc.ledgerRepo.GetByIDs(ctx, input.LedgerEntryIDs, input.CompanyID)
	if err != nil {
		return nil, err
	}
	for _, le := range entries {
		// Entries already claimed by this transaction's own suggestion may be
		// re-linked; anything held by another match must be released first.
		if le.EligibleForMatching() {
			continue
		}
		if le.BankTransactionID != nil && *le.BankTransactionID == txn.ID {
			continue
		}
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeLedgerEntryNotEligible,
			"ledger entry "+le.ID.String()+" is not eligible for matching",
			domainerror.ErrLedgerEntryNotEligible,
		)
	}

	status := entity.MatchStatusFor(entity.MatchTypeManual, false)
	group := buildMatchGroup(txn, entries,
		entity.MatchTypeManual, status, entity.ConfidenceHigh,
		decimal.NewFromInt(1), "conciliacao manual")

	if err := uc.matchRepo.ReplaceGroup(ctx, group, nil); err != nil {
		return nil, err
	}

	matched := decimal.Zero
	for _, le := range entries {
		matched = matched.Add(le.AbsAmount())
	}
	diff := txn.AbsAmount().Sub(matched)

	uc.logger.InfoContext(ctx, "match created",
		slog.String("bank_transaction_id", txn.ID.String()),
		slog.Int("group_size", len(entries)),
		slog.String("status", string(status)),
	)

	return &CreateMatchOutput{
		BankTransactionID: txn.ID,
		Status:            status,
		GroupSize:         len(entries),
		MatchedAmount:     matched,
		AmountDifference:  diff,
	}, nil
}
