package reconciliation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
)

// ReviewDecision is the operator verdict on a suggested match group.
type ReviewDecision string

const (
	ReviewDecisionConfirm ReviewDecision = "confirm"
	ReviewDecisionReject  ReviewDecision = "reject"
)

// ReviewMatchInput applies an operator decision to the suggested match group
// of a bank transaction.
type ReviewMatchInput struct {
	CompanyID         uuid.UUID
	BankTransactionID uuid.UUID
	Decision          ReviewDecision
}

// ReviewMatchOutput reports the resulting statuses.
type ReviewMatchOutput struct {
	BankTransactionID uuid.UUID
	MatchStatus       entity.MatchStatus
	BankStatus        entity.ReconciliationStatus
}

// ReviewMatchUseCase confirms or rejects a suggested match group.
type ReviewMatchUseCase struct {
	matchRepo   adapter.MatchRepository
	bankTxnRepo adapter.BankTransactionRepository
	lock        adapter.TransactionLock
	logger      *slog.Logger
}

// NewReviewMatchUseCase creates a new ReviewMatchUseCase instance.
func NewReviewMatchUseCase(matchRepo adapter.MatchRepository, bankTxnRepo adapter.BankTransactionRepository, lock adapter.TransactionLock, logger *slog.Logger) *ReviewMatchUseCase {
	return &ReviewMatchUseCase{matchRepo: matchRepo, bankTxnRepo: bankTxnRepo, lock: lock, logger: logger}
}

// Execute applies the decision. Rejecting releases the ledger entries back to
// pago; confirming commits both sides to conciliado.
func (uc *ReviewMatchUseCase) Execute(ctx context.Context, input ReviewMatchInput) (*ReviewMatchOutput, error) {
	var target entity.MatchStatus
	switch input.Decision {
	case ReviewDecisionConfirm:
		target = entity.MatchStatusConfirmed
	case ReviewDecisionReject:
		target = entity.MatchStatusRejected
	default:
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeInvalidMatchType,
			"decision must be confirm or reject",
			domainerror.ErrInvalidMatchType,
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

	group, err := uc.matchRepo.GetGroup(ctx, input.BankTransactionID, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if current := group.Matches[0].Status; current != entity.MatchStatusSuggested {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeAlreadyReconciled,
			"match group is not in suggested status",
			domainerror.ErrAlreadyReconciled,
		)
	}
	if target == entity.MatchStatusConfirmed {
		if err := ensureIdentifierUnconfirmed(ctx, uc.bankTxnRepo, group.BankTransaction); err != nil {
			return nil, err
		}
	}

	if err := uc.matchRepo.UpdateGroupStatus(ctx, input.BankTransactionID, target); err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "match reviewed",
		slog.String("bank_transaction_id", input.BankTransactionID.String()),
		slog.String("decision", string(input.Decision)),
	)

	return &ReviewMatchOutput{
		BankTransactionID: input.BankTransactionID,
		MatchStatus:       target,
		BankStatus:        entity.BankStatusFor(target),
	}, nil
}
