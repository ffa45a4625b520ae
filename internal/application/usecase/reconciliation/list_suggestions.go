package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
)

// ListSuggestionsInput filters suggested matches for review.
type ListSuggestionsInput struct {
	CompanyID   uuid.UUID
	AccountID   *uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Limit       int
	Offset      int
}

// Suggestion pairs a bank transaction with its suggested ledger entries.
type Suggestion struct {
	BankTransaction  *entity.BankTransaction
	LedgerEntries    []*entity.LedgerEntry
	Score            decimal.Decimal
	Confidence       entity.Confidence
	Reason           string
	GroupSize        int
	AmountDifference decimal.Decimal
}

// ListSuggestionsOutput is the review queue plus the period status summary.
type ListSuggestionsOutput struct {
	Suggestions []Suggestion
	Summary     entity.MatchingSummary
}

// ListSuggestionsUseCase lists suggested matches pending operator review.
type ListSuggestionsUseCase struct {
	matchRepo   adapter.MatchRepository
	bankTxnRepo adapter.BankTransactionRepository
}

// NewListSuggestionsUseCase creates a new ListSuggestionsUseCase instance.
func NewListSuggestionsUseCase(matchRepo adapter.MatchRepository, bankTxnRepo adapter.BankTransactionRepository) *ListSuggestionsUseCase {
	return &ListSuggestionsUseCase{matchRepo: matchRepo, bankTxnRepo: bankTxnRepo}
}

// Execute lists the pending suggestions.
func (uc *ListSuggestionsUseCase) Execute(ctx context.Context, input ListSuggestionsInput) (*ListSuggestionsOutput, error) {
	if input.PeriodEnd.Before(input.PeriodStart) {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeInvalidPeriod,
			"period end precedes period start",
			domainerror.ErrInvalidPeriod,
		)
	}
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	groups, err := uc.matchRepo.ListByStatus(ctx, input.CompanyID, entity.MatchStatusSuggested, limit, input.Offset)
	if err != nil {
		return nil, err
	}

	out := &ListSuggestionsOutput{Suggestions: make([]Suggestion, 0, len(groups))}
	for _, g := range groups {
		txn := g.BankTransaction
		if input.AccountID != nil && txn.AccountID != *input.AccountID {
			continue
		}
		if txn.PostedAt.Before(input.PeriodStart) || txn.PostedAt.After(input.PeriodEnd) {
			continue
		}
		matched := decimal.Zero
		for _, le := range g.LedgerEntries {
			matched = matched.Add(le.AbsAmount())
		}
		primary := g.Matches[0]
		out.Suggestions = append(out.Suggestions, Suggestion{
			BankTransaction:  txn,
			LedgerEntries:    g.LedgerEntries,
			Score:            primary.Score,
			Confidence:       primary.Confidence,
			Reason:           primary.Reason,
			GroupSize:        primary.GroupSize,
			AmountDifference: txn.AbsAmount().Sub(matched),
		})
	}

	counts, err := uc.bankTxnRepo.CountByStatus(ctx, input.CompanyID, input.AccountID, input.PeriodStart, input.PeriodEnd)
	if err != nil {
		return nil, err
	}
	for status, n := range counts {
		out.Summary.AddCount(status, n)
	}

	return out, nil
}
