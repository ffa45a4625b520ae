package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
)

// GetMatchGroupInput identifies the bank transaction whose group to fetch.
type GetMatchGroupInput struct {
	CompanyID         uuid.UUID
	BankTransactionID uuid.UUID
}

// GetMatchGroupOutput is the match group with its aggregate figures.
type GetMatchGroupOutput struct {
	BankTransaction  *entity.BankTransaction
	Matches          []*entity.TransactionMatch
	LedgerEntries    []*entity.LedgerEntry
	MatchedAmount    decimal.Decimal
	AmountDifference decimal.Decimal
	Confidence       entity.Confidence
}

// GetMatchGroupUseCase retrieves the match group of a bank transaction.
type GetMatchGroupUseCase struct {
	matchRepo adapter.MatchRepository
}

// NewGetMatchGroupUseCase creates a new GetMatchGroupUseCase instance.
func NewGetMatchGroupUseCase(matchRepo adapter.MatchRepository) *GetMatchGroupUseCase {
	return &GetMatchGroupUseCase{matchRepo: matchRepo}
}

// Execute fetches the group and computes its value difference.
func (uc *GetMatchGroupUseCase) Execute(ctx context.Context, input GetMatchGroupInput) (*GetMatchGroupOutput, error) {
	group, err := uc.matchRepo.GetGroup(ctx, input.BankTransactionID, input.CompanyID)
	if err != nil {
		return nil, err
	}

	matched := decimal.Zero
	for _, le := range group.LedgerEntries {
		matched = matched.Add(le.AbsAmount())
	}

	return &GetMatchGroupOutput{
		BankTransaction:  group.BankTransaction,
		Matches:          group.Matches,
		LedgerEntries:    group.LedgerEntries,
		MatchedAmount:    matched,
		AmountDifference: group.BankTransaction.AbsAmount().Sub(matched),
		Confidence:       group.Matches[0].Confidence,
	}, nil
}
