package statement

import (
	"context"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
)

// ListStatementsInput pages through imported statements of a company.
type ListStatementsInput struct {
	CompanyID uuid.UUID
	AccountID *uuid.UUID
	Limit     int
	Offset    int
}

// ListStatementsUseCase lists imported statements, newest first.
type ListStatementsUseCase struct {
	statementRepo adapter.StatementRepository
}

// NewListStatementsUseCase creates a new ListStatementsUseCase instance.
func NewListStatementsUseCase(statementRepo adapter.StatementRepository) *ListStatementsUseCase {
	return &ListStatementsUseCase{statementRepo: statementRepo}
}

// Execute lists the statements.
func (uc *ListStatementsUseCase) Execute(ctx context.Context, input ListStatementsInput) ([]*entity.BankStatement, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.statementRepo.List(ctx, input.CompanyID, input.AccountID, limit, input.Offset)
}
