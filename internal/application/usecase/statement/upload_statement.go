// Package statement contains the bank statement import use cases.
package statement

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/application/usecase/reconciliation"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/ofx"
)

// UploadStatementInput carries one uploaded statement file.
type UploadStatementInput struct {
	CompanyID  uuid.UUID
	AccountID  uuid.UUID
	UploadedBy uuid.UUID
	FileName   string
	Content    []byte
}

// UploadStatementOutput is the import summary returned to the operator.
type UploadStatementOutput struct {
	StatementID      uuid.UUID
	TransactionCount int
	PeriodStart      time.Time
	PeriodEnd        time.Time
	Replaced         bool
	Warnings         []string
	Matching         entity.MatchingSummary
}

// MatchingRunner triggers the matching pass over a freshly imported statement.
type MatchingRunner interface {
	Execute(ctx context.Context, input reconciliation.ProcessMatchingInput) (*reconciliation.ProcessMatchingOutput, error)
}

// UploadStatementUseCase imports an OFX statement file: parse, validate the
// account, deduplicate by content, persist and run the matching pass.
type UploadStatementUseCase struct {
	statementRepo adapter.StatementRepository
	accountReader adapter.AccountReader
	matcher       MatchingRunner
	logger        *slog.Logger
}

// NewUploadStatementUseCase creates a new UploadStatementUseCase instance.
func NewUploadStatementUseCase(
	statementRepo adapter.StatementRepository,
	accountReader adapter.AccountReader,
	matcher MatchingRunner,
	logger *slog.Logger,
) *UploadStatementUseCase {
	return &UploadStatementUseCase{
		statementRepo: statementRepo,
		accountReader: accountReader,
		matcher:       matcher,
		logger:        logger,
	}
}

// Execute performs the import. A re-upload with identical normalized content
// replaces the previous statement and its transactions instead of duplicating
// them.
func (uc *UploadStatementUseCase) Execute(ctx context.Context, input UploadStatementInput) (*UploadStatementOutput, error) {
	if ext := strings.ToLower(filepath.Ext(input.FileName)); ext != ".ofx" {
		return nil, domainerror.NewStatementError(
			domainerror.ErrCodeUnsupportedExtension,
			"only .ofx files are accepted",
			domainerror.ErrUnsupportedExtension,
		)
	}
	if len(input.Content) == 0 {
		return nil, domainerror.NewStatementError(
			domainerror.ErrCodeEmptyStatementFile,
			"statement file is empty",
			domainerror.ErrEmptyStatementFile,
		)
	}

	account, err := uc.accountReader.GetByID(ctx, input.AccountID, input.CompanyID)
	if err != nil {
		return nil, err
	}

	parsed, err := ofx.Parse(input.Content)
	if err != nil {
		return nil, err
	}

	// The statement must belong to the target account. Validation happens
	// before anything is persisted.
	if !accountMatches(account, parsed) {
		return nil, domainerror.NewAccountMismatchError(parsed.BankID, parsed.AccountID)
	}

	contentHash := ofx.ContentHash(input.Content)
	previous, err := uc.statementRepo.FindByContentHash(ctx, input.AccountID, contentHash)
	if err != nil {
		return nil, err
	}

	stmt, transactions := uc.buildEntities(input, parsed, contentHash)

	if previous != nil {
		err = uc.statementRepo.ReplaceWithTransactions(ctx, previous.ID, stmt, transactions)
	} else {
		err = uc.statementRepo.SaveWithTransactions(ctx, stmt, transactions)
	}
	if err != nil {
		return nil, err
	}

	matchOut, err := uc.matcher.Execute(ctx, reconciliation.ProcessMatchingInput{
		CompanyID:   input.CompanyID,
		AccountID:   input.AccountID,
		StatementID: stmt.ID,
		PeriodStart: stmt.PeriodStart,
		PeriodEnd:   stmt.PeriodEnd,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "statement imported",
		slog.String("statement_id", stmt.ID.String()),
		slog.String("account_id", input.AccountID.String()),
		slog.Int("transactions", len(transactions)),
		slog.Bool("replaced", previous != nil),
	)

	return &UploadStatementOutput{
		StatementID:      stmt.ID,
		TransactionCount: len(transactions),
		PeriodStart:      stmt.PeriodStart,
		PeriodEnd:        stmt.PeriodEnd,
		Replaced:         previous != nil,
		Warnings:         parsed.Warnings,
		Matching:         matchOut.Summary,
	}, nil
}

func (uc *UploadStatementUseCase) buildEntities(input UploadStatementInput, parsed *ofx.Statement, contentHash string) (*entity.BankStatement, []*entity.BankTransaction) {
	now := time.Now().UTC()
	stmt := &entity.BankStatement{
		ID:               uuid.New(),
		AccountID:        input.AccountID,
		CompanyID:        input.CompanyID,
		UploadedBy:       input.UploadedBy,
		FileName:         input.FileName,
		BankCode:         parsed.BankID,
		AccountNumber:    parsed.AccountID,
		PeriodStart:      parsed.PeriodStart,
		PeriodEnd:        parsed.PeriodEnd,
		ClosingBalance:   parsed.ClosingBalance,
		BalanceDate:      parsed.BalanceDate,
		ContentHash:      contentHash,
		TransactionCount: len(parsed.Transactions),
		CreatedAt:        now,
	}

	transactions := make([]*entity.BankTransaction, 0, len(parsed.Transactions))
	for _, pt := range parsed.Transactions {
		entryType := entity.EntryTypeCredit
		if pt.IsDebit() {
			entryType = entity.EntryTypeDebit
		}
		transactions = append(transactions, &entity.BankTransaction{
			ID:              uuid.New(),
			AccountID:       input.AccountID,
			CompanyID:       input.CompanyID,
			StatementID:     stmt.ID,
			FitID:           pt.FitID,
			UnstableID:      pt.UnstableID,
			PostedAt:        pt.PostedAt,
			Amount:          pt.Amount,
			Type:            entryType,
			Payee:           pt.Payee,
			Memo:            pt.Memo,
			CheckNumber:     pt.CheckNumber,
			ReferenceNumber: pt.ReferenceNumber,
			Status:          entity.ReconciliationStatusSemMatch,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return stmt, transactions
}

// accountMatches compares the parsed identifiers with the registered account.
// Bank codes compare on digits ignoring leading zeros; account numbers
// tolerate a leading branch prefix on either side.
func accountMatches(account *adapter.AccountInfo, parsed *ofx.Statement) bool {
	pb := strings.TrimLeft(digits(parsed.BankID), "0")
	rb := strings.TrimLeft(digits(account.BankCode), "0")
	if parsed.BankID != "" && account.BankCode != "" && pb != rb {
		return false
	}
	pa, ra := digits(parsed.AccountID), digits(account.AccountNumber)
	if pa == "" || ra == "" {
		return pa == ra
	}
	return pa == ra || strings.HasSuffix(pa, ra) || strings.HasSuffix(ra, pa)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
