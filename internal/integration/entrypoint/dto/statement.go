// Package dto defines data transfer objects for API requests and responses.
package dto

import "github.com/concilia/backend/internal/domain/entity"

// UploadStatementResponseDTO represents the response for POST /statements/upload.
type UploadStatementResponseDTO struct {
	StatementID      string             `json:"statement_id"`
	TransactionCount int                `json:"transaction_count"`
	PeriodStart      string             `json:"period_start"`
	PeriodEnd        string             `json:"period_end"`
	Replaced         bool               `json:"replaced"`
	Warnings         []string           `json:"warnings,omitempty"`
	Matching         MatchingSummaryDTO `json:"matching"`
}

// StatementDTO represents one imported statement in listings.
type StatementDTO struct {
	ID               string `json:"id"`
	AccountID        string `json:"account_id"`
	FileName         string `json:"file_name"`
	BankCode         string `json:"bank_code"`
	AccountNumber    string `json:"account_number"`
	PeriodStart      string `json:"period_start"`
	PeriodEnd        string `json:"period_end"`
	ClosingBalance   string `json:"closing_balance"`
	TransactionCount int    `json:"transaction_count"`
	UploadedAt       string `json:"uploaded_at"`
}

// ListStatementsResponseDTO represents the response for GET /statements.
type ListStatementsResponseDTO struct {
	Statements []StatementDTO `json:"statements"`
}

// ToStatementDTO converts a bank statement entity to its DTO.
func ToStatementDTO(s *entity.BankStatement) StatementDTO {
	return StatementDTO{
		ID:               s.ID.String(),
		AccountID:        s.AccountID.String(),
		FileName:         s.FileName,
		BankCode:         s.BankCode,
		AccountNumber:    s.AccountNumber,
		PeriodStart:      s.PeriodStart.Format("2006-01-02"),
		PeriodEnd:        s.PeriodEnd.Format("2006-01-02"),
		ClosingBalance:   s.ClosingBalance.String(),
		TransactionCount: s.TransactionCount,
		UploadedAt:       s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
