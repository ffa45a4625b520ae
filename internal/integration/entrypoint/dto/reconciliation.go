// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/entity"
)

// BankTransactionDTO represents one imported bank transaction.
type BankTransactionDTO struct {
	ID              string  `json:"id"`
	AccountID       string  `json:"account_id"`
	FitID           string  `json:"fit_id,omitempty"`
	UnstableID      bool    `json:"unstable_id,omitempty"`
	PostedAt        string  `json:"posted_at"`
	Amount          string  `json:"amount"`
	Type            string  `json:"type"`
	Payee           string  `json:"payee,omitempty"`
	Memo            string  `json:"memo,omitempty"`
	CheckNumber     string  `json:"check_number,omitempty"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
	Status          string  `json:"status"`
	MatchedAmount   *string `json:"matched_amount,omitempty"`
	MatchCount      int     `json:"match_count,omitempty"`
	Confidence      string  `json:"confidence,omitempty"`
}

// LedgerEntryDTO represents one internal accounting entry.
type LedgerEntryDTO struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Amount         string `json:"amount"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	DocumentNumber string `json:"document_number,omitempty"`
	Status         string `json:"status"`
	GroupSize      int    `json:"group_size,omitempty"`
}

// MatchDTO represents one persisted match row.
type MatchDTO struct {
	ID            string `json:"id"`
	LedgerEntryID string `json:"ledger_entry_id"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Confidence    string `json:"confidence"`
	IsPrimary     bool   `json:"is_primary"`
	MatchOrder    int    `json:"match_order"`
	GroupSize     int    `json:"group_size"`
	Score         string `json:"score"`
	Reason        string `json:"reason,omitempty"`
}

// MatchingSummaryDTO aggregates per-status counts from a matching pass.
type MatchingSummaryDTO struct {
	Total         int `json:"total"`
	SemMatch      int `json:"sem_match"`
	Sugerido      int `json:"sugerido"`
	Transferencia int `json:"transferencia"`
	Conciliado    int `json:"conciliado"`
	Rejeitado     int `json:"rejeitado"`
}

// SuggestionDTO pairs a bank transaction with its suggested ledger entries.
type SuggestionDTO struct {
	BankTransaction  BankTransactionDTO `json:"bank_transaction"`
	LedgerEntries    []LedgerEntryDTO   `json:"ledger_entries"`
	Score            string             `json:"score"`
	Confidence       string             `json:"confidence"`
	Reason           string             `json:"reason,omitempty"`
	GroupSize        int                `json:"group_size"`
	AmountDifference string             `json:"amount_difference"`
}

// ListSuggestionsResponseDTO represents the response for GET /reconciliation/suggestions.
type ListSuggestionsResponseDTO struct {
	Suggestions []SuggestionDTO    `json:"suggestions"`
	Summary     MatchingSummaryDTO `json:"summary"`
}

// CreateMatchRequestDTO represents the request for POST /reconciliation/matches.
type CreateMatchRequestDTO struct {
	BankTransactionID string   `json:"bank_transaction_id" binding:"required"`
	LedgerEntryIDs    []string `json:"ledger_entry_ids" binding:"required"`
}

// CreateMatchResponseDTO represents the response for POST /reconciliation/matches.
type CreateMatchResponseDTO struct {
	BankTransactionID string `json:"bank_transaction_id"`
	Status            string `json:"status"`
	GroupSize         int    `json:"group_size"`
	MatchedAmount     string `json:"matched_amount"`
	AmountDifference  string `json:"amount_difference"`
}

// ReviewMatchRequestDTO represents the request for PATCH /reconciliation/matches/:id.
type ReviewMatchRequestDTO struct {
	Decision string `json:"decision" binding:"required"`
}

// ReviewMatchResponseDTO represents the response for PATCH /reconciliation/matches/:id.
type ReviewMatchResponseDTO struct {
	BankTransactionID string `json:"bank_transaction_id"`
	MatchStatus       string `json:"match_status"`
	BankStatus        string `json:"bank_status"`
}

// GetMatchGroupResponseDTO represents the response for GET /reconciliation/matches/:id.
type GetMatchGroupResponseDTO struct {
	BankTransaction  BankTransactionDTO `json:"bank_transaction"`
	Matches          []MatchDTO         `json:"matches"`
	LedgerEntries    []LedgerEntryDTO   `json:"ledger_entries"`
	MatchedAmount    string             `json:"matched_amount"`
	AmountDifference string             `json:"amount_difference"`
	Confidence       string             `json:"confidence"`
}

// UnlinkMatchResponseDTO represents the response for DELETE /reconciliation/matches/:id.
type UnlinkMatchResponseDTO struct {
	BankTransactionID string `json:"bank_transaction_id"`
	EntriesReleased   int    `json:"entries_released"`
}

// DuplicateIdentifierGroupDTO lists transaction rows sharing one bank identifier.
type DuplicateIdentifierGroupDTO struct {
	FitID          string   `json:"fit_id"`
	TransactionIDs []string `json:"transaction_ids"`
	AnyConfirmed   bool     `json:"any_confirmed"`
}

// IntegrityReportResponseDTO represents the response for GET /reconciliation/integrity.
type IntegrityReportResponseDTO struct {
	TotalTransactions  int                           `json:"total_transactions"`
	WithBankIdentifier int                           `json:"with_bank_identifier"`
	IdentifierCoverage float64                       `json:"identifier_coverage"`
	Duplicates         []DuplicateIdentifierGroupDTO `json:"duplicates"`
}

// ToBankTransactionDTO converts a bank transaction entity to its DTO.
func ToBankTransactionDTO(t *entity.BankTransaction) BankTransactionDTO {
	out := BankTransactionDTO{
		ID:              t.ID.String(),
		AccountID:       t.AccountID.String(),
		FitID:           t.FitID,
		UnstableID:      t.UnstableID,
		PostedAt:        t.PostedAt.Format("2006-01-02"),
		Amount:          t.Amount.String(),
		Type:            string(t.Type),
		Payee:           t.Payee,
		Memo:            t.Memo,
		CheckNumber:     t.CheckNumber,
		ReferenceNumber: t.ReferenceNumber,
		Status:          string(t.Status),
		MatchCount:      t.MatchCount,
	}
	if t.MatchedAmount != nil {
		s := t.MatchedAmount.String()
		out.MatchedAmount = &s
	}
	if t.Confidence != nil {
		out.Confidence = string(*t.Confidence)
	}
	return out
}

// ToLedgerEntryDTO converts a ledger entry entity to its DTO.
func ToLedgerEntryDTO(e *entity.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:             e.ID.String(),
		Date:           e.Date.Format("2006-01-02"),
		Amount:         e.Amount.String(),
		Type:           string(e.Type),
		Description:    e.Description,
		DocumentNumber: e.DocumentNumber,
		Status:         string(e.Status),
		GroupSize:      e.GroupSize,
	}
}

// ToMatchDTO converts a transaction match entity to its DTO.
func ToMatchDTO(m *entity.TransactionMatch) MatchDTO {
	return MatchDTO{
		ID:            m.ID.String(),
		LedgerEntryID: m.LedgerEntryID.String(),
		Type:          string(m.Type),
		Status:        string(m.Status),
		Confidence:    string(m.Confidence),
		IsPrimary:     m.IsPrimary,
		MatchOrder:    m.MatchOrder,
		GroupSize:     m.GroupSize,
		Score:         m.Score.StringFixed(4),
		Reason:        m.Reason,
	}
}

// ToMatchingSummaryDTO converts a matching summary to its DTO.
func ToMatchingSummaryDTO(s entity.MatchingSummary) MatchingSummaryDTO {
	return MatchingSummaryDTO{
		Total:         s.Total,
		SemMatch:      s.SemMatch,
		Sugerido:      s.Sugerido,
		Transferencia: s.Transferencia,
		Conciliado:    s.Conciliado,
		Rejeitado:     s.Rejeitado,
	}
}

// ParseUUIDs parses a list of string ids, reporting the first invalid one.
func ParseUUIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
