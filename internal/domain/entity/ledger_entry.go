// Package entity defines the core business entities for the reconciliation domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerStatus is the closed set of ledger-side reconciliation states.
type LedgerStatus string

const (
	// LedgerStatusPago marks a settled entry, eligible as a fresh match candidate.
	LedgerStatusPago LedgerStatus = "pago"
	// LedgerStatusComSugestao marks an entry referenced by a suggested match.
	LedgerStatusComSugestao LedgerStatus = "com_sugestao"
	// LedgerStatusConciliado marks an entry committed to a confirmed match.
	LedgerStatusConciliado LedgerStatus = "conciliado"
)

// LedgerEntryType represents the accounting nature of a ledger entry.
type LedgerEntryType string

const (
	LedgerEntryTypeReceita       LedgerEntryType = "receita"
	LedgerEntryTypeDespesa       LedgerEntryType = "despesa"
	LedgerEntryTypeTransferencia LedgerEntryType = "transferencia"
)

// LedgerEntry represents one internal accounting entry (lançamento) that can
// be reconciled against bank transactions.
type LedgerEntry struct {
	ID             uuid.UUID
	CompanyID      uuid.UUID
	Date           time.Time
	Amount         decimal.Decimal // signed; negative for despesas
	Type           LedgerEntryType
	Description    string
	DocumentNumber string

	Status LedgerStatus
	// BankTransactionID back-references the matched bank transaction when the
	// entry is part of an active match.
	BankTransactionID *uuid.UUID
	InMatchGroup      bool
	GroupSize         int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EligibleForMatching reports whether the entry can be offered as a fresh
// match candidate. Entries already conciliado or com_sugestao must be
// released (unlinked) first.
func (e *LedgerEntry) EligibleForMatching() bool {
	return e.Status == LedgerStatusPago
}

// AbsAmount returns the absolute entry amount.
func (e *LedgerEntry) AbsAmount() decimal.Decimal {
	return e.Amount.Abs()
}
