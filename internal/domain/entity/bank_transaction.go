// Package entity defines the core business entities for the reconciliation domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the closed set of bank-side reconciliation states.
type ReconciliationStatus string

const (
	// ReconciliationStatusSemMatch means no candidate ledger entry was found.
	ReconciliationStatusSemMatch ReconciliationStatus = "sem_match"
	// ReconciliationStatusSugerido means a candidate match is suggested and pending review.
	ReconciliationStatusSugerido ReconciliationStatus = "sugerido"
	// ReconciliationStatusTransferencia means the transaction was classified as an
	// inter-account transfer. This status wins over any stored match state.
	ReconciliationStatusTransferencia ReconciliationStatus = "transferencia"
	// ReconciliationStatusConciliado means the match was confirmed.
	ReconciliationStatusConciliado ReconciliationStatus = "conciliado"
	// ReconciliationStatusRejeitado means the suggested match was rejected by an operator.
	ReconciliationStatusRejeitado ReconciliationStatus = "rejeitado"
)

// IsValid reports whether s is one of the known reconciliation statuses.
func (s ReconciliationStatus) IsValid() bool {
	switch s {
	case ReconciliationStatusSemMatch,
		ReconciliationStatusSugerido,
		ReconciliationStatusTransferencia,
		ReconciliationStatusConciliado,
		ReconciliationStatusRejeitado:
		return true
	}
	return false
}

// EntryType indicates the direction of a bank transaction.
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// BankTransaction represents one line item from an imported bank statement.
type BankTransaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	CompanyID   uuid.UUID
	StatementID uuid.UUID

	// FitID is the bank-assigned transaction identifier (OFX FITID). It may be
	// synthesized at parse time when the bank omits it; UnstableID marks that
	// case so duplicate detection can treat it as weak evidence.
	FitID      string
	UnstableID bool

	PostedAt        time.Time
	Amount          decimal.Decimal // signed; negative for debits
	Type            EntryType
	Payee           string
	Memo            string
	CheckNumber     string
	ReferenceNumber string

	Status        ReconciliationStatus
	MatchedAmount *decimal.Decimal
	MatchCount    int
	// PrimaryMatchID references the is_primary match row when the transaction
	// carries an active match group.
	PrimaryMatchID *uuid.UUID
	Confidence     *Confidence

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AbsAmount returns the absolute transaction amount.
func (t *BankTransaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// Description returns the free text used for similarity matching, preferring
// the payee name over the memo.
func (t *BankTransaction) Description() string {
	if t.Payee != "" {
		return t.Payee
	}
	return t.Memo
}

// HasBankIdentifier reports whether the transaction carries a bank-guaranteed
// identifier usable for strong duplicate detection.
func (t *BankTransaction) HasBankIdentifier() bool {
	return t.FitID != "" && !t.UnstableID
}
