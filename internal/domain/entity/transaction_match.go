// Package entity defines the core business entities for the reconciliation domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Confidence is the coarse bucket summarizing match score and rule agreement.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchType distinguishes operator-created matches from engine-created ones.
type MatchType string

const (
	MatchTypeManual    MatchType = "manual"
	MatchTypeAutomatic MatchType = "automatic"
)

// MatchStatus is the lifecycle state of a persisted match row.
type MatchStatus string

const (
	MatchStatusSuggested MatchStatus = "suggested"
	MatchStatusConfirmed MatchStatus = "confirmed"
	MatchStatusRejected  MatchStatus = "rejected"
)

// TransactionMatch is a persisted edge between one bank transaction and one
// ledger entry, possibly part of a many-to-one group.
//
// Group invariant: among the active rows of one bank transaction exactly one
// has IsPrimary set, and every row reports the same GroupSize equal to the
// group cardinality.
type TransactionMatch struct {
	ID                uuid.UUID
	BankTransactionID uuid.UUID
	LedgerEntryID     uuid.UUID
	CompanyID         uuid.UUID

	Type       MatchType
	Status     MatchStatus
	Confidence Confidence

	IsPrimary  bool
	MatchOrder int
	GroupSize  int

	// Score is the rule-engine score stored as a 0.00-1.00 fraction.
	Score  decimal.Decimal
	Reason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BankStatusFor is the canonical mapping from a match status to the
// bank-transaction status it implies. Transfer classification is handled
// upstream and always overrides this mapping.
func BankStatusFor(s MatchStatus) ReconciliationStatus {
	switch s {
	case MatchStatusConfirmed:
		return ReconciliationStatusConciliado
	case MatchStatusRejected:
		return ReconciliationStatusRejeitado
	default:
		return ReconciliationStatusSugerido
	}
}

// LedgerStatusFor is the canonical mapping from a match status to the
// ledger-entry status it implies. Rejected matches release the entry.
func LedgerStatusFor(s MatchStatus) LedgerStatus {
	switch s {
	case MatchStatusConfirmed:
		return LedgerStatusConciliado
	case MatchStatusRejected:
		return LedgerStatusPago
	default:
		return LedgerStatusComSugestao
	}
}

// MatchStatusFor derives the persisted match status from the match type and
// whether amount and date matched exactly. Automatic exact matches are
// committed directly; everything else starts as a suggestion.
func MatchStatusFor(t MatchType, exact bool) MatchStatus {
	if t == MatchTypeManual {
		return MatchStatusConfirmed
	}
	if exact {
		return MatchStatusConfirmed
	}
	return MatchStatusSuggested
}
