// Package entity defines the core business entities for the reconciliation domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankStatement records one imported statement file. Its transactions cascade
// with it: replacing a duplicate upload deletes the prior statement and every
// bank transaction it produced.
type BankStatement struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	CompanyID  uuid.UUID
	UploadedBy uuid.UUID

	FileName      string
	BankCode      string
	AccountNumber string

	PeriodStart    time.Time
	PeriodEnd      time.Time
	ClosingBalance decimal.Decimal
	BalanceDate    time.Time

	// ContentHash is the sha256 of the normalized file body, scoped per
	// account. A re-upload with the same hash replaces this statement.
	ContentHash      string
	TransactionCount int

	CreatedAt time.Time
}
