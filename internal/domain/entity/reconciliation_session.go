// Package entity defines the core business entities for the reconciliation domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a reconciliation session.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusClosed SessionStatus = "closed"
)

// ReconciliationSession scopes one reconciliation run to an account, company
// and accounting period, and accumulates its aggregate counters. Sessions are
// created lazily, keyed on account + company + period + active status.
type ReconciliationSession struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	CompanyID   uuid.UUID
	StatementID uuid.UUID

	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      SessionStatus

	TotalTransactions int
	Matched           int
	Suggested         int
	Transfers         int
	Pending           int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchingSummary aggregates per-status counts from one matching pass. It is
// returned to callers and used to refresh session counters.
type MatchingSummary struct {
	Total         int
	SemMatch      int
	Sugerido      int
	Transferencia int
	Conciliado    int
	Rejeitado     int
}

// Add counts one result status into the summary.
func (s *MatchingSummary) Add(status ReconciliationStatus) {
	s.Total++
	switch status {
	case ReconciliationStatusSugerido:
		s.Sugerido++
	case ReconciliationStatusTransferencia:
		s.Transferencia++
	case ReconciliationStatusConciliado:
		s.Conciliado++
	case ReconciliationStatusRejeitado:
		s.Rejeitado++
	default:
		s.SemMatch++
	}
}

// AddCount counts n results with the given status.
func (s *MatchingSummary) AddCount(status ReconciliationStatus, n int) {
	s.Total += n
	switch status {
	case ReconciliationStatusSugerido:
		s.Sugerido += n
	case ReconciliationStatusTransferencia:
		s.Transferencia += n
	case ReconciliationStatusConciliado:
		s.Conciliado += n
	case ReconciliationStatusRejeitado:
		s.Rejeitado += n
	default:
		s.SemMatch += n
	}
}

// ApplySummary refreshes the session counters from a matching pass.
func (s *ReconciliationSession) ApplySummary(sum MatchingSummary) {
	s.TotalTransactions = sum.Total
	s.Matched = sum.Conciliado
	s.Suggested = sum.Sugerido
	s.Transfers = sum.Transferencia
	s.Pending = sum.SemMatch + sum.Rejeitado
	s.UpdatedAt = time.Now().UTC()
}

// NewReconciliationSession creates an active session for the given scope.
func NewReconciliationSession(accountID, companyID uuid.UUID, periodStart, periodEnd time.Time) *ReconciliationSession {
	now := time.Now().UTC()
	return &ReconciliationSession{
		ID:          uuid.New(),
		AccountID:   accountID,
		CompanyID:   companyID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      SessionStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
