package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/entity"
)

// MatchGroup bundles the match rows of one bank transaction together with the
// ledger entries they reference.
type MatchGroup struct {
	BankTransaction *entity.BankTransaction
	Matches         []*entity.TransactionMatch
	LedgerEntries   []*entity.LedgerEntry
}

// MatchRepository defines persistence operations for transaction matches.
//
// Write operations that touch a match group run inside a single database
// transaction so a reader never observes a partially replaced group.
type MatchRepository interface {
	// GetGroup retrieves the full match group of a bank transaction, ordered
	// by match_order. Returns ErrMatchGroupNotFound when no matches exist.
	GetGroup(ctx context.Context, bankTransactionID uuid.UUID, companyID uuid.UUID) (*MatchGroup, error)

	// ListByStatus retrieves match groups for a company filtered by status.
	ListByStatus(ctx context.Context, companyID uuid.UUID, status entity.MatchStatus, limit, offset int) ([]*MatchGroup, error)

	// ReplaceGroup atomically deletes any existing matches of the bank
	// transaction and inserts the new group, updating the bank transaction
	// status and every affected ledger entry (released and newly linked) in
	// the same database transaction.
	ReplaceGroup(ctx context.Context, group *MatchGroup, released []*entity.LedgerEntry) error

	// UpdateGroupStatus moves every match of the bank transaction to the given
	// status and propagates the canonical statuses to both sides.
	UpdateGroupStatus(ctx context.Context, bankTransactionID uuid.UUID, status entity.MatchStatus) error

	// DeleteGroup removes all matches of the bank transaction, resetting the
	// bank transaction to sem_match and releasing its ledger entries to pago,
	// atomically.
	DeleteGroup(ctx context.Context, bankTransactionID uuid.UUID) error

	// LedgerEntryIDsInActiveMatches returns the ledger entry IDs referenced by
	// any suggested or confirmed match for the company.
	LedgerEntryIDsInActiveMatches(ctx context.Context, companyID uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}
