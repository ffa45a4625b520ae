package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/entity"
)

// LedgerEntryRepository defines persistence operations for internal ledger
// entries (lançamentos).
type LedgerEntryRepository interface {
	// GetByID retrieves a ledger entry with company ownership verification.
	GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.LedgerEntry, error)

	// GetByIDs retrieves multiple ledger entries, preserving ownership checks.
	// Missing IDs are reported as an error.
	GetByIDs(ctx context.Context, ids []uuid.UUID, companyID uuid.UUID) ([]*entity.LedgerEntry, error)

	// ListCandidates retrieves match-eligible entries (status pago) for a
	// company within a date window around the given reference date.
	ListCandidates(ctx context.Context, companyID uuid.UUID, center time.Time, windowDays int) ([]*entity.LedgerEntry, error)

	// UpdateStatus sets the ledger-side reconciliation status of an entry.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.LedgerStatus) error
}
