package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionLock serializes concurrent reconciliation writes against the
// same bank transaction. Acquire fails fast instead of blocking; callers map
// the failure to ErrReconciliationLocked.
type TransactionLock interface {
	// Acquire takes the lock for the bank transaction, returning a release
	// function on success. ok is false when another operation holds it.
	Acquire(ctx context.Context, bankTransactionID uuid.UUID, ttl time.Duration) (release func(), ok bool, err error)
}
