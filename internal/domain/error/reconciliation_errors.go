// Package error defines domain-specific errors for the reconciliation backend.
package error

import "errors"

// Reconciliation domain errors.
var (
	// ErrBankTransactionNotFound is returned when a bank transaction is not found.
	ErrBankTransactionNotFound = errors.New("bank transaction not found")

	// ErrLedgerEntryNotFound is returned when a ledger entry is not found.
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")

	// ErrEmptyLedgerEntryIDs is returned when a match request carries no ledger entries.
	ErrEmptyLedgerEntryIDs = errors.New("at least one ledger entry is required")

	// ErrAlreadyReconciled is returned when re-matching a transaction whose
	// status is already conciliado.
	ErrAlreadyReconciled = errors.New("bank transaction already reconciled")

	// ErrLedgerEntryNotEligible is returned when a ledger entry in status
	// conciliado or com_sugestao is offered as a fresh candidate.
	ErrLedgerEntryNotEligible = errors.New("ledger entry is not eligible for matching")

	// ErrDuplicateIdentifierConflict is returned when the bank identifier of a
	// transaction appears, in confirmed status, on a different transaction row.
	ErrDuplicateIdentifierConflict = errors.New("bank identifier already reconciled on another transaction")

	// ErrMatchGroupNotFound is returned when a bank transaction has no match rows.
	ErrMatchGroupNotFound = errors.New("no matches found for bank transaction")

	// ErrInvalidMatchType is returned when the declared match type is unknown.
	ErrInvalidMatchType = errors.New("invalid match type")

	// ErrInvalidPeriod is returned when the requested period bounds are invalid.
	ErrInvalidPeriod = errors.New("invalid period bounds")

	// ErrReconciliationLocked is returned when another request holds the lock
	// for the same bank transaction.
	ErrReconciliationLocked = errors.New("bank transaction is being reconciled by another request")
)

// ReconciliationErrorCode defines error codes for reconciliation errors.
// Format: REC-XXYYYY where XX is category and YYYY is specific error.
type ReconciliationErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeBankTransactionNotFound ReconciliationErrorCode = "REC-010001"
	ErrCodeLedgerEntryNotFound     ReconciliationErrorCode = "REC-010002"
	ErrCodeEmptyLedgerEntryIDs     ReconciliationErrorCode = "REC-010003"
	ErrCodeInvalidMatchType        ReconciliationErrorCode = "REC-010004"
	ErrCodeInvalidPeriod           ReconciliationErrorCode = "REC-010005"

	// Conflict errors (02XXXX)
	ErrCodeAlreadyReconciled           ReconciliationErrorCode = "REC-020001"
	ErrCodeLedgerEntryNotEligible      ReconciliationErrorCode = "REC-020002"
	ErrCodeDuplicateIdentifierConflict ReconciliationErrorCode = "REC-020003"
	ErrCodeReconciliationLocked        ReconciliationErrorCode = "REC-020004"

	// Persistence errors (03XXXX)
	ErrCodeMatchGroupNotFound        ReconciliationErrorCode = "REC-030001"
	ErrCodeReconciliationPersistence ReconciliationErrorCode = "REC-030002"
)

// ReconciliationError represents a reconciliation error with code and message.
type ReconciliationError struct {
	Code    ReconciliationErrorCode
	Message string
	Err     error

	// ConflictingTransactionIDs lists the transaction rows involved in a
	// duplicate-identifier conflict, for operator inspection.
	ConflictingTransactionIDs []string
}

// Error implements the error interface.
func (e *ReconciliationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// NewReconciliationError creates a new ReconciliationError with the given code and message.
func NewReconciliationError(code ReconciliationErrorCode, message string, err error) *ReconciliationError {
	return &ReconciliationError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewDuplicateIdentifierError creates the duplicate-identifier conflict error
// carrying the conflicting transaction rows.
func NewDuplicateIdentifierError(conflictingIDs []string) *ReconciliationError {
	return &ReconciliationError{
		Code:                      ErrCodeDuplicateIdentifierConflict,
		Message:                   "bank identifier already reconciled on another transaction",
		Err:                       ErrDuplicateIdentifierConflict,
		ConflictingTransactionIDs: conflictingIDs,
	}
}
