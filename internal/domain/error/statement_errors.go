// Package error defines domain-specific errors for the reconciliation backend.
package error

import "errors"

// Statement import domain errors.
var (
	// ErrUnsupportedExtension is returned when the uploaded file extension is not accepted.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrEmptyStatementFile is returned when the uploaded file has no content.
	ErrEmptyStatementFile = errors.New("statement file is empty")

	// ErrInvalidFormat is returned when the file fails structural validation
	// (missing format signature, account block or transaction blocks).
	ErrInvalidFormat = errors.New("statement file is not a valid OFX document")

	// ErrMalformedStatement is returned when the statement structure is present
	// but cannot be decoded.
	ErrMalformedStatement = errors.New("malformed statement")

	// ErrAccountMismatch is returned when the parsed bank/account identifiers do
	// not correspond to the target internal account.
	ErrAccountMismatch = errors.New("statement account does not match target account")

	// ErrAccountNotFound is returned when the target internal account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStatementNotFound is returned when a statement is not found.
	ErrStatementNotFound = errors.New("statement not found")
)

// StatementErrorCode defines error codes for statement import errors.
// Format: STM-XXYYYY where XX is category and YYYY is specific error.
type StatementErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeUnsupportedExtension StatementErrorCode = "STM-010001"
	ErrCodeEmptyStatementFile   StatementErrorCode = "STM-010002"
	ErrCodeAccountNotFound      StatementErrorCode = "STM-010003"

	// Format errors (02XXXX)
	ErrCodeInvalidFormat      StatementErrorCode = "STM-020001"
	ErrCodeMalformedStatement StatementErrorCode = "STM-020002"

	// Account validation errors (03XXXX)
	ErrCodeAccountMismatch StatementErrorCode = "STM-030001"

	// Persistence errors (04XXXX)
	ErrCodeStatementNotFound    StatementErrorCode = "STM-040001"
	ErrCodeStatementPersistence StatementErrorCode = "STM-040002"
)

// ParsedAccountInfo carries the account identifiers extracted from a rejected
// statement so the operator can inspect the mismatch.
type ParsedAccountInfo struct {
	BankCode      string
	AccountNumber string
}

// StatementError represents a statement import error with code and message.
type StatementError struct {
	Code    StatementErrorCode
	Message string
	Err     error

	// ParsedAccount is populated for account-mismatch errors.
	ParsedAccount *ParsedAccountInfo
}

// Error implements the error interface.
func (e *StatementError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// NewStatementError creates a new StatementError with the given code and message.
func NewStatementError(code StatementErrorCode, message string, err error) *StatementError {
	return &StatementError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAccountMismatchError creates the account-mismatch error carrying the
// parsed account identifiers for operator review.
func NewAccountMismatchError(bankCode, accountNumber string) *StatementError {
	return &StatementError{
		Code:    ErrCodeAccountMismatch,
		Message: "statement account does not match target account",
		Err:     ErrAccountMismatch,
		ParsedAccount: &ParsedAccountInfo{
			BankCode:      bankCode,
			AccountNumber: accountNumber,
		},
	}
}
