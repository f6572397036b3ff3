/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is; structured variants carry context and
  unwrap to their sentinel.

ERROR CATEGORIES:
  1. Validation errors - rejected before any mutation, fully recoverable
  2. Uniqueness violations - expected conditions surfaced to the caller
  3. Storage errors - persistence failures, wrapped in ErrStorage

RETRY SEMANTICS:
  Storage errors are not retried here. Because snapshot recomputation is
  idempotent, the caller may blindly retry the whole operation.

SEE ALSO:
  - rules.go: produces InvalidAmountError
  - store.go: store implementations map constraint violations to sentinels
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a local-calendar date string does not
	// denote a valid year-month-day in that calendar.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidAmount is returned when a transaction amount violates the
	// shape rule for its type. Detected before any mutation.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrDuplicateTrackingCode is returned when a transaction's tracking
	// code already exists for any member. Expected, not exceptional.
	ErrDuplicateTrackingCode = errors.New("duplicate tracking code")

	// ErrDuplicateMember is returned when a member name or username is
	// already registered.
	ErrDuplicateMember = errors.New("duplicate member")

	// ErrTrackingCodeRequired is returned when a transaction arrives without
	// a tracking code. The code is the log's idempotency key and cannot be
	// blank.
	ErrTrackingCodeRequired = errors.New("tracking code required")

	// ErrMemberNotFound is returned when a referenced member doesn't exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrStorage wraps any underlying persistence failure.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAmountError reports which rule a transaction amount violated.
type InvalidAmountError struct {
	Type   TransactionType
	Amount decimal.Decimal
	Rule   string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid %s amount %s: %s", e.Type, e.Amount, e.Rule)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// InvalidDateError reports an unparseable or out-of-range local date.
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// DuplicateTrackingCodeError identifies the rejected tracking code.
type DuplicateTrackingCodeError struct {
	TrackingCode string
}

func (e *DuplicateTrackingCodeError) Error() string {
	return fmt.Sprintf("tracking code %q already recorded", e.TrackingCode)
}

func (e *DuplicateTrackingCodeError) Unwrap() error { return ErrDuplicateTrackingCode }

// StorageError wraps a persistence failure with the failing operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return ErrStorage }

// WrapStorage wraps err as a StorageError unless it is already one of the
// ledger sentinels (uniqueness violations and not-found pass through
// verbatim, so callers can still classify them).
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicateTrackingCode) ||
		errors.Is(err, ErrDuplicateMember) ||
		errors.Is(err, ErrMemberNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// and a corrected retry can succeed.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrDuplicateTrackingCode) ||
		errors.Is(err, ErrDuplicateMember) ||
		errors.Is(err, ErrTrackingCodeRequired)
}

// IsNotFound returns true if the error indicates a missing member.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}
