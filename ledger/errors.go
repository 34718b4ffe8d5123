/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error kinds in one place. Every error a Ledger or Aggregator
  operation returns is discriminated: callers match with errors.Is/errors.As
  and map each kind to a distinct user-facing message or HTTP status. There
  is no generic catch-all, and the engine never logs.

ERROR CATEGORIES:
  1. Validation errors  - bad input, rejected before any persistence attempt
  2. Not-found errors   - referenced id does not exist
  3. Conflict errors    - already-paid, duplicate idempotency key
  4. Persistence errors - Repository failures, propagated unchanged

SEE ALSO:
  - ledger.go:   Produces validation/not-found/conflict errors
  - repository.go: Store implementations wrap failures in ErrPersistence
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all bad-input rejections. Validation
	// always happens before any persistence attempt, never partially.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned for non-positive or unparseable amounts.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)

	// ErrInvalidSchedule is returned when an installment schedule cannot be
	// generated (count < 1 or non-positive total).
	ErrInvalidSchedule = fmt.Errorf("%w: invalid installment schedule", ErrValidation)

	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPaid is returned when marking an installment that already has
	// a paid date. Re-marking is rejected, never silently overwritten: a
	// second mark-paid for the same installment is very likely a caller bug.
	ErrAlreadyPaid = errors.New("installment already paid")

	// ErrDuplicateIdempotencyKey is returned when an exit's client-supplied
	// idempotency key was already used. Expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrPersistence is the root of Repository failures. The engine performs
	// no implicit retry; retry policy belongs to the store or transport.
	ErrPersistence = errors.New("persistence failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field of an input was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError identifies the kind and id of a missing record.
type NotFoundError struct {
	Kind string // "entry", "exit", "installment", "user", "company", "product"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AlreadyPaidError carries the existing paid date of a rejected double pay.
type AlreadyPaidError struct {
	Installment InstallmentID
	PaidDate    Date
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("installment %s already paid on %s", e.Installment, e.PaidDate)
}

func (e *AlreadyPaidError) Unwrap() error { return ErrAlreadyPaid }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input or
// a conflict the client caused.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrDuplicateIdempotencyKey)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error should surface as a conflict rather
// than a plain validation failure.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyPaid) || errors.Is(err, ErrDuplicateIdempotencyKey)
}
