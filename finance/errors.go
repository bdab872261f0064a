/*
errors.go - Error types for the projection engine

ERROR CATEGORIES:
  1. Validation errors - Bad input, detected before any month is simulated
  2. Non-amortizing payment - A live account can never reach zero
  3. Non-convergence - The month ceiling was hit (rounding or modeling defect)

All three are fatal for a projection: the engine never returns a partially
built Projection together with an error. Nothing here is retryable; the
calculation is deterministic.

USAGE:
  projection, err := engine.Project(input)
  var nonAmortizing *finance.NonAmortizingPaymentError
  if errors.As(err, &nonAmortizing) {
      fmt.Println("raise the minimum on", nonAmortizing.Account)
  }
*/
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when the projection input fails validation.
	ErrInvalidInput = errors.New("invalid projection input")

	// ErrNonAmortizing is returned when an account's payment does not exceed its interest.
	ErrNonAmortizing = errors.New("payment does not amortize balance")

	// ErrDidNotConverge is returned when the month ceiling is reached.
	ErrDidNotConverge = errors.New("projection did not converge")

	// ErrRunNotFound is returned by run stores for unknown run IDs.
	ErrRunNotFound = errors.New("run not found")

	// ErrDuplicateRun is returned when saving a run ID that already exists.
	ErrDuplicateRun = errors.New("run already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a construction-time input problem.
type ValidationError struct {
	Field   string
	Account string // empty for portfolio-level fields
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("invalid %s for account %q: %s", e.Field, e.Account, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NonAmortizingPaymentError is raised when an active account's cycle payment
// is less than or equal to its cycle interest.
type NonAmortizingPaymentError struct {
	Account    string
	MonthIndex int
	Month      Month
	Balance    decimal.Decimal
	Interest   decimal.Decimal
	Payment    decimal.Decimal
}

func (e *NonAmortizingPaymentError) Error() string {
	return fmt.Sprintf("account %q never pays off: month %d (%s) payment %s <= interest %s on balance %s",
		e.Account, e.MonthIndex, e.Month, e.Payment.StringFixed(2), e.Interest.StringFixed(2), e.Balance.StringFixed(2))
}

func (e *NonAmortizingPaymentError) Unwrap() error { return ErrNonAmortizing }

// ProjectionDidNotConvergeError is raised when balances remain after MaxMonths.
type ProjectionDidNotConvergeError struct {
	MaxMonths        int
	RemainingBalance decimal.Decimal
}

func (e *ProjectionDidNotConvergeError) Error() string {
	return fmt.Sprintf("projection did not converge after %d months (remaining balance %s)",
		e.MaxMonths, e.RemainingBalance.StringFixed(2))
}

func (e *ProjectionDidNotConvergeError) Unwrap() error { return ErrDidNotConverge }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNonAmortizing)
}

// IsNotFound returns true if the error indicates a missing run.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
