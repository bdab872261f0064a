/*
Package finance provides the debt payoff projection engine.

PURPOSE:
  This package contains the pure, in-memory core that amortizes a portfolio
  of credit accounts month by month. It answers "when is everything paid off,
  and how much interest does it cost?" for two payment modes: minimum-only
  and snowball (freed minimums plus an extra budget cascade to other accounts).

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: Immutable input record (balance, APR, minimum payment)
  - MonthlyEntry: One month of payment/interest/principal for one account
  - ProjectionInput: Everything the engine needs for a single run

DESIGN PRINCIPLES:
  1. Immutability: Accounts never change during a projection
  2. Precision: All money and rates use decimal.Decimal
  3. Determinism: No I/O, no clock reads inside the loop, no goroutines
  4. Explicit rounding: The rounding policy is a parameter, not a global

USAGE:
  engine := finance.NewProjectionEngine()
  projection, err := engine.Project(finance.ProjectionInput{
      Accounts: []finance.Account{
          finance.NewAccount("Visa", 1000, 0.12, 50),
      },
      Snowballing:        true,
      ExtraMonthlyAmount: decimal.NewFromInt(100),
      SortOrder:          finance.SortBalanceAscending,
  })

SEE ALSO:
  - calculator.go: Interest and payment for a single cycle
  - allocation.go: Minimum-only and snowball allocation strategies
  - projection.go: The driving engine and the Projection result
*/
package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT - Immutable input record
// =============================================================================

// Account is a single credit account in a portfolio.
// APR is an annual rate expressed as a fraction (0.18 = 18%).
type Account struct {
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	APR            decimal.Decimal `json:"apr"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
}

// NewAccount builds an account from float values. Convenient for tests and presets.
func NewAccount(name string, balance, apr, minimumPayment float64) Account {
	return Account{
		Name:           name,
		Balance:        decimal.NewFromFloat(balance),
		APR:            decimal.NewFromFloat(apr),
		MinimumPayment: decimal.NewFromFloat(minimumPayment),
	}
}

// MustParseDecimal parses s or panics. Use only with literals.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid decimal literal %q: %v", s, err))
	}
	return d
}

// Validate checks the construction-time rules for a single account.
func (a Account) Validate() error {
	if a.Balance.IsNegative() {
		return &ValidationError{Field: "balance", Account: a.Name, Reason: "must not be negative"}
	}
	if a.APR.IsNegative() {
		return &ValidationError{Field: "apr", Account: a.Name, Reason: "must not be negative"}
	}
	if !a.MinimumPayment.IsPositive() {
		return &ValidationError{Field: "minimum_payment", Account: a.Name, Reason: "must be greater than zero"}
	}
	return nil
}

// =============================================================================
// MONTHLY ENTRY - One line of an account ledger
// =============================================================================

// MonthlyEntry records what happened to one account in one simulated month.
//
// INVARIANT: Principal == Payment - Interest, and Balance is the post-payment
// running balance (never negative).
type MonthlyEntry struct {
	Index     int             `json:"index"`
	Month     Month           `json:"month"`
	Payment   decimal.Decimal `json:"payment"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

func (e *MonthlyEntry) addPayment(amount decimal.Decimal) {
	e.Payment = e.Payment.Add(amount)
	e.Principal = e.Payment.Sub(e.Interest)
	e.Balance = e.Balance.Sub(amount)
}

// =============================================================================
// PROJECTION INPUT
// =============================================================================

// ProjectionInput contains all inputs for a single projection run.
type ProjectionInput struct {
	Accounts []Account `json:"accounts"`

	// First simulated month is the month containing StartDate.
	// Zero means "the current month" according to the engine clock.
	StartDate Month `json:"start_date"`

	// Snowballing redirects freed minimums and ExtraMonthlyAmount to other accounts.
	Snowballing        bool            `json:"snowballing"`
	ExtraMonthlyAmount decimal.Decimal `json:"extra_monthly_amount"`

	// SortOrder fixes account precedence once, before the first month.
	SortOrder SortOrder `json:"sort_order"`
}

// Validate checks construction-time rules. No month is simulated if this fails.
func (in ProjectionInput) Validate() error {
	if len(in.Accounts) == 0 {
		return &ValidationError{Field: "accounts", Reason: "at least one account is required"}
	}
	for _, a := range in.Accounts {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if in.ExtraMonthlyAmount.IsNegative() {
		return &ValidationError{Field: "extra_monthly_amount", Reason: "must not be negative"}
	}
	if _, err := ParseSortOrder(string(in.SortOrder)); err != nil {
		return err
	}
	return nil
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
