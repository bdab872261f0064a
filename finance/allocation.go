/*
allocation.go - Monthly payment allocation strategies

PURPOSE:
  Decides, for one simulated month, how much each account is paid. Each
  strategy is a pure function of (current balances, month) that returns the
  next balances plus the entries to append. No ledger is touched here.

MODES:
  MinimumOnly:
    Every active account pays its minimum. On the payoff month the payment is
    capped at the opening balance.

  Snowball (two passes):
    Pass 1 pays minimums like MinimumOnly, except the payoff payment absorbs
    the month's interest (balance + interest) so budget accounting stays exact.
    Pass 2 walks accounts in sequencer order and pours the unspent budget
    (TotalMonthlyBudget - pass 1 payments) into them. When an account is
    fully retired and budget remains, the cascade continues to the next
    account in the same month.

EXAMPLE (snowball, budget 210, order A then B):
  A: balance 20, min 30 -> pass 1 pays 20.xx (payoff)
  B: balance 4000, min 80 -> pass 1 pays 80
  remaining = 210 - 100.xx -> pass 2 adds it all to B

SEE ALSO:
  - calculator.go: Interest/payment per cycle
  - projection.go: Engine that applies allocations month by month
*/
package finance

import "github.com/shopspring/decimal"

// =============================================================================
// ALLOCATION STRATEGY
// =============================================================================

// Allocation is the outcome of one month.
// Entries is indexed like the accounts; nil means the account was inactive.
type Allocation struct {
	Balances []decimal.Decimal
	Entries  []*MonthlyEntry
}

// Paid returns the sum of payments in this allocation.
func (a Allocation) Paid() decimal.Decimal {
	total := decimal.Zero
	for _, e := range a.Entries {
		if e != nil {
			total = total.Add(e.Payment)
		}
	}
	return total
}

// AllocationStrategy allocates one month of payments.
type AllocationStrategy interface {
	// Allocate must not modify balances.
	Allocate(month Month, index int, balances []decimal.Decimal) (Allocation, error)

	// Name identifies the strategy in logs and summaries.
	Name() string
}

// =============================================================================
// MINIMUM-ONLY
// =============================================================================

type MinimumOnly struct {
	Calculator CycleCalculator
	Accounts   []Account
}

func (s *MinimumOnly) Name() string { return "minimum" }

func (s *MinimumOnly) Allocate(month Month, index int, balances []decimal.Decimal) (Allocation, error) {
	return minimumPass(s.Calculator, s.Accounts, month, index, balances, false)
}

// =============================================================================
// SNOWBALL
// =============================================================================

type Snowball struct {
	Calculator CycleCalculator
	Accounts   []Account

	// Budget is the constant TotalMonthlyBudget of the projection.
	Budget decimal.Decimal
}

func (s *Snowball) Name() string { return "snowball" }

func (s *Snowball) Allocate(month Month, index int, balances []decimal.Decimal) (Allocation, error) {
	alloc, err := minimumPass(s.Calculator, s.Accounts, month, index, balances, true)
	if err != nil {
		return Allocation{}, err
	}
	remaining := s.Budget.Sub(alloc.Paid())
	cascade(alloc, remaining)
	return alloc, nil
}

// cascade is the greedy overflow pass. It mutates alloc in place.
func cascade(alloc Allocation, remaining decimal.Decimal) {
	for i, balance := range alloc.Balances {
		if !balance.IsPositive() {
			continue
		}
		entry := alloc.Entries[i]

		if balance.GreaterThan(remaining) {
			entry.addPayment(remaining)
			alloc.Balances[i] = entry.Balance
			return
		}

		// Retire the account and keep cascading what is left.
		entry.addPayment(balance)
		alloc.Balances[i] = decimal.Zero
		if balance.Equal(remaining) {
			return
		}
		remaining = remaining.Sub(balance)
	}
}

// =============================================================================
// MINIMUM PASS - shared by both strategies
// =============================================================================

// minimumPass pays every active account its cycle payment. absorbInterest
// selects the snowball payoff rule (payment = balance + interest) over the
// minimum-only one (payment = balance).
func minimumPass(
	calc CycleCalculator,
	accounts []Account,
	month Month,
	index int,
	balances []decimal.Decimal,
	absorbInterest bool,
) (Allocation, error) {
	alloc := Allocation{
		Balances: make([]decimal.Decimal, len(balances)),
		Entries:  make([]*MonthlyEntry, len(balances)),
	}
	copy(alloc.Balances, balances)

	for i, account := range accounts {
		balance := balances[i]
		if !balance.IsPositive() {
			continue
		}
		if err := calc.Check(account, balance, index, month); err != nil {
			return Allocation{}, err
		}

		interest := calc.MonthlyInterest(balance, account.APR)
		payment := calc.CyclePayment(account)
		next := decimal.Zero

		if balance.GreaterThan(payment.Sub(interest)) {
			next = balance.Sub(payment).Add(interest)
		} else {
			payment = balance
			if absorbInterest {
				payment = balance.Add(interest)
			}
		}

		alloc.Balances[i] = next
		alloc.Entries[i] = &MonthlyEntry{
			Index:     index,
			Month:     month,
			Payment:   payment,
			Interest:  interest,
			Principal: payment.Sub(interest),
			Balance:   next,
		}
	}
	return alloc, nil
}
