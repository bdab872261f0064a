/*
projection_test.go - Behavior of the projection engine

ORGANIZATION:
  1. Worked scenarios (single account, two-account snowball)
  2. Ledger invariants (monotonic balance, exact zero)
  3. Budget conservation while snowballing
  4. Order sensitivity
  5. Errors (validation, non-amortizing, non-convergence)
*/
package finance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/finance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal { return finance.MustParseDecimal(s) }

func jan2025() finance.Month { return finance.NewMonth(2025, time.January) }

func newEngine() *finance.ProjectionEngine {
	e := finance.NewProjectionEngine()
	e.Now = func() time.Time { return time.Date(2025, time.January, 17, 9, 30, 0, 0, time.UTC) }
	return e
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func scenarioBInput(order finance.SortOrder) finance.ProjectionInput {
	return finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("B", 5000, 0.15, 80),
			finance.NewAccount("A", 200, 0.22, 30),
		},
		StartDate:          jan2025(),
		Snowballing:        true,
		ExtraMonthlyAmount: dec("100"),
		SortOrder:          order,
	}
}

func assertLedgerInvariants(t *testing.T, p *finance.Projection) {
	t.Helper()
	for _, l := range p.Ledgers {
		entries := l.Entries()
		previous := l.Account.Balance
		for _, e := range entries {
			assert.False(t, e.Balance.IsNegative(), "%s balance went negative at month %d", l.Account.Name, e.Index)
			assert.True(t, e.Balance.LessThanOrEqual(previous), "%s balance increased at month %d", l.Account.Name, e.Index)
			assert.True(t, e.Principal.Equal(e.Payment.Sub(e.Interest)), "%s principal mismatch at month %d", l.Account.Name, e.Index)
			previous = e.Balance
		}
		if len(entries) > 0 {
			assert.True(t, entries[len(entries)-1].Balance.IsZero(), "%s does not end at zero", l.Account.Name)
		}
	}
}

// =============================================================================
// SCENARIO A - Single account, minimum only
// =============================================================================

func TestProject_SingleAccount_MinimumOnly(t *testing.T) {
	// GIVEN: $1000 at 12% APR (1%/month) with a $50 minimum
	// WHEN: Projecting without snowball
	// THEN: Month 1 is 10 interest / 50 payment / 40 principal / 960 balance,
	//       and the final payment is exactly the remaining balance

	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts:  []finance.Account{finance.NewAccount("Card", 1000, 0.12, 50)},
		StartDate: jan2025(),
	})
	require.NoError(t, err)
	require.Len(t, p.Ledgers, 1)

	ledger := p.Ledgers[0]
	first, ok := ledger.Entry(0)
	require.True(t, ok)
	assertDecimal(t, "10.00", first.Interest)
	assertDecimal(t, "50", first.Payment)
	assertDecimal(t, "40", first.Principal)
	assertDecimal(t, "960", first.Balance)

	second, _ := ledger.Entry(1)
	assertDecimal(t, "9.60", second.Interest)
	assertDecimal(t, "919.60", second.Balance)

	assert.Equal(t, 23, p.NumberOfMonths())
	assert.Equal(t, 23, ledger.Len())
	assertDecimal(t, "121.36", p.TotalInterest())

	penultimate, _ := ledger.Entry(21)
	last, _ := ledger.Last()
	assertDecimal(t, "21.15", penultimate.Balance)
	assert.True(t, last.Payment.Equal(penultimate.Balance), "final payment must clear exactly the remaining balance")
	assert.True(t, last.Payment.LessThanOrEqual(dec("50")))
	assertDecimal(t, "0.21", last.Interest)
	assert.True(t, last.Balance.IsZero())

	assert.Equal(t, jan2025(), p.StartDate)
	assert.Equal(t, finance.NewMonth(2026, time.November), p.EndDate())
	assertDecimal(t, "50", p.TotalMonthlyBudget)
	assertLedgerInvariants(t, p)
}

// =============================================================================
// SCENARIO B - Two accounts, snowball with extra budget
// =============================================================================

func TestProject_Snowball_FreedMinimumMergesIntoNextAccountSameMonth(t *testing.T) {
	// GIVEN: A ($200, min 30) and B ($5000, min 80), extra $100, balance ascending
	// WHEN: Projecting with snowball
	// THEN: A is retired in month 2 and the rest of that month's budget
	//       flows to B in the same month; the budget is $210 throughout

	p, err := newEngine().Project(scenarioBInput(finance.SortBalanceAscending))
	require.NoError(t, err)

	require.Equal(t, "A", p.Ledgers[0].Account.Name, "balance ascending puts A first")
	require.Equal(t, "B", p.Ledgers[1].Account.Name)
	assertDecimal(t, "210", p.TotalMonthlyBudget)
	assertDecimal(t, "110", p.MinimumMonthlyBudget)

	a, _ := p.Ledger("A")
	b, _ := p.Ledger("B")

	// Month 1: all overflow goes to A (first in order)
	a0, _ := a.Entry(0)
	b0, _ := b.Entry(0)
	assertDecimal(t, "130", a0.Payment)
	assertDecimal(t, "3.67", a0.Interest)
	assertDecimal(t, "73.67", a0.Balance)
	assertDecimal(t, "80", b0.Payment)

	// Month 2: A retired by the cascade, remainder continues to B
	require.Equal(t, 2, a.Len(), "A pays off in the second month")
	a1, _ := a.Entry(1)
	b1, _ := b.Entry(1)
	assertDecimal(t, "75.02", a1.Payment)
	assert.True(t, a1.Balance.IsZero())
	assertDecimal(t, "134.98", b1.Payment)
	assertDecimal(t, "210", a1.Payment.Add(b1.Payment))

	// Month 3 onward: B receives the whole budget
	b2, _ := b.Entry(2)
	assertDecimal(t, "210", b2.Payment)

	assert.Equal(t, 30, p.NumberOfMonths())
	assertDecimal(t, "1063.54", p.TotalInterest())
	assertLedgerInvariants(t, p)
}

func TestProject_Snowball_BudgetConservedEveryMonthButLast(t *testing.T) {
	// GIVEN: A snowballing projection
	// WHEN: Summing each month's payments
	// THEN: Every month except the last spends exactly TotalMonthlyBudget,
	//       and the last spends no more than it

	p, err := newEngine().Project(scenarioBInput(finance.SortBalanceAscending))
	require.NoError(t, err)

	totals := p.Totals()
	entries := totals.Entries()
	require.Len(t, entries, p.NumberOfMonths())
	for i, e := range entries {
		if i == len(entries)-1 {
			assert.True(t, e.Payment.LessThanOrEqual(p.TotalMonthlyBudget))
			assertDecimal(t, "173.54", e.Payment)
			continue
		}
		assert.True(t, e.Payment.Equal(p.TotalMonthlyBudget), "month %d spent %s", i, e.Payment)
	}
}

func TestProject_Snowball_CascadeRetiresSeveralAccountsInOneMonth(t *testing.T) {
	// GIVEN: Two tiny interest-free balances ahead of a large one, extra $100
	// WHEN: Projecting with snowball, input order
	// THEN: Both tiny accounts are retired in month 1 and the leftover
	//       reaches the third account in that same month

	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("X", 10, 0, 5),
			finance.NewAccount("Y", 20, 0, 5),
			finance.NewAccount("Z", 1000, 0, 10),
		},
		StartDate:          jan2025(),
		Snowballing:        true,
		ExtraMonthlyAmount: dec("100"),
	})
	require.NoError(t, err)

	x, _ := p.Ledger("X")
	y, _ := p.Ledger("Y")
	z, _ := p.Ledger("Z")
	require.Equal(t, 1, x.Len())
	require.Equal(t, 1, y.Len())

	x0, _ := x.Entry(0)
	y0, _ := y.Entry(0)
	z0, _ := z.Entry(0)
	assertDecimal(t, "10", x0.Payment)
	assertDecimal(t, "20", y0.Payment)
	assertDecimal(t, "90", z0.Payment)
	assertDecimal(t, "910", z0.Balance)
	assertLedgerInvariants(t, p)
}

func TestProject_Snowball_CascadeStopsWhenBudgetExactlyConsumed(t *testing.T) {
	// GIVEN: Remaining budget after pass 1 equals the first account's balance
	// WHEN: The cascade retires that account
	// THEN: It stops there; the next account only gets its minimum

	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("X", 10, 0, 5),
			finance.NewAccount("Z", 1000, 0, 10),
		},
		StartDate:          jan2025(),
		Snowballing:        true,
		ExtraMonthlyAmount: dec("5"),
	})
	require.NoError(t, err)

	x, _ := p.Ledger("X")
	z, _ := p.Ledger("Z")
	x0, _ := x.Entry(0)
	z0, _ := z.Entry(0)
	assertDecimal(t, "10", x0.Payment)
	assert.True(t, x0.Balance.IsZero())
	assertDecimal(t, "10", z0.Payment)
	assertDecimal(t, "990", z0.Balance)
}

func TestProject_SnowballWithoutExtra_StillRedirectsFreedMinimums(t *testing.T) {
	// GIVEN: Snowball with zero extra
	// THEN: Once the first account is gone its minimum keeps flowing

	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("Small", 60, 0, 30),
			finance.NewAccount("Big", 300, 0, 30),
		},
		StartDate:   jan2025(),
		Snowballing: true,
	})
	require.NoError(t, err)

	big, _ := p.Ledger("Big")
	third, ok := big.Entry(2)
	require.True(t, ok)
	assertDecimal(t, "60", third.Payment)
	assertDecimal(t, "60", p.TotalMonthlyBudget)
}

// =============================================================================
// MINIMUM-ONLY PAYOFF RULE
// =============================================================================

func TestProject_MinimumOnly_PayoffPaymentCappedAtBalance(t *testing.T) {
	// GIVEN: Balance below the minimum payment
	// WHEN: Projecting minimum-only
	// THEN: One entry, payment == opening balance, interest recorded, balance 0

	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts:  []finance.Account{finance.NewAccount("Store card", 25, 0.24, 40)},
		StartDate: jan2025(),
	})
	require.NoError(t, err)

	e, ok := p.Ledgers[0].Last()
	require.True(t, ok)
	assert.Equal(t, 1, p.NumberOfMonths())
	assertDecimal(t, "25", e.Payment)
	assertDecimal(t, "0.50", e.Interest)
	assertDecimal(t, "24.50", e.Principal)
	assert.True(t, e.Balance.IsZero())
}

func TestProject_Snowball_PayoffPaymentAbsorbsInterest(t *testing.T) {
	// GIVEN: The same account, snowballing
	// THEN: Pass 1 pays balance + interest

	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts:    []finance.Account{finance.NewAccount("Store card", 25, 0.24, 40)},
		StartDate:   jan2025(),
		Snowballing: true,
	})
	require.NoError(t, err)

	e, _ := p.Ledgers[0].Last()
	assertDecimal(t, "25.50", e.Payment)
	assertDecimal(t, "25", e.Principal)
}

func TestProject_ZeroBalanceAccount_HasNoEntries(t *testing.T) {
	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("Paid", 0, 0.2, 25),
			finance.NewAccount("Owed", 100, 0, 25),
		},
		StartDate: jan2025(),
	})
	require.NoError(t, err)

	paid, _ := p.Ledger("Paid")
	assert.Equal(t, 0, paid.Len())
	_, ok := p.PayoffMonth("Paid")
	assert.False(t, ok)

	month, ok := p.PayoffMonth("Owed")
	require.True(t, ok)
	assert.Equal(t, finance.NewMonth(2025, time.April), month)
}

func TestProject_NothingOwed_ZeroMonths(t *testing.T) {
	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts:  []finance.Account{finance.NewAccount("Paid", 0, 0.2, 25)},
		StartDate: jan2025(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, p.NumberOfMonths())
	assert.True(t, p.EndDate().IsZero())
}

func TestProject_DefaultStartDate_IsCurrentMonthStart(t *testing.T) {
	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts: []finance.Account{finance.NewAccount("Card", 100, 0, 50)},
	})
	require.NoError(t, err)
	assert.Equal(t, jan2025(), p.StartDate)
	assert.Equal(t, []finance.Month{jan2025(), finance.NewMonth(2025, time.February)}, p.Months)
}

// =============================================================================
// ORDER SENSITIVITY
// =============================================================================

func TestProject_OrderChangesTotalInterest(t *testing.T) {
	// GIVEN: Identical accounts and extra budget
	// WHEN: Projecting unsorted (B first) vs balance ascending (A first)
	// THEN: Total interest differs; prioritizing the higher-rate A is cheaper

	engine := newEngine()
	unsorted, err := engine.Project(scenarioBInput(finance.SortUnsorted))
	require.NoError(t, err)
	byBalance, err := engine.Project(scenarioBInput(finance.SortBalanceAscending))
	require.NoError(t, err)
	byAPRDesc, err := engine.Project(scenarioBInput(finance.SortAPRDescending))
	require.NoError(t, err)

	assertDecimal(t, "1068.09", unsorted.TotalInterest())
	assertDecimal(t, "1063.54", byBalance.TotalInterest())
	assert.True(t, byAPRDesc.TotalInterest().Equal(byBalance.TotalInterest()))
	assert.True(t, byBalance.TotalInterest().LessThan(unsorted.TotalInterest()))
	assertLedgerInvariants(t, unsorted)
}

func TestProject_LedgersFollowSequencerOrder(t *testing.T) {
	p, err := newEngine().Project(scenarioBInput(finance.SortUnsorted))
	require.NoError(t, err)
	assert.Equal(t, "B", p.Ledgers[0].Account.Name)
	assert.Equal(t, "A", p.Ledgers[1].Account.Name)
	assert.Equal(t, finance.SortUnsorted, p.SortOrder)
}

// =============================================================================
// ERRORS
// =============================================================================

func TestProject_NonAmortizing_RejectedBeforeFirstMonth(t *testing.T) {
	// GIVEN: $1000 at 24% APR (20 interest) with a $20 minimum
	// WHEN: Projecting
	// THEN: NonAmortizingPaymentError for month 0, and no projection

	p, err := newEngine().Project(finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("Fine", 100, 0.1, 50),
			finance.NewAccount("Stuck", 1000, 0.24, 20),
		},
		StartDate:          jan2025(),
		Snowballing:        true,
		ExtraMonthlyAmount: dec("500"),
	})
	require.Error(t, err)
	assert.Nil(t, p, "no partial projection on error")

	var nonAmortizing *finance.NonAmortizingPaymentError
	require.ErrorAs(t, err, &nonAmortizing)
	assert.Equal(t, "Stuck", nonAmortizing.Account)
	assert.Equal(t, 0, nonAmortizing.MonthIndex)
	assert.Equal(t, jan2025(), nonAmortizing.Month)
	assertDecimal(t, "20", nonAmortizing.Interest)
	assertDecimal(t, "20", nonAmortizing.Payment)
	assert.True(t, errors.Is(err, finance.ErrNonAmortizing))
	assert.True(t, finance.IsClientError(err))
}

func TestProject_ValidationErrors(t *testing.T) {
	valid := finance.NewAccount("Card", 100, 0.1, 10)

	tests := []struct {
		name  string
		input finance.ProjectionInput
		field string
	}{
		{"empty portfolio", finance.ProjectionInput{}, "accounts"},
		{"zero minimum", finance.ProjectionInput{Accounts: []finance.Account{finance.NewAccount("Card", 100, 0.1, 0)}}, "minimum_payment"},
		{"negative minimum", finance.ProjectionInput{Accounts: []finance.Account{finance.NewAccount("Card", 100, 0.1, -5)}}, "minimum_payment"},
		{"negative balance", finance.ProjectionInput{Accounts: []finance.Account{finance.NewAccount("Card", -1, 0.1, 5)}}, "balance"},
		{"negative apr", finance.ProjectionInput{Accounts: []finance.Account{finance.NewAccount("Card", 100, -0.1, 5)}}, "apr"},
		{"negative extra", finance.ProjectionInput{Accounts: []finance.Account{valid}, ExtraMonthlyAmount: dec("-1")}, "extra_monthly_amount"},
		{"unknown order", finance.ProjectionInput{Accounts: []finance.Account{valid}, SortOrder: "alphabetical"}, "sort_order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newEngine().Project(tt.input)
			assert.Nil(t, p)
			var validation *finance.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.ErrorIs(t, err, finance.ErrInvalidInput)
		})
	}
}

func TestProject_MonthCeiling_DidNotConverge(t *testing.T) {
	// GIVEN: A 23-month payoff and a 5-month ceiling
	// THEN: ProjectionDidNotConvergeError with the remaining balance

	engine := newEngine()
	engine.MaxMonths = 5

	p, err := engine.Project(finance.ProjectionInput{
		Accounts:  []finance.Account{finance.NewAccount("Card", 1000, 0.12, 50)},
		StartDate: jan2025(),
	})
	assert.Nil(t, p)
	var notConverged *finance.ProjectionDidNotConvergeError
	require.ErrorAs(t, err, &notConverged)
	assert.Equal(t, 5, notConverged.MaxMonths)
	assert.True(t, notConverged.RemainingBalance.IsPositive())
	assert.ErrorIs(t, err, finance.ErrDidNotConverge)
	assert.False(t, finance.IsClientError(err))
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	input := scenarioBInput(finance.SortBalanceAscending)
	_, err := newEngine().Project(input)
	require.NoError(t, err)
	assert.Equal(t, "B", input.Accounts[0].Name, "sequencing must not reorder the caller's slice")
	assertDecimal(t, "5000", input.Accounts[0].Balance)
}
