package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/finance"
)

func TestTotals_SumsAcrossAccounts(t *testing.T) {
	p, err := newEngine().Project(scenarioBInput(finance.SortBalanceAscending))
	require.NoError(t, err)

	totals := p.Totals()
	assert.Equal(t, finance.TotalsName, totals.Account.Name)
	assertDecimal(t, "5200", totals.Account.Balance)
	require.Equal(t, p.NumberOfMonths(), totals.Len())

	first, _ := totals.Entry(0)
	assertDecimal(t, "210", first.Payment)
	assertDecimal(t, "66.17", first.Interest)
	assertDecimal(t, "5056.17", first.Balance)

	assert.True(t, totals.TotalPaid().Equal(p.TotalPaid()))
	assert.True(t, totals.TotalInterest().Equal(p.TotalInterest()))
	assert.True(t, totals.PaidOff())
	assertLedgerInvariants(t, &finance.Projection{Ledgers: []*finance.AccountLedger{totals}})
}

func TestSummarize(t *testing.T) {
	p, err := newEngine().Project(scenarioBInput(finance.SortBalanceAscending))
	require.NoError(t, err)

	s := finance.Summarize(p)
	assert.Equal(t, "snowball", s.Strategy)
	assert.Equal(t, finance.SortBalanceAscending, s.SortOrder)
	assert.Equal(t, 30, s.NumberOfMonths)
	assert.Equal(t, finance.NewMonth(2027, time.June), s.PayoffDate)
	assertDecimal(t, "1063.54", s.TotalInterest)
	assertDecimal(t, "6263.54", s.TotalPaid)
	assertDecimal(t, "210", s.TotalMonthlyBudget)

	require.Len(t, s.Accounts, 2)
	assert.Equal(t, "A", s.Accounts[0].Name)
	assert.Equal(t, 2, s.Accounts[0].Months)
	assert.Equal(t, finance.NewMonth(2025, time.February), s.Accounts[0].PayoffMonth)
}

func TestFlatten_MonthMajorOrder(t *testing.T) {
	p, err := newEngine().Project(scenarioBInput(finance.SortBalanceAscending))
	require.NoError(t, err)

	rows := finance.Flatten(p)
	// A has 2 entries, B has 30
	require.Len(t, rows, 32)
	assert.Equal(t, "A", rows[0].Account)
	assert.Equal(t, "B", rows[1].Account)
	assert.Equal(t, 0, rows[1].Index)
	assert.Equal(t, "A", rows[2].Account)
	assert.Equal(t, 1, rows[2].Index)
	assert.Equal(t, "B", rows[4].Account)
	assert.Equal(t, 2, rows[4].Index)
}

func TestCompare_RanksOrdersByInterest(t *testing.T) {
	input := scenarioBInput(finance.SortUnsorted)

	results, err := finance.Compare(newEngine(), input, []finance.SortOrder{
		finance.SortBalanceAscending,
		finance.SortAPRAscending,
	})
	require.NoError(t, err)
	require.Len(t, results, 3, "unsorted baseline is added")

	assert.Equal(t, finance.SortBalanceAscending, results[0].SortOrder)
	assertDecimal(t, "1063.54", results[0].TotalInterest)
	assertDecimal(t, "4.55", results[0].InterestSaved)

	for _, r := range results[1:] {
		assertDecimal(t, "1068.09", r.TotalInterest)
		assertDecimal(t, "0", r.InterestSaved)
	}
}

func TestCompare_PropagatesErrors(t *testing.T) {
	_, err := finance.Compare(newEngine(), finance.ProjectionInput{}, nil)
	assert.ErrorIs(t, err, finance.ErrInvalidInput)
}

func TestMonth_Parsing(t *testing.T) {
	m, err := finance.ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, finance.NewMonth(2025, time.March), m)

	m, err = finance.ParseMonth("2025-03-19")
	require.NoError(t, err)
	assert.Equal(t, "2025-03", m.String())

	_, err = finance.ParseMonth("March")
	assert.Error(t, err)

	assert.Equal(t, 14, finance.MonthsBetween(finance.NewMonth(2025, time.November), finance.NewMonth(2027, time.January)))
	assert.Equal(t, finance.NewMonth(2026, time.February), finance.NewMonth(2025, time.December).AddMonths(2))
}
