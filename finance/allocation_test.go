package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/finance"
)

func balances(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = dec(v)
	}
	return out
}

func TestMinimumOnly_SkipsInactiveAccounts(t *testing.T) {
	strategy := &finance.MinimumOnly{
		Calculator: finance.NewCycleCalculator(finance.DefaultRounding()),
		Accounts: []finance.Account{
			finance.NewAccount("done", 100, 0.2, 10),
			finance.NewAccount("open", 100, 0, 10),
		},
	}

	in := balances("0", "100")
	alloc, err := strategy.Allocate(jan2025(), 4, in)
	require.NoError(t, err)

	assert.Nil(t, alloc.Entries[0])
	require.NotNil(t, alloc.Entries[1])
	assert.Equal(t, 4, alloc.Entries[1].Index)
	assertDecimal(t, "90", alloc.Balances[1])
	assertDecimal(t, "10", alloc.Paid())
	assertDecimal(t, "100", in[1])
	assert.Equal(t, "minimum", strategy.Name())
}

func TestSnowball_OverflowStopsAtFirstAccountItCannotRetire(t *testing.T) {
	// GIVEN: Budget 100, three accounts, no interest
	// WHEN: Pass 1 pays 30 and pass 2 has 70 to hand out
	// THEN: The first account absorbs all 70; the later ones get minimums only

	strategy := &finance.Snowball{
		Calculator: finance.NewCycleCalculator(finance.DefaultRounding()),
		Accounts: []finance.Account{
			finance.NewAccount("first", 500, 0, 10),
			finance.NewAccount("second", 20, 0, 10),
			finance.NewAccount("third", 20, 0, 10),
		},
		Budget: dec("100"),
	}

	alloc, err := strategy.Allocate(jan2025(), 0, balances("500", "20", "20"))
	require.NoError(t, err)

	assertDecimal(t, "80", alloc.Entries[0].Payment)
	assertDecimal(t, "80", alloc.Entries[0].Principal)
	assertDecimal(t, "420", alloc.Balances[0])
	assertDecimal(t, "420", alloc.Entries[0].Balance)
	assertDecimal(t, "10", alloc.Entries[1].Payment)
	assertDecimal(t, "10", alloc.Entries[2].Payment)
	assertDecimal(t, "100", alloc.Paid())
}

func TestSnowball_RemainderSmallerThanEverything(t *testing.T) {
	// Pass 2 only ever touches accounts still carrying a balance.
	strategy := &finance.Snowball{
		Calculator: finance.NewCycleCalculator(finance.DefaultRounding()),
		Accounts: []finance.Account{
			finance.NewAccount("gone", 15, 0.12, 30),
			finance.NewAccount("open", 1000, 0.12, 30),
		},
		Budget: dec("65"),
	}

	alloc, err := strategy.Allocate(jan2025(), 0, balances("15", "1000"))
	require.NoError(t, err)

	// gone: payoff in pass 1 with interest absorbed (15 + 0.15)
	assertDecimal(t, "15.15", alloc.Entries[0].Payment)
	assert.True(t, alloc.Balances[0].IsZero())
	// open: 30 minimum + (65 - 45.15) overflow
	assertDecimal(t, "49.85", alloc.Entries[1].Payment)
	assertDecimal(t, "10", alloc.Entries[1].Interest)
	assertDecimal(t, "960.15", alloc.Balances[1])
	assertDecimal(t, "65", alloc.Paid())
	assert.Equal(t, "snowball", strategy.Name())
}

func TestSnowball_PropagatesNonAmortizing(t *testing.T) {
	strategy := &finance.Snowball{
		Calculator: finance.NewCycleCalculator(finance.DefaultRounding()),
		Accounts:   []finance.Account{finance.NewAccount("stuck", 10000, 0.3, 100)},
		Budget:     dec("1000"),
	}
	_, err := strategy.Allocate(jan2025(), 7, balances("10000"))
	var nonAmortizing *finance.NonAmortizingPaymentError
	require.ErrorAs(t, err, &nonAmortizing)
	assert.Equal(t, 7, nonAmortizing.MonthIndex)
}
