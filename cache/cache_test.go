package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/finance"
)

func sampleInput() finance.ProjectionInput {
	return finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("Visa", 1200, 0.1999, 35),
			finance.NewAccount("Store", 300, 0.25, 25),
		},
		Snowballing:        true,
		ExtraMonthlyAmount: finance.MustParseDecimal("100"),
		SortOrder:          finance.SortBalanceAscending,
	}
}

func TestKey_NormalizesAmounts(t *testing.T) {
	start := finance.NewMonth(2025, time.January)
	a := sampleInput()
	b := sampleInput()
	b.ExtraMonthlyAmount = finance.MustParseDecimal("100.00")

	assert.Equal(t, Key(a, start), Key(b, start))
	assert.Regexp(t, `^projection:[0-9a-f]+$`, Key(a, start))
}

func TestKey_SensitiveToEveryField(t *testing.T) {
	start := finance.NewMonth(2025, time.January)
	base := Key(sampleInput(), start)

	mutations := map[string]func(*finance.ProjectionInput){
		"extra":    func(in *finance.ProjectionInput) { in.ExtraMonthlyAmount = finance.MustParseDecimal("101") },
		"snowball": func(in *finance.ProjectionInput) { in.Snowballing = false },
		"order":    func(in *finance.ProjectionInput) { in.SortOrder = finance.SortAPRDescending },
		"balance":  func(in *finance.ProjectionInput) { in.Accounts[0].Balance = finance.MustParseDecimal("1201") },
		"swap": func(in *finance.ProjectionInput) {
			in.Accounts[0], in.Accounts[1] = in.Accounts[1], in.Accounts[0]
		},
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := sampleInput()
			mutate(&in)
			assert.NotEqual(t, base, Key(in, start))
		})
	}

	assert.NotEqual(t, base, Key(sampleInput(), finance.NewMonth(2025, time.February)))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, m.Len())
}

func TestMemory_NoTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = m.Get(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c ProjectionCache = Noop{}
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
