package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/finance"
	"github.com/warp/debt-engine/finance/store"
)

func projectRun(t *testing.T, id string, createdAt time.Time) (finance.Run, []finance.RunEntry) {
	t.Helper()
	input := finance.ProjectionInput{
		Accounts: []finance.Account{
			finance.NewAccount("Visa", 300, 0.2, 100),
			finance.NewAccount("Store", 150, 0.25, 50),
		},
		StartDate:          finance.NewMonth(2025, time.March),
		Snowballing:        true,
		ExtraMonthlyAmount: finance.MustParseDecimal("25"),
	}
	p, err := finance.NewProjectionEngine().Project(input)
	require.NoError(t, err)
	return finance.NewRun(id, "test "+id, input, p, createdAt), finance.Flatten(p)
}

func TestMemory_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	run, entries := projectRun(t, "r1", time.Now())

	require.NoError(t, s.Save(ctx, run, entries))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, run.Summary.NumberOfMonths, got.Summary.NumberOfMonths)
	assert.Equal(t, "test r1", got.Name)

	gotEntries, err := s.Entries(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, gotEntries, len(entries))
}

func TestMemory_AppendOnly(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	run, entries := projectRun(t, "r1", time.Now())

	require.NoError(t, s.Save(ctx, run, entries))
	assert.ErrorIs(t, s.Save(ctx, run, entries), finance.ErrDuplicateRun)
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, finance.ErrRunNotFound)

	_, err = s.Entries(ctx, "missing")
	assert.True(t, finance.IsNotFound(err))
}

func TestMemory_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run, entries := projectRun(t, id, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, s.Save(ctx, run, entries))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemory_EntriesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	run, entries := projectRun(t, "r1", time.Now())
	require.NoError(t, s.Save(ctx, run, entries))

	got, err := s.Entries(ctx, "r1")
	require.NoError(t, err)
	got[0].Account = "mutated"

	again, err := s.Entries(ctx, "r1")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].Account)
}
