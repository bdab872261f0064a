// Package store provides RunStore implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/debt-engine/finance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	runs    map[string]finance.Run
	entries map[string][]finance.RunEntry
}

func NewMemory() *Memory {
	return &Memory{
		runs:    make(map[string]finance.Run),
		entries: make(map[string][]finance.RunEntry),
	}
}

// Save adds a run. Append-only: an existing ID is rejected.
func (m *Memory) Save(_ context.Context, run finance.Run, entries []finance.RunEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("run %s: %w", run.ID, finance.ErrDuplicateRun)
	}
	m.runs[run.ID] = run
	m.entries[run.ID] = append([]finance.RunEntry{}, entries...)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (finance.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return finance.Run{}, finance.ErrRunNotFound
	}
	return run, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]finance.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]finance.Run, 0, len(m.runs))
	for _, r := range m.runs {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *Memory) Entries(_ context.Context, id string) ([]finance.RunEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.runs[id]; !ok {
		return nil, finance.ErrRunNotFound
	}
	result := make([]finance.RunEntry, len(m.entries[id]))
	copy(result, m.entries[id])
	return result, nil
}
