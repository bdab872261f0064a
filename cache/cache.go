/*
Package cache stores rendered projection previews.

PURPOSE:
  Projections are deterministic: the same normalized input and start month
  always produce the same schedule. Preview responses are cached under a
  fingerprint of that input so repeated what-if requests skip the engine.

IMPLEMENTATIONS:
  - RedisCache: shared cache for multiple server instances
  - Memory: single-process cache with TTL (tests, dev)
  - Noop: used when no cache is configured

SEE ALSO:
  - api/handlers.go: PreviewProjection
*/
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/warp/debt-engine/finance"
)

// ProjectionCache stores opaque rendered projections.
type ProjectionCache interface {
	// Get returns (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key fingerprints a projection input. start is the resolved first month,
// so inputs relying on the default start date still key correctly.
// Amounts are normalized: "100" and "100.00" hash the same.
func Key(input finance.ProjectionInput, start finance.Month) string {
	d := xxhash.New()
	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.WriteString("\x1f")
	}

	write(start.String())
	write(strconv.FormatBool(input.Snowballing))
	write(input.ExtraMonthlyAmount.String())
	write(string(input.SortOrder))
	for _, a := range input.Accounts {
		write(a.Name)
		write(a.Balance.String())
		write(a.APR.String())
		write(a.MinimumPayment.String())
	}
	return "projection:" + strconv.FormatUint(d.Sum64(), 16)
}

// =============================================================================
// MEMORY CACHE
// =============================================================================

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process ProjectionCache.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem

	// Now is the clock used for expiry.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem), Now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !item.expiresAt.IsZero() && !m.Now().Before(item.expiresAt) {
		delete(m.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), item.value...), true, nil
}

// Set stores value; ttl <= 0 never expires.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = m.Now().Add(ttl)
	}
	m.items[key] = item
	return nil
}

// Len returns the number of stored items, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// =============================================================================
// NOOP CACHE
// =============================================================================

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
