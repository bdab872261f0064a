/*
run.go - Persistence interface for finished projections

PURPOSE:
  The engine itself is stateless. Callers that want to keep a result (the API
  server, the CLI with --save) wrap it in a Run and hand it to a RunStore.
  Nothing in a RunStore is ever read back into a running projection.

APPEND-ONLY CONTRACT:
  - Save(): writes a run and its flattened entries atomically
  - NO Update() or Delete() methods exist; a new what-if is a new run

IMPLEMENTATIONS:
  - finance/store/memory.go: In-memory for tests and dev
  - store/sqlite/sqlite.go: SQLite
  - store/postgres/postgres.go: PostgreSQL (pgx)

SEE ALSO:
  - summary.go: Summary and RunEntry types
*/
package finance

import (
	"context"
	"time"
)

// Run is a finished projection as persisted by callers.
type Run struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Input     ProjectionInput `json:"input"`
	Summary   Summary         `json:"summary"`
}

// NewRun captures a projection and the input that produced it.
// The input's StartDate is pinned to the projection's actual start month so
// the run can be replayed deterministically.
func NewRun(id, name string, input ProjectionInput, p *Projection, createdAt time.Time) Run {
	input.StartDate = p.StartDate
	input.SortOrder = p.SortOrder
	return Run{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt.UTC(),
		Input:     input,
		Summary:   Summarize(p),
	}
}

// RunStore persists finished runs. Append-only.
type RunStore interface {
	// Save persists a run and its entries atomically.
	Save(ctx context.Context, run Run, entries []RunEntry) error

	// Get returns a run or ErrRunNotFound.
	Get(ctx context.Context, id string) (Run, error)

	// List returns runs, newest first.
	List(ctx context.Context, limit int) ([]Run, error)

	// Entries returns the flattened schedule of a run, month by month.
	Entries(ctx context.Context, id string) ([]RunEntry, error)
}
