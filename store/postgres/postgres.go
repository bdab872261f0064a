/*
Package postgres provides a PostgreSQL-backed finance.RunStore (pgx).

Same contract and table layout as store/sqlite, with NUMERIC money columns
and TIMESTAMPTZ timestamps. Run rows and entry rows are written in one
READ COMMITTED transaction; entries are sent as one batch.

USAGE:
  store, err := postgres.New(ctx, os.Getenv("DATABASE_URL"))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
*/
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/finance"
)

const uniqueViolation = "23505"

// Store implements finance.RunStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ finance.RunStore = (*Store)(nil)

// New connects, pings and migrates.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres is not responding: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		strategy TEXT NOT NULL,
		sort_order TEXT NOT NULL,
		start_month TEXT NOT NULL,
		payoff_month TEXT,
		number_of_months INTEGER NOT NULL,
		total_interest NUMERIC NOT NULL,
		total_paid NUMERIC NOT NULL,
		input_json JSONB NOT NULL,
		summary_json JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC, id DESC);

	CREATE TABLE IF NOT EXISTS run_entries (
		run_id TEXT NOT NULL REFERENCES runs(id),
		month_index INTEGER NOT NULL,
		position INTEGER NOT NULL,
		account TEXT NOT NULL,
		month TEXT NOT NULL,
		payment NUMERIC NOT NULL,
		interest NUMERIC NOT NULL,
		principal NUMERIC NOT NULL,
		balance NUMERIC NOT NULL,
		PRIMARY KEY (run_id, month_index, position)
	);
	`)
	return err
}

// Save inserts a run and its entries atomically.
func (s *Store) Save(ctx context.Context, run finance.Run, entries []finance.RunEntry) error {
	inputJSON, err := json.Marshal(run.Input)
	if err != nil {
		return fmt.Errorf("failed to encode run input: %w", err)
	}
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var payoff *string
	if !run.Summary.PayoffDate.IsZero() {
		m := run.Summary.PayoffDate.String()
		payoff = &m
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO runs
		(id, name, strategy, sort_order, start_month, payoff_month, number_of_months,
		 total_interest, total_paid, input_json, summary_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10, $11, $12)
	`,
		run.ID,
		run.Name,
		run.Summary.Strategy,
		string(run.Summary.SortOrder),
		run.Summary.StartDate.String(),
		payoff,
		run.Summary.NumberOfMonths,
		run.Summary.TotalInterest.String(),
		run.Summary.TotalPaid.String(),
		inputJSON,
		summaryJSON,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("run %s: %w", run.ID, finance.ErrDuplicateRun)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, args := range entryRows(run.ID, entries) {
		batch.Queue(`
			INSERT INTO run_entries
			(run_id, month_index, position, account, month, payment, interest, principal, balance)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9::numeric)
		`, args...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert entries: %w", err)
	}

	return tx.Commit(ctx)
}

// entryRows numbers entries within each month in schedule order.
func entryRows(runID string, entries []finance.RunEntry) [][]any {
	rows := make([][]any, 0, len(entries))
	position, lastIndex := 0, -1
	for _, e := range entries {
		if e.Index != lastIndex {
			position, lastIndex = 0, e.Index
		}
		rows = append(rows, []any{
			runID,
			int32(e.Index),
			int32(position),
			e.Account,
			e.Month.String(),
			e.Payment.String(),
			e.Interest.String(),
			e.Principal.String(),
			e.Balance.String(),
		})
		position++
	}
	return rows
}

// Get returns a run by ID.
func (s *Store) Get(ctx context.Context, id string) (finance.Run, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, input_json, summary_json, created_at
		FROM runs WHERE id = $1
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return finance.Run{}, finance.ErrRunNotFound
	}
	return run, err
}

// List returns runs, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]finance.Run, error) {
	query := `
		SELECT id, name, input_json, summary_json, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []finance.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entries returns the flattened schedule of a run, month by month.
func (s *Store) Entries(ctx context.Context, id string) ([]finance.RunEntry, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM runs WHERE id = $1)", id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if !exists {
		return nil, finance.ErrRunNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT account, month_index, month,
		       payment::text, interest::text, principal::text, balance::text
		FROM run_entries
		WHERE run_id = $1
		ORDER BY month_index ASC, position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []finance.RunEntry{}
	for rows.Next() {
		var (
			e                                     finance.RunEntry
			index                                 int32
			month                                 string
			payment, interest, principal, balance string
		)
		if err := rows.Scan(&e.Account, &index, &month, &payment, &interest, &principal, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Index = int(index)
		if e.Month, err = finance.ParseMonth(month); err != nil {
			return nil, fmt.Errorf("entry month %q: %w", month, err)
		}
		amounts := []*decimal.Decimal{&e.Payment, &e.Interest, &e.Principal, &e.Balance}
		for i, raw := range []string{payment, interest, principal, balance} {
			if *amounts[i], err = decimal.NewFromString(raw); err != nil {
				return nil, fmt.Errorf("entry amount %q: %w", raw, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset clears all data. Dev and demo only.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE run_entries, runs")
	return err
}

func scanRun(row pgx.Row) (finance.Run, error) {
	var (
		run                    finance.Run
		inputJSON, summaryJSON []byte
		createdAt              time.Time
	)
	if err := row.Scan(&run.ID, &run.Name, &inputJSON, &summaryJSON, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal(inputJSON, &run.Input); err != nil {
		return run, fmt.Errorf("failed to decode run input: %w", err)
	}
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return run, fmt.Errorf("failed to decode run summary: %w", err)
	}
	run.CreatedAt = createdAt.UTC()
	return run, nil
}
