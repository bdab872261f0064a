/*
Package sqlite provides a SQLite-backed finance.RunStore.

PURPOSE:
  Persists finished projections (runs) and their flattened month-by-month
  schedules. The engine never reads from here; the API and CLI do.

APPEND-ONLY ENFORCEMENT:
  - Save() inserts a run and all its entries in one transaction
  - No UPDATE or DELETE statements exist outside Reset()
  - A duplicate run ID returns finance.ErrDuplicateRun

KEY TABLES:
  runs:        one row per run; input and summary kept as JSON, headline
               numbers duplicated into columns for listing
  run_entries: one row per (run, month index, account)

MONEY:
  Decimals are stored as TEXT and parsed back with shopspring/decimal.
  SQLite REAL would round them.

WAL MODE:
  Opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/snowball.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - finance/run.go: RunStore interface
  - finance/store/memory.go: In-memory implementation for testing
  - store/postgres/postgres.go: PostgreSQL implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/debt-engine/finance"
)

// timeLayout has a fixed width so TEXT ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements finance.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ finance.RunStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		strategy TEXT NOT NULL,
		sort_order TEXT NOT NULL,
		start_month TEXT NOT NULL,
		payoff_month TEXT,
		number_of_months INTEGER NOT NULL,
		total_interest TEXT NOT NULL,
		total_paid TEXT NOT NULL,
		input_json TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC, id DESC);

	CREATE TABLE IF NOT EXISTS run_entries (
		run_id TEXT NOT NULL REFERENCES runs(id),
		month_index INTEGER NOT NULL,
		position INTEGER NOT NULL,
		account TEXT NOT NULL,
		month TEXT NOT NULL,
		payment TEXT NOT NULL,
		interest TEXT NOT NULL,
		principal TEXT NOT NULL,
		balance TEXT NOT NULL,
		PRIMARY KEY (run_id, month_index, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE (finance.RunStore interface)
// =============================================================================

// Save inserts a run and its entries atomically.
func (s *Store) Save(ctx context.Context, run finance.Run, entries []finance.RunEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputJSON, err := json.Marshal(run.Input)
	if err != nil {
		return fmt.Errorf("failed to encode run input: %w", err)
	}
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO runs
		(id, name, strategy, sort_order, start_month, payoff_month, number_of_months,
		 total_interest, total_paid, input_json, summary_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Name,
		run.Summary.Strategy,
		string(run.Summary.SortOrder),
		run.Summary.StartDate.String(),
		nullString(monthString(run.Summary.PayoffDate)),
		run.Summary.NumberOfMonths,
		run.Summary.TotalInterest.String(),
		run.Summary.TotalPaid.String(),
		string(inputJSON),
		string(summaryJSON),
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("run %s: %w", run.ID, finance.ErrDuplicateRun)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO run_entries
		(run_id, month_index, position, account, month, payment, interest, principal, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	position, lastIndex := 0, -1
	for _, e := range entries {
		if e.Index != lastIndex {
			position, lastIndex = 0, e.Index
		}
		_, err := stmt.ExecContext(ctx,
			run.ID,
			e.Index,
			position,
			e.Account,
			e.Month.String(),
			e.Payment.String(),
			e.Interest.String(),
			e.Principal.String(),
			e.Balance.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		position++
	}

	return sqlTx.Commit()
}

// Get returns a run by ID.
func (s *Store) Get(ctx context.Context, id string) (finance.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, input_json, summary_json, created_at
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return finance.Run{}, finance.ErrRunNotFound
	}
	return run, err
}

// List returns runs, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]finance.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, input_json, summary_json, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return nil, finance.ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account, month_index, month, payment, interest, principal, balance
		FROM run_entries
		WHERE run_id = ?
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
			month                                 string
			payment, interest, principal, balance string
		)
		if err := rows.Scan(&e.Account, &e.Index, &month, &payment, &interest, &principal, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.Month, err = finance.ParseMonth(month); err != nil {
			return nil, fmt.Errorf("entry month %q: %w", month, err)
		}
		if e.Payment, err = decimal.NewFromString(payment); err != nil {
			return nil, fmt.Errorf("entry payment %q: %w", payment, err)
		}
		if e.Interest, err = decimal.NewFromString(interest); err != nil {
			return nil, fmt.Errorf("entry interest %q: %w", interest, err)
		}
		if e.Principal, err = decimal.NewFromString(principal); err != nil {
			return nil, fmt.Errorf("entry principal %q: %w", principal, err)
		}
		if e.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("entry balance %q: %w", balance, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// Reset clears all data. Dev and demo only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM run_entries;
		DELETE FROM runs;
	`)
	return err
}

// Helper functions

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (finance.Run, error) {
	var (
		run                    finance.Run
		inputJSON, summaryJSON string
		createdAt              string
	)
	if err := row.Scan(&run.ID, &run.Name, &inputJSON, &summaryJSON, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(inputJSON), &run.Input); err != nil {
		return run, fmt.Errorf("failed to decode run input: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return run, fmt.Errorf("failed to decode run summary: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return run, fmt.Errorf("failed to parse created_at: %w", err)
	}
	run.CreatedAt = t
	return run, nil
}

func monthString(m finance.Month) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}
