/*
Package sqlite provides a SQLite-backed implementation of recon.RunStore.

PURPOSE:
  Persists reconciliation run history. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The store enforces append-only semantics:
  - No UPDATE statements on runs or run_results
  - No DELETE statements on runs or run_results
  A bad run is superseded by a new run, never edited.

KEY TABLES:
  runs:        One row per reconciliation invocation, with its summary
  run_results: One row per counterparty per run, ordered by position

AMOUNT STORAGE:
  Decimal amounts are stored as TEXT (decimal.Decimal.String()) and parsed
  back on load. Never store money in REAL columns.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block each other.

USAGE:
  st, err := sqlite.New("./data/recon.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

SEE ALSO:
  - recon/store.go: Interface definition
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/recon-engine/recon"
)

// Store implements recon.RunStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
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
	-- Runs (append-only history of reconciliation invocations)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		lending_file TEXT NOT NULL,
		settlement_file TEXT NOT NULL,
		lending_rows INTEGER NOT NULL,
		settlement_rows INTEGER NOT NULL,
		amount_policy TEXT NOT NULL,
		balanced_count INTEGER NOT NULL,
		overpaid_count INTEGER NOT NULL,
		underpaid_count INTEGER NOT NULL,
		total_lent TEXT NOT NULL,
		total_paid TEXT NOT NULL,
		net_balance TEXT NOT NULL
	);

	-- Per-counterparty results, ordered within a run by position
	CREATE TABLE IF NOT EXISTS run_results (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		counterparty_id TEXT NOT NULL,
		total_lent TEXT NOT NULL,
		total_paid TEXT NOT NULL,
		net_balance TEXT NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_run_results_run ON run_results(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE IMPLEMENTATION
// =============================================================================

// Save persists a run and its full result set atomically.
func (s *Store) Save(ctx context.Context, run recon.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, lending_file, settlement_file,
			lending_rows, settlement_rows, amount_policy,
			balanced_count, overpaid_count, underpaid_count,
			total_lent, total_paid, net_balance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.LendingFile,
		run.SettlementFile,
		run.LendingRows,
		run.SettlementRows,
		run.AmountPolicy,
		run.Summary.Balanced,
		run.Summary.Overpaid,
		run.Summary.Underpaid,
		run.Summary.TotalLent.String(),
		run.Summary.TotalPaid.String(),
		run.Summary.NetBalance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_results (
			run_id, position, counterparty_id,
			total_lent, total_paid, net_balance, status
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range run.Results {
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, r.CounterpartyID,
			r.TotalLent.String(), r.TotalPaid.String(),
			r.NetBalance.String(), string(r.Status),
		); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Get returns one run with its full result set.
func (s *Store) Get(ctx context.Context, id string) (recon.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, lending_file, settlement_file,
		       lending_rows, settlement_rows, amount_policy,
		       balanced_count, overpaid_count, underpaid_count,
		       total_lent, total_paid, net_balance
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return recon.Run{}, recon.ErrRunNotFound
	}
	if err != nil {
		return recon.Run{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT counterparty_id, total_lent, total_paid, net_balance, status
		FROM run_results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return recon.Run{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var r recon.Result
		var lent, paid, net, status string
		if err := rows.Scan(&r.CounterpartyID, &lent, &paid, &net, &status); err != nil {
			return recon.Run{}, err
		}
		if r.TotalLent, err = decimal.NewFromString(lent); err != nil {
			return recon.Run{}, fmt.Errorf("corrupt total_lent for run %s: %w", id, err)
		}
		if r.TotalPaid, err = decimal.NewFromString(paid); err != nil {
			return recon.Run{}, fmt.Errorf("corrupt total_paid for run %s: %w", id, err)
		}
		if r.NetBalance, err = decimal.NewFromString(net); err != nil {
			return recon.Run{}, fmt.Errorf("corrupt net_balance for run %s: %w", id, err)
		}
		r.Status = recon.Status(status)
		run.Results = append(run.Results, r)
	}
	if err := rows.Err(); err != nil {
		return recon.Run{}, err
	}

	return run, nil
}

// List returns all runs newest-first, without result sets.
func (s *Store) List(ctx context.Context) ([]recon.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, lending_file, settlement_file,
		       lending_rows, settlement_rows, amount_policy,
		       balanced_count, overpaid_count, underpaid_count,
		       total_lent, total_paid, net_balance
		FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []recon.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (recon.Run, error) {
	var run recon.Run
	var createdAt, lent, paid, net string

	err := sc.Scan(
		&run.ID, &createdAt, &run.LendingFile, &run.SettlementFile,
		&run.LendingRows, &run.SettlementRows, &run.AmountPolicy,
		&run.Summary.Balanced, &run.Summary.Overpaid, &run.Summary.Underpaid,
		&lent, &paid, &net,
	)
	if err != nil {
		return recon.Run{}, err
	}

	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return recon.Run{}, fmt.Errorf("corrupt created_at for run %s: %w", run.ID, err)
	}
	if run.Summary.TotalLent, err = decimal.NewFromString(lent); err != nil {
		return recon.Run{}, fmt.Errorf("corrupt total_lent for run %s: %w", run.ID, err)
	}
	if run.Summary.TotalPaid, err = decimal.NewFromString(paid); err != nil {
		return recon.Run{}, fmt.Errorf("corrupt total_paid for run %s: %w", run.ID, err)
	}
	if run.Summary.NetBalance, err = decimal.NewFromString(net); err != nil {
		return recon.Run{}, fmt.Errorf("corrupt net_balance for run %s: %w", run.ID, err)
	}
	run.Summary.TotalCounterparties = run.Summary.Balanced + run.Summary.Overpaid + run.Summary.Underpaid

	return run, nil
}
