/*
store.go - Persistence interface for reconciliation run history

PURPOSE:
  Defines the interface between the reconciliation engine and run-history
  storage. The core transform (Reconcile) stays pure; persistence happens
  at the API boundary after a run completes. Different implementations can
  use SQLite or in-memory storage.

APPEND-ONLY CONTRACT:
  Runs are immutable once saved:
  - Save(): Single run write
  - NO Update() or Delete() methods exist
  A run that was computed from bad input is superseded by uploading the
  corrected files as a new run, never by editing history.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - store/memory.go:        In-memory for testing

SEE ALSO:
  - reconcile.go: Produces the result sets a Run carries
  - api/handlers.go: The only writer of runs
*/
package recon

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a referenced run doesn't exist.
var ErrRunNotFound = errors.New("run not found")

// =============================================================================
// RUN - One persisted reconciliation invocation
// =============================================================================

// Run records a single reconciliation invocation: where the inputs came
// from, how big they were, and the full result set they produced.
type Run struct {
	ID             string
	CreatedAt      time.Time
	LendingFile    string // original filename of the disbursement upload
	SettlementFile string // original filename of the repayment upload
	LendingRows    int
	SettlementRows int
	AmountPolicy   string // "strict" or "lenient", as applied to both files
	Summary        Summary
	Results        []Result
}

// =============================================================================
// RUN STORE - Append-only run history
// =============================================================================

// RunStore persists reconciliation runs.
// IMPORTANT: RunStore is APPEND-ONLY. No Update, No Delete.
type RunStore interface {
	// Save persists a completed run with its full result set.
	// This is the ONLY write operation.
	Save(ctx context.Context, run Run) error

	// Get returns one run by id, including its results.
	// Returns ErrRunNotFound when the id is unknown.
	Get(ctx context.Context, id string) (Run, error)

	// List returns all runs newest-first, without their result sets
	// (Results is left nil to keep listings cheap).
	List(ctx context.Context) ([]Run, error)
}
