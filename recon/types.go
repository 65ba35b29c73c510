/*
Package recon provides the core reconciliation engine.

PURPOSE:
  This package contains the domain types and the aggregation algorithm for
  reconciling two independently produced tabular datasets - disbursement
  (lending) records and repayment (settlement) records - into a
  per-counterparty financial position.

KEY CONCEPTS IN THIS FILE (types.go):
  - LendingRecord:    One validated disbursement row (counterparty + amount)
  - SettlementRecord: One validated repayment row (counterparty + amount)
  - Result:           The reconciled position for one counterparty
  - Status:           Tri-state classification driven by the net balance sign

DESIGN PRINCIPLES:
  1. Immutability: Records and results are never mutated after construction;
     every reconciliation run builds a fresh result set.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors.
  3. Purity: Reconcile is a synchronous in-memory transform with no side
     effects and no cross-invocation state.

USAGE:
  lendings := []recon.LendingRecord{{CounterpartyID: "acme", LoanAmount: amt}}
  results := recon.Reconcile(lendings, settlements)
  summary := recon.Summarize(results)

SEE ALSO:
  - reconcile.go: The aggregation algorithm
  - summary.go:   Per-status counts and totals for presentation
  - export.go:    Sorting and delimited-text export helpers
*/
package recon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORDS - Validated input rows
// =============================================================================

// LendingRecord is one disbursement: a counterparty was lent an amount.
type LendingRecord struct {
	CounterpartyID string
	LoanAmount     decimal.Decimal
}

// SettlementRecord is one repayment: a counterparty paid an amount back.
type SettlementRecord struct {
	CounterpartyID string
	PaymentAmount  decimal.Decimal
}

// CleanID canonicalizes a counterparty identifier. Identifiers are compared
// by exact value after surrounding whitespace is removed; case is preserved.
func CleanID(raw string) string {
	return strings.TrimSpace(raw)
}

// =============================================================================
// STATUS - Sign of the net balance, nothing else
// =============================================================================

type Status string

const (
	StatusBalanced  Status = "balanced"  // net balance is exactly zero
	StatusOverpaid  Status = "overpaid"  // paid more than lent
	StatusUnderpaid Status = "underpaid" // paid less than lent
)

// StatusOf derives the classification from a net balance (paid minus lent).
// Zero maps strictly to Balanced; no tolerance band is applied.
func StatusOf(net decimal.Decimal) Status {
	switch net.Sign() {
	case 0:
		return StatusBalanced
	case 1:
		return StatusOverpaid
	default:
		return StatusUnderpaid
	}
}

// =============================================================================
// RESULT - Reconciled position for one counterparty
// =============================================================================

// Result is the per-counterparty outcome of a reconciliation run.
// NetBalance = TotalPaid - TotalLent and is the sole determinant of Status.
type Result struct {
	CounterpartyID string
	TotalLent      decimal.Decimal
	TotalPaid      decimal.Decimal
	NetBalance     decimal.Decimal
	Status         Status
}
