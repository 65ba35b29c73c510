/*
reconcile.go - Keyed two-set aggregation

PURPOSE:
  Sums normalized amounts per counterparty across both input sequences and
  classifies each counterparty's balance. This is the only place the two
  datasets meet.

ALGORITHM:
  1. Sum loan amounts per counterparty (single pass over lendings)
  2. Sum payment amounts per counterparty (single pass over settlements)
  3. Union the two key sets
  4. Emit one Result per key; a side the counterparty never appeared on
     contributes zero
  5. Sort by counterparty id so output is reproducible

INVARIANTS:
  - Each identifier appears at most once in the output
  - The output keyspace is exactly the union of identifiers seen in either
    input, including one-sided identifiers
  - sum(NetBalance) == sum(payments) - sum(loans), exactly
  - Input row order has no effect on the result set

SEE ALSO:
  - types.go:   Record and Result definitions
  - summary.go: Aggregate view over the result set
*/
package recon

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Reconcile computes the per-counterparty position from two record sequences.
// Pure function: no side effects, no retained state, deterministic output
// sorted ascending by counterparty id. Grouping is the only deduplication;
// no rows are filtered.
func Reconcile(lendings []LendingRecord, settlements []SettlementRecord) []Result {
	lent := make(map[string]decimal.Decimal, len(lendings))
	for _, l := range lendings {
		lent[l.CounterpartyID] = lent[l.CounterpartyID].Add(l.LoanAmount)
	}

	paid := make(map[string]decimal.Decimal, len(settlements))
	for _, s := range settlements {
		paid[s.CounterpartyID] = paid[s.CounterpartyID].Add(s.PaymentAmount)
	}

	ids := make([]string, 0, len(lent)+len(paid))
	for id := range lent {
		ids = append(ids, id)
	}
	for id := range paid {
		if _, seen := lent[id]; !seen {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		totalLent := lent[id]   // zero value when absent
		totalPaid := paid[id]   // zero value when absent
		net := totalPaid.Sub(totalLent)
		results = append(results, Result{
			CounterpartyID: id,
			TotalLent:      totalLent,
			TotalPaid:      totalPaid,
			NetBalance:     net,
			Status:         StatusOf(net),
		})
	}
	return results
}
