/*
summary.go - Aggregate view over a result set

PURPOSE:
  Presentation and the assistant collaborator both need the same rollup:
  how many counterparties landed in each status, and the grand totals.
  Computing it here once keeps callers from re-deriving it ad hoc (and
  disagreeing about it).
*/
package recon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Summary is the rollup of one reconciliation run's results.
type Summary struct {
	TotalCounterparties int
	Balanced            int
	Overpaid            int
	Underpaid           int
	TotalLent           decimal.Decimal
	TotalPaid           decimal.Decimal
	NetBalance          decimal.Decimal
}

// Summarize computes per-status counts and grand totals in one pass.
func Summarize(results []Result) Summary {
	s := Summary{TotalCounterparties: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusBalanced:
			s.Balanced++
		case StatusOverpaid:
			s.Overpaid++
		case StatusUnderpaid:
			s.Underpaid++
		}
		s.TotalLent = s.TotalLent.Add(r.TotalLent)
		s.TotalPaid = s.TotalPaid.Add(r.TotalPaid)
		s.NetBalance = s.NetBalance.Add(r.NetBalance)
	}
	return s
}

// String renders the summary as the single-line context string handed to
// the external assistant alongside a user prompt.
func (s Summary) String() string {
	return fmt.Sprintf(
		"%d counterparties: %d balanced, %d overpaid, %d underpaid; total lent %s, total paid %s, net %s",
		s.TotalCounterparties, s.Balanced, s.Overpaid, s.Underpaid,
		s.TotalLent.String(), s.TotalPaid.String(), s.NetBalance.String())
}
