/*
export.go - Sorting and delimited-text export of result sets

PURPOSE:
  The presentation layer consumes the result sequence sorted either by
  counterparty id (Reconcile's native order) or by net balance, and can
  download it as comma-delimited text. Both live here so every consumer
  exports identical columns.

COLUMNS:
  counterparty_id, total_lent, total_paid, net_balance, status
*/
package recon

import (
	"encoding/csv"
	"io"
	"sort"
)

// SortByNetBalance orders results ascending by net balance (most underpaid
// first), with counterparty id as the tiebreak. Returns a new slice; the
// input is not mutated.
func SortByNetBalance(results []Result) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].NetBalance.Cmp(out[j].NetBalance); c != 0 {
			return c < 0
		}
		return out[i].CounterpartyID < out[j].CounterpartyID
	})
	return out
}

// ExportCSV writes the result set as comma-delimited text with a header row.
func ExportCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"counterparty_id", "total_lent", "total_paid", "net_balance", "status"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.CounterpartyID,
			r.TotalLent.String(),
			r.TotalPaid.String(),
			r.NetBalance.String(),
			string(r.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
