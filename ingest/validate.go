/*
validate.go - Schema enforcement and record construction

PURPOSE:
  Turns a parsed Table into validated record sequences for the
  reconciliation engine. Two fixed column profiles exist, one per dataset:

    lendings:    counterparty_id, loan_amount
    settlements: counterparty_id, payment_amount

VALIDATION ORDER:
  1. Schema: every required column must be present in the header; the
     failure names ALL missing columns at once.
  2. Emptiness: a header with zero data rows is rejected.
  3. Per row, in input order:
     - counterparty_id must be non-empty after trimming
     - the amount column goes through money.Normalize under the caller's
       policy; under the strict policy a bad amount aborts the whole file

Any failure aborts the entire file. Output order equals input order, which
keeps row numbers in error messages reproducible.

SEE ALSO:
  - reader.go: Produces the Table consumed here
  - money/normalize.go: Amount normalization and the strict/lenient policy
*/
package ingest

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/warp/recon-engine/money"
	"github.com/warp/recon-engine/recon"
)

// Column names of the two ingestion profiles.
const (
	ColCounterpartyID = "counterparty_id"
	ColLoanAmount     = "loan_amount"
	ColPaymentAmount  = "payment_amount"
)

// =============================================================================
// PROFILE VALIDATORS
// =============================================================================

// ValidateLendings checks a table against the lending profile and builds
// the record sequence, preserving input row order.
func ValidateLendings(t Table, policy money.Policy) ([]recon.LendingRecord, error) {
	rows, err := validateRows(t, ColLoanAmount, policy)
	if err != nil {
		return nil, err
	}
	records := make([]recon.LendingRecord, len(rows))
	for i, row := range rows {
		records[i] = recon.LendingRecord{CounterpartyID: row.id, LoanAmount: row.amount}
	}
	return records, nil
}

// ValidateSettlements checks a table against the settlement profile and
// builds the record sequence, preserving input row order.
func ValidateSettlements(t Table, policy money.Policy) ([]recon.SettlementRecord, error) {
	rows, err := validateRows(t, ColPaymentAmount, policy)
	if err != nil {
		return nil, err
	}
	records := make([]recon.SettlementRecord, len(rows))
	for i, row := range rows {
		records[i] = recon.SettlementRecord{CounterpartyID: row.id, PaymentAmount: row.amount}
	}
	return records, nil
}

// =============================================================================
// CONVENIENCE - bytes + filename in, records out
// =============================================================================

// IngestLendings composes ReadFile and ValidateLendings for callers
// holding a raw upload payload.
func IngestLendings(data []byte, filename string, policy money.Policy) ([]recon.LendingRecord, error) {
	t, err := ReadFile(data, filename)
	if err != nil {
		return nil, err
	}
	return ValidateLendings(t, policy)
}

// IngestSettlements composes ReadFile and ValidateSettlements.
func IngestSettlements(data []byte, filename string, policy money.Policy) ([]recon.SettlementRecord, error) {
	t, err := ReadFile(data, filename)
	if err != nil {
		return nil, err
	}
	return ValidateSettlements(t, policy)
}

// =============================================================================
// SHARED VALIDATION CORE
// =============================================================================

type validatedRow struct {
	id     string
	amount decimal.Decimal
}

// validateRows runs the full validation order for one profile: schema,
// emptiness, then per-row field checks. amountCol is the profile's
// monetary column; unrecognized extra columns are ignored and dropped.
func validateRows(t Table, amountCol string, policy money.Policy) ([]validatedRow, error) {
	var missing []string
	for _, col := range []string{ColCounterpartyID, amountCol} {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaValidationError{Missing: missing}
	}

	if len(t.Rows) == 0 {
		return nil, ErrEmptyDataset
	}

	out := make([]validatedRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		rowNum := i + 1 // 1-based over data rows

		id := recon.CleanID(row[ColCounterpartyID])
		if id == "" {
			return nil, &RecordValidationError{
				Row:    rowNum,
				Column: ColCounterpartyID,
				Reason: "identifier must be non-empty",
			}
		}

		amount, err := money.Normalize(money.FromText(row[amountCol]), policy)
		if err != nil {
			var perr *money.ParseError
			if errors.As(err, &perr) {
				return nil, &InvalidAmountError{Row: rowNum, Column: amountCol, Raw: perr.Raw}
			}
			return nil, err
		}

		out = append(out, validatedRow{id: id, amount: amount})
	}
	return out, nil
}
