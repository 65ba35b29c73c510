/*
errors.go - Centralized error types for ingestion and validation

PURPOSE:
  All ingestion-time failures in one place for consistency and
  discoverability. Every error aborts the whole file: there is no partial
  acceptance of a dataset with some valid and some invalid rows.

ERROR CATEGORIES:
  1. Format errors  - unrecognized file extension, unreadable payload
  2. Schema errors  - missing required columns, empty dataset
  3. Record errors  - a specific row has an empty identifier or (under the
                      strict policy) an unparseable amount

ROW NUMBERING:
  Record-level errors carry a 1-based data-row index. The header line does
  not count, so the first data row reports as line 2 when a human-facing
  line number is wanted (see RecordValidationError.Line).

USAGE:
  The API layer maps these onto HTTP statuses:

    if ingest.IsClientError(err) {
        // 400 - the upload is at fault, not the server
    }

SEE ALSO:
  - reader.go:   Raises format errors
  - validate.go: Raises schema and record errors
*/
package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnsupportedFormat is returned for a file extension the reader
	// doesn't recognize.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyDataset is returned when a file has a header but zero data rows.
	ErrEmptyDataset = errors.New("dataset has no data rows")

	// ErrSchemaValidation is returned when required columns are absent.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrRecordValidation is returned when a required non-amount field is
	// empty or malformed on a specific row.
	ErrRecordValidation = errors.New("record validation failed")

	// ErrInvalidAmount is returned under the strict policy when an amount
	// cell cannot be normalized to a decimal.
	ErrInvalidAmount = errors.New("invalid amount")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnsupportedFormatError reports the extension that couldn't be matched.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q (want .csv, .tsv, .txt, .xlsx or .xls)", e.Filename)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// SchemaValidationError names EVERY missing required column, not just the
// first, so the user can fix the file in one pass.
type SchemaValidationError struct {
	Missing []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaValidationError) Unwrap() error { return ErrSchemaValidation }

// RecordValidationError reports a bad required field on one data row.
// Row is 1-based over data rows (the header does not count).
type RecordValidationError struct {
	Row    int
	Column string
	Reason string
}

func (e *RecordValidationError) Error() string {
	return fmt.Sprintf("row %d: column %q: %s", e.Row, e.Column, e.Reason)
}

func (e *RecordValidationError) Unwrap() error { return ErrRecordValidation }

// Line is the human-facing line number: the header occupies line 1, so
// data row N sits on line N+1.
func (e *RecordValidationError) Line() int { return e.Row + 1 }

// InvalidAmountError reports an amount cell that failed normalization under
// the strict policy, with the source row and the raw text for the message
// the UI surfaces verbatim.
type InvalidAmountError struct {
	Row    int // 1-based over data rows
	Column string
	Raw    string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot parse amount %q", e.Row, e.Column, e.Raw)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is the upload's fault rather
// than the server's. All ingestion failures qualify.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrSchemaValidation) ||
		errors.Is(err, ErrRecordValidation) ||
		errors.Is(err, ErrInvalidAmount)
}
