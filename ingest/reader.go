/*
Package ingest parses uploaded tabular files and validates them against a
required-column schema.

PURPOSE:
  The upload layer hands this package raw file bytes plus the original
  filename; this package turns them into validated, ordered record
  sequences ready for reconciliation. It is the only place file formats,
  headers, and per-row validation rules are known.

SUPPORTED FORMATS (selected by file extension):
  .csv          comma-delimited text
  .tsv, .txt    tab-delimited text
  .xlsx, .xls   spreadsheet workbook (first worksheet only)

PIPELINE:
  bytes -> Read (format-specific parse, header alignment) -> Table
        -> ValidateLendings / ValidateSettlements -> []recon.*Record

DESIGN NOTES:
  - The first line/row is always the header; header names are trimmed.
  - A data line with fewer cells than headers pads the missing trailing
    cells with "" rather than failing - truncated trailing cells are
    routine in hand-edited exports.
  - Extra columns not in the required set are carried in RawRow but
    ignored by validation.

SEE ALSO:
  - validate.go: Schema and per-row validation
  - errors.go:   The full failure taxonomy
*/
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// FORMAT - Source file format, derived from the filename extension
// =============================================================================

type Format string

const (
	FormatCSV      Format = "csv"
	FormatTSV      Format = "tsv"
	FormatWorkbook Format = "workbook"
)

// FormatForFilename maps a filename's extension to a Format.
// Unrecognized extensions return *UnsupportedFormatError.
func FormatForFilename(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".txt":
		return FormatTSV, nil
	case ".xlsx", ".xls":
		return FormatWorkbook, nil
	default:
		return "", &UnsupportedFormatError{Filename: filename}
	}
}

// =============================================================================
// TABLE - Parsed file: header names plus header-aligned data rows
// =============================================================================

// RawRow maps trimmed header names to the raw cell text of one data row.
// Cells are aligned to headers by position; cells past the last header are
// dropped, headers past the last cell read as "".
type RawRow map[string]string

// Table is a parsed file. Headers are kept separately from Rows so schema
// validation can report missing columns even when the file has a header
// but zero data rows.
type Table struct {
	Headers []string
	Rows    []RawRow
}

// HasColumn reports whether a header of that exact (trimmed) name exists.
func (t Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Read parses a payload in the given format. The first line/row is
// consumed as the header; what remains becomes data rows in input order.
func Read(r io.Reader, format Format) (Table, error) {
	var grid [][]string
	var err error
	switch format {
	case FormatCSV:
		grid, err = readDelimited(r, ',')
	case FormatTSV:
		grid, err = readDelimited(r, '\t')
	case FormatWorkbook:
		grid, err = readWorkbook(r)
	default:
		return Table{}, &UnsupportedFormatError{Filename: string(format)}
	}
	if err != nil {
		return Table{}, err
	}
	return alignToHeader(grid), nil
}

// ReadFile is the []byte convenience over Read, picking the format from
// the original filename.
func ReadFile(data []byte, filename string) (Table, error) {
	format, err := FormatForFilename(filename)
	if err != nil {
		return Table{}, err
	}
	return Read(bytes.NewReader(data), format)
}

// =============================================================================
// FORMAT-SPECIFIC PARSERS
// =============================================================================

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	// Hand-edited exports have ragged rows; alignment happens against the
	// header, not the csv package's per-record field count.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// First worksheet only.
	sheet := f.GetSheetName(0)
	return f.GetRows(sheet)
}

// alignToHeader converts a positional grid into a header-keyed Table.
// Headers are trimmed; short rows read "" for their missing trailing cells.
func alignToHeader(grid [][]string) Table {
	if len(grid) == 0 {
		return Table{Headers: []string{}, Rows: []RawRow{}}
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]RawRow, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := make(RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}
}
