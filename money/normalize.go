/*
Package money normalizes currency-formatted amounts into canonical decimals.

PURPOSE:
  Hand-edited exports carry amounts in every shape imaginable: "₹1,200.50",
  "100.00 INR", "$ 5,000", plain numbers, or junk. This package converts a
  numeric-or-text cell into a decimal.Decimal, stripping currency symbols,
  currency-code prefixes/suffixes, and thousands separators.

KEY CONCEPTS:
  - CellValue: Tagged variant of the two shapes a spreadsheet cell can take
    (native number or text). Only this package branches on the variant.
  - Policy: What to do when text cannot be parsed. Strict fails the record,
    Lenient substitutes zero. One policy per ingestion run, applied
    uniformly to every amount cell in both datasets.

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal end to end; no float64 in money paths.
  2. Sign preservation: negative amounts are valid and pass through.
  3. Determinism: the same cell and policy always yield the same output.

USAGE:
  amt, err := money.Normalize(money.FromText("₹1,200.50"), money.PolicyStrict)
  // amt == 1200.50

SEE ALSO:
  - ingest/validate.go: Routes amount columns through Normalize
*/
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CELL VALUE - Numeric-or-text variant
// =============================================================================

// CellValue is the union of the two shapes an amount cell can arrive in.
// Construct via FromText or FromNumber.
type CellValue struct {
	text    string
	number  decimal.Decimal
	numeric bool
}

// FromText wraps a textual cell (delimited files always produce these).
func FromText(s string) CellValue {
	return CellValue{text: s}
}

// FromNumber wraps a cell that is already a native number.
func FromNumber(d decimal.Decimal) CellValue {
	return CellValue{number: d, numeric: true}
}

// Raw returns the original cell content for error reporting.
func (v CellValue) Raw() string {
	if v.numeric {
		return v.number.String()
	}
	return v.text
}

// =============================================================================
// POLICY - Behavior on unparseable text
// =============================================================================

type Policy string

const (
	// PolicyStrict fails the enclosing record on an unparseable amount.
	PolicyStrict Policy = "strict"

	// PolicyLenient substitutes zero for an unparseable amount and continues.
	PolicyLenient Policy = "lenient"
)

// ParsePolicy maps a user-supplied policy name to a Policy.
// The empty string selects PolicyStrict.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyStrict, "":
		return PolicyStrict, nil
	case PolicyLenient:
		return PolicyLenient, nil
	default:
		return "", fmt.Errorf("unknown amount policy %q (want strict or lenient)", s)
	}
}

// =============================================================================
// NORMALIZE
// =============================================================================

// ParseError reports text that survived stripping but still isn't a decimal.
// Ingestion wraps it with the row index; see ingest.InvalidAmountError.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot normalize %q to a decimal amount", e.Raw)
}

// Normalize converts a cell into a canonical decimal amount.
//
// Numeric cells pass through unchanged. Text cells are reduced to digits,
// at most one decimal point, and a leading minus sign; what remains is
// parsed with decimal.NewFromString. An empty or malformed remainder
// follows the given policy: PolicyStrict returns a *ParseError, PolicyLenient
// returns zero.
func Normalize(v CellValue, policy Policy) (decimal.Decimal, error) {
	if v.numeric {
		return v.number, nil
	}

	cleaned := stripFormatting(v.text)
	if cleaned != "" && cleaned != "-" {
		if d, err := decimal.NewFromString(cleaned); err == nil {
			return d, nil
		}
	}

	if policy == PolicyLenient {
		return decimal.Zero, nil
	}
	return decimal.Decimal{}, &ParseError{Raw: v.text}
}

// stripFormatting removes everything that is not a digit or a decimal
// point. A minus sign is kept only in the leading position (after any
// stripped prefix such as a currency symbol); minus signs elsewhere make
// the remainder unparseable, which is intended.
func stripFormatting(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
