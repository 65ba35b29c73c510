package money_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/recon-engine/money"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// NORMALIZATION VECTORS
// =============================================================================

func TestNormalize_Text(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain integer", "1200", "1200"},
		{"plain decimal", "1200.50", "1200.50"},
		{"rupee symbol and thousands separator", "₹1,200.50", "1200.50"},
		{"currency code suffix", "100.00 INR", "100.00"},
		{"currency code prefix", "USD 99.95", "99.95"},
		{"dollar sign with space", "$ 5,000", "5000"},
		{"negative", "-42", "-42"},
		{"negative after symbol", "$-42.10", "-42.10"},
		{"surrounding whitespace", "  250.75  ", "250.75"},
		{"zero", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := money.Normalize(money.FromText(tc.in), money.PolicyStrict)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tc.want)) {
				t.Errorf("Normalize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize_NumberPassesThrough(t *testing.T) {
	got, err := money.Normalize(money.FromNumber(dec("-42")), money.PolicyStrict)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("-42")) {
		t.Errorf("numeric input must pass through unchanged, got %v", got)
	}
}

// =============================================================================
// FAILURE POLICY
// =============================================================================

func TestNormalize_StrictRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "n/a", "12.34.56", "-", "one hundred"} {
		_, err := money.Normalize(money.FromText(in), money.PolicyStrict)
		if err == nil {
			t.Errorf("Normalize(%q) under strict policy should fail", in)
			continue
		}
		var perr *money.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Normalize(%q): want *ParseError, got %T", in, err)
		} else if perr.Raw != in {
			t.Errorf("ParseError.Raw = %q, want original text %q", perr.Raw, in)
		}
	}
}

func TestNormalize_LenientSubstitutesZero(t *testing.T) {
	for _, in := range []string{"", "n/a", "12.34.56"} {
		got, err := money.Normalize(money.FromText(in), money.PolicyLenient)
		if err != nil {
			t.Errorf("Normalize(%q) under lenient policy should not fail: %v", in, err)
			continue
		}
		if !got.IsZero() {
			t.Errorf("Normalize(%q) under lenient policy = %v, want 0", in, got)
		}
	}
}

func TestNormalize_LenientStillParsesValidText(t *testing.T) {
	// Lenient only changes the failure path, never valid parses.
	got, err := money.Normalize(money.FromText("€1.234"), money.PolicyLenient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("1.234")) {
		t.Errorf("got %v, want 1.234", got)
	}
}

// =============================================================================
// POLICY PARSING
// =============================================================================

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    money.Policy
		wantErr bool
	}{
		{"strict", money.PolicyStrict, false},
		{"lenient", money.PolicyLenient, false},
		{"", money.PolicyStrict, false},
		{"  Lenient ", money.PolicyLenient, false},
		{"fuzzy", "", true},
	}

	for _, tc := range cases {
		got, err := money.ParsePolicy(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePolicy(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePolicy(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
