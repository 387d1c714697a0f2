// Package numberutils parses the numeric cells of statistical exports, whose
// decimal and grouping separators depend on the locale the file was produced in.
package numberutils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"fjacquet/cultura-csv/internal/models"

	"github.com/shopspring/decimal"
)

// plainNumber is the only grammar Parse accepts after standardization: no
// exponent, no NaN or Inf, no hex.
var plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// Standardize turns a locale-formatted number into the form decimal.NewFromString
// accepts. Under DecimalPoint ',' is a grouping separator and is removed; under
// DecimalComma '.' is removed and ',' becomes the decimal point. Whitespace
// (including non-breaking spaces), apostrophe grouping and a trailing '%' are
// removed under both conventions.
func Standardize(s string, conv models.DecimalConvention) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '\u00a0', r == '\u202f':
			return -1
		case r == '\'', r == '\u2019':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSuffix(s, "%")

	if conv == models.DecimalComma {
		s = strings.ReplaceAll(s, ".", "")
		return strings.ReplaceAll(s, ",", ".")
	}
	return strings.ReplaceAll(s, ",", "")
}

// Parse parses s under conv.
func Parse(s string, conv models.DecimalConvention) (decimal.Decimal, error) {
	std := Standardize(s, conv)
	if std == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value %q", s)
	}
	if !plainNumber.MatchString(std) {
		return decimal.Zero, fmt.Errorf("failed to parse number '%s': not a plain decimal", s)
	}
	d, err := decimal.NewFromString(std)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse number '%s': %w", s, err)
	}
	return d, nil
}

// ParseOrZero parses s and falls back to zero. The second result is true when the
// fallback was used, so callers can tell a defaulted zero from a real one.
func ParseOrZero(s string, conv models.DecimalConvention) (decimal.Decimal, bool) {
	d, err := Parse(s, conv)
	if err != nil {
		return decimal.Zero, true
	}
	return d, false
}

// Float64OrZero is ParseOrZero for consumers that work in float64.
func Float64OrZero(s string, conv models.DecimalConvention) (float64, bool) {
	d, defaulted := ParseOrZero(s, conv)
	return d.InexactFloat64(), defaulted
}
