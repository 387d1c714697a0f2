package numberutils

import (
	"testing"

	"fjacquet/cultura-csv/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStandardize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		conv     models.DecimalConvention
		expected string
	}{
		{"point grouping", "1,234", models.DecimalPoint, "1234"},
		{"point multiple groups", "1,234,567.89", models.DecimalPoint, "1234567.89"},
		{"point plain decimal", "12.5", models.DecimalPoint, "12.5"},
		{"comma decimal", "45,2", models.DecimalComma, "45.2"},
		{"comma grouping and decimal", "1.234.567,89", models.DecimalComma, "1234567.89"},
		{"spaces", "  1 500 ", models.DecimalPoint, "1500"},
		{"non-breaking space", "1\u00a0500", models.DecimalComma, "1500"},
		{"apostrophe grouping", "1'234.5", models.DecimalPoint, "1234.5"},
		{"percent suffix", "38,6%", models.DecimalComma, "38.6"},
		{"dash stays", "-", models.DecimalPoint, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Standardize(tt.input, tt.conv))
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("1,500", models.DecimalPoint)
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(1500)))

	d, err = Parse("2.001,5", models.DecimalComma)
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("2001.5")))

	d, err = Parse("-3.25", models.DecimalPoint)
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("-3.25")))

	for _, bad := range []string{"", "-", "n.d.", "abc", "1.2.3"} {
		_, err := Parse(bad, models.DecimalPoint)
		assert.Error(t, err, bad)
	}
}

func TestParseOrZero(t *testing.T) {
	d, defaulted := ParseOrZero("0", models.DecimalPoint)
	assert.True(t, d.IsZero())
	assert.False(t, defaulted, "a genuine zero is not a default")

	d, defaulted = ParseOrZero("....", models.DecimalPoint)
	assert.True(t, d.IsZero())
	assert.True(t, defaulted)

	f, defaulted := Float64OrZero("12,5", models.DecimalComma)
	assert.Equal(t, 12.5, f)
	assert.False(t, defaulted)
}

func TestParse_OnlyPlainDecimals(t *testing.T) {
	accepted := []struct {
		input string
		want  string
	}{
		{"+5", "5"},
		{".5", "0.5"},
		{"5.", "5"},
		{"007", "7"},
	}
	for _, tt := range accepted {
		d, err := Parse(tt.input, models.DecimalPoint)
		assert.NoError(t, err, tt.input)
		assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), tt.input)
	}

	rejected := []string{"1e400", "1e50000000", "1E3", "2,5e2", "NaN", "Inf", "-Infinity", "0x10", "+", "."}
	for _, input := range rejected {
		for _, conv := range []models.DecimalConvention{models.DecimalPoint, models.DecimalComma} {
			_, err := Parse(input, conv)
			assert.Error(t, err, "%s under %s", input, conv)

			f, defaulted := Float64OrZero(input, conv)
			assert.True(t, defaulted, input)
			assert.Zero(t, f, input)
		}
	}
}
