package finparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"dollars billions word", "$12.5 billion", Value{12.5, UnitBillions, true}},
		{"billions suffix", "3.2B", Value{3.2, UnitBillions, true}},
		{"millions word", "450 million", Value{450, UnitMillions, true}},
		{"millions suffix", "25M", Value{25, UnitMillions, true}},
		{"percent", "12%", Value{12, UnitPercent, true}},
		{"negative percent", "-5.5%", Value{-5.5, UnitPercent, true}},
		{"thousands separators", "$1,234,567", Value{1234567, UnitNone, true}},
		{"parenthesized negative", "(1,234)", Value{-1234, UnitNone, true}},
		{"parenthesized millions", "$(2.5) million", Value{-2.5, UnitMillions, true}},
		{"plain number", "42", Value{42, UnitNone, true}},
		{"empty", "", Value{}},
		{"whitespace only", "   ", Value{}},
		{"not a number", "abc", Value{}},
		{"unit without number", "garbage billion", Value{Unit: UnitBillions}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestParse_LowercaseUnitSuffixes(t *testing.T) {
	// Regex suffix match accepts lowercase b/m too.
	assert.Equal(t, Value{1.5, UnitBillions, true}, Parse("1.5b"))
	assert.Equal(t, Value{300, UnitMillions, true}, Parse("300m"))
}

func TestParse_ZeroIsParsed(t *testing.T) {
	// A genuine zero must be distinguishable from a parse failure.
	v := Parse("0")
	assert.True(t, v.Parsed)
	assert.Zero(t, v.Magnitude)

	assert.False(t, Parse("n/a").Parsed)
}
