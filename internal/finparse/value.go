// Package finparse normalizes financial figure strings into magnitudes and units.
package finparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit is the scale or kind marker attached to a parsed value.
type Unit string

const (
	UnitNone     Unit = ""
	UnitBillions Unit = "B"
	UnitMillions Unit = "M"
	UnitPercent  Unit = "%"
)

// Value is the tagged result of parsing one financial figure. Parsed is
// false when the input did not yield a number after normalization, which
// distinguishes "failed to parse" from a genuine zero. Parsing is
// deliberately lenient: a malformed field degrades to a zero magnitude
// instead of failing, so one bad field cannot abort a metric batch.
type Value struct {
	Magnitude float64
	Unit      Unit
	Parsed    bool
}

var (
	billionRe = regexp.MustCompile(`[Bb]illion|[Bb]$`)
	millionRe = regexp.MustCompile(`[Mm]illion|[Mm]$`)
)

// Parse normalizes a currency or percentage string into a Value. It strips
// currency symbols and thousands separators, detects billion/million/percent
// markers, and treats parenthesized values as negative.
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")

	unit := UnitNone
	switch {
	case billionRe.MatchString(s):
		unit = UnitBillions
		s = billionRe.ReplaceAllString(s, "")
	case millionRe.MatchString(s):
		unit = UnitMillions
		s = millionRe.ReplaceAllString(s, "")
	case strings.Contains(s, "%"):
		unit = UnitPercent
		s = strings.ReplaceAll(s, "%", "")
	}

	// "(1,234)" means -1234 in financial statements.
	if strings.Contains(s, "(") && strings.Contains(s, ")") {
		s = "-" + strings.ReplaceAll(strings.ReplaceAll(s, "(", ""), ")", "")
	}

	mag, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Value{Unit: unit}
	}
	return Value{Magnitude: mag, Unit: unit, Parsed: true}
}
