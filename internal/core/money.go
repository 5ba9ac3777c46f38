// Package core holds the cleaned payments dataset and the filtering and
// summation logic shared by both portals.
//
// This file parses and formats currency amounts. The spreadsheet export
// mixes plain numbers ("125.5") with formatted strings ("$1,234.50"); both
// clean to the same cents value.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseCurrencyToCents converts a raw currency cell to cents.
//
// Currency symbols, thousands separators and surrounding whitespace are
// stripped before parsing. Signed amounts are accepted (darter adjustments
// can be negative). Half-up rounding is applied on the third decimal digit.
//
//	ParseCurrencyToCents("$1,234.50") -> 123450, true
//	ParseCurrencyToCents("1234.50")   -> 123450, true
//	ParseCurrencyToCents("n/a")       -> 0, false
func ParseCurrencyToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, false
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" {
		// "." alone is not a number
		if s == "." {
			return 0, false
		}
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, false
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, false
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, false
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, true
}

// FormatDollars renders cents as "$1,234.50". Negative amounts keep a
// leading minus sign.
func FormatDollars(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	dollars := cents / 100
	rem := cents % 100

	digits := strconv.FormatInt(dollars, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	if rem < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(rem, 10))
	return b.String()
}

// FormatDeduction renders a statement deduction in accounting style:
// "($123.45)" for the absolute value.
func FormatDeduction(cents int64) string {
	if cents < 0 {
		cents = -cents
	}
	return "(" + FormatDollars(cents) + ")"
}

// Dollars returns the amount as a float64 for display only. Calculations
// stay in cents.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}
