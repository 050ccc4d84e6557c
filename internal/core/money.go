// Package core holds the ledger domain types and money/timestamp parsing.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted. Zero and negative values are rejected: a spending entry must
// carry a strictly positive amount.
//
// Examples:
//
//	ParseDecimalToCents("180")    -> 18000, nil
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12.346") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseNonNegativeDecimalToCents is ParseDecimalToCents with zero
// allowed, for configured amounts where zero means "unset" (the weekly
// budget) rather than a spending entry.
func ParseNonNegativeDecimalToCents(s string) (int64, error) {
	return parseCents(s)
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// WholeUnits rounds cents half-up to whole currency units for display.
// Intermediate sums always stay in cents; this is the only rounding point.
func (m Money) WholeUnits() int64 {
	c := m.Cents
	if c >= 0 {
		return (c + 50) / 100
	}
	return -((-c + 50) / 100)
}

// DecimalString renders the exact cent value as a decimal string, with
// the fraction omitted when it is zero ("180", "120.5").
func (m Money) DecimalString() string {
	c := m.Cents
	neg := c < 0
	if neg {
		c = -c
	}
	units := c / 100
	rem := c % 100
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(units, 10))
	switch {
	case rem == 0:
	case rem%10 == 0:
		b.WriteString("." + strconv.FormatInt(rem/10, 10))
	case rem < 10:
		b.WriteString(".0" + strconv.FormatInt(rem, 10))
	default:
		b.WriteString("." + strconv.FormatInt(rem, 10))
	}
	return b.String()
}
