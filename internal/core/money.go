// Package core provides amount parsing and formatting utilities.
//
// Amounts are kept as float64 at full precision; rounding to two decimals
// happens only when a value is formatted for display.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a user-entered decimal string into a positive amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Signs, exponents, thousands separators and zero are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseSalary is ParseAmount that also accepts zero, used to clear a salary.
func ParseSalary(s string) (float64, error) {
	return parseDecimal(s)
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return 0, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatRand formats an amount as rand with two decimals (e.g. "R1234.50").
func FormatRand(v float64) string {
	v = SafeAmount(v)
	if v < 0 {
		return "-R" + strconv.FormatFloat(-v, 'f', 2, 64)
	}
	return "R" + strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatPercent formats a percentage with one decimal, as used in analysis messages.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(SafeAmount(v), 'f', 1, 64) + "%"
}
