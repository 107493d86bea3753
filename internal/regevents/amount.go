// Package regevents reconciles regulatory enforcement events reported
// more than once by merging mentions of the same fine or settlement.
package regevents

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	currencyStrip = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "")
	amountPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(billions?|bn|b|millions?|mn|mm|m|thousands?|k)?\b`)
	yearPattern   = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)
)

var multipliers = map[string]float64{
	"billion":   1e9,
	"billions":  1e9,
	"bn":        1e9,
	"b":         1e9,
	"million":   1e6,
	"millions":  1e6,
	"mn":        1e6,
	"mm":        1e6,
	"m":         1e6,
	"thousand":  1e3,
	"thousands": 1e3,
	"k":         1e3,
}

// NormalizeAmount converts a monetary string such as "$151M" or
// "$1.2 billion" to a number. ok is false when no amount can be read.
func NormalizeAmount(s string) (value float64, ok bool) {
	m := amountPattern.FindStringSubmatch(currencyStrip.Replace(s))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if mul, found := multipliers[strings.ToLower(m[2])]; found {
		v *= mul
	}
	return v, true
}

// ExtractYear returns the first four-digit year between 1900 and 2099 in s.
// The year may abut letters ("FY2023") but not other digits.
func ExtractYear(s string) (year int, ok bool) {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}
