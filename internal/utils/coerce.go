// Package utils provides small coercion helpers shared by the data
// processor and the export layer.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// Boolean token sets accepted for the festival flag column.
var (
	truthyTokens = map[string]bool{
		"1": true, "true": true, "yes": true,
	}
	falsyTokens = map[string]bool{
		"0": true, "false": true, "no": true,
	}
)

// ParseBoolToken maps a raw CSV token onto a boolean. The second return
// reports whether the token belongs to the accepted set; unmappable
// tokens are the caller's problem (the processor fills them with false).
func ParseBoolToken(s string) (value, ok bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	if truthyTokens[t] {
		return true, true
	}
	if falsyTokens[t] {
		return false, true
	}
	return false, false
}

// IsBoolToken reports whether a raw token is coercible to a boolean.
// Blank tokens count as coercible (missing, imputed later).
func IsBoolToken(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	_, ok := ParseBoolToken(t)
	return ok
}

// ParseFloatToken converts a raw CSV token to float64. Blank and "nan"
// tokens return NaN with ok=true: they are valid missing values.
func ParseFloatToken(s string) (f float64, ok bool) {
	t := strings.TrimSpace(s)
	if t == "" || strings.EqualFold(t, "nan") {
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Round2 rounds to two decimal places; used when shaping export payloads.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
