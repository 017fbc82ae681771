package utils

import (
	"math"
	"testing"
)

func TestParseBoolToken(t *testing.T) {
	tests := []struct {
		in    string
		value bool
		ok    bool
	}{
		{"1", true, true},
		{"0", false, true},
		{"true", true, true},
		{"false", false, true},
		{"True", true, true},
		{"False", false, true},
		{"yes", true, true},
		{"No", false, true},
		{"  yes  ", true, true},
		{"maybe", false, false},
		{"2", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		value, ok := ParseBoolToken(tt.in)
		if value != tt.value || ok != tt.ok {
			t.Errorf("ParseBoolToken(%q) = (%v, %v), want (%v, %v)", tt.in, value, ok, tt.value, tt.ok)
		}
	}
}

func TestIsBoolToken_BlankIsMissing(t *testing.T) {
	if !IsBoolToken("") {
		t.Error("blank token should be coercible (treated as missing)")
	}
	if !IsBoolToken("  ") {
		t.Error("whitespace token should be coercible (treated as missing)")
	}
	if IsBoolToken("sunny") {
		t.Error("arbitrary string should not be coercible")
	}
}

func TestParseFloatToken(t *testing.T) {
	if f, ok := ParseFloatToken("42.5"); !ok || f != 42.5 {
		t.Errorf("ParseFloatToken(42.5) = (%v, %v)", f, ok)
	}
	if f, ok := ParseFloatToken(""); !ok || !math.IsNaN(f) {
		t.Errorf("blank token should be NaN, got (%v, %v)", f, ok)
	}
	if f, ok := ParseFloatToken("NaN"); !ok || !math.IsNaN(f) {
		t.Errorf("nan token should be NaN, got (%v, %v)", f, ok)
	}
	if _, ok := ParseFloatToken("abc"); ok {
		t.Error("non-numeric token should not parse")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(3.14159); got != 3.14 {
		t.Errorf("Round2(3.14159) = %v", got)
	}
	if got := Round2(3.456); got != 3.46 {
		t.Errorf("Round2(3.456) = %v", got)
	}
}
