/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package interval

import (
	"errors"
	"testing"
	"time"
)

func TestParseForms(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		hasLow  bool
		hasHigh bool
		typ     DataType
		wantErr bool
	}{
		{"closed numeric", "5-7.5", true, true, Numeric, false},
		{"closed with spaces", "1990 - 1999", true, true, Numeric, false},
		{"right open", "170-", true, false, Numeric, false},
		{"left open", "-1990", false, true, Numeric, false},
		{"unbounded", "-", false, false, Numeric, false},
		{"scalar", "12", true, true, Numeric, false},
		{"scalar float", "7.5", true, true, Numeric, false},
		{"closed date", "2024_12_01-2024_12_26", true, true, Date, false},
		{"scalar date", "2024_12_24", true, true, Date, false},
		{"closed alphabetic", "a-m", true, true, Alphabetic, false},
		{"mixed types", "5-abc", false, false, Numeric, true},
		{"mixed types reversed", "abc-5", false, false, Numeric, true},
		{"mixed alpha numeric year", "abc-1999", false, false, Numeric, true},
		{"mixed date numeric", "2024_12_01-5", false, false, Numeric, true},
		{"mixed numeric date", "5-2024_12_01", false, false, Numeric, true},
		{"empty", "", false, false, Numeric, true},
		{"garbage bound", "a!b-c", false, false, Numeric, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := Parse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.raw, iv)
				}
				if !errors.Is(err, ErrSyntax) {
					t.Errorf("Parse(%q) error = %v, want ErrSyntax", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.raw, err)
			}
			low, high := iv.Bounded()
			if low != tt.hasLow || high != tt.hasHigh {
				t.Errorf("Parse(%q) bounds = (%v, %v), want (%v, %v)", tt.raw, low, high, tt.hasLow, tt.hasHigh)
			}
			if iv.Type() != tt.typ {
				t.Errorf("Parse(%q) type = %v, want %v", tt.raw, iv.Type(), tt.typ)
			}
		})
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		raw   string
		value float64
		want  bool
	}{
		{"5-7.5", 6.2, true},
		{"5-7.5", 5, true},
		{"5-7.5", 7.5, true},
		{"5-7.5", 7.6, false},
		{"170-", 200, true},
		{"170-", 170, true},
		{"170-", 100, false},
		{"-1990", 1980, true},
		{"-1990", 1990, true},
		{"-1990", 1991, false},
		{"-", 42, true},
		{"12", 12, true},
		{"12", 11, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			iv, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.raw, err)
			}
			if got := iv.Contains(tt.value); got != tt.want {
				t.Errorf("Parse(%q).Contains(%v) = %v, want %v", tt.raw, tt.value, got, tt.want)
			}
		})
	}
}

func TestWrappingContains(t *testing.T) {
	iv, err := Parse("22-3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !iv.Wraps() {
		t.Fatal("expected 22-3 to wrap")
	}

	tests := []struct {
		hour float64
		want bool
	}{
		{23, true},
		{22, true},
		{1, true},
		{3, true},
		{10, false},
		{4, false},
	}
	for _, tt := range tests {
		if got := iv.Contains(tt.hour); got != tt.want {
			t.Errorf("22-3 contains %v = %v, want %v", tt.hour, got, tt.want)
		}
	}

	straight, err := Parse("9-17")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if straight.Wraps() {
		t.Error("9-17 should not wrap")
	}
}

func TestContainsString(t *testing.T) {
	iv, err := Parse("a-m")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !iv.ContainsString("Horror") {
		t.Error("a-m should contain Horror")
	}
	if iv.ContainsString("zombie") {
		t.Error("a-m should not contain zombie")
	}
	if iv.ContainsString("") {
		t.Error("a-m should not contain the empty string")
	}

	// Numeric intervals never match strings.
	num, _ := Parse("5-7")
	if num.ContainsString("6") {
		t.Error("numeric interval should not match strings")
	}
}

func TestContainsTime(t *testing.T) {
	iv, err := Parse("2024_12_01-2024_12_26")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		when time.Time
		want bool
	}{
		{time.Date(2024, 12, 24, 23, 30, 0, 0, time.UTC), true},
		{time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 12, 26, 18, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 12, 27, 0, 0, 1, 0, time.UTC), false},
		{time.Date(2024, 11, 30, 12, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := iv.ContainsTime(tt.when); got != tt.want {
			t.Errorf("ContainsTime(%v) = %v, want %v", tt.when, got, tt.want)
		}
	}

	open, _ := Parse("2024_06_01-")
	if !open.ContainsTime(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("right-open date range should contain later dates")
	}
}
