/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package interval parses and matches the inclusive ranges used by
// selection conditions and playlist filters. A range is written as
// "low-high" where either bound may be omitted; a bare scalar is the
// degenerate range [v, v].
package interval

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrSyntax indicates the raw value is not a recognizable range.
var ErrSyntax = errors.New("malformed interval")

// DataType identifies what kind of values the bounds hold.
type DataType int

const (
	Numeric DataType = iota
	Alphabetic
	Date
)

func (t DataType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Alphabetic:
		return "alphabetic"
	case Date:
		return "date"
	}
	return "unknown"
}

// DateLayout is the calendar bound format, e.g. "2024_12_26".
const DateLayout = "2006_01_02"

var (
	numericPattern    = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	alphabeticPattern = regexp.MustCompile(`^[a-zA-Z]+$`)
	datePattern       = regexp.MustCompile(`^[0-9]{4}_[0-9]{2}_[0-9]{2}$`)
	separatorPattern  = regexp.MustCompile(` *- *`)
)

// Interval is an inclusive range, possibly one-sided or fully
// unbounded. For numeric intervals a lower bound above the upper
// bound is legal and means the range wraps past the period boundary
// (hours "22-3" matches 23 and 1); callers decide per field whether
// wrapping is allowed via Wraps.
type Interval struct {
	raw     string
	typ     DataType
	hasLow  bool
	hasHigh bool

	lowNum  float64
	highNum float64
	lowStr  string
	highStr string
	lowDay  time.Time
	highDay time.Time
}

// Parse reads one of the forms "a-b", "a-", "-b", "-" or "a".
func Parse(raw string) (Interval, error) {
	iv := Interval{raw: strings.TrimSpace(raw)}
	if iv.raw == "" {
		return iv, fmt.Errorf("%w: empty value", ErrSyntax)
	}

	// Fully unbounded range.
	if separatorPattern.MatchString(iv.raw) && strings.Trim(iv.raw, " -") == "" {
		return iv, nil
	}

	// A bare scalar is the degenerate range [v, v]. A leading dash is
	// an open lower bound ("-1990" means anything up to 1990), so
	// negative scalars do not exist here.
	if numericPattern.MatchString(iv.raw) || alphabeticPattern.MatchString(iv.raw) || datePattern.MatchString(iv.raw) {
		if err := iv.setBound(iv.raw, true); err != nil {
			return iv, err
		}
		if err := iv.setBound(iv.raw, false); err != nil {
			return iv, err
		}
		return iv, nil
	}

	parts := separatorPattern.Split(iv.raw, 2)
	if len(parts) != 2 {
		return iv, fmt.Errorf("%w: %q", ErrSyntax, raw)
	}
	low, high := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if low == "" && high == "" {
		return iv, nil
	}
	// Bound types must agree before either side is committed; setBound
	// overwrites iv.typ, so a late comparison would see only the high
	// bound's type.
	if low != "" && high != "" && boundType(low) != boundType(high) {
		return iv, fmt.Errorf("%w: %q mixes %s and %s bounds", ErrSyntax, raw, boundType(low), boundType(high))
	}
	if low != "" {
		if err := iv.setBound(low, true); err != nil {
			return iv, err
		}
	}
	if high != "" {
		if err := iv.setBound(high, false); err != nil {
			return iv, err
		}
	}
	return iv, nil
}

func boundType(s string) DataType {
	switch {
	case numericPattern.MatchString(s):
		return Numeric
	case datePattern.MatchString(s):
		return Date
	default:
		return Alphabetic
	}
}

func (iv *Interval) setBound(s string, low bool) error {
	switch {
	case numericPattern.MatchString(s):
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrSyntax, s)
		}
		iv.typ = Numeric
		if low {
			iv.lowNum, iv.hasLow = v, true
		} else {
			iv.highNum, iv.hasHigh = v, true
		}
	case datePattern.MatchString(s):
		day, err := time.Parse(DateLayout, s)
		if err != nil {
			return fmt.Errorf("%w: bad date %q", ErrSyntax, s)
		}
		iv.typ = Date
		if low {
			iv.lowDay, iv.hasLow = day, true
		} else {
			iv.highDay, iv.hasHigh = day, true
		}
	case alphabeticPattern.MatchString(s):
		iv.typ = Alphabetic
		if low {
			iv.lowStr, iv.hasLow = strings.ToLower(s), true
		} else {
			iv.highStr, iv.hasHigh = strings.ToLower(s), true
		}
	default:
		return fmt.Errorf("%w: bad bound %q", ErrSyntax, s)
	}
	return nil
}

// Type reports the bound data type. Unbounded intervals report Numeric.
func (iv Interval) Type() DataType { return iv.typ }

// Bounded reports whether the named side has a bound.
func (iv Interval) Bounded() (low, high bool) { return iv.hasLow, iv.hasHigh }

// Wraps reports whether the range is closed with low > high. Fields
// that cycle (hours, weekdays, months, month days) accept this and
// match with OR-of-both-bounds semantics; everything else must treat
// it as a configuration error.
func (iv Interval) Wraps() bool {
	if !iv.hasLow || !iv.hasHigh {
		return false
	}
	switch iv.typ {
	case Numeric:
		return iv.lowNum > iv.highNum
	case Alphabetic:
		return iv.lowStr > iv.highStr
	case Date:
		return iv.lowDay.After(iv.highDay)
	}
	return false
}

// Contains reports whether a numeric value falls inside the range.
// Non-numeric intervals never contain numbers.
func (iv Interval) Contains(v float64) bool {
	if iv.hasLow || iv.hasHigh {
		if iv.typ != Numeric {
			return false
		}
	}
	switch {
	case !iv.hasLow && !iv.hasHigh:
		return true
	case iv.hasLow && iv.hasHigh && iv.lowNum > iv.highNum:
		return v >= iv.lowNum || v <= iv.highNum
	case iv.hasLow && iv.hasHigh:
		return iv.lowNum <= v && v <= iv.highNum
	case iv.hasLow:
		return v >= iv.lowNum
	default:
		return v <= iv.highNum
	}
}

// ContainsString reports whether a string falls lexically inside an
// alphabetic range. Comparison is case-insensitive.
func (iv Interval) ContainsString(s string) bool {
	if iv.hasLow || iv.hasHigh {
		if iv.typ != Alphabetic {
			return false
		}
	}
	s = strings.ToLower(s)
	switch {
	case !iv.hasLow && !iv.hasHigh:
		return true
	case iv.hasLow && iv.hasHigh && iv.lowStr > iv.highStr:
		return s >= iv.lowStr || s <= iv.highStr
	case iv.hasLow && iv.hasHigh:
		return iv.lowStr <= s && s <= iv.highStr
	case iv.hasLow:
		return s >= iv.lowStr
	default:
		return s <= iv.highStr
	}
}

// ContainsTime reports whether an instant falls inside a date range.
// Bounds are whole days; the upper bound is inclusive through the end
// of its day.
func (iv Interval) ContainsTime(t time.Time) bool {
	if iv.hasLow || iv.hasHigh {
		if iv.typ != Date {
			return false
		}
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case !iv.hasLow && !iv.hasHigh:
		return true
	case iv.hasLow && iv.hasHigh:
		return !day.Before(iv.lowDay) && !day.After(iv.highDay)
	case iv.hasLow:
		return !day.Before(iv.lowDay)
	default:
		return !day.After(iv.highDay)
	}
}

func (iv Interval) String() string { return iv.raw }
