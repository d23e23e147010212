/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package ruleset

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/interval"
	"gopkg.in/yaml.v3"
)

// ValueKind tags how a configured value matches at evaluation time.
// The raw YAML shape (scalar, comma list, sequence, range string) is
// resolved exactly once at load; matching code never re-inspects it.
type ValueKind int

const (
	// KindSet matches by case-insensitive membership.
	KindSet ValueKind = iota
	// KindRanges matches when any interval contains the value. A
	// scalar is a single degenerate interval.
	KindRanges
)

// Value is one resolved filter or condition value.
type Value struct {
	Kind   ValueKind
	Set    []string
	Ranges []interval.Interval
}

// ContainsNumber reports whether any range contains v.
func (v Value) ContainsNumber(f float64) bool {
	for _, r := range v.Ranges {
		if r.Contains(f) {
			return true
		}
	}
	return false
}

// ContainsString reports whether any alphabetic range contains s.
func (v Value) ContainsString(s string) bool {
	for _, r := range v.Ranges {
		if r.ContainsString(s) {
			return true
		}
	}
	return false
}

// ContainsTime reports whether any date range contains t.
func (v Value) ContainsTime(t time.Time) bool {
	for _, r := range v.Ranges {
		if r.ContainsTime(t) {
			return true
		}
	}
	return false
}

// MatchesSet reports whether any of the item's values is in the set.
// Both sides are compared lowercased.
func (v Value) MatchesSet(itemValues []string) bool {
	for _, iv := range itemValues {
		lowered := strings.ToLower(strings.TrimSpace(iv))
		if lowered == "" {
			continue
		}
		for _, sv := range v.Set {
			if sv == lowered {
				return true
			}
		}
	}
	return false
}

var commaSplit = regexp.MustCompile(` *, *`)

// scalarValues flattens a YAML node into its raw scalar strings:
// either a sequence of scalars or a single (possibly comma separated)
// scalar.
func scalarValues(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		raw := strings.TrimSpace(node.Value)
		if strings.Contains(raw, ",") {
			parts := commaSplit.Split(raw, -1)
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out, nil
		}
		return []string{raw}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			if child.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: nested structure in value list", ErrInvalid)
			}
			if s := strings.TrimSpace(child.Value); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected scalar or list", ErrInvalid)
	}
}

// parseSetValue resolves a set-matching value (tags, genres, ids...).
func parseSetValue(node *yaml.Node) (Value, error) {
	raws, err := scalarValues(node)
	if err != nil {
		return Value{}, err
	}
	set := make([]string, 0, len(raws))
	for _, raw := range raws {
		set = append(set, strings.ToLower(raw))
	}
	return Value{Kind: KindSet, Set: set}, nil
}

// parseRangeValue resolves a range-matching value. Each element may be
// a scalar (degenerate interval) or a range string; wantType pins the
// bound data type and cyclic allows low > high wrapping.
func parseRangeValue(node *yaml.Node, wantType interval.DataType, cyclic bool) (Value, error) {
	raws, err := scalarValues(node)
	if err != nil {
		return Value{}, err
	}
	ranges := make([]interval.Interval, 0, len(raws))
	for _, raw := range raws {
		iv, err := interval.Parse(raw)
		if err != nil {
			return Value{}, err
		}
		if low, high := iv.Bounded(); (low || high) && iv.Type() != wantType {
			return Value{}, fmt.Errorf("%w: %q: expected %s bounds, got %s", ErrInvalid, raw, wantType, iv.Type())
		}
		if iv.Wraps() && !cyclic {
			return Value{}, fmt.Errorf("%w: %q: lower bound above upper bound", ErrInvalid, raw)
		}
		ranges = append(ranges, iv)
	}
	return Value{Kind: KindRanges, Ranges: ranges}, nil
}
