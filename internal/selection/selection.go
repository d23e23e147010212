/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package selection picks one playlist name from the ordered selection
// rules. Evaluation is a pure function of the rule list, the reference
// instant and the viewer context: first enabled matching rule wins.
package selection

import (
	"errors"
	"time"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/ruleset"
	"github.com/rs/zerolog"
)

// ErrNoMatch indicates no selection rule matched and no fallback rule
// was present. This is a configuration defect, never defaulted away.
var ErrNoMatch = errors.New("no selection rule matched")

// Viewer is the optional viewer context. Age is nil when no viewer
// user is configured; user_age conditions are then skipped.
type Viewer struct {
	Age *int
}

// Selector evaluates selection rules against a reference instant.
type Selector struct {
	logger zerolog.Logger
}

// New creates a selector.
func New(logger zerolog.Logger) *Selector {
	return &Selector{logger: logger.With().Str("component", "selector").Logger()}
}

// Select returns the name of the first enabled rule whose conditions
// all match at now. Rule order is declaration order; the result is
// deterministic for identical inputs.
func (s *Selector) Select(rules []ruleset.SelectionRule, now time.Time, viewer Viewer) (string, error) {
	for _, rule := range rules {
		if s.Matches(rule, now, viewer) {
			s.logger.Debug().Str("rule", rule.Name).Time("now", now).Msg("selection rule matched")
			return rule.Name, nil
		}
	}
	return "", ErrNoMatch
}

// Matches reports whether every condition on the rule holds at now.
// A disabled rule never matches; a selected rule always does; a rule
// without conditions is an unconditional fallback.
func (s *Selector) Matches(rule ruleset.SelectionRule, now time.Time, viewer Viewer) bool {
	if rule.Disabled {
		return false
	}
	if rule.Selected {
		return true
	}
	for _, cond := range rule.Conditions {
		if !s.matchCondition(cond, now, viewer) {
			return false
		}
	}
	return true
}

func (s *Selector) matchCondition(cond ruleset.Condition, now time.Time, viewer Viewer) bool {
	switch cond.Kind {
	case ruleset.CondHours:
		return cond.Value.ContainsNumber(float64(now.Hour()))
	case ruleset.CondWeekdays:
		return cond.Value.ContainsNumber(float64(isoWeekday(now)))
	case ruleset.CondDays:
		return cond.Value.ContainsNumber(float64(now.Day()))
	case ruleset.CondWeeks:
		_, week := now.ISOWeek()
		return cond.Value.ContainsNumber(float64(week))
	case ruleset.CondMonths:
		return cond.Value.ContainsNumber(float64(now.Month()))
	case ruleset.CondYears:
		return cond.Value.ContainsNumber(float64(now.Year()))
	case ruleset.CondDates:
		return cond.Value.ContainsTime(now)
	case ruleset.CondUserAge:
		if viewer.Age == nil {
			// No viewer context configured; the gate is inert.
			return true
		}
		return matchAge(cond.Ages, *viewer.Age)
	}
	return false
}

// matchAge applies the signed threshold convention: -N matches
// age < N, a non-negative N matches age >= N. Any listed threshold
// matching is sufficient.
func matchAge(thresholds []int, age int) bool {
	for _, t := range thresholds {
		if t < 0 {
			if age < -t {
				return true
			}
		} else if age >= t {
			return true
		}
	}
	return false
}

// isoWeekday maps time.Weekday to ISO numbering, Monday=1 Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
