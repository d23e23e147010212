/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package ruleset loads and validates the listgen configuration
// document: an ordered list of selection rules and an ordered list of
// playlist definitions. Everything is resolved into typed values at
// load time so that selection and filtering never touch raw YAML
// shapes, and every configuration defect fails the load before any
// catalog query is issued.
package ruleset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid covers semantic configuration defects: malformed
	// values, duplicate names, unsupported sort keys.
	ErrInvalid = errors.New("invalid ruleset")
	// ErrUnknownField is returned when a filter set or condition block
	// references an unrecognized key.
	ErrUnknownField = errors.New("unknown field")
)

// SpecType distinguishes static and dynamic item specifications.
type SpecType string

const (
	SpecStatic  SpecType = "static"
	SpecDynamic SpecType = "dynamic"
)

// SortKey is a canonical playlist sort field.
type SortKey string

const (
	SortOrder           SortKey = "order"
	SortRandom          SortKey = "random"
	SortName            SortKey = "Name"
	SortSortName        SortKey = "SortName"
	SortDateCreated     SortKey = "DateCreated"
	SortPremiereDate    SortKey = "PremiereDate"
	SortCriticRating    SortKey = "CriticRating"
	SortCommunityRating SortKey = "CommunityRating"
	SortRuntime         SortKey = "Runtime"
	SortProductionYear  SortKey = "ProductionYear"
)

var sortKeys = map[string]SortKey{
	"order":           SortOrder,
	"random":          SortRandom,
	"name":            SortName,
	"sortname":        SortSortName,
	"datecreated":     SortDateCreated,
	"premieredate":    SortPremiereDate,
	"criticrating":    SortCriticRating,
	"communityrating": SortCommunityRating,
	"runtime":         SortRuntime,
	"runtimeticks":    SortRuntime,
	"productionyear":  SortProductionYear,
}

// ParseSortKey resolves a configured sort_by value case-insensitively.
func ParseSortKey(raw string) (SortKey, error) {
	if key, ok := sortKeys[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return key, nil
	}
	return "", fmt.Errorf("%w: can't sort by %q", ErrInvalid, raw)
}

// Condition is one temporal or viewer gate on a selection rule.
type Condition struct {
	Kind  string
	Value Value
	// Ages holds user_age thresholds: a negative entry -N matches
	// viewer age < N, a non-negative entry N matches age >= N. Any
	// matching entry satisfies the condition.
	Ages []int
}

// SelectionRule is a named, optionally condition-gated pointer to a
// playlist definition. Zero conditions means unconditional fallback.
type SelectionRule struct {
	Name       string
	Disabled   bool
	Selected   bool
	Conditions []Condition
}

// UnmarshalYAML decodes one selection entry: a name plus arbitrary
// condition keys from the closed condition vocabulary.
func (r *SelectionRule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: selection entry must be a mapping", ErrInvalid)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(node.Content[i].Value)
		val := node.Content[i+1]

		switch key {
		case "name":
			r.Name = strings.TrimSpace(val.Value)
		case "disabled":
			if err := val.Decode(&r.Disabled); err != nil {
				return fmt.Errorf("%w: disabled: %v", ErrInvalid, err)
			}
		case "selected":
			if err := val.Decode(&r.Selected); err != nil {
				return fmt.Errorf("%w: selected: %v", ErrInvalid, err)
			}
		case CondUserAge:
			ages, err := parseAges(val)
			if err != nil {
				return err
			}
			r.Conditions = append(r.Conditions, Condition{Kind: CondUserAge, Ages: ages})
		default:
			spec, ok := conditionFields[key]
			if !ok {
				return fmt.Errorf("%w: condition %q", ErrUnknownField, key)
			}
			value, err := parseRangeValue(val, spec.boundType, spec.cyclic)
			if err != nil {
				return fmt.Errorf("condition %q: %w", key, err)
			}
			r.Conditions = append(r.Conditions, Condition{Kind: key, Value: value})
		}
	}
	if r.Name == "" {
		return fmt.Errorf("%w: selection entry without name", ErrInvalid)
	}
	return nil
}

func parseAges(node *yaml.Node) ([]int, error) {
	raws, err := scalarValues(node)
	if err != nil {
		return nil, err
	}
	ages := make([]int, 0, len(raws))
	for _, raw := range raws {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: user_age %q is not an integer", ErrInvalid, raw)
		}
		ages = append(ages, age)
	}
	if len(ages) == 0 {
		return nil, fmt.Errorf("%w: user_age without value", ErrInvalid)
	}
	return ages, nil
}

// FilterSet maps canonical filter field names to resolved values.
// All present fields must match for the set to match; within one
// field any listed value matching is sufficient.
type FilterSet map[string]Value

// UnmarshalYAML decodes an include or exclude block against the
// closed filter vocabulary.
func (fs *FilterSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: filter block must be a mapping", ErrInvalid)
	}
	out := make(FilterSet, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(node.Content[i].Value)
		val := node.Content[i+1]

		spec, ok := filterFields[key]
		if !ok {
			return fmt.Errorf("%w: filter %q", ErrUnknownField, key)
		}
		var (
			value Value
			err   error
		)
		if spec.set {
			value, err = parseSetValue(val)
		} else {
			value, err = parseRangeValue(val, spec.boundType, false)
		}
		if err != nil {
			return fmt.Errorf("filter %q: %w", key, err)
		}
		out[key] = value
	}
	*fs = out
	return nil
}

// Get returns the resolved value for a field, if present.
func (fs FilterSet) Get(field string) (Value, bool) {
	v, ok := fs[field]
	return v, ok
}

// ItemSpec is the tagged item source of a playlist: a literal ID list
// or a filtered catalog query.
type ItemSpec struct {
	Type SpecType
	IDs  []string
	// Limit truncates the built playlist. Nil means unlimited; the
	// dynamic default is 10 when the key is absent.
	Limit   *int
	Include FilterSet
	Exclude FilterSet
}

// UnmarshalYAML decodes the items block of a playlist definition.
func (s *ItemSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: items must be a mapping", ErrInvalid)
	}
	limitSeen := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(node.Content[i].Value)
		val := node.Content[i+1]

		switch key {
		case "type":
			s.Type = SpecType(strings.ToLower(strings.TrimSpace(val.Value)))
		case "ids":
			if err := val.Decode(&s.IDs); err != nil {
				return fmt.Errorf("%w: ids: %v", ErrInvalid, err)
			}
		case "limit":
			limitSeen = true
			if val.Tag == "!!null" {
				break // explicit null lifts the default, unlimited
			}
			n, err := strconv.Atoi(strings.TrimSpace(val.Value))
			if err != nil || n < 0 {
				return fmt.Errorf("%w: limit %q must be a nonnegative integer", ErrInvalid, val.Value)
			}
			s.Limit = &n
		case "include":
			if err := val.Decode(&s.Include); err != nil {
				return err
			}
		case "exclude":
			if err := val.Decode(&s.Exclude); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: items key %q", ErrUnknownField, key)
		}
	}

	switch s.Type {
	case SpecStatic:
		if len(s.IDs) == 0 {
			return fmt.Errorf("%w: static playlist without ids", ErrInvalid)
		}
		if s.Include != nil || s.Exclude != nil || limitSeen {
			return fmt.Errorf("%w: static playlist takes only ids", ErrInvalid)
		}
		s.IDs = dedupe(s.IDs)
	case SpecDynamic:
		if len(s.IDs) != 0 {
			return fmt.Errorf("%w: dynamic playlist does not take ids", ErrInvalid)
		}
		if !limitSeen {
			def := 10
			s.Limit = &def
		}
		if s.Include == nil {
			s.Include = FilterSet{}
		}
		if s.Exclude == nil {
			s.Exclude = FilterSet{}
		}
	default:
		return fmt.Errorf("%w: unknown playlist type %q", ErrInvalid, s.Type)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// PlaylistDefinition describes how one playlist is materialized.
type PlaylistDefinition struct {
	Name          string
	SortBy        SortKey
	SortAscending bool
	SortStrict    bool
	Items         ItemSpec
}

// UnmarshalYAML decodes one playlist entry, applying the order/
// ascending defaults.
func (p *PlaylistDefinition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: playlist entry must be a mapping", ErrInvalid)
	}
	p.SortBy = SortOrder
	p.SortAscending = true

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(node.Content[i].Value)
		val := node.Content[i+1]

		switch key {
		case "name":
			p.Name = strings.TrimSpace(val.Value)
		case "sort_by":
			sortKey, err := ParseSortKey(val.Value)
			if err != nil {
				return err
			}
			p.SortBy = sortKey
		case "sort_ascending":
			if err := val.Decode(&p.SortAscending); err != nil {
				return fmt.Errorf("%w: sort_ascending: %v", ErrInvalid, err)
			}
		case "sort_strict":
			if err := val.Decode(&p.SortStrict); err != nil {
				return fmt.Errorf("%w: sort_strict: %v", ErrInvalid, err)
			}
		case "items":
			if err := val.Decode(&p.Items); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: playlist key %q", ErrUnknownField, key)
		}
	}
	if p.Name == "" {
		return fmt.Errorf("%w: playlist without name", ErrInvalid)
	}
	if p.Items.Type == "" {
		return fmt.Errorf("%w: playlist %q without items", ErrInvalid, p.Name)
	}
	return nil
}

// Document is a fully validated listgen configuration.
type Document struct {
	Selection []SelectionRule      `yaml:"selection"`
	Playlists []PlaylistDefinition `yaml:"playlists"`
}

// Parse reads and validates a configuration document.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load parses the configuration file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ruleset: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (d *Document) validate() error {
	if len(d.Selection) == 0 {
		return fmt.Errorf("%w: no selection rules", ErrInvalid)
	}
	if len(d.Playlists) == 0 {
		return fmt.Errorf("%w: no playlists", ErrInvalid)
	}

	ruleNames := make(map[string]struct{}, len(d.Selection))
	for _, rule := range d.Selection {
		key := strings.ToLower(rule.Name)
		if _, ok := ruleNames[key]; ok {
			return fmt.Errorf("%w: selection rule %q defined twice", ErrInvalid, rule.Name)
		}
		ruleNames[key] = struct{}{}
	}

	playlistNames := make(map[string]struct{}, len(d.Playlists))
	for _, pl := range d.Playlists {
		key := strings.ToLower(pl.Name)
		if _, ok := playlistNames[key]; ok {
			return fmt.Errorf("%w: playlist %q defined twice", ErrInvalid, pl.Name)
		}
		playlistNames[key] = struct{}{}
	}

	// Every selection target must resolve; a dangling name would only
	// surface after catalog work otherwise.
	for _, rule := range d.Selection {
		if _, ok := playlistNames[strings.ToLower(rule.Name)]; !ok {
			return fmt.Errorf("%w: selection rule %q has no playlist", ErrInvalid, rule.Name)
		}
	}
	return nil
}

// Playlist returns the definition matching name, case-insensitively.
func (d *Document) Playlist(name string) (PlaylistDefinition, bool) {
	for _, pl := range d.Playlists {
		if strings.EqualFold(pl.Name, name) {
			return pl, true
		}
	}
	return PlaylistDefinition{}, false
}
