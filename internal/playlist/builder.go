/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package playlist materializes one playlist definition into the
// final ordered item ID list: static lists pass through unchanged,
// dynamic lists fetch candidates from the catalog, filter them with
// the item predicate, sort and truncate.
package playlist

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/ruleset"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/telemetry"
	"github.com/rs/zerolog"
)

// Builder resolves playlist definitions against a catalog.
type Builder struct {
	catalog catalog.Catalog
	logger  zerolog.Logger
	rng     *rand.Rand
}

// NewBuilder creates a builder. The shuffle order of random playlists
// is seeded from the wall clock and not reproducible across runs.
func NewBuilder(cat catalog.Catalog, logger zerolog.Logger) *Builder {
	return &Builder{
		catalog: cat,
		logger:  logger.With().Str("component", "builder").Logger(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Build materializes the definition into an ordered ID list. A
// catalog failure is terminal for this playlist only.
func (b *Builder) Build(ctx context.Context, def ruleset.PlaylistDefinition) ([]string, error) {
	switch def.Items.Type {
	case ruleset.SpecStatic:
		return b.buildStatic(def), nil
	case ruleset.SpecDynamic:
		return b.buildDynamic(ctx, def)
	}
	return nil, fmt.Errorf("%w: playlist %q has no item spec", ruleset.ErrInvalid, def.Name)
}

// buildStatic returns the curated ID order untouched. sort_by is
// deliberately ignored for static lists: the declared order is the
// output order.
func (b *Builder) buildStatic(def ruleset.PlaylistDefinition) []string {
	ids := make([]string, len(def.Items.IDs))
	copy(ids, def.Items.IDs)
	b.logger.Debug().Str("playlist", def.Name).Int("items", len(ids)).Msg("static playlist passed through")
	return ids
}

func (b *Builder) buildDynamic(ctx context.Context, def ruleset.PlaylistDefinition) ([]string, error) {
	include, exclude := def.Items.Include, def.Items.Exclude

	items, err := b.catalog.Items(ctx, scopeQuery(include, exclude))
	if err != nil {
		return nil, fmt.Errorf("playlist %q: fetch candidates: %w", def.Name, err)
	}
	b.logger.Debug().Str("playlist", def.Name).Int("candidates", len(items)).Msg("fetched candidates")

	// Hard exclusions by ID come off before any filtering.
	if ex, ok := exclude.Get(ruleset.FieldItemIDs); ok {
		kept := items[:0]
		for _, it := range items {
			if !ex.MatchesSet([]string{it.ID}) {
				kept = append(kept, it)
			}
		}
		items = kept
	}

	matched := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if Matches(it, include, exclude) {
			matched = append(matched, it)
		}
	}
	b.logger.Debug().Str("playlist", def.Name).Int("matched", len(matched)).Msg("filtered candidates")

	// The include item_ids list is appended unconditionally; its items
	// take part in sorting like any filtered candidate.
	if inc, ok := include.Get(ruleset.FieldItemIDs); ok {
		extra, err := b.alwaysInclude(ctx, inc.Set, matched)
		if err != nil {
			return nil, fmt.Errorf("playlist %q: resolve include ids: %w", def.Name, err)
		}
		matched = append(matched, extra...)
	}

	b.order(matched, def)

	if limit := def.Items.Limit; limit != nil && len(matched) > *limit {
		b.logger.Debug().Str("playlist", def.Name).Int("limit", *limit).Msg("limit applied")
		matched = matched[:*limit]
	}

	ids := make([]string, len(matched))
	for i, it := range matched {
		ids[i] = it.ID
	}
	return ids, nil
}

// alwaysInclude resolves the include.item_ids entries that are not
// already part of the matched set.
func (b *Builder) alwaysInclude(ctx context.Context, ids []string, have []catalog.Item) ([]catalog.Item, error) {
	present := make(map[string]struct{}, len(have))
	for _, it := range have {
		present[it.ID] = struct{}{}
	}
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	return b.catalog.ItemsByID(ctx, missing)
}

// order sorts the matched candidates in place according to the
// definition's sort key and direction.
func (b *Builder) order(items []catalog.Item, def ruleset.PlaylistDefinition) {
	switch def.SortBy {
	case ruleset.SortRandom:
		b.rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	case ruleset.SortOrder:
		if !def.SortAscending {
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
		}
	default:
		missing := sortByKey(items, def.SortBy, def.SortAscending, def.SortStrict)
		if missing > 0 {
			telemetry.SortKeysMissing.WithLabelValues(string(def.SortBy)).Add(float64(missing))
			b.logger.Warn().
				Str("playlist", def.Name).
				Str("sort_by", string(def.SortBy)).
				Int("items", missing).
				Msg("items without sort key placed last")
		}
	}
}

// scopeQuery narrows the catalog fetch with the library and type
// hints from the filter sets. This is an optimization only: the item
// predicate re-checks everything that can be checked per item.
func scopeQuery(include, exclude ruleset.FilterSet) catalog.Query {
	var q catalog.Query
	if v, ok := include.Get(ruleset.FieldLibraryIDs); ok {
		q.LibraryIDs = v.Set
	}
	if v, ok := exclude.Get(ruleset.FieldLibraryIDs); ok {
		q.ExcludeLibraryIDs = v.Set
	}
	if v, ok := include.Get(ruleset.FieldLibraryTypes); ok {
		q.LibraryTypes = v.Set
	}
	if v, ok := exclude.Get(ruleset.FieldLibraryTypes); ok {
		q.ExcludeLibTypes = v.Set
	}
	if v, ok := include.Get(ruleset.FieldItemTypes); ok {
		q.ItemTypes = v.Set
	}
	return q
}
