/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package playlist

import (
	"sort"
	"strings"
	"time"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/ruleset"
)

// sortValue is the extracted sort key of one item. Items without a
// usable key sort last in either direction.
type sortValue struct {
	str     string
	num     float64
	present bool
}

type extractor func(catalog.Item) (sortValue, bool)

func strKey(get func(catalog.Item) string) extractor {
	return func(it catalog.Item) (sortValue, bool) {
		s := get(it)
		if s == "" {
			return sortValue{}, false
		}
		return sortValue{str: strings.ToLower(s), present: true}, true
	}
}

func numKey(get func(catalog.Item) (float64, bool)) extractor {
	return func(it catalog.Item) (sortValue, bool) {
		n, ok := get(it)
		if !ok {
			return sortValue{}, false
		}
		return sortValue{num: n, present: true}, true
	}
}

func timeUnix(t *time.Time) (float64, bool) {
	if t == nil {
		return 0, false
	}
	return float64(t.Unix()), true
}

// sortChains maps each sort key to its ordered candidate extractors.
// The first entry is the strict key; the rest are the documented
// fallbacks used when sort_strict is false: name keys fall back to
// each other, critic and community ratings substitute for one another
// on their respective 0-100 and 0-10 scales, and year and premiere
// date are interchangeable at year resolution.
var sortChains = map[ruleset.SortKey][]extractor{
	ruleset.SortName: {
		strKey(func(it catalog.Item) string { return it.Name }),
		strKey(func(it catalog.Item) string { return it.SortName }),
	},
	ruleset.SortSortName: {
		strKey(func(it catalog.Item) string { return it.SortName }),
		strKey(func(it catalog.Item) string { return it.Name }),
	},
	ruleset.SortDateCreated: {
		numKey(func(it catalog.Item) (float64, bool) { return timeUnix(it.DateCreated) }),
	},
	ruleset.SortPremiereDate: {
		numKey(func(it catalog.Item) (float64, bool) { return timeUnix(it.PremiereDate) }),
		numKey(func(it catalog.Item) (float64, bool) {
			if it.ProductionYear == nil {
				return 0, false
			}
			jan1 := time.Date(*it.ProductionYear, 1, 1, 0, 0, 0, 0, time.UTC)
			return float64(jan1.Unix()), true
		}),
	},
	ruleset.SortProductionYear: {
		numKey(func(it catalog.Item) (float64, bool) {
			if it.ProductionYear == nil {
				return 0, false
			}
			return float64(*it.ProductionYear), true
		}),
		numKey(func(it catalog.Item) (float64, bool) {
			if it.PremiereDate == nil {
				return 0, false
			}
			return float64(it.PremiereDate.Year()), true
		}),
	},
	ruleset.SortCriticRating: {
		numKey(func(it catalog.Item) (float64, bool) {
			if it.CriticRating == nil {
				return 0, false
			}
			return *it.CriticRating, true
		}),
		numKey(func(it catalog.Item) (float64, bool) {
			if it.CommunityRating == nil {
				return 0, false
			}
			return *it.CommunityRating * 10, true
		}),
	},
	ruleset.SortCommunityRating: {
		numKey(func(it catalog.Item) (float64, bool) {
			if it.CommunityRating == nil {
				return 0, false
			}
			return *it.CommunityRating, true
		}),
		numKey(func(it catalog.Item) (float64, bool) {
			if it.CriticRating == nil {
				return 0, false
			}
			return *it.CriticRating / 10, true
		}),
	},
	ruleset.SortRuntime: {
		numKey(func(it catalog.Item) (float64, bool) {
			if it.RuntimeMinutes == nil {
				return 0, false
			}
			return *it.RuntimeMinutes, true
		}),
	},
}

// extract resolves the sort key of one item. In strict mode only the
// primary key counts; otherwise the fallback chain is walked until a
// key is present.
func extract(it catalog.Item, chain []extractor, strict bool) sortValue {
	if strict {
		v, _ := chain[0](it)
		return v
	}
	for _, ex := range chain {
		if v, ok := ex(it); ok {
			return v
		}
	}
	return sortValue{}
}

// sortByKey orders items by the requested key. Items lacking the key
// (after fallback) sort last regardless of direction; ties are broken
// by item ID so the order is deterministic. It returns the number of
// items that had no usable key.
func sortByKey(items []catalog.Item, key ruleset.SortKey, ascending, strict bool) int {
	chain := sortChains[key]
	values := make([]sortValue, len(items))
	missing := 0
	for i, it := range items {
		values[i] = extract(it, chain, strict)
		if !values[i].present {
			missing++
		}
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := values[order[a]], values[order[b]]
		if va.present != vb.present {
			return va.present
		}
		if va.present {
			if cmp := compare(va, vb); cmp != 0 {
				if ascending {
					return cmp < 0
				}
				return cmp > 0
			}
		}
		return items[order[a]].ID < items[order[b]].ID
	})

	sorted := make([]catalog.Item, len(items))
	for i, idx := range order {
		sorted[i] = items[idx]
	}
	copy(items, sorted)
	return missing
}

func compare(a, b sortValue) int {
	if a.str != "" || b.str != "" {
		switch {
		case a.str < b.str:
			return -1
		case a.str > b.str:
			return 1
		}
		return 0
	}
	switch {
	case a.num < b.num:
		return -1
	case a.num > b.num:
		return 1
	}
	return 0
}
