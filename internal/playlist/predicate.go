/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package playlist

import (
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/ruleset"
)

// Matches applies the item predicate: the include set must fully
// match (AND across fields, vacuously true when empty) and no exclude
// field may match. Metadata the item lacks fails closed, so an include
// on a missing field rejects the item and an exclude on a missing
// field leaves it alone.
func Matches(item catalog.Item, include, exclude ruleset.FilterSet) bool {
	for field, value := range include {
		if inertField(field) {
			continue
		}
		if !matchField(item, field, value) {
			return false
		}
	}
	for field, value := range exclude {
		if inertField(field) {
			continue
		}
		if matchField(item, field, value) {
			return false
		}
	}
	return true
}

// inertField marks filters the builder resolves itself: item_ids is
// the always-include / drop-first list and library_types only scopes
// the catalog query.
func inertField(field string) bool {
	return field == ruleset.FieldItemIDs || field == ruleset.FieldLibraryTypes
}

// matchField evaluates one filter field against the item.
func matchField(item catalog.Item, field string, v ruleset.Value) bool {
	switch field {
	case ruleset.FieldTags:
		return v.MatchesSet(item.Tags)
	case ruleset.FieldGenres:
		return v.MatchesSet(item.Genres)
	case ruleset.FieldItemTypes:
		return v.MatchesSet([]string{item.Type})
	case ruleset.FieldPeopleIDs:
		return v.MatchesSet(item.PeopleIDs)
	case ruleset.FieldLibraryIDs:
		return v.MatchesSet([]string{item.LibraryID})
	case ruleset.FieldOfficialRating:
		return v.MatchesSet([]string{item.OfficialRating})
	case ruleset.FieldCustomRating:
		return v.MatchesSet([]string{item.CustomRating})
	case ruleset.FieldYears:
		if item.ProductionYear == nil {
			return false
		}
		return v.ContainsNumber(float64(*item.ProductionYear))
	case ruleset.FieldCommunityRating:
		if item.CommunityRating == nil {
			return false
		}
		return v.ContainsNumber(*item.CommunityRating)
	case ruleset.FieldCriticRating:
		if item.CriticRating == nil {
			return false
		}
		return v.ContainsNumber(*item.CriticRating)
	case ruleset.FieldRuntime:
		if item.RuntimeMinutes == nil {
			return false
		}
		return v.ContainsNumber(*item.RuntimeMinutes)
	case ruleset.FieldStartwithName:
		if item.Name == "" {
			return false
		}
		return v.ContainsString(item.Name)
	}
	return false
}
