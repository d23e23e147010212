/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package ruleset

import "github.com/FabianBartl/jellyfin-mediabar-listgen/internal/interval"

// Filter field names.
const (
	FieldTags            = "tags"
	FieldGenres          = "genres"
	FieldItemTypes       = "item_types"
	FieldItemIDs         = "item_ids"
	FieldPeopleIDs       = "people_ids"
	FieldLibraryIDs      = "library_ids"
	FieldLibraryTypes    = "library_types"
	FieldOfficialRating  = "official_rating"
	FieldCustomRating    = "custom_rating"
	FieldYears           = "years"
	FieldCommunityRating = "community_rating"
	FieldCriticRating    = "critic_rating"
	FieldRuntime         = "runtime"
	FieldStartwithName   = "startwith_name"
)

// Condition field names.
const (
	CondDays     = "days"
	CondWeekdays = "weekdays"
	CondWeeks    = "weeks"
	CondMonths   = "months"
	CondYears    = "years"
	CondHours    = "hours"
	CondDates    = "dates"
	CondUserAge  = "user_age"
)

type filterSpec struct {
	set       bool
	boundType interval.DataType
}

// filterFields is the closed set of FilterSet keys. Anything else in
// an include/exclude block fails the load.
var filterFields = map[string]filterSpec{
	FieldTags:            {set: true},
	FieldGenres:          {set: true},
	FieldItemTypes:       {set: true},
	FieldItemIDs:         {set: true},
	FieldPeopleIDs:       {set: true},
	FieldLibraryIDs:      {set: true},
	FieldLibraryTypes:    {set: true},
	FieldOfficialRating:  {set: true},
	FieldCustomRating:    {set: true},
	FieldYears:           {boundType: interval.Numeric},
	FieldCommunityRating: {boundType: interval.Numeric},
	FieldCriticRating:    {boundType: interval.Numeric},
	FieldRuntime:         {boundType: interval.Numeric},
	FieldStartwithName:   {boundType: interval.Alphabetic},
}

type conditionSpec struct {
	boundType interval.DataType
	// cyclic fields accept wrapping ranges: hours "22-3" spans
	// midnight, weekdays "6-1" spans the weekend into Monday.
	cyclic bool
}

// conditionFields is the closed set of temporal condition keys on a
// selection rule, besides user_age which is a signed threshold and
// handled separately.
var conditionFields = map[string]conditionSpec{
	CondHours:    {boundType: interval.Numeric, cyclic: true},
	CondWeekdays: {boundType: interval.Numeric, cyclic: true},
	CondDays:     {boundType: interval.Numeric, cyclic: true},
	CondWeeks:    {boundType: interval.Numeric, cyclic: true},
	CondMonths:   {boundType: interval.Numeric, cyclic: true},
	CondYears:    {boundType: interval.Numeric},
	CondDates:    {boundType: interval.Date},
}
