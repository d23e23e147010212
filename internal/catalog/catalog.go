/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package catalog defines the media catalog seam consumed by the
// playlist builder. The Jellyfin client implements it; tests use
// in-memory fakes.
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the catalog could not be reached or
// refused the request. It fails only the playlist build in progress.
var ErrUnavailable = errors.New("catalog unavailable")

// Item is the metadata snapshot of one media item. Optional numeric
// fields are pointers so "absent" is distinguishable from zero; filter
// and sort code fails closed on nil.
type Item struct {
	ID             string
	Name           string
	SortName       string
	Type           string
	LibraryID      string
	Tags           []string
	Genres         []string
	PeopleIDs      []string
	OfficialRating string
	CustomRating   string

	CommunityRating *float64
	CriticRating    *float64
	RuntimeMinutes  *float64
	ProductionYear  *int
	PremiereDate    *time.Time
	DateCreated     *time.Time
}

// Query scopes a candidate fetch. All fields are hints: they narrow
// what the gateway returns but the item predicate re-checks every
// filter, so an over-broad result is never incorrect.
type Query struct {
	LibraryIDs        []string
	ExcludeLibraryIDs []string
	LibraryTypes      []string
	ExcludeLibTypes   []string
	ItemTypes         []string
}

// Catalog supplies candidate items and their metadata.
type Catalog interface {
	// Items returns candidates scoped by the query in one batched
	// retrieval per run.
	Items(ctx context.Context, q Query) ([]Item, error)

	// ItemsByID resolves known item IDs to metadata. Unknown IDs are
	// silently absent from the result.
	ItemsByID(ctx context.Context, ids []string) ([]Item, error)
}
