/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runs := []*Run{
		{Playlist: "default", ItemCount: 10, Status: StatusOK},
		{Playlist: "christmas", ItemCount: 25, Status: StatusOK},
		{Playlist: "", Status: StatusError, Error: "catalog unavailable"},
	}
	for _, run := range runs {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if run.ID == "" {
			t.Error("Record() did not assign an ID")
		}
		if run.CreatedAt.IsZero() {
			t.Error("Record() did not assign a timestamp")
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent() returned %d runs, want 3", len(recent))
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, &Run{Playlist: "default", Status: StatusOK}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Recent(2) returned %d runs, want 2", len(recent))
	}
}
