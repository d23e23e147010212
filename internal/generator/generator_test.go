/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/history"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/selection"
)

type fakeCatalog struct {
	items []catalog.Item
	err   error
}

func (f *fakeCatalog) Items(ctx context.Context, q catalog.Query) ([]catalog.Item, error) {
	return f.items, f.err
}

func (f *fakeCatalog) ItemsByID(ctx context.Context, ids []string) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, id := range ids {
		for _, item := range f.items {
			if item.ID == id {
				out = append(out, item)
			}
		}
	}
	return out, f.err
}

type fakeViewers struct {
	age *int
	err error
}

func (f *fakeViewers) ViewerAge(ctx context.Context, userID string) (*int, error) {
	return f.age, f.err
}

const testRuleset = `
selection:
  - name: kids
    user_age: -13
  - name: default

playlists:
  - name: kids
    sort_by: Name
    items:
      type: dynamic
      include:
        genres: animation
  - name: default
    items:
      type: static
      ids: [m1, m2]
`

func writeRuleset(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mediabar.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testItems() []catalog.Item {
	return []catalog.Item{
		{ID: "m1", Name: "Beta", Genres: []string{"animation"}},
		{ID: "m2", Name: "Alpha", Genres: []string{"animation"}},
		{ID: "m3", Name: "Gamma", Genres: []string{"horror"}},
	}
}

func TestRunDynamicViewer(t *testing.T) {
	out := filepath.Join(t.TempDir(), "list.txt")
	age := 9
	runner := New(Options{
		RulesetPath:  writeRuleset(t, testRuleset),
		OutputPath:   out,
		ViewerUserID: "kid1",
		Catalog:      &fakeCatalog{items: testItems()},
		Viewers:      &fakeViewers{age: &age},
	}, zerolog.Nop())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Playlist != "kids" {
		t.Errorf("Playlist = %q, want kids", result.Playlist)
	}
	if len(result.ItemIDs) != 2 || result.ItemIDs[0] != "m2" || result.ItemIDs[1] != "m1" {
		t.Errorf("ItemIDs = %v, want [m2 m1]", result.ItemIDs)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "kids\nm2\nm1"
	if string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
}

func TestRunAgeGateInertWithoutViewer(t *testing.T) {
	// With no viewer configured the user_age condition is skipped, so
	// the kids rule still matches.
	out := filepath.Join(t.TempDir(), "list.txt")
	runner := New(Options{
		RulesetPath: writeRuleset(t, testRuleset),
		OutputPath:  out,
		Catalog:     &fakeCatalog{items: testItems()},
	}, zerolog.Nop())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Playlist != "kids" {
		t.Errorf("Playlist = %q, want kids", result.Playlist)
	}
}

func TestRunFallsThroughToStatic(t *testing.T) {
	out := filepath.Join(t.TempDir(), "list.txt")
	age := 40
	runner := New(Options{
		RulesetPath:  writeRuleset(t, testRuleset),
		OutputPath:   out,
		ViewerUserID: "adult",
		Catalog:      &fakeCatalog{items: testItems()},
		Viewers:      &fakeViewers{age: &age},
	}, zerolog.Nop())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Playlist != "default" {
		t.Errorf("Playlist = %q, want default", result.Playlist)
	}
	if len(result.ItemIDs) != 2 || result.ItemIDs[0] != "m1" {
		t.Errorf("static order not preserved: %v", result.ItemIDs)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()

	runner := New(Options{
		RulesetPath: writeRuleset(t, testRuleset),
		OutputPath:  filepath.Join(t.TempDir(), "list.txt"),
		Catalog:     &fakeCatalog{items: testItems()},
		Store:       store,
	}, zerolog.Nop())

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusOK || runs[0].Playlist != "default" {
		t.Errorf("recorded run = %+v", runs)
	}
	if runs[0].ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", runs[0].ItemCount)
	}
}

func TestRunNoMatch(t *testing.T) {
	doc := `
selection:
  - name: kids
    user_age: -13

playlists:
  - name: kids
    items:
      type: dynamic
      include:
        genres: animation
`

	store, err := history.Open(filepath.Join(t.TempDir(), "runs.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()

	age := 40
	runner := New(Options{
		RulesetPath:  writeRuleset(t, doc),
		OutputPath:   filepath.Join(t.TempDir(), "list.txt"),
		ViewerUserID: "adult",
		Catalog:      &fakeCatalog{items: testItems()},
		Viewers:      &fakeViewers{age: &age},
		Store:        store,
	}, zerolog.Nop())

	if _, err := runner.Run(context.Background()); !errors.Is(err, selection.ErrNoMatch) {
		t.Fatalf("Run() error = %v, want ErrNoMatch", err)
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusNoMatch {
		t.Errorf("recorded run = %+v, want no_match", runs)
	}
}

func TestRunCatalogError(t *testing.T) {
	runner := New(Options{
		RulesetPath:  writeRuleset(t, testRuleset),
		OutputPath:   filepath.Join(t.TempDir(), "list.txt"),
		ViewerUserID: "kid1",
		Catalog:      &fakeCatalog{err: catalog.ErrUnavailable},
		Viewers:      &fakeViewers{age: iptr(9)},
	}, zerolog.Nop())

	if _, err := runner.Run(context.Background()); !errors.Is(err, catalog.ErrUnavailable) {
		t.Fatalf("Run() error = %v, want ErrUnavailable", err)
	}
}

func TestRunFixedClock(t *testing.T) {
	doc := `
selection:
  - name: christmas
    months: 12
  - name: default

playlists:
  - name: christmas
    items:
      type: static
      ids: [x1]
  - name: default
    items:
      type: static
      ids: [d1]
`
	out := filepath.Join(t.TempDir(), "list.txt")
	runner := New(Options{
		RulesetPath: writeRuleset(t, doc),
		OutputPath:  out,
		Catalog:     &fakeCatalog{},
		Now:         func() time.Time { return time.Date(2026, time.December, 24, 18, 0, 0, 0, time.UTC) },
	}, zerolog.Nop())

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Playlist != "christmas" {
		t.Errorf("Playlist = %q, want christmas", result.Playlist)
	}
}

func iptr(v int) *int { return &v }
