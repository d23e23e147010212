/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/Users/AuthenticateByName", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "MediaBrowser Client=") {
			http.Error(w, "missing authorization header", http.StatusBadRequest)
			return
		}
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["Username"] != "api-user" || creds["Pw"] != "secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"AccessToken": "tok123",
			"User":        map[string]string{"Id": "user1"},
		})
	})

	mux.HandleFunc("/UserViews", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]string{
				{"Id": "lib-movies", "Name": "Movies", "CollectionType": "movies"},
				{"Id": "lib-shows", "Name": "Shows", "CollectionType": "tvshows"},
			},
		})
	})

	mux.HandleFunc("/Users/user1/Items", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), `Token="tok123"`) {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		if ids := r.URL.Query().Get("ids"); ids != "" {
			var items []map[string]any
			for _, id := range strings.Split(ids, ",") {
				items = append(items, map[string]any{"Id": id, "Name": "Item " + id})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"Items": items})
			return
		}
		if r.URL.Query().Get("parentId") != "lib-movies" {
			_ = json.NewEncoder(w).Encode(map[string]any{"Items": []any{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]any{
				{
					"Id":              "m1",
					"Name":            "Die Hard",
					"Type":            "Movie",
					"Genres":          []string{"Action"},
					"Tags":            []string{"christmas"},
					"CommunityRating": 8.2,
					"RunTimeTicks":    int64(79_800_000_000), // 133 minutes
					"ProductionYear":  1988,
				},
			},
		})
	})

	mux.HandleFunc("/Genres", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userId") != "user1" {
			http.Error(w, "missing userId", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]string{
				{"Id": "g1", "Name": "Action"},
				{"Id": "g2", "Name": "Comedy"},
			},
		})
	})

	mux.HandleFunc("/Users/kid1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Id":     "kid1",
			"Name":   "kid",
			"Policy": map[string]any{"MaxParentalRating": "FSK-12"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL}, zerolog.Nop())
	return srv, client
}

func TestAuthenticate(t *testing.T) {
	_, client := newTestServer(t)

	if err := client.Authenticate(context.Background(), "api-user", "secret"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if client.UserID() != "user1" {
		t.Errorf("UserID = %q, want user1", client.UserID())
	}

	if err := client.Authenticate(context.Background(), "api-user", "wrong"); !errors.Is(err, catalog.ErrUnavailable) {
		t.Errorf("bad credentials should map to ErrUnavailable, got %v", err)
	}
}

func TestItemsScopedByLibrary(t *testing.T) {
	_, client := newTestServer(t)
	if err := client.Authenticate(context.Background(), "api-user", "secret"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	items, err := client.Items(context.Background(), catalog.Query{LibraryTypes: []string{"movies"}})
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	item := items[0]
	if item.ID != "m1" || item.LibraryID != "lib-movies" {
		t.Errorf("item identity wrong: %+v", item)
	}
	if item.RuntimeMinutes == nil || *item.RuntimeMinutes != 133 {
		t.Errorf("runtime ticks not converted to minutes: %v", item.RuntimeMinutes)
	}
	if item.ProductionYear == nil || *item.ProductionYear != 1988 {
		t.Errorf("production year lost: %v", item.ProductionYear)
	}
}

func TestItemsByIDChunks(t *testing.T) {
	_, client := newTestServer(t)
	if err := client.Authenticate(context.Background(), "api-user", "secret"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	// More IDs than one batch holds.
	ids := make([]string, itemBatchSize+5)
	for i := range ids {
		ids[i] = "x" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	items, err := client.ItemsByID(context.Background(), ids)
	if err != nil {
		t.Fatalf("ItemsByID: %v", err)
	}
	if len(items) != len(ids) {
		t.Errorf("got %d items, want %d", len(items), len(ids))
	}
}

func TestGenres(t *testing.T) {
	_, client := newTestServer(t)
	if err := client.Authenticate(context.Background(), "api-user", "secret"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	genres, err := client.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	if len(genres) != 2 || genres[1].Name != "Comedy" {
		t.Errorf("genres = %+v", genres)
	}
}

func TestViewerAge(t *testing.T) {
	_, client := newTestServer(t)
	if err := client.Authenticate(context.Background(), "api-user", "secret"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	age, err := client.ViewerAge(context.Background(), "kid1")
	if err != nil {
		t.Fatalf("ViewerAge: %v", err)
	}
	if age == nil || *age != 12 {
		t.Errorf("age = %v, want 12", age)
	}
}

func TestServerDownIsUnavailable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
	err := client.Authenticate(context.Background(), "u", "p")
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}
