// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/reeltrack/reeltrack/internal/config"
)

const genreListJSON = `{"genres":[
	{"id":18,"name":"Drama"},
	{"id":80,"name":"Crime"},
	{"id":35,"name":"Comedy"}
]}`

const discoverJSON = `{"page":1,"total_pages":1,"total_results":3,"results":[
	{"id":101,"title":"Heat","poster_path":"/heat.jpg","genre_ids":[80,18],"vote_average":8.3,"vote_count":7000,"popularity":55.2,"release_date":"1995-12-15"},
	{"id":102,"name":"The Wire","genre_ids":[80],"vote_average":8.6,"vote_count":2400,"popularity":40.1,"release_date":"2002-06-02"},
	{"id":0,"title":"","genre_ids":[999],"vote_average":3.0,"vote_count":10,"popularity":1.0}
]}`

// requestLog records the queries a test server receives. Handlers run on
// the server's goroutines, so access is mutex-guarded.
type requestLog struct {
	mu   sync.Mutex
	urls []*url.URL
}

func (l *requestLog) add(u url.URL) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, &u)
}

func (l *requestLog) snapshot() []*url.URL {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*url.URL(nil), l.urls...)
}

// newTestClient points an HTTPClient at a test server and records the
// queries it receives.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *requestLog) {
	t.Helper()
	seen := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(*r.URL)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(config.CatalogConfig{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             1000,
	})
	return c, seen
}

func catalogHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/genre/movie/list":
		_, _ = w.Write([]byte(genreListJSON))
	default:
		_, _ = w.Write([]byte(discoverJSON))
	}
}

func TestDiscoverByGenresResolvesIDs(t *testing.T) {
	c, seen := newTestClient(t, catalogHandler)

	items, err := c.DiscoverByGenres(context.Background(), []string{"Crime", "Drama"}, Filters{MinVotes: 50})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	// The malformed third row must be dropped at the boundary.
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Heat" || items[0].Year != 1995 {
		t.Errorf("first item = %+v", items[0])
	}
	if len(items[0].Genres) != 2 {
		t.Errorf("genre ids not resolved: %+v", items[0].Genres)
	}
	// "name" fallback for series-shaped rows.
	if items[1].Title != "The Wire" {
		t.Errorf("second item = %+v", items[1])
	}

	// First request loads the vocabulary, second is the discover query.
	urls := seen.snapshot()
	last := urls[len(urls)-1]
	if got := last.Query().Get("with_genres"); got != "80,18" {
		t.Errorf("with_genres = %q, want %q", got, "80,18")
	}
	if got := last.Query().Get("vote_count.gte"); got != "50" {
		t.Errorf("vote_count.gte = %q, want %q", got, "50")
	}
	if got := last.Query().Get("api_key"); got != "test-key" {
		t.Errorf("api_key = %q", got)
	}
}

func TestDiscoverByGenresUnknownNames(t *testing.T) {
	c, seen := newTestClient(t, catalogHandler)

	items, err := c.DiscoverByGenres(context.Background(), []string{"Polka"}, Filters{})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if items != nil {
		t.Errorf("unknown genres must yield nil, got %+v", items)
	}
	// Only the vocabulary fetch goes out, never a discover query.
	if got := len(seen.snapshot()); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestGenreVocabularyCached(t *testing.T) {
	c, seen := newTestClient(t, catalogHandler)

	ctx := context.Background()
	if _, err := c.Genres(ctx); err != nil {
		t.Fatalf("genres: %v", err)
	}
	names, err := c.Genres(ctx)
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	// Sorted, so repeated generations walk the vocabulary identically.
	want := []string{"Comedy", "Crime", "Drama"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("vocabulary = %v, want %v", names, want)
	}
	if got := len(seen.snapshot()); got != 1 {
		t.Errorf("vocabulary fetched %d times, want 1", got)
	}
}

func TestTrendingAndSimilarPaths(t *testing.T) {
	c, seen := newTestClient(t, catalogHandler)

	ctx := context.Background()
	if _, err := c.Trending(ctx); err != nil {
		t.Fatalf("trending: %v", err)
	}
	if _, err := c.Similar(ctx, 101); err != nil {
		t.Fatalf("similar: %v", err)
	}

	urls := seen.snapshot()
	paths := make([]string, 0, len(urls))
	for _, u := range urls {
		paths = append(paths, u.Path)
	}
	want := map[string]bool{
		"/trending/movie/week": false,
		"/movie/101/similar":   false,
	}
	for _, p := range paths {
		if _, ok := want[p]; ok {
			want[p] = true
		}
	}
	for p, hit := range want {
		if !hit {
			t.Errorf("path %s never requested (saw %v)", p, paths)
		}
	}
}

func TestUpstreamErrorSurfaces(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/genre/movie/list" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(genreListJSON))
			return
		}
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	if _, err := c.DiscoverByGenres(context.Background(), []string{"Drama"}, Filters{}); err == nil {
		t.Fatal("expected error from 502 response")
	}
}

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1995-12-15", 1995},
		{"2002", 2002},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := releaseYear(tc.in); got != tc.want {
			t.Errorf("releaseYear(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
