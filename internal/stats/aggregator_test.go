// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/reeltrack/reeltrack/internal/models"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func tsPtr(t time.Time) *time.Time { return &t }

func fixtureHistory() []models.InteractionRecord {
	return []models.InteractionRecord{
		{
			UserID: "u1", TitleID: 1, Kind: models.MediaMovie,
			Watched: true, WatchedAt: tsPtr(testNow.AddDate(0, 0, -1)),
			Liked: true, Title: "Heat", Year: 1995,
			Genres:         []string{"Crime", "Drama"},
			Cast:           []models.Person{{ID: 1, Name: "Al Pacino"}, {ID: 2, Name: "Robert De Niro"}},
			Crew:           []models.Person{{ID: 3, Name: "Michael Mann", Job: "Director"}},
			RuntimeMinutes: intPtr(170),
			UpdatedAt:      testNow.AddDate(0, 0, -1),
		},
		{
			UserID: "u1", TitleID: 2, Kind: models.MediaMovie,
			Watched: true, WatchedAt: tsPtr(testNow.AddDate(0, 0, -5)),
			Title: "Collateral", Year: 2004,
			Genres:         []string{"Crime", "Thriller"},
			Cast:           []models.Person{{ID: 4, Name: "Tom Cruise"}},
			Crew:           []models.Person{{ID: 3, Name: "Michael Mann", Job: "Director"}},
			RuntimeMinutes: intPtr(120),
			UpdatedAt:      testNow.AddDate(0, 0, -5),
		},
		{
			UserID: "u1", TitleID: 3, Kind: models.MediaMovie,
			Watched: true, WatchedAt: tsPtr(testNow.AddDate(0, 0, -3)),
			Liked: true, Title: "The Insider", Year: 1999,
			Genres:         []string{"Drama"},
			Cast:           []models.Person{{ID: 1, Name: "Al Pacino"}},
			Crew:           []models.Person{{ID: 3, Name: "Michael Mann", Job: "Director"}, {ID: 5, Name: "Dante Spinotti", Job: "Cinematographer"}},
			RuntimeMinutes: intPtr(157),
			UpdatedAt:      testNow.AddDate(0, 0, -2),
		},
		{
			UserID: "u1", TitleID: 4, Kind: models.MediaMovie,
			Watchlisted: true, Title: "Thief", Year: 1981,
			Genres:    []string{"Crime"},
			UpdatedAt: testNow.AddDate(0, 0, -10),
		},
	}
}

func fixtureRatings() []models.RatingRecord {
	return []models.RatingRecord{
		{UserID: "u1", SubjectID: 1, Rating: 5},
		{UserID: "u1", SubjectID: 2, Rating: 4},
		{UserID: "u1", SubjectID: 3, Rating: 5},
	}
}

func TestComputeTotals(t *testing.T) {
	b := Compute("u1", fixtureHistory(), fixtureRatings(), testNow)

	if b.WatchedCount != 3 {
		t.Errorf("watched = %d, want 3", b.WatchedCount)
	}
	if b.LikedCount != 2 {
		t.Errorf("liked = %d, want 2", b.LikedCount)
	}
	if b.WatchlistedCount != 1 {
		t.Errorf("watchlisted = %d, want 1", b.WatchlistedCount)
	}
	if b.TotalRuntimeMinutes != 170+120+157 {
		t.Errorf("runtime = %d, want %d", b.TotalRuntimeMinutes, 170+120+157)
	}
}

func TestComputeYearAndDecade(t *testing.T) {
	b := Compute("u1", fixtureHistory(), nil, testNow)

	wantYears := []models.YearCount{
		{Year: 1995, Count: 1, RuntimeMinutes: 170},
		{Year: 1999, Count: 1, RuntimeMinutes: 157},
		{Year: 2004, Count: 1, RuntimeMinutes: 120},
	}
	if !reflect.DeepEqual(b.ByYear, wantYears) {
		t.Errorf("by year = %+v, want %+v", b.ByYear, wantYears)
	}

	// The unwatched 1981 title must not appear in any decade bucket.
	wantDecades := []models.YearCount{
		{Year: 1990, Count: 2, RuntimeMinutes: 327},
		{Year: 2000, Count: 1, RuntimeMinutes: 120},
	}
	if !reflect.DeepEqual(b.ByDecade, wantDecades) {
		t.Errorf("by decade = %+v, want %+v", b.ByDecade, wantDecades)
	}
}

func TestComputeGenreFrequency(t *testing.T) {
	b := Compute("u1", fixtureHistory(), nil, testNow)

	// Crime and Drama both appear twice among watched items; Crime was
	// seen first in the stored order, so it ranks first.
	want := []models.NameCount{
		{Name: "Crime", Count: 2},
		{Name: "Drama", Count: 2},
		{Name: "Thriller", Count: 1},
	}
	if !reflect.DeepEqual(b.TopGenres, want) {
		t.Errorf("top genres = %+v, want %+v", b.TopGenres, want)
	}
}

func TestComputeRecentLists(t *testing.T) {
	b := Compute("u1", fixtureHistory(), nil, testNow)

	if len(b.RecentlyWatched) != 3 {
		t.Fatalf("recently watched = %d items, want 3", len(b.RecentlyWatched))
	}
	// Newest watch first: Heat (-1d), Insider (-3d), Collateral (-5d).
	if b.RecentlyWatched[0].Title != "Heat" || b.RecentlyWatched[2].Title != "Collateral" {
		t.Errorf("unexpected watch order: %+v", b.RecentlyWatched)
	}

	if len(b.RecentlyLiked) != 2 {
		t.Fatalf("recently liked = %d items, want 2", len(b.RecentlyLiked))
	}
	// Liked list orders by record update time: Heat (-1d) then Insider (-2d).
	if b.RecentlyLiked[0].Title != "Heat" || b.RecentlyLiked[1].Title != "The Insider" {
		t.Errorf("unexpected liked order: %+v", b.RecentlyLiked)
	}
}

func TestComputePeopleTables(t *testing.T) {
	b := Compute("u1", fixtureHistory(), nil, testNow)

	if len(b.TopCast) == 0 || b.TopCast[0].Name != "Al Pacino" || b.TopCast[0].Count != 2 {
		t.Errorf("top cast = %+v", b.TopCast)
	}

	if len(b.TopDirectors) != 1 {
		t.Fatalf("directors = %+v, want exactly Michael Mann", b.TopDirectors)
	}
	if b.TopDirectors[0].Name != "Michael Mann" || b.TopDirectors[0].Count != 3 {
		t.Errorf("director row = %+v", b.TopDirectors[0])
	}

	// The cinematographer appears in crew but never in directors.
	foundCrew := false
	for _, row := range b.TopCrew {
		if row.Name == "Dante Spinotti" {
			foundCrew = true
		}
	}
	if !foundCrew {
		t.Errorf("crew table missing non-director crew: %+v", b.TopCrew)
	}
}

func TestComputeRatingHistogram(t *testing.T) {
	b := Compute("u1", nil, fixtureRatings(), testNow)

	if b.RatingHistogram[5] != 2 || b.RatingHistogram[4] != 1 {
		t.Errorf("histogram = %v", b.RatingHistogram)
	}
	if b.RatingHistogram[1] != 0 {
		t.Errorf("histogram[1] = %d, want 0", b.RatingHistogram[1])
	}
}

func TestComputeIdempotent(t *testing.T) {
	history := fixtureHistory()
	ratings := fixtureRatings()

	b1 := Compute("u1", history, ratings, testNow)
	b2 := Compute("u1", history, ratings, testNow)

	j1, err := json.Marshal(b1)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	j2, err := json.Marshal(b2)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(j1) != string(j2) {
		t.Error("recomputing over unchanged history must be byte-identical")
	}
}

func TestComputeEmptyHistory(t *testing.T) {
	b := Compute("u1", nil, nil, testNow)

	if b.WatchedCount != 0 || b.TotalRuntimeMinutes != 0 {
		t.Errorf("unexpected totals: %+v", b)
	}
	if len(b.ByYear) != 0 || len(b.TopGenres) != 0 || len(b.RecentlyWatched) != 0 {
		t.Error("empty history must produce empty tables")
	}
	if b.RatingHistogram == nil {
		t.Error("rating histogram must be non-nil")
	}
}
