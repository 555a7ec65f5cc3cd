// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package behavior

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/reeltrack/reeltrack/internal/models"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// watchedAt builds a watched movie record with the given timestamp.
func watchedAt(titleID int, ts time.Time, genres ...string) models.InteractionRecord {
	return models.InteractionRecord{
		UserID:    "u1",
		TitleID:   titleID,
		Kind:      models.MediaMovie,
		Watched:   true,
		WatchedAt: &ts,
		Genres:    genres,
	}
}

// watchedNoTS builds a watched record without a timestamp.
func watchedNoTS(titleID int, genres ...string) models.InteractionRecord {
	return models.InteractionRecord{
		UserID:  "u1",
		TitleID: titleID,
		Kind:    models.MediaMovie,
		Watched: true,
		Genres:  genres,
	}
}

func rating(value int) models.RatingRecord {
	return models.RatingRecord{UserID: "u1", SubjectID: 1, Rating: value}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeProfileEmptyHistory(t *testing.T) {
	p := ComputeProfile("u1", nil, nil, testNow)

	if p.WatchingVelocity != 0 {
		t.Errorf("expected zero velocity, got %f", p.WatchingVelocity)
	}
	if p.ExplorationScore != 0.5 {
		t.Errorf("expected neutral exploration score, got %f", p.ExplorationScore)
	}
	if p.ConsistencyScore != 0.5 {
		t.Errorf("expected neutral consistency score, got %f", p.ConsistencyScore)
	}
	if p.BingePatterns.IsBinger {
		t.Error("empty history must not flag a binger")
	}
	if p.BingePatterns.BingeFrequency != 0 {
		t.Errorf("expected zero binge frequency, got %f", p.BingePatterns.BingeFrequency)
	}
	if p.UserID != "u1" {
		t.Errorf("unexpected user id %q", p.UserID)
	}
	if !p.ComputedAt.Equal(testNow) {
		t.Errorf("expected ComputedAt %v, got %v", testNow, p.ComputedAt)
	}
}

func TestWatchingVelocity(t *testing.T) {
	tests := []struct {
		name    string
		history []models.InteractionRecord
		want    float64
	}{
		{
			name: "items inside window count",
			history: []models.InteractionRecord{
				watchedAt(1, testNow.AddDate(0, 0, -10)),
				watchedAt(2, testNow.AddDate(0, 0, -40)),
				watchedAt(3, testNow.AddDate(0, 0, -89)),
			},
			want: 3.0 / (90.0 / 7.0),
		},
		{
			name: "items outside window excluded",
			history: []models.InteractionRecord{
				watchedAt(1, testNow.AddDate(0, 0, -10)),
				watchedAt(2, testNow.AddDate(0, 0, -91)),
				watchedAt(3, testNow.AddDate(0, -6, 0)),
			},
			want: 1.0 / (90.0 / 7.0),
		},
		{
			name: "items without timestamp excluded",
			history: []models.InteractionRecord{
				watchedAt(1, testNow.AddDate(0, 0, -1)),
				watchedNoTS(2),
				watchedNoTS(3),
			},
			want: 1.0 / (90.0 / 7.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeProfile("u1", tt.history, nil, testNow)
			if !almostEqual(p.WatchingVelocity, tt.want) {
				t.Errorf("velocity = %f, want %f", p.WatchingVelocity, tt.want)
			}
		})
	}
}

func TestExplorationScore(t *testing.T) {
	// 2 watched items, 3 distinct genres: min(1, 3/(2*0.3)) clamps to 1.
	history := []models.InteractionRecord{
		watchedAt(1, testNow.AddDate(0, 0, -1), "Drama", "Crime"),
		watchedAt(2, testNow.AddDate(0, 0, -2), "Comedy"),
	}
	p := ComputeProfile("u1", history, nil, testNow)
	if p.ExplorationScore != 1 {
		t.Errorf("expected clamped exploration score 1, got %f", p.ExplorationScore)
	}

	// 120 watched across 8 distinct genres: 8/(120*0.3) = 0.2222...
	big := make([]models.InteractionRecord, 0, 120)
	for i := 0; i < 120; i++ {
		g := fmt.Sprintf("Genre%d", i%8)
		big = append(big, watchedAt(i+1, testNow.AddDate(0, 0, -i-1), g))
	}
	p = ComputeProfile("u1", big, nil, testNow)
	want := 8.0 / (120.0 * 0.3)
	if !almostEqual(p.ExplorationScore, want) {
		t.Errorf("exploration = %f, want %f", p.ExplorationScore, want)
	}
	if p.ExplorationScore < 0 || p.ExplorationScore > 1 {
		t.Errorf("exploration score out of range: %f", p.ExplorationScore)
	}
}

func TestConsistencyScore(t *testing.T) {
	t.Run("insufficient ratings stay neutral", func(t *testing.T) {
		ratings := []models.RatingRecord{rating(1), rating(5), rating(1), rating(5)}
		p := ComputeProfile("u1", nil, ratings, testNow)
		if p.ConsistencyScore != 0.5 {
			t.Errorf("expected neutral 0.5 with 4 ratings, got %f", p.ConsistencyScore)
		}
	})

	t.Run("stddev 0.4 maps to 0.8", func(t *testing.T) {
		// 48 fours and 12 fives: mean 4.2, population stddev exactly 0.4.
		ratings := make([]models.RatingRecord, 0, 60)
		for i := 0; i < 48; i++ {
			ratings = append(ratings, rating(4))
		}
		for i := 0; i < 12; i++ {
			ratings = append(ratings, rating(5))
		}
		p := ComputeProfile("u1", nil, ratings, testNow)
		if !almostEqual(p.ConsistencyScore, 0.8) {
			t.Errorf("consistency = %f, want 0.8", p.ConsistencyScore)
		}
	})

	t.Run("identical ratings are perfectly consistent", func(t *testing.T) {
		ratings := []models.RatingRecord{rating(3), rating(3), rating(3), rating(3), rating(3)}
		p := ComputeProfile("u1", nil, ratings, testNow)
		if p.ConsistencyScore != 1 {
			t.Errorf("consistency = %f, want 1", p.ConsistencyScore)
		}
	})

	t.Run("pathological variance clamps to range", func(t *testing.T) {
		// Alternating 1s and 5s: stddev 2, raw score 1-2/2 = 0.
		ratings := make([]models.RatingRecord, 0, 10)
		for i := 0; i < 5; i++ {
			ratings = append(ratings, rating(1), rating(5))
		}
		p := ComputeProfile("u1", nil, ratings, testNow)
		if p.ConsistencyScore < 0 || p.ConsistencyScore > 1 {
			t.Errorf("consistency score out of range: %f", p.ConsistencyScore)
		}
		if !almostEqual(p.ConsistencyScore, 0) {
			t.Errorf("consistency = %f, want 0", p.ConsistencyScore)
		}
	})
}

func TestBingeDetectionBoundary(t *testing.T) {
	// Three watches on the same calendar day and nothing else:
	// one binge day over three watched items. 1 > 0.1*3, so the user
	// crosses the binger threshold exactly at this fixture.
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	history := []models.InteractionRecord{
		watchedAt(1, day.Add(9*time.Hour)),
		watchedAt(2, day.Add(14*time.Hour)),
		watchedAt(3, day.Add(22*time.Hour)),
	}

	p := ComputeProfile("u1", history, nil, testNow)
	if !almostEqual(p.BingePatterns.BingeFrequency, 1.0/3.0) {
		t.Errorf("binge frequency = %f, want 1/3", p.BingePatterns.BingeFrequency)
	}
	if !p.BingePatterns.IsBinger {
		t.Error("expected IsBinger true for 1 binge day over 3 watched")
	}
}

func TestBingeDetection(t *testing.T) {
	day1 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	t.Run("five same-day watches count one binge day", func(t *testing.T) {
		history := make([]models.InteractionRecord, 0, 5)
		for i := 0; i < 5; i++ {
			history = append(history, watchedAt(i+1, day1.Add(time.Duration(i)*time.Hour)))
		}
		p := ComputeProfile("u1", history, nil, testNow)
		if !almostEqual(p.BingePatterns.BingeFrequency, 1.0/5.0) {
			t.Errorf("binge frequency = %f, want 1/5", p.BingePatterns.BingeFrequency)
		}
	})

	t.Run("two binge days accumulate", func(t *testing.T) {
		var history []models.InteractionRecord
		for i := 0; i < 3; i++ {
			history = append(history, watchedAt(i+1, day1.Add(time.Duration(i)*time.Hour)))
		}
		for i := 0; i < 3; i++ {
			history = append(history, watchedAt(i+10, day2.Add(time.Duration(i)*time.Hour)))
		}
		p := ComputeProfile("u1", history, nil, testNow)
		if !almostEqual(p.BingePatterns.BingeFrequency, 2.0/6.0) {
			t.Errorf("binge frequency = %f, want 1/3", p.BingePatterns.BingeFrequency)
		}
	})

	t.Run("two per day is not a binge", func(t *testing.T) {
		history := []models.InteractionRecord{
			watchedAt(1, day1.Add(9*time.Hour)),
			watchedAt(2, day1.Add(20*time.Hour)),
			watchedAt(3, day2.Add(9*time.Hour)),
			watchedAt(4, day2.Add(20*time.Hour)),
		}
		p := ComputeProfile("u1", history, nil, testNow)
		if p.BingePatterns.BingeFrequency != 0 {
			t.Errorf("binge frequency = %f, want 0", p.BingePatterns.BingeFrequency)
		}
		if p.BingePatterns.IsBinger {
			t.Error("expected IsBinger false")
		}
	})

	t.Run("missing timestamps are skipped without resetting the day counter", func(t *testing.T) {
		history := []models.InteractionRecord{
			watchedAt(1, day1.Add(9*time.Hour)),
			watchedAt(2, day1.Add(10*time.Hour)),
			watchedNoTS(3),
			watchedAt(4, day1.Add(11*time.Hour)),
		}
		p := ComputeProfile("u1", history, nil, testNow)
		// One binge day over four watched items.
		if !almostEqual(p.BingePatterns.BingeFrequency, 1.0/4.0) {
			t.Errorf("binge frequency = %f, want 1/4", p.BingePatterns.BingeFrequency)
		}
	})
}

func TestTemporalPatterns(t *testing.T) {
	history := []models.InteractionRecord{
		watchedAt(1, time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)),  // Monday 21h
		watchedAt(2, time.Date(2026, 3, 3, 21, 30, 0, 0, time.UTC)), // Tuesday 21h
		watchedAt(3, time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)),   // Sunday 9h
		watchedNoTS(4),
	}

	p := ComputeProfile("u1", history, nil, testNow)
	tp := p.TemporalPatterns

	if tp.HourHistogram[21] != 2 {
		t.Errorf("hour 21 count = %d, want 2", tp.HourHistogram[21])
	}
	if tp.HourHistogram[9] != 1 {
		t.Errorf("hour 9 count = %d, want 1", tp.HourHistogram[9])
	}
	if tp.DayOfWeekHistogram[int(time.Monday)] != 1 {
		t.Errorf("monday count = %d, want 1", tp.DayOfWeekHistogram[int(time.Monday)])
	}
	if tp.DayOfWeekHistogram[int(time.Sunday)] != 1 {
		t.Errorf("sunday count = %d, want 1", tp.DayOfWeekHistogram[int(time.Sunday)])
	}

	total := 0
	for _, c := range tp.HourHistogram {
		total += c
	}
	if total != 3 {
		t.Errorf("records without timestamps must not contribute, total = %d", total)
	}
}

func TestRatingDistribution(t *testing.T) {
	ratings := []models.RatingRecord{
		rating(5), rating(5), rating(4), rating(1), rating(3),
	}
	p := ComputeProfile("u1", nil, ratings, testNow)

	want := map[int]int{1: 1, 3: 1, 4: 1, 5: 2}
	for star, count := range want {
		if p.RatingDistribution[star] != count {
			t.Errorf("distribution[%d] = %d, want %d", star, p.RatingDistribution[star], count)
		}
	}
	if p.RatingDistribution[2] != 0 {
		t.Errorf("distribution[2] = %d, want 0", p.RatingDistribution[2])
	}
}

func TestGenreProgression(t *testing.T) {
	// Eight records: first quarter is the first two, last quarter the
	// final two. Taste drifts from Western to Sci-Fi.
	history := []models.InteractionRecord{
		watchedAt(1, testNow.AddDate(0, 0, -80), "Western"),
		watchedAt(2, testNow.AddDate(0, 0, -70), "Western"),
		watchedAt(3, testNow.AddDate(0, 0, -60), "Drama"),
		watchedAt(4, testNow.AddDate(0, 0, -50), "Drama"),
		watchedAt(5, testNow.AddDate(0, 0, -40), "Drama"),
		watchedAt(6, testNow.AddDate(0, 0, -30), "Sci-Fi"),
		watchedAt(7, testNow.AddDate(0, 0, -20), "Sci-Fi"),
		watchedAt(8, testNow.AddDate(0, 0, -10), "Sci-Fi"),
	}

	p := ComputeProfile("u1", history, nil, testNow)
	gp := p.GenreProgression

	if gp.EarlyGenres["Western"] != 2 {
		t.Errorf("early Western = %d, want 2", gp.EarlyGenres["Western"])
	}
	if gp.RecentGenres["Sci-Fi"] != 2 {
		t.Errorf("recent Sci-Fi = %d, want 2", gp.RecentGenres["Sci-Fi"])
	}
	if len(gp.EarlyGenres) != 1 || len(gp.RecentGenres) != 1 {
		t.Errorf("unexpected tallies: early=%v recent=%v", gp.EarlyGenres, gp.RecentGenres)
	}
}

func TestGenreProgressionShortHistory(t *testing.T) {
	history := []models.InteractionRecord{
		watchedAt(1, testNow.AddDate(0, 0, -1), "Drama"),
		watchedAt(2, testNow.AddDate(0, 0, -2), "Comedy"),
	}
	p := ComputeProfile("u1", history, nil, testNow)

	if len(p.GenreProgression.EarlyGenres) != 0 || len(p.GenreProgression.RecentGenres) != 0 {
		t.Errorf("histories under four records must produce empty tallies, got %v / %v",
			p.GenreProgression.EarlyGenres, p.GenreProgression.RecentGenres)
	}
	if p.GenreProgression.EarlyGenres == nil || p.GenreProgression.RecentGenres == nil {
		t.Error("tallies must be non-nil even when empty")
	}
}

func TestComputeProfileIsPure(t *testing.T) {
	day := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	history := []models.InteractionRecord{
		watchedAt(3, day.Add(2*time.Hour), "Drama"),
		watchedAt(1, day, "Crime"),
		watchedAt(2, day.Add(time.Hour), "Drama"),
	}
	ratings := []models.RatingRecord{rating(4), rating(4), rating(5), rating(4), rating(4)}

	p1 := ComputeProfile("u1", history, ratings, testNow)
	p2 := ComputeProfile("u1", history, ratings, testNow)

	if p1.WatchingVelocity != p2.WatchingVelocity ||
		p1.ExplorationScore != p2.ExplorationScore ||
		p1.ConsistencyScore != p2.ConsistencyScore ||
		p1.BingePatterns != p2.BingePatterns {
		t.Error("recomputing with unchanged inputs must yield identical metrics")
	}

	// The input order must survive the analyzer's internal sorting.
	if history[0].TitleID != 3 {
		t.Error("analyzer must not mutate its input slice")
	}
}
