// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package models

import (
	"time"
)

// BundleKind names a cached derived artifact.
type BundleKind string

const (
	// BundleBehavior is the behavioral profile bundle.
	BundleBehavior BundleKind = "behavior"
	// BundleRecommendations is the recommendation bundle.
	BundleRecommendations BundleKind = "recommendations"
	// BundleStats is the dashboard statistics bundle.
	BundleStats BundleKind = "stats"
)

// Valid reports whether the kind names a known bundle.
func (k BundleKind) Valid() bool {
	switch k {
	case BundleBehavior, BundleRecommendations, BundleStats:
		return true
	default:
		return false
	}
}

// MoodID names one of the fixed recommendation mood buckets.
type MoodID string

// The fixed mood taxonomy. The tag sets behind each mood live in the
// recommendation engine's mood table; these are just the stable identifiers.
const (
	MoodUplifting        MoodID = "uplifting"
	MoodMindBending      MoodID = "mind-bending"
	MoodDarkIntense      MoodID = "dark-intense"
	MoodFeelGood         MoodID = "feel-good"
	MoodAdrenaline       MoodID = "adrenaline"
	MoodThoughtProvoking MoodID = "thought-provoking"
	MoodClassic          MoodID = "classic"
)

// TemporalPatterns histograms watch events over hour-of-day and day-of-week.
type TemporalPatterns struct {
	// HourHistogram counts watch events per hour (index 0-23).
	HourHistogram [24]int `json:"hour_histogram"`

	// DayOfWeekHistogram counts watch events per weekday (0=Sunday).
	DayOfWeekHistogram [7]int `json:"day_of_week_histogram"`
}

// BingePatterns summarizes same-day watching bursts.
type BingePatterns struct {
	// IsBinger is true when binge days exceed 10% of total watched items.
	IsBinger bool `json:"is_binger"`

	// BingeFrequency is binge days divided by total watched items.
	BingeFrequency float64 `json:"binge_frequency"`
}

// GenreProgression contrasts early taste against recent taste.
// Slices are positional quarters of the stored history, not time windows.
type GenreProgression struct {
	// EarlyGenres tallies genres in the first quarter of the history.
	EarlyGenres map[string]int `json:"early_genres"`

	// RecentGenres tallies genres in the last quarter of the history.
	RecentGenres map[string]int `json:"recent_genres"`
}

// BehaviorProfile is the derived behavioral metrics bundle for one user.
// It is entirely recomputable from interaction and rating records and has
// no identity beyond the user it belongs to; last write wins.
type BehaviorProfile struct {
	UserID string `json:"user_id"`

	// WatchingVelocity is watched items per week over the trailing 90 days.
	WatchingVelocity float64 `json:"watching_velocity"`

	// ExplorationScore rewards genre breadth relative to volume, in [0,1].
	ExplorationScore float64 `json:"exploration_score"`

	// ConsistencyScore maps rating variance to [0,1]; higher is steadier.
	ConsistencyScore float64 `json:"consistency_score"`

	TemporalPatterns TemporalPatterns `json:"temporal_patterns"`
	BingePatterns    BingePatterns    `json:"binge_patterns"`

	// RatingDistribution counts ratings per star value 1-5.
	RatingDistribution map[int]int `json:"rating_distribution"`

	GenreProgression GenreProgression `json:"genre_progression"`

	// ComputedAt is when the profile was derived.
	ComputedAt time.Time `json:"computed_at"`
}

// RecommendationBundle is the cached set of categorized recommendations.
type RecommendationBundle struct {
	UserID string `json:"user_id"`

	// Personalized is driven by the user's top genres and liked titles.
	Personalized []CatalogItem `json:"personalized"`

	// Moods maps mood bucket to its qualifying items. A mood with zero
	// qualifying results is absent from the map entirely; callers must
	// treat an absent mood as unavailable, not as an empty list.
	Moods map[MoodID][]CatalogItem `json:"moods"`

	// Exploration holds items from genres the user has never watched.
	Exploration []CatalogItem `json:"exploration"`

	// HiddenGems holds well-rated items outside the mainstream vote band.
	HiddenGems []CatalogItem `json:"hidden_gems"`

	// DefaultMood is the mood bucket best matching the user's top genres.
	DefaultMood MoodID `json:"default_mood"`

	// UpdatedAt is the last full regeneration time.
	UpdatedAt time.Time `json:"updated_at"`

	// IsStale marks the bundle for background refresh. A stale bundle is
	// still served; staleness is authoritative here and in UpdatedAt only.
	IsStale bool `json:"is_stale"`
}

// YearCount is a per-year or per-decade watched tally.
type YearCount struct {
	Year           int `json:"year"`
	Count          int `json:"count"`
	RuntimeMinutes int `json:"runtime_minutes"`
}

// NameCount is a frequency table row.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// StatsItem is a compact title reference inside the stats bundle.
type StatsItem struct {
	TitleID   int    `json:"title_id"`
	Title     string `json:"title"`
	PosterURL string `json:"poster_url,omitempty"`
	Year      int    `json:"year,omitempty"`
}

// StatsBundle is the cached dashboard aggregate for one user.
// Computed purely from local history; staleness is a plain cache-miss
// signal because recomputation is cheap and needs no background refresh.
type StatsBundle struct {
	UserID string `json:"user_id"`

	WatchedCount     int `json:"watched_count"`
	LikedCount       int `json:"liked_count"`
	WatchlistedCount int `json:"watchlisted_count"`

	// TotalRuntimeMinutes sums runtime over watched items that carry one.
	TotalRuntimeMinutes int `json:"total_runtime_minutes"`

	ByYear   []YearCount `json:"by_year"`
	ByDecade []YearCount `json:"by_decade"`

	// TopGenres is the genre frequency table, capped at 16 rows.
	TopGenres []NameCount `json:"top_genres"`

	// RecentlyWatched is sorted by watch time descending, capped.
	RecentlyWatched []StatsItem `json:"recently_watched"`

	// RecentlyLiked is sorted by record update time descending, capped.
	RecentlyLiked []StatsItem `json:"recently_liked"`

	TopCast      []NameCount `json:"top_cast"`
	TopCrew      []NameCount `json:"top_crew"`
	TopDirectors []NameCount `json:"top_directors"`

	// RatingHistogram counts ratings per star value 1-5.
	RatingHistogram map[int]int `json:"rating_histogram"`

	UpdatedAt time.Time `json:"updated_at"`
	IsStale   bool      `json:"is_stale"`
}
