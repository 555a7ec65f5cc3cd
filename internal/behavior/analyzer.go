// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package behavior derives a user's behavioral profile from their
// interaction history and ratings.
//
// All computation here is pure and deterministic: no I/O, no clock reads
// (the reference time is injected), no mutation of inputs. The caller
// persists the resulting profile.
package behavior

import (
	"math"
	"sort"
	"time"

	"github.com/reeltrack/reeltrack/internal/models"
)

const (
	// velocityWindow is the trailing window for watching velocity.
	velocityWindow = 90 * 24 * time.Hour

	// expectedGenresPerTitle is the tunable baseline for the exploration
	// score: genre breadth is judged relative to watchedCount * this.
	expectedGenresPerTitle = 0.3

	// neutralScore is returned when there is not enough signal to judge.
	neutralScore = 0.5

	// minRatingsForConsistency is the rating count below which the
	// consistency score stays neutral.
	minRatingsForConsistency = 5

	// bingeSessionSize is how many same-day watches make a binge day.
	bingeSessionSize = 3

	// bingerThreshold is the binge-days-to-watched ratio above which a
	// user counts as a binger.
	bingerThreshold = 0.1
)

// ComputeProfile derives the behavioral profile from a user's history and
// ratings. The reference time now anchors the velocity window.
func ComputeProfile(userID string, history []models.InteractionRecord, ratings []models.RatingRecord, now time.Time) models.BehaviorProfile {
	watched := watchedRecords(history)

	return models.BehaviorProfile{
		UserID:             userID,
		WatchingVelocity:   watchingVelocity(watched, now),
		ExplorationScore:   explorationScore(watched),
		ConsistencyScore:   consistencyScore(ratings),
		TemporalPatterns:   temporalPatterns(watched),
		BingePatterns:      bingePatterns(watched),
		RatingDistribution: ratingDistribution(ratings),
		GenreProgression:   genreProgression(history),
		ComputedAt:         now,
	}
}

// watchedRecords filters the history down to watched items.
func watchedRecords(history []models.InteractionRecord) []models.InteractionRecord {
	watched := make([]models.InteractionRecord, 0, len(history))
	for _, rec := range history {
		if rec.Watched {
			watched = append(watched, rec)
		}
	}
	return watched
}

// watchingVelocity is watched items per week over the trailing 90 days.
// Items without a watch timestamp are excluded.
func watchingVelocity(watched []models.InteractionRecord, now time.Time) float64 {
	cutoff := now.Add(-velocityWindow)

	count := 0
	for _, rec := range watched {
		if rec.WatchedAt == nil {
			continue
		}
		if rec.WatchedAt.After(cutoff) && !rec.WatchedAt.After(now) {
			count++
		}
	}

	return float64(count) / (90.0 / 7.0)
}

// explorationScore rewards genre breadth relative to watch volume:
// min(1, distinctGenres / (watchedCount * 0.3)). Without any watched
// items there is no signal, so the score is neutral.
func explorationScore(watched []models.InteractionRecord) float64 {
	if len(watched) == 0 {
		return neutralScore
	}

	genres := make(map[string]struct{})
	for _, rec := range watched {
		for _, g := range rec.Genres {
			genres[g] = struct{}{}
		}
	}

	score := float64(len(genres)) / (float64(len(watched)) * expectedGenresPerTitle)
	return math.Min(1, score)
}

// consistencyScore maps rating variance to [0,1]; steadier raters score
// higher. Fewer than 5 ratings is insufficient signal and stays neutral.
// On a 1-5 scale the standard deviation is bounded near [0,2], so the
// mapping 1 - stddev/2 lands in range before clamping.
func consistencyScore(ratings []models.RatingRecord) float64 {
	if len(ratings) < minRatingsForConsistency {
		return neutralScore
	}

	var sum float64
	for _, r := range ratings {
		sum += float64(r.Rating)
	}
	mean := sum / float64(len(ratings))

	var sqSum float64
	for _, r := range ratings {
		d := float64(r.Rating) - mean
		sqSum += d * d
	}
	stdDev := math.Sqrt(sqSum / float64(len(ratings)))

	return clamp01(1 - stdDev/2)
}

// temporalPatterns histograms watch events by hour-of-day and day-of-week.
// Only records carrying a watch timestamp contribute.
func temporalPatterns(watched []models.InteractionRecord) models.TemporalPatterns {
	var tp models.TemporalPatterns
	for _, rec := range watched {
		if rec.WatchedAt == nil {
			continue
		}
		tp.HourHistogram[rec.WatchedAt.Hour()]++
		tp.DayOfWeekHistogram[int(rec.WatchedAt.Weekday())]++
	}
	return tp
}

// bingePatterns walks the watch history in timestamp order keeping a
// same-calendar-day counter. Each day where the counter reaches 3 counts
// as one binge day, regardless of how far past 3 it climbs. Records
// without a timestamp are skipped but do not reset the counter.
func bingePatterns(watched []models.InteractionRecord) models.BingePatterns {
	total := len(watched)
	if total == 0 {
		return models.BingePatterns{}
	}

	timestamped := make([]models.InteractionRecord, 0, total)
	for _, rec := range watched {
		if rec.WatchedAt != nil {
			timestamped = append(timestamped, rec)
		}
	}
	sort.SliceStable(timestamped, func(i, j int) bool {
		return timestamped[i].WatchedAt.Before(*timestamped[j].WatchedAt)
	})

	bingeDays := 0
	dayCount := 0
	var curDay string
	for _, rec := range timestamped {
		day := rec.WatchedAt.Format("2006-01-02")
		if day != curDay {
			curDay = day
			dayCount = 0
		}
		dayCount++
		if dayCount == bingeSessionSize {
			bingeDays++
		}
	}

	freq := float64(bingeDays) / float64(total)
	return models.BingePatterns{
		IsBinger:       float64(bingeDays) > bingerThreshold*float64(total),
		BingeFrequency: freq,
	}
}

// ratingDistribution buckets ratings by star value.
func ratingDistribution(ratings []models.RatingRecord) map[int]int {
	dist := make(map[int]int)
	for _, r := range ratings {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		dist[r.Rating]++
	}
	return dist
}

// genreProgression tallies genre frequency in the first and last quarter
// of the history, split by array position rather than time, to surface
// taste drift. Histories shorter than four records produce empty tallies.
func genreProgression(history []models.InteractionRecord) models.GenreProgression {
	gp := models.GenreProgression{
		EarlyGenres:  make(map[string]int),
		RecentGenres: make(map[string]int),
	}

	quarter := len(history) / 4
	if quarter == 0 {
		return gp
	}

	for _, rec := range history[:quarter] {
		for _, g := range rec.Genres {
			gp.EarlyGenres[g]++
		}
	}
	for _, rec := range history[len(history)-quarter:] {
		for _, g := range rec.Genres {
			gp.RecentGenres[g]++
		}
	}

	return gp
}

// clamp01 clamps v into [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
