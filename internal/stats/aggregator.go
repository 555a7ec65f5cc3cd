// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package stats computes the dashboard aggregate figures from a user's
// local history. Pure computation, no external calls; the cache treats
// this bundle as cheap to rebuild.
package stats

import (
	"sort"
	"time"

	"github.com/reeltrack/reeltrack/internal/models"
)

const (
	// topGenresCap bounds the genre frequency table.
	topGenresCap = 16

	// recentItemsCap bounds the recently-watched and recently-liked lists.
	recentItemsCap = 20

	// topPeopleCap bounds the cast/crew/director tables.
	topPeopleCap = 10
)

// Compute aggregates a user's history and ratings into a StatsBundle.
// All sorts are stable; ties keep the stored ordering of the history, so
// recomputing over unchanged inputs yields an identical bundle.
func Compute(userID string, history []models.InteractionRecord, ratings []models.RatingRecord, now time.Time) models.StatsBundle {
	b := models.StatsBundle{
		UserID:          userID,
		RatingHistogram: make(map[int]int),
		UpdatedAt:       now,
	}

	yearTotals := make(map[int]*models.YearCount)
	decadeTotals := make(map[int]*models.YearCount)

	for _, rec := range history {
		if rec.Liked {
			b.LikedCount++
		}
		if rec.Watchlisted {
			b.WatchlistedCount++
		}
		if !rec.Watched {
			continue
		}
		b.WatchedCount++

		runtime := 0
		if rec.RuntimeMinutes != nil {
			runtime = *rec.RuntimeMinutes
			b.TotalRuntimeMinutes += runtime
		}

		if rec.Year > 0 {
			addYearCount(yearTotals, rec.Year, runtime)
			addYearCount(decadeTotals, (rec.Year/10)*10, runtime)
		}
	}

	b.ByYear = sortedYearCounts(yearTotals)
	b.ByDecade = sortedYearCounts(decadeTotals)
	b.TopGenres = genreFrequency(history)
	b.RecentlyWatched = recentlyWatched(history)
	b.RecentlyLiked = recentlyLiked(history)
	b.TopCast, b.TopCrew, b.TopDirectors = peopleFrequency(history)

	for _, r := range ratings {
		if r.Rating >= 1 && r.Rating <= 5 {
			b.RatingHistogram[r.Rating]++
		}
	}

	return b
}

func addYearCount(m map[int]*models.YearCount, year, runtime int) {
	yc, ok := m[year]
	if !ok {
		yc = &models.YearCount{Year: year}
		m[year] = yc
	}
	yc.Count++
	yc.RuntimeMinutes += runtime
}

func sortedYearCounts(m map[int]*models.YearCount) []models.YearCount {
	out := make([]models.YearCount, 0, len(m))
	for _, yc := range m {
		out = append(out, *yc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}

// counted is a frequency row carrying its first-seen position so that
// ties resolve to the stored history order.
type counted struct {
	name  string
	count int
	first int
}

// rankCounts orders rows by count descending, ties by first appearance,
// and caps the result.
func rankCounts(m map[string]*counted, cap int) []models.NameCount {
	rows := make([]*counted, 0, len(m))
	for _, c := range m {
		rows = append(rows, c)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].first < rows[j].first
	})

	if len(rows) > cap {
		rows = rows[:cap]
	}

	out := make([]models.NameCount, 0, len(rows))
	for _, c := range rows {
		out = append(out, models.NameCount{Name: c.name, Count: c.count})
	}
	return out
}

func tally(m map[string]*counted, name string, order *int) {
	c, ok := m[name]
	if !ok {
		c = &counted{name: name, first: *order}
		m[name] = c
	}
	c.count++
	*order++
}

// genreFrequency tallies genres over watched items only.
func genreFrequency(history []models.InteractionRecord) []models.NameCount {
	m := make(map[string]*counted)
	order := 0
	for _, rec := range history {
		if !rec.Watched {
			continue
		}
		for _, g := range rec.Genres {
			tally(m, g, &order)
		}
	}
	return rankCounts(m, topGenresCap)
}

// peopleFrequency tallies cast and crew appearance counts over watched
// items. Directors are isolated from the rest of the crew by job.
func peopleFrequency(history []models.InteractionRecord) (cast, crew, directors []models.NameCount) {
	castM := make(map[string]*counted)
	crewM := make(map[string]*counted)
	dirM := make(map[string]*counted)
	castOrder, crewOrder, dirOrder := 0, 0, 0

	for _, rec := range history {
		if !rec.Watched {
			continue
		}
		for _, p := range rec.Cast {
			tally(castM, p.Name, &castOrder)
		}
		for _, p := range rec.Crew {
			tally(crewM, p.Name, &crewOrder)
			if p.Job == "Director" {
				tally(dirM, p.Name, &dirOrder)
			}
		}
	}

	return rankCounts(castM, topPeopleCap), rankCounts(crewM, topPeopleCap), rankCounts(dirM, topPeopleCap)
}

// recentlyWatched returns watched items with a timestamp, newest first.
func recentlyWatched(history []models.InteractionRecord) []models.StatsItem {
	recs := make([]models.InteractionRecord, 0, len(history))
	for _, rec := range history {
		if rec.Watched && rec.WatchedAt != nil {
			recs = append(recs, rec)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].WatchedAt.After(*recs[j].WatchedAt)
	})
	return toStatsItems(recs)
}

// recentlyLiked returns liked items ordered by last record update.
func recentlyLiked(history []models.InteractionRecord) []models.StatsItem {
	recs := make([]models.InteractionRecord, 0, len(history))
	for _, rec := range history {
		if rec.Liked {
			recs = append(recs, rec)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
	})
	return toStatsItems(recs)
}

func toStatsItems(recs []models.InteractionRecord) []models.StatsItem {
	if len(recs) > recentItemsCap {
		recs = recs[:recentItemsCap]
	}
	out := make([]models.StatsItem, 0, len(recs))
	for _, rec := range recs {
		out = append(out, models.StatsItem{
			TitleID:   rec.TitleID,
			Title:     rec.Title,
			PosterURL: rec.PosterURL,
			Year:      rec.Year,
		})
	}
	return out
}
