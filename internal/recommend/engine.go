// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package recommend generates the categorized recommendation bundle:
// personalized, per-mood buckets, exploration and hidden gems.
//
// Every sub-generation degrades independently. A catalog failure empties
// that one list with a warn log; the bundle as a whole always completes so
// a flaky upstream never blanks the recommendations page.
package recommend

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reeltrack/reeltrack/internal/catalog"
	"github.com/reeltrack/reeltrack/internal/config"
	"github.com/reeltrack/reeltrack/internal/models"
)

// Engine produces recommendation bundles from history plus catalog queries.
type Engine struct {
	catalog catalog.Client
	cfg     config.RecommendConfig
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEngine builds a recommendation engine.
func NewEngine(client catalog.Client, cfg config.RecommendConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog: client,
		cfg:     cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		now:     time.Now,
	}
}

// Generate builds a full recommendation bundle for one user. The four
// catalog-backed sub-generations run concurrently; each writes only its own
// bundle field, so no locking is needed beyond the WaitGroup barrier.
func (e *Engine) Generate(ctx context.Context, userID string, history []models.InteractionRecord) (*models.RecommendationBundle, error) {
	topGenres := topGenresFrom(history, e.cfg.TopGenres)
	historyIDs := historyIDSet(history)

	bundle := &models.RecommendationBundle{
		UserID:      userID,
		Moods:       make(map[models.MoodID][]models.CatalogItem),
		DefaultMood: defaultMood(topGenres),
		UpdatedAt:   e.now(),
	}

	var wg sync.WaitGroup
	var moodMu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		bundle.Personalized = e.personalized(ctx, topGenres, historyIDs)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		bundle.Exploration = e.exploration(ctx, history)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		bundle.HiddenGems = e.hiddenGems(ctx, topGenres)
	}()

	for _, mood := range moodTable {
		wg.Add(1)
		go func(m Mood) {
			defer wg.Done()
			items := e.moodBucket(ctx, m)
			if len(items) == 0 {
				// Absent means unavailable; never an empty list.
				return
			}
			moodMu.Lock()
			bundle.Moods[m.ID] = items
			moodMu.Unlock()
		}(mood)
	}

	wg.Wait()
	return bundle, nil
}

// personalized discovers by the user's top genres and drops anything the
// user already has in their history.
func (e *Engine) personalized(ctx context.Context, topGenres []string, historyIDs map[int]struct{}) []models.CatalogItem {
	if len(topGenres) == 0 {
		return nil
	}

	items, err := e.catalog.DiscoverByGenres(ctx, topGenres, catalog.Filters{SortBy: "popularity.desc"})
	if err != nil {
		e.logger.Warn().Err(err).Msg("personalized generation degraded to empty")
		return nil
	}

	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if _, seen := historyIDs[item.ID]; seen {
			continue
		}
		out = append(out, item)
		if len(out) == e.cfg.ListSize {
			break
		}
	}
	return out
}

// moodBucket queries a mood's genre and keyword tag sets and keeps results
// above the vote floor. The floor is also a catalog-side parameter; the
// post-check guards against upstreams that ignore it.
func (e *Engine) moodBucket(ctx context.Context, mood Mood) []models.CatalogItem {
	f := catalog.Filters{MinVotes: e.cfg.MoodMinVotes, SortBy: "popularity.desc"}

	byGenre, err := e.catalog.DiscoverByGenres(ctx, mood.Genres, f)
	if err != nil {
		e.logger.Warn().Err(err).Str("mood", string(mood.ID)).Msg("mood genre query degraded to empty")
		byGenre = nil
	}
	byKeyword, err := e.catalog.DiscoverByKeywords(ctx, mood.Keywords, f)
	if err != nil {
		e.logger.Warn().Err(err).Str("mood", string(mood.ID)).Msg("mood keyword query degraded to empty")
		byKeyword = nil
	}

	merged := dedupeByID(append(byGenre, byKeyword...))
	out := make([]models.CatalogItem, 0, len(merged))
	for _, item := range merged {
		if item.VoteCount < e.cfg.MoodMinVotes {
			continue
		}
		out = append(out, item)
		if len(out) == e.cfg.ListSize {
			break
		}
	}
	return out
}

// exploration surfaces genres the user has never watched: the catalog
// vocabulary minus the user's historical genre set, one discover per
// unexplored genre, merged and ranked by popularity.
func (e *Engine) exploration(ctx context.Context, history []models.InteractionRecord) []models.CatalogItem {
	vocabulary, err := e.catalog.Genres(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("exploration generation degraded to empty")
		return nil
	}

	watched := make(map[string]struct{})
	for _, rec := range history {
		for _, g := range rec.Genres {
			watched[strings.ToLower(g)] = struct{}{}
		}
	}

	var pool []models.CatalogItem
	for _, genre := range vocabulary {
		if _, seen := watched[strings.ToLower(genre)]; seen {
			continue
		}
		items, err := e.catalog.DiscoverByGenres(ctx, []string{genre}, catalog.Filters{SortBy: "popularity.desc"})
		if err != nil {
			e.logger.Warn().Err(err).Str("genre", genre).Msg("exploration genre query skipped")
			continue
		}
		pool = append(pool, items...)
	}

	pool = dedupeByID(pool)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Popularity > pool[j].Popularity
	})
	if len(pool) > e.cfg.ListSize {
		pool = pool[:e.cfg.ListSize]
	}
	return pool
}

// hiddenGems post-filters trending and vote-ranked discover results down to
// the well-rated-but-not-mainstream band. Both band bounds are inclusive.
func (e *Engine) hiddenGems(ctx context.Context, topGenres []string) []models.CatalogItem {
	trending, err := e.catalog.Trending(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("hidden gems trending query degraded to empty")
		trending = nil
	}

	var discovered []models.CatalogItem
	if len(topGenres) > 0 {
		discovered, err = e.catalog.DiscoverByGenres(ctx, topGenres, catalog.Filters{SortBy: "vote_average.desc"})
		if err != nil {
			e.logger.Warn().Err(err).Msg("hidden gems discover query degraded to empty")
			discovered = nil
		}
	}

	pool := dedupeByID(append(trending, discovered...))
	out := make([]models.CatalogItem, 0, len(pool))
	for _, item := range pool {
		if item.Rating < e.cfg.GemMinRating || item.Rating > e.cfg.GemMaxRating {
			continue
		}
		if item.VoteCount < e.cfg.GemMinVotes || item.VoteCount > e.cfg.GemMaxVotes {
			continue
		}
		out = append(out, item)
		if len(out) == e.cfg.ListSize {
			break
		}
	}
	return out
}

// defaultMood picks the mood whose genre tags overlap the user's top
// genres the most, ties resolved by table order. No history (or no
// overlap) lands on the first table entry.
func defaultMood(topGenres []string) models.MoodID {
	userGenres := make(map[string]struct{}, len(topGenres))
	for _, g := range topGenres {
		userGenres[strings.ToLower(g)] = struct{}{}
	}

	best := moodTable[0].ID
	bestOverlap := 0
	for _, mood := range moodTable {
		overlap := 0
		for _, g := range mood.Genres {
			if _, ok := userGenres[strings.ToLower(g)]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best = mood.ID
			bestOverlap = overlap
		}
	}
	return best
}

// topGenresFrom ranks the user's genres by frequency over watched and
// liked records, ties by first appearance.
func topGenresFrom(history []models.InteractionRecord, n int) []string {
	type row struct {
		name  string
		count int
		first int
	}
	counts := make(map[string]*row)
	order := 0
	for _, rec := range history {
		if !rec.Watched && !rec.Liked {
			continue
		}
		for _, g := range rec.Genres {
			r, ok := counts[g]
			if !ok {
				r = &row{name: g, first: order}
				counts[g] = r
			}
			r.count++
			order++
		}
	}

	rows := make([]*row, 0, len(counts))
	for _, r := range counts {
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].first < rows[j].first
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.name)
	}
	return out
}

func historyIDSet(history []models.InteractionRecord) map[int]struct{} {
	ids := make(map[int]struct{}, len(history))
	for _, rec := range history {
		ids[rec.TitleID] = struct{}{}
	}
	return ids
}

// dedupeByID keeps the first occurrence of each catalog id, preserving
// order.
func dedupeByID(items []models.CatalogItem) []models.CatalogItem {
	seen := make(map[int]struct{}, len(items))
	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
