// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package catalog

import (
	"strconv"

	"github.com/reeltrack/reeltrack/internal/models"
)

// wireItem is one result row as the discovery API sends it. The upstream
// payload is loosely typed; nothing here crosses the boundary without
// passing through toCatalogItems and validation.
type wireItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Name        string  `json:"name"` // series results use "name" instead of "title"
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	ReleaseDate string  `json:"release_date"`
}

// discoverResponse is the paged envelope around discover/trending/similar
// results.
type discoverResponse struct {
	Page         int        `json:"page"`
	Results      []wireItem `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// wireGenre is one entry of the genre vocabulary endpoint.
type wireGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []wireGenre `json:"genres"`
}

// toCatalogItems converts wire rows into validated domain items. Genre ids
// are resolved through the cached vocabulary; unknown ids are skipped rather
// than invented.
func toCatalogItems(rows []wireItem, genreNames map[int]string) ([]models.CatalogItem, int) {
	items := make([]models.CatalogItem, 0, len(rows))
	for _, row := range rows {
		title := row.Title
		if title == "" {
			title = row.Name
		}

		var genres []string
		for _, id := range row.GenreIDs {
			if name, ok := genreNames[id]; ok {
				genres = append(genres, name)
			}
		}

		items = append(items, models.CatalogItem{
			ID:         row.ID,
			Title:      title,
			PosterURL:  row.PosterPath,
			Genres:     genres,
			Rating:     row.VoteAverage,
			Popularity: row.Popularity,
			VoteCount:  row.VoteCount,
			Year:       releaseYear(row.ReleaseDate),
		})
	}
	return models.SanitizeCatalogItems(items)
}

// releaseYear extracts the year from a "YYYY-MM-DD" release date, zero when
// absent or malformed.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
