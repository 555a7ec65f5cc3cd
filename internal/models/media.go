// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package models defines the domain entities shared across ReelTrack.
//
// Interaction and rating records belong to the CRUD write path; the
// analytics core only reads them. The derived bundle types (BehaviorProfile,
// RecommendationBundle, StatsBundle) are owned exclusively by the cache
// coordinator and are always replaced wholesale, never field-merged.
package models

import (
	"time"
)

// MediaKind classifies a tracked title.
type MediaKind string

const (
	// MediaMovie is a feature film.
	MediaMovie MediaKind = "movie"
	// MediaSeries is an episodic show.
	MediaSeries MediaKind = "series"
	// MediaBook is a book.
	MediaBook MediaKind = "book"
)

// Valid reports whether the kind is one of the known media kinds.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaMovie, MediaSeries, MediaBook:
		return true
	default:
		return false
	}
}

// Person is a cast or crew member denormalized onto an interaction record.
type Person struct {
	// ID is the catalog person identifier.
	ID int `json:"id" validate:"required"`

	// Name is the display name.
	Name string `json:"name" validate:"required"`

	// Job is the crew role (e.g. "Director"). Empty for cast entries.
	Job string `json:"job,omitempty"`
}

// InteractionRecord is one user's relationship with one title.
// At most one record exists per (UserID, TitleID, Kind).
type InteractionRecord struct {
	// UserID is the owning user.
	UserID string `json:"user_id" validate:"required"`

	// TitleID is the catalog identifier of the title.
	TitleID int `json:"title_id" validate:"required"`

	// Kind is the media kind of the title.
	Kind MediaKind `json:"kind" validate:"required,oneof=movie series book"`

	// Watched indicates the title has been fully consumed.
	Watched bool `json:"watched"`

	// WatchedAt is when the title was watched. Nil when unknown even if
	// Watched is set (e.g. imported history without timestamps).
	WatchedAt *time.Time `json:"watched_at,omitempty"`

	// Liked indicates an explicit like.
	Liked bool `json:"liked"`

	// Watchlisted indicates the title is on the user's watchlist.
	Watchlisted bool `json:"watchlisted"`

	// Title is the denormalized display title.
	Title string `json:"title"`

	// Genres holds denormalized genre names.
	Genres []string `json:"genres,omitempty"`

	// Cast holds denormalized top-billed cast.
	Cast []Person `json:"cast,omitempty"`

	// Crew holds denormalized crew with their jobs.
	Crew []Person `json:"crew,omitempty"`

	// RuntimeMinutes is the title runtime. Nil when the catalog has none.
	RuntimeMinutes *int `json:"runtime_minutes,omitempty"`

	// Year is the release year, zero when unknown.
	Year int `json:"year,omitempty"`

	// PosterURL is the denormalized poster path.
	PosterURL string `json:"poster_url,omitempty"`

	// UpdatedAt is the last mutation time of this record.
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingRecord is a 1-5 star rating with optional free text.
// The subject is either a title or an episode, never both.
type RatingRecord struct {
	// UserID is the rating author.
	UserID string `json:"user_id" validate:"required"`

	// SubjectID identifies the rated title or episode.
	SubjectID int `json:"subject_id" validate:"required"`

	// Rating is the star value on a 1-5 scale.
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`

	// Text is the optional review body.
	Text string `json:"text,omitempty"`

	// CreatedAt is when the rating was written.
	CreatedAt time.Time `json:"created_at"`
}

// CatalogItem is a denormalized entry from the external discovery catalog.
// Catalog payloads are validated into this shape at the boundary; nothing
// loosely typed crosses into the core.
type CatalogItem struct {
	// ID is the catalog title identifier.
	ID int `json:"id" validate:"required"`

	// Title is the display title.
	Title string `json:"title" validate:"required"`

	// PosterURL is the poster path, possibly empty.
	PosterURL string `json:"poster_url,omitempty"`

	// Genres holds the catalog genre names for the item.
	Genres []string `json:"genres,omitempty"`

	// Rating is the catalog average rating on a 0-10 scale.
	Rating float64 `json:"rating" validate:"gte=0,lte=10"`

	// Popularity is the catalog popularity score.
	Popularity float64 `json:"popularity" validate:"gte=0"`

	// VoteCount is the number of catalog votes behind Rating.
	VoteCount int `json:"vote_count" validate:"gte=0"`

	// Year is the release year, zero when unknown.
	Year int `json:"year,omitempty"`
}
