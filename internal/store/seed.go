// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/reeltrack/reeltrack/internal/models"
)

// seedMockData loads a small deterministic fixture for development setups.
// Idempotent: rows are upserts keyed like real data.
func (db *DuckDB) seedMockData(ctx context.Context) error {
	base := time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)
	user := "demo"

	history := []models.InteractionRecord{
		{
			UserID: user, TitleID: 949, Kind: models.MediaMovie,
			Watched: true, WatchedAt: timePtr(base.AddDate(0, 0, 3)),
			Liked: true, Title: "Heat", Year: 1995,
			Genres:         []string{"Crime", "Drama"},
			Cast:           []models.Person{{ID: 1158, Name: "Al Pacino"}, {ID: 380, Name: "Robert De Niro"}},
			Crew:           []models.Person{{ID: 9543, Name: "Michael Mann", Job: "Director"}},
			RuntimeMinutes: intPtrVal(170),
			UpdatedAt:      base.AddDate(0, 0, 3),
		},
		{
			UserID: user, TitleID: 680, Kind: models.MediaMovie,
			Watched: true, WatchedAt: timePtr(base.AddDate(0, 0, 10)),
			Title: "Pulp Fiction", Year: 1994,
			Genres:         []string{"Crime", "Thriller"},
			Cast:           []models.Person{{ID: 8891, Name: "John Travolta"}},
			Crew:           []models.Person{{ID: 138, Name: "Quentin Tarantino", Job: "Director"}},
			RuntimeMinutes: intPtrVal(154),
			UpdatedAt:      base.AddDate(0, 0, 10),
		},
		{
			UserID: user, TitleID: 27205, Kind: models.MediaMovie,
			Watchlisted: true, Title: "Inception", Year: 2010,
			Genres:    []string{"Science Fiction", "Action"},
			UpdatedAt: base.AddDate(0, 0, 12),
		},
	}

	for _, rec := range history {
		if err := db.UpsertInteraction(ctx, rec); err != nil {
			return fmt.Errorf("seeding interaction %d: %w", rec.TitleID, err)
		}
	}

	ratings := []models.RatingRecord{
		{UserID: user, SubjectID: 949, Rating: 5, Text: "all-time favourite", CreatedAt: base.AddDate(0, 0, 4)},
		{UserID: user, SubjectID: 680, Rating: 4, CreatedAt: base.AddDate(0, 0, 11)},
	}
	for _, rec := range ratings {
		if err := db.UpsertRating(ctx, rec); err != nil {
			return fmt.Errorf("seeding rating %d: %w", rec.SubjectID, err)
		}
	}

	db.logger.Info().Str("user_id", user).Msg("seeded mock data")
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

func intPtrVal(v int) *int { return &v }
