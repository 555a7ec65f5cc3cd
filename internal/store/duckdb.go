// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reeltrack/reeltrack/internal/config"
	"github.com/reeltrack/reeltrack/internal/logging"
	"github.com/reeltrack/reeltrack/internal/metrics"
	"github.com/reeltrack/reeltrack/internal/models"
)

// schema creates the three tables the core uses. Denormalized slices
// (genres, cast, crew) are stored as JSON text; DuckDB treats them as
// opaque VARCHAR and the codec lives entirely in this package.
const schema = `
CREATE TABLE IF NOT EXISTS interactions (
	user_id         VARCHAR NOT NULL,
	title_id        INTEGER NOT NULL,
	kind            VARCHAR NOT NULL,
	watched         BOOLEAN NOT NULL DEFAULT false,
	watched_at      TIMESTAMP,
	liked           BOOLEAN NOT NULL DEFAULT false,
	watchlisted     BOOLEAN NOT NULL DEFAULT false,
	title           VARCHAR NOT NULL DEFAULT '',
	genres          VARCHAR NOT NULL DEFAULT '[]',
	cast_members    VARCHAR NOT NULL DEFAULT '[]',
	crew_members    VARCHAR NOT NULL DEFAULT '[]',
	runtime_minutes INTEGER,
	year            INTEGER NOT NULL DEFAULT 0,
	poster_url      VARCHAR NOT NULL DEFAULT '',
	updated_at      TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, title_id, kind)
);

CREATE TABLE IF NOT EXISTS ratings (
	user_id    VARCHAR NOT NULL,
	subject_id INTEGER NOT NULL,
	rating     INTEGER NOT NULL,
	text       VARCHAR NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, subject_id)
);

CREATE TABLE IF NOT EXISTS cached_bundles (
	kind       VARCHAR NOT NULL,
	user_id    VARCHAR NOT NULL,
	payload    VARCHAR NOT NULL,
	is_stale   BOOLEAN NOT NULL DEFAULT false,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (kind, user_id)
);
`

// DuckDB is the production Store backed by an embedded DuckDB file.
type DuckDB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// NewDuckDB opens (or creates) the database file and initializes the
// schema. Auto-install/auto-load of DuckDB extensions is disabled so
// startup never hangs in restricted network environments.
func NewDuckDB(cfg config.DatabaseConfig) (*DuckDB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." && cfg.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DuckDB{
		conn:   conn,
		logger: logging.With().Str("component", "store").Logger(),
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if cfg.SeedMockData {
		if err := db.seedMockData(context.Background()); err != nil {
			db.logger.Warn().Err(err).Msg("mock data seeding failed")
		}
	}

	db.logger.Info().Str("path", cfg.Path).Int("threads", threads).Msg("database ready")
	return db, nil
}

// Close closes the underlying connection.
func (db *DuckDB) Close() error {
	return db.conn.Close()
}

// observe wraps a query with duration and error metrics.
func observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(operation).Inc()
	}
	return err
}

// GetHistory returns every interaction record for a user, stored order.
func (db *DuckDB) GetHistory(ctx context.Context, userID string) ([]models.InteractionRecord, error) {
	var records []models.InteractionRecord
	err := observe("get_history", func() error {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT user_id, title_id, kind, watched, watched_at, liked, watchlisted,
			       title, genres, cast_members, crew_members, runtime_minutes, year,
			       poster_url, updated_at
			FROM interactions
			WHERE user_id = ?
			ORDER BY updated_at, title_id`, userID)
		if err != nil {
			return fmt.Errorf("querying history: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			rec, err := scanInteraction(rows)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	valid, dropped := models.SanitizeHistory(records)
	if dropped > 0 {
		db.logger.Warn().Int("dropped", dropped).Str("user_id", userID).Msg("dropped malformed history rows")
	}
	return valid, nil
}

func scanInteraction(rows *sql.Rows) (models.InteractionRecord, error) {
	var (
		rec       models.InteractionRecord
		kind      string
		watchedAt sql.NullTime
		runtime   sql.NullInt64
		genres    string
		cast      string
		crew      string
	)
	if err := rows.Scan(&rec.UserID, &rec.TitleID, &kind, &rec.Watched, &watchedAt,
		&rec.Liked, &rec.Watchlisted, &rec.Title, &genres, &cast, &crew,
		&runtime, &rec.Year, &rec.PosterURL, &rec.UpdatedAt); err != nil {
		return rec, fmt.Errorf("scanning interaction: %w", err)
	}

	rec.Kind = models.MediaKind(kind)
	if watchedAt.Valid {
		t := watchedAt.Time
		rec.WatchedAt = &t
	}
	if runtime.Valid {
		v := int(runtime.Int64)
		rec.RuntimeMinutes = &v
	}
	if err := json.Unmarshal([]byte(genres), &rec.Genres); err != nil {
		return rec, fmt.Errorf("decoding genres: %w", err)
	}
	if err := json.Unmarshal([]byte(cast), &rec.Cast); err != nil {
		return rec, fmt.Errorf("decoding cast: %w", err)
	}
	if err := json.Unmarshal([]byte(crew), &rec.Crew); err != nil {
		return rec, fmt.Errorf("decoding crew: %w", err)
	}
	return rec, nil
}

// GetRatings returns every rating record for a user.
func (db *DuckDB) GetRatings(ctx context.Context, userID string) ([]models.RatingRecord, error) {
	var records []models.RatingRecord
	err := observe("get_ratings", func() error {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT user_id, subject_id, rating, text, created_at
			FROM ratings
			WHERE user_id = ?
			ORDER BY created_at, subject_id`, userID)
		if err != nil {
			return fmt.Errorf("querying ratings: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var rec models.RatingRecord
			if err := rows.Scan(&rec.UserID, &rec.SubjectID, &rec.Rating, &rec.Text, &rec.CreatedAt); err != nil {
				return fmt.Errorf("scanning rating: %w", err)
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetInteraction returns one interaction record, ErrNotFound when absent.
func (db *DuckDB) GetInteraction(ctx context.Context, userID string, titleID int, kind models.MediaKind) (*models.InteractionRecord, error) {
	var rec *models.InteractionRecord
	err := observe("get_interaction", func() error {
		rows, err := db.conn.QueryContext(ctx, `
			SELECT user_id, title_id, kind, watched, watched_at, liked, watchlisted,
			       title, genres, cast_members, crew_members, runtime_minutes, year,
			       poster_url, updated_at
			FROM interactions
			WHERE user_id = ? AND title_id = ? AND kind = ?`, userID, titleID, string(kind))
		if err != nil {
			return fmt.Errorf("querying interaction: %w", err)
		}
		defer func() { _ = rows.Close() }()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return ErrNotFound
		}
		r, err := scanInteraction(rows)
		if err != nil {
			return err
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpsertInteraction replaces the whole row for (user, title, kind).
func (db *DuckDB) UpsertInteraction(ctx context.Context, rec models.InteractionRecord) error {
	genres, err := json.Marshal(sliceOrEmpty(rec.Genres))
	if err != nil {
		return fmt.Errorf("encoding genres: %w", err)
	}
	cast, err := json.Marshal(peopleOrEmpty(rec.Cast))
	if err != nil {
		return fmt.Errorf("encoding cast: %w", err)
	}
	crew, err := json.Marshal(peopleOrEmpty(rec.Crew))
	if err != nil {
		return fmt.Errorf("encoding crew: %w", err)
	}

	var watchedAt any
	if rec.WatchedAt != nil {
		watchedAt = *rec.WatchedAt
	}
	var runtime any
	if rec.RuntimeMinutes != nil {
		runtime = *rec.RuntimeMinutes
	}

	return observe("upsert_interaction", func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO interactions (user_id, title_id, kind, watched, watched_at,
				liked, watchlisted, title, genres, cast_members, crew_members,
				runtime_minutes, year, poster_url, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, title_id, kind) DO UPDATE SET
				watched = excluded.watched,
				watched_at = excluded.watched_at,
				liked = excluded.liked,
				watchlisted = excluded.watchlisted,
				title = excluded.title,
				genres = excluded.genres,
				cast_members = excluded.cast_members,
				crew_members = excluded.crew_members,
				runtime_minutes = excluded.runtime_minutes,
				year = excluded.year,
				poster_url = excluded.poster_url,
				updated_at = excluded.updated_at`,
			rec.UserID, rec.TitleID, string(rec.Kind), rec.Watched, watchedAt,
			rec.Liked, rec.Watchlisted, rec.Title, string(genres), string(cast),
			string(crew), runtime, rec.Year, rec.PosterURL, rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upserting interaction: %w", err)
		}
		return nil
	})
}

// UpsertRating replaces the whole row for (user, subject).
func (db *DuckDB) UpsertRating(ctx context.Context, rec models.RatingRecord) error {
	return observe("upsert_rating", func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO ratings (user_id, subject_id, rating, text, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, subject_id) DO UPDATE SET
				rating = excluded.rating,
				text = excluded.text,
				created_at = excluded.created_at`,
			rec.UserID, rec.SubjectID, rec.Rating, rec.Text, rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("upserting rating: %w", err)
		}
		return nil
	})
}

// GetBundle returns one cached bundle row, ErrNotFound when absent.
func (db *DuckDB) GetBundle(ctx context.Context, kind models.BundleKind, userID string) (*StoredBundle, error) {
	var b StoredBundle
	err := observe("get_bundle", func() error {
		var payload string
		row := db.conn.QueryRowContext(ctx, `
			SELECT kind, user_id, payload, is_stale, updated_at
			FROM cached_bundles
			WHERE kind = ? AND user_id = ?`, string(kind), userID)
		var k string
		if err := row.Scan(&k, &b.UserID, &payload, &b.IsStale, &b.UpdatedAt); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("scanning bundle: %w", err)
		}
		b.Kind = models.BundleKind(k)
		b.Payload = []byte(payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpsertBundle replaces the whole bundle row in one statement, so readers
// never observe a partially updated bundle.
func (db *DuckDB) UpsertBundle(ctx context.Context, b StoredBundle) error {
	return observe("upsert_bundle", func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO cached_bundles (kind, user_id, payload, is_stale, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (kind, user_id) DO UPDATE SET
				payload = excluded.payload,
				is_stale = excluded.is_stale,
				updated_at = excluded.updated_at`,
			string(b.Kind), b.UserID, string(b.Payload), b.IsStale, b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upserting bundle: %w", err)
		}
		return nil
	})
}

// MarkStale flags one bundle; a missing row is a no-op.
func (db *DuckDB) MarkStale(ctx context.Context, kind models.BundleKind, userID string) error {
	return observe("mark_stale", func() error {
		_, err := db.conn.ExecContext(ctx, `
			UPDATE cached_bundles SET is_stale = true
			WHERE kind = ? AND user_id = ?`, string(kind), userID)
		if err != nil {
			return fmt.Errorf("marking bundle stale: %w", err)
		}
		return nil
	})
}

// DeleteBundle removes one bundle row.
func (db *DuckDB) DeleteBundle(ctx context.Context, kind models.BundleKind, userID string) error {
	return observe("delete_bundle", func() error {
		_, err := db.conn.ExecContext(ctx, `
			DELETE FROM cached_bundles WHERE kind = ? AND user_id = ?`, string(kind), userID)
		if err != nil {
			return fmt.Errorf("deleting bundle: %w", err)
		}
		return nil
	})
}

// DeleteBundles removes every bundle row for one user.
func (db *DuckDB) DeleteBundles(ctx context.Context, userID string) error {
	return observe("delete_bundles", func() error {
		_, err := db.conn.ExecContext(ctx, `
			DELETE FROM cached_bundles WHERE user_id = ?`, userID)
		if err != nil {
			return fmt.Errorf("deleting bundles: %w", err)
		}
		return nil
	})
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func peopleOrEmpty(p []models.Person) []models.Person {
	if p == nil {
		return []models.Person{}
	}
	return p
}
