// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package store persists interaction history, ratings and cached bundles.
//
// The production implementation is DuckDB behind database/sql; tests use
// the in-memory implementation. Bundles are opaque JSON payloads keyed by
// (kind, user) and always replaced wholesale.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/reeltrack/reeltrack/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// StoredBundle is a cached bundle row. Payload is the serialized bundle;
// the store never interprets it.
type StoredBundle struct {
	Kind      models.BundleKind
	UserID    string
	Payload   []byte
	IsStale   bool
	UpdatedAt time.Time
}

// Store is the persistence surface for the analytics core and the write
// path. All methods are safe for concurrent use.
type Store interface {
	// GetHistory returns all interaction records for one user.
	GetHistory(ctx context.Context, userID string) ([]models.InteractionRecord, error)

	// GetRatings returns all rating records for one user.
	GetRatings(ctx context.Context, userID string) ([]models.RatingRecord, error)

	// GetInteraction returns one interaction record, ErrNotFound when absent.
	GetInteraction(ctx context.Context, userID string, titleID int, kind models.MediaKind) (*models.InteractionRecord, error)

	// UpsertInteraction inserts or replaces an interaction record.
	UpsertInteraction(ctx context.Context, rec models.InteractionRecord) error

	// UpsertRating inserts or replaces a rating record.
	UpsertRating(ctx context.Context, rec models.RatingRecord) error

	// GetBundle returns one cached bundle, ErrNotFound when absent.
	GetBundle(ctx context.Context, kind models.BundleKind, userID string) (*StoredBundle, error)

	// UpsertBundle inserts or replaces a bundle row atomically.
	UpsertBundle(ctx context.Context, b StoredBundle) error

	// MarkStale flags one bundle for refresh. Marking a missing bundle is
	// a no-op, not an error.
	MarkStale(ctx context.Context, kind models.BundleKind, userID string) error

	// DeleteBundle removes one bundle row.
	DeleteBundle(ctx context.Context, kind models.BundleKind, userID string) error

	// DeleteBundles removes all bundle rows for one user.
	DeleteBundles(ctx context.Context, userID string) error

	// Close releases the underlying resources.
	Close() error
}
