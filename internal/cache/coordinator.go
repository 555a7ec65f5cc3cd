// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package cache coordinates the per-user bundle cache.
//
// Reads never block on a full recomputation once a bundle exists: a fresh
// bundle is returned as-is, a stale one is returned immediately while a
// background regeneration is scheduled, and only a missing bundle is built
// synchronously. Stats bundles are the exception — they are cheap and
// local, so a stale stats read just recomputes in place.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reeltrack/reeltrack/internal/behavior"
	"github.com/reeltrack/reeltrack/internal/logging"
	"github.com/reeltrack/reeltrack/internal/metrics"
	"github.com/reeltrack/reeltrack/internal/models"
	"github.com/reeltrack/reeltrack/internal/stats"
	"github.com/reeltrack/reeltrack/internal/store"
)

// Generator produces recommendation bundles; implemented by
// recommend.Engine and by mocks in tests.
type Generator interface {
	Generate(ctx context.Context, userID string, history []models.InteractionRecord) (*models.RecommendationBundle, error)
}

// Coordinator owns the staleness protocol for all three bundle kinds.
type Coordinator struct {
	store     store.Store
	engine    Generator
	scheduler Scheduler
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCoordinator builds a coordinator with the given TTL.
func NewCoordinator(st store.Store, engine Generator, scheduler Scheduler, ttl time.Duration) *Coordinator {
	return &Coordinator{
		store:     st,
		engine:    engine,
		scheduler: scheduler,
		ttl:       ttl,
		logger:    logging.With().Str("component", "cache").Logger(),
		now:       time.Now,
	}
}

// isStale applies the freshness rule: explicitly flagged, or aged past the
// TTL (inclusive).
func (c *Coordinator) isStale(b *store.StoredBundle) bool {
	return b.IsStale || c.now().Sub(b.UpdatedAt) >= c.ttl
}

// Recommendations serves the recommendation bundle for one user.
// Missing builds synchronously; stale returns the stored bundle unchanged
// and schedules exactly one background regeneration per user.
func (c *Coordinator) Recommendations(ctx context.Context, userID string) (*models.RecommendationBundle, error) {
	stored, err := c.store.GetBundle(ctx, models.BundleRecommendations, userID)
	if errors.Is(err, store.ErrNotFound) {
		metrics.BundleCacheMisses.WithLabelValues(string(models.BundleRecommendations)).Inc()
		return c.regenerateRecommendations(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading recommendation bundle: %w", err)
	}

	var bundle models.RecommendationBundle
	if err := json.Unmarshal(stored.Payload, &bundle); err != nil {
		// A corrupt payload is treated like a miss.
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("corrupt recommendation payload, rebuilding")
		metrics.BundleCacheMisses.WithLabelValues(string(models.BundleRecommendations)).Inc()
		return c.regenerateRecommendations(ctx, userID)
	}

	if c.isStale(stored) {
		metrics.BundleCacheHits.WithLabelValues(string(models.BundleRecommendations), "stale").Inc()
		c.scheduler.Submit("rec:"+userID, func(taskCtx context.Context) {
			if _, err := c.regenerateRecommendations(taskCtx, userID); err != nil {
				// The stale bundle stays in place; the next read retries.
				c.logger.Warn().Err(err).Str("user_id", userID).Msg("background regeneration failed")
			}
		})
		bundle.IsStale = true
		return &bundle, nil
	}

	metrics.BundleCacheHits.WithLabelValues(string(models.BundleRecommendations), "fresh").Inc()
	return &bundle, nil
}

// regenerateRecommendations builds a fresh bundle and upserts it. An
// upsert failure (e.g. the user was deleted mid-flight) is logged and the
// freshly built bundle is still returned.
func (c *Coordinator) regenerateRecommendations(ctx context.Context, userID string) (*models.RecommendationBundle, error) {
	history, err := c.store.GetHistory(ctx, userID)
	if err != nil {
		metrics.BundleRegenerations.WithLabelValues(string(models.BundleRecommendations), "error").Inc()
		return nil, fmt.Errorf("reading history: %w", err)
	}

	bundle, err := c.engine.Generate(ctx, userID, history)
	if err != nil {
		metrics.BundleRegenerations.WithLabelValues(string(models.BundleRecommendations), "error").Inc()
		return nil, fmt.Errorf("generating recommendations: %w", err)
	}
	bundle.UpdatedAt = c.now()
	bundle.IsStale = false

	if err := c.upsert(ctx, models.BundleRecommendations, userID, bundle, bundle.UpdatedAt); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("recommendation bundle write failed")
		metrics.BundleRegenerations.WithLabelValues(string(models.BundleRecommendations), "write_error").Inc()
		return bundle, nil
	}
	metrics.BundleRegenerations.WithLabelValues(string(models.BundleRecommendations), "success").Inc()
	return bundle, nil
}

// Profile serves the behavioral profile with the same staleness protocol
// as recommendations.
func (c *Coordinator) Profile(ctx context.Context, userID string) (*models.BehaviorProfile, error) {
	stored, err := c.store.GetBundle(ctx, models.BundleBehavior, userID)
	if errors.Is(err, store.ErrNotFound) {
		metrics.BundleCacheMisses.WithLabelValues(string(models.BundleBehavior)).Inc()
		return c.regenerateProfile(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading behavior bundle: %w", err)
	}

	var profile models.BehaviorProfile
	if err := json.Unmarshal(stored.Payload, &profile); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("corrupt behavior payload, rebuilding")
		metrics.BundleCacheMisses.WithLabelValues(string(models.BundleBehavior)).Inc()
		return c.regenerateProfile(ctx, userID)
	}

	if c.isStale(stored) {
		metrics.BundleCacheHits.WithLabelValues(string(models.BundleBehavior), "stale").Inc()
		c.scheduler.Submit("behavior:"+userID, func(taskCtx context.Context) {
			if _, err := c.regenerateProfile(taskCtx, userID); err != nil {
				c.logger.Warn().Err(err).Str("user_id", userID).Msg("background profile regeneration failed")
			}
		})
		return &profile, nil
	}

	metrics.BundleCacheHits.WithLabelValues(string(models.BundleBehavior), "fresh").Inc()
	return &profile, nil
}

func (c *Coordinator) regenerateProfile(ctx context.Context, userID string) (*models.BehaviorProfile, error) {
	history, ratings, err := c.readInputs(ctx, userID)
	if err != nil {
		metrics.BundleRegenerations.WithLabelValues(string(models.BundleBehavior), "error").Inc()
		return nil, err
	}

	profile := behavior.ComputeProfile(userID, history, ratings, c.now())
	if err := c.upsert(ctx, models.BundleBehavior, userID, &profile, profile.ComputedAt); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("behavior bundle write failed")
		metrics.BundleRegenerations.WithLabelValues(string(models.BundleBehavior), "write_error").Inc()
		return &profile, nil
	}
	metrics.BundleRegenerations.WithLabelValues(string(models.BundleBehavior), "success").Inc()
	return &profile, nil
}

// Stats serves the dashboard stats bundle. Stats are recomputed
// synchronously whenever missing or stale; there is no background path.
func (c *Coordinator) Stats(ctx context.Context, userID string) (*models.StatsBundle, error) {
	stored, err := c.store.GetBundle(ctx, models.BundleStats, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("reading stats bundle: %w", err)
	}

	if err == nil {
		var bundle models.StatsBundle
		if decodeErr := json.Unmarshal(stored.Payload, &bundle); decodeErr == nil && !c.isStale(stored) {
			metrics.BundleCacheHits.WithLabelValues(string(models.BundleStats), "fresh").Inc()
			return &bundle, nil
		}
	}
	metrics.BundleCacheMisses.WithLabelValues(string(models.BundleStats)).Inc()

	history, ratings, err := c.readInputs(ctx, userID)
	if err != nil {
		metrics.BundleRegenerations.WithLabelValues(string(models.BundleStats), "error").Inc()
		return nil, err
	}

	bundle := stats.Compute(userID, history, ratings, c.now())
	bundle.IsStale = false
	if err := c.upsert(ctx, models.BundleStats, userID, &bundle, bundle.UpdatedAt); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("stats bundle write failed")
		metrics.BundleRegenerations.WithLabelValues(string(models.BundleStats), "write_error").Inc()
		return &bundle, nil
	}
	metrics.BundleRegenerations.WithLabelValues(string(models.BundleStats), "success").Inc()
	return &bundle, nil
}

// MarkStale flags one bundle kind for a user; the next read triggers the
// appropriate refresh path.
func (c *Coordinator) MarkStale(ctx context.Context, kind models.BundleKind, userID string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown bundle kind %q", kind)
	}
	if err := c.store.MarkStale(ctx, kind, userID); err != nil {
		return fmt.Errorf("marking %s stale: %w", kind, err)
	}
	metrics.BundleStaleMarks.WithLabelValues(string(kind)).Inc()
	return nil
}

// Invalidate removes every cached bundle for a user.
func (c *Coordinator) Invalidate(ctx context.Context, userID string) error {
	if err := c.store.DeleteBundles(ctx, userID); err != nil {
		return fmt.Errorf("invalidating bundles: %w", err)
	}
	return nil
}

func (c *Coordinator) readInputs(ctx context.Context, userID string) ([]models.InteractionRecord, []models.RatingRecord, error) {
	history, err := c.store.GetHistory(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("reading history: %w", err)
	}
	ratings, err := c.store.GetRatings(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("reading ratings: %w", err)
	}
	return history, ratings, nil
}

// upsert serializes a bundle and replaces the stored row wholesale.
func (c *Coordinator) upsert(ctx context.Context, kind models.BundleKind, userID string, bundle any, updatedAt time.Time) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encoding %s bundle: %w", kind, err)
	}
	return c.store.UpsertBundle(ctx, store.StoredBundle{
		Kind:      kind,
		UserID:    userID,
		Payload:   payload,
		IsStale:   false,
		UpdatedAt: updatedAt,
	})
}
