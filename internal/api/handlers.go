// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reeltrack/reeltrack/internal/events"
	"github.com/reeltrack/reeltrack/internal/logging"
	"github.com/reeltrack/reeltrack/internal/models"
	"github.com/reeltrack/reeltrack/internal/store"
)

// BundleCache is the coordinator surface the handlers need.
type BundleCache interface {
	Recommendations(ctx context.Context, userID string) (*models.RecommendationBundle, error)
	Profile(ctx context.Context, userID string) (*models.BehaviorProfile, error)
	Stats(ctx context.Context, userID string) (*models.StatsBundle, error)
	Invalidate(ctx context.Context, userID string) error
}

// MutationPublisher emits write-path events; implemented by
// events.Publisher.
type MutationPublisher interface {
	PublishMutation(m events.Mutation) error
}

// Handler holds the dependencies for all endpoints.
type Handler struct {
	cache     BundleCache
	store     store.Store
	publisher MutationPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewHandler builds the endpoint handler set.
func NewHandler(cache BundleCache, st store.Store, publisher MutationPublisher) *Handler {
	return &Handler{
		cache:     cache,
		store:     st,
		publisher: publisher,
		logger:    logging.With().Str("component", "api").Logger(),
		now:       time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondData(w, map[string]string{"status": "healthy"})
}

// Recommendations serves the cached recommendation bundle.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	bundle, err := h.cache.Recommendations(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("recommendations read failed")
		respondError(w, http.StatusInternalServerError, "recommendations_failed", "could not load recommendations")
		return
	}
	respondData(w, bundle)
}

// Profile serves the cached behavioral profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	profile, err := h.cache.Profile(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("profile read failed")
		respondError(w, http.StatusInternalServerError, "profile_failed", "could not load profile")
		return
	}
	respondData(w, profile)
}

// Stats serves the dashboard stats bundle.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	bundle, err := h.cache.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("stats read failed")
		respondError(w, http.StatusInternalServerError, "stats_failed", "could not load stats")
		return
	}
	respondData(w, bundle)
}

// interactionRequest is the write-path body for interaction toggles.
type interactionRequest struct {
	TitleID        int              `json:"title_id" validate:"required"`
	Kind           models.MediaKind `json:"kind" validate:"required,oneof=movie series book"`
	Watched        bool             `json:"watched"`
	WatchedAt      *time.Time       `json:"watched_at,omitempty"`
	Liked          bool             `json:"liked"`
	Watchlisted    bool             `json:"watchlisted"`
	Title          string           `json:"title"`
	Genres         []string         `json:"genres,omitempty"`
	Cast           []models.Person  `json:"cast,omitempty"`
	Crew           []models.Person  `json:"crew,omitempty"`
	RuntimeMinutes *int             `json:"runtime_minutes,omitempty"`
	Year           int              `json:"year,omitempty"`
	PosterURL      string           `json:"poster_url,omitempty"`
}

// UpsertInteraction writes an interaction record and publishes the
// mutation so the affected bundles go stale.
func (h *Handler) UpsertInteraction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	if err := models.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_interaction", err.Error())
		return
	}

	rec := models.InteractionRecord{
		UserID:         userID,
		TitleID:        req.TitleID,
		Kind:           req.Kind,
		Watched:        req.Watched,
		WatchedAt:      req.WatchedAt,
		Liked:          req.Liked,
		Watchlisted:    req.Watchlisted,
		Title:          req.Title,
		Genres:         req.Genres,
		Cast:           req.Cast,
		Crew:           req.Crew,
		RuntimeMinutes: req.RuntimeMinutes,
		Year:           req.Year,
		PosterURL:      req.PosterURL,
		UpdatedAt:      h.now(),
	}
	if err := h.store.UpsertInteraction(r.Context(), rec); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("interaction write failed")
		respondError(w, http.StatusInternalServerError, "write_failed", "could not save interaction")
		return
	}

	h.publish(events.Mutation{
		Kind:       events.MutationInteraction,
		UserID:     userID,
		TitleID:    rec.TitleID,
		OccurredAt: rec.UpdatedAt,
	})
	respondData(w, rec)
}

// ratingRequest is the write-path body for ratings.
type ratingRequest struct {
	SubjectID int    `json:"subject_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Text      string `json:"text,omitempty"`
}

// UpsertRating writes a rating record and publishes the mutation.
func (h *Handler) UpsertRating(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return
	}
	if err := models.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_rating", err.Error())
		return
	}

	rec := models.RatingRecord{
		UserID:    userID,
		SubjectID: req.SubjectID,
		Rating:    req.Rating,
		Text:      req.Text,
		CreatedAt: h.now(),
	}
	if err := h.store.UpsertRating(r.Context(), rec); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("rating write failed")
		respondError(w, http.StatusInternalServerError, "write_failed", "could not save rating")
		return
	}

	h.publish(events.Mutation{
		Kind:       events.MutationRating,
		UserID:     userID,
		TitleID:    rec.SubjectID,
		OccurredAt: rec.CreatedAt,
	})
	respondData(w, rec)
}

// History returns the user's raw interaction history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	history, err := h.store.GetHistory(r.Context(), userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("history read failed")
		respondError(w, http.StatusInternalServerError, "history_failed", "could not load history")
		return
	}
	if history == nil {
		history = []models.InteractionRecord{}
	}
	respondData(w, history)
}

// InvalidateCache drops every cached bundle for a user.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.cache.Invalidate(r.Context(), userID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("cache invalidation failed")
		respondError(w, http.StatusInternalServerError, "invalidate_failed", "could not invalidate cache")
		return
	}
	respondData(w, map[string]string{"invalidated": userID})
}

// publish fires a mutation event. Publish failures are logged, never
// surfaced: the write already succeeded, and the bundle will stale out via
// TTL at worst.
func (h *Handler) publish(m events.Mutation) {
	if err := h.publisher.PublishMutation(m); err != nil {
		h.logger.Warn().Err(err).Str("user_id", m.UserID).Msg("mutation publish failed")
	}
}
