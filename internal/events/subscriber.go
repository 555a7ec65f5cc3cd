// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reeltrack/reeltrack/internal/logging"
	"github.com/reeltrack/reeltrack/internal/models"
)

// StaleMarker is the cache surface the subscriber needs; implemented by
// cache.Coordinator.
type StaleMarker interface {
	MarkStale(ctx context.Context, kind models.BundleKind, userID string) error
}

// Subscriber consumes mutation events and flags the affected bundles.
// It implements suture.Service.
type Subscriber struct {
	sub    message.Subscriber
	cache  StaleMarker
	logger zerolog.Logger
}

// NewSubscriber builds the stale-marking subscriber.
func NewSubscriber(sub message.Subscriber, cache StaleMarker) *Subscriber {
	return &Subscriber{
		sub:    sub,
		cache:  cache,
		logger: logging.With().Str("component", "events").Logger(),
	}
}

// String names the service in supervisor logs.
func (s *Subscriber) String() string {
	return "mutation-subscriber"
}

// Serve consumes the mutation topic until the context is cancelled.
// Malformed messages are acked and dropped; a mark-stale failure is logged
// and the message is still acked, because the next mutation or TTL expiry
// will stale the bundle anyway.
func (s *Subscriber) Serve(ctx context.Context) error {
	msgs, err := s.sub.Subscribe(ctx, TopicMutations)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", TopicMutations, err)
	}

	for msg := range msgs {
		s.handle(ctx, msg)
		msg.Ack()
	}
	return ctx.Err()
}

func (s *Subscriber) handle(ctx context.Context, msg *message.Message) {
	var m Mutation
	if err := json.Unmarshal(msg.Payload, &m); err != nil {
		s.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed mutation event")
		return
	}
	if m.UserID == "" {
		s.logger.Warn().Str("message_id", msg.UUID).Msg("dropping mutation without user id")
		return
	}

	for _, kind := range affectedKinds(m.Kind) {
		if err := s.cache.MarkStale(ctx, kind, m.UserID); err != nil {
			s.logger.Warn().Err(err).
				Str("user_id", m.UserID).
				Str("kind", string(kind)).
				Msg("mark stale failed")
		}
	}
	s.logger.Debug().Str("user_id", m.UserID).Str("mutation", string(m.Kind)).Msg("bundles marked stale")
}

// affectedKinds maps a mutation to the bundle kinds it invalidates. Both
// mutation kinds feed the analyzer and the recommendation engine, so every
// bundle goes stale either way.
func affectedKinds(kind MutationKind) []models.BundleKind {
	switch kind {
	case MutationInteraction, MutationRating:
		return []models.BundleKind{models.BundleRecommendations, models.BundleBehavior, models.BundleStats}
	default:
		return nil
	}
}
