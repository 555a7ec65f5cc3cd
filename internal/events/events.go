// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package events is the mutation hook between the CRUD write path and the
// bundle cache. Write handlers publish a Mutation after every successful
// store write; the subscriber marks the affected bundles stale. This bus
// is the only coupling surface between the two sides.
package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

// TopicMutations carries every write-path mutation event.
const TopicMutations = "reeltrack.mutations"

// MutationKind distinguishes what was written.
type MutationKind string

const (
	// MutationInteraction is a watched/liked/watchlisted toggle.
	MutationInteraction MutationKind = "interaction"
	// MutationRating is a rating write.
	MutationRating MutationKind = "rating"
)

// Mutation is the event payload.
type Mutation struct {
	Kind       MutationKind `json:"kind"`
	UserID     string       `json:"user_id"`
	TitleID    int          `json:"title_id,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewBus builds the in-process pub/sub channel both sides share. Output
// channels are buffered so a slow subscriber never blocks a write handler.
func NewBus(logger zerolog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, newLoggerAdapter(logger))
}

// loggerAdapter bridges watermill's logging interface onto zerolog.
type loggerAdapter struct {
	logger zerolog.Logger
}

func newLoggerAdapter(logger zerolog.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{logger: logger.With().Str("component", "events").Logger()}
}

func (a *loggerAdapter) event(ev *zerolog.Event, msg string, fields watermill.LogFields) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.event(a.logger.Error().Err(err), msg, fields)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.event(a.logger.Info(), msg, fields)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.event(a.logger.Debug(), msg, fields)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.event(a.logger.Trace(), msg, fields)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &loggerAdapter{logger: ctx.Logger()}
}
