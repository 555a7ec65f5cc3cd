// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Publisher emits mutation events onto the bus.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher wraps a watermill publisher (the shared GoChannel in
// production).
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// PublishMutation serializes and publishes one mutation event.
func (p *Publisher) PublishMutation(m Mutation) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding mutation: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pub.Publish(TopicMutations, msg); err != nil {
		return fmt.Errorf("publishing mutation: %w", err)
	}
	return nil
}
