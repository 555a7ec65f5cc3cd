// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package store

import (
	"context"
	"sync"

	"github.com/reeltrack/reeltrack/internal/models"
)

type interactionKey struct {
	userID  string
	titleID int
	kind    models.MediaKind
}

type ratingKey struct {
	userID    string
	subjectID int
}

type bundleKey struct {
	kind   models.BundleKind
	userID string
}

// Memory is an in-memory Store used by tests and ephemeral setups. Rows
// keep insertion order so reads are deterministic.
type Memory struct {
	mu sync.RWMutex

	interactions     map[interactionKey]models.InteractionRecord
	interactionOrder []interactionKey

	ratings     map[ratingKey]models.RatingRecord
	ratingOrder []ratingKey

	bundles map[bundleKey]StoredBundle
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		interactions: make(map[interactionKey]models.InteractionRecord),
		ratings:      make(map[ratingKey]models.RatingRecord),
		bundles:      make(map[bundleKey]StoredBundle),
	}
}

func (m *Memory) GetHistory(_ context.Context, userID string) ([]models.InteractionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.InteractionRecord
	for _, k := range m.interactionOrder {
		if k.userID == userID {
			out = append(out, m.interactions[k])
		}
	}
	return out, nil
}

func (m *Memory) GetRatings(_ context.Context, userID string) ([]models.RatingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.RatingRecord
	for _, k := range m.ratingOrder {
		if k.userID == userID {
			out = append(out, m.ratings[k])
		}
	}
	return out, nil
}

func (m *Memory) GetInteraction(_ context.Context, userID string, titleID int, kind models.MediaKind) (*models.InteractionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.interactions[interactionKey{userID, titleID, kind}]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) UpsertInteraction(_ context.Context, rec models.InteractionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := interactionKey{rec.UserID, rec.TitleID, rec.Kind}
	if _, exists := m.interactions[k]; !exists {
		m.interactionOrder = append(m.interactionOrder, k)
	}
	m.interactions[k] = rec
	return nil
}

func (m *Memory) UpsertRating(_ context.Context, rec models.RatingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := ratingKey{rec.UserID, rec.SubjectID}
	if _, exists := m.ratings[k]; !exists {
		m.ratingOrder = append(m.ratingOrder, k)
	}
	m.ratings[k] = rec
	return nil
}

func (m *Memory) GetBundle(_ context.Context, kind models.BundleKind, userID string) (*StoredBundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bundles[bundleKey{kind, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	// Copy the payload so callers cannot mutate stored state.
	cp := b
	cp.Payload = append([]byte(nil), b.Payload...)
	return &cp, nil
}

func (m *Memory) UpsertBundle(_ context.Context, b StoredBundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b.Payload = append([]byte(nil), b.Payload...)
	m.bundles[bundleKey{b.Kind, b.UserID}] = b
	return nil
}

func (m *Memory) MarkStale(_ context.Context, kind models.BundleKind, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := bundleKey{kind, userID}
	if b, ok := m.bundles[k]; ok {
		b.IsStale = true
		m.bundles[k] = b
	}
	return nil
}

func (m *Memory) DeleteBundle(_ context.Context, kind models.BundleKind, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.bundles, bundleKey{kind, userID})
	return nil
}

func (m *Memory) DeleteBundles(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.bundles {
		if k.userID == userID {
			delete(m.bundles, k)
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
