// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reeltrack/reeltrack/internal/logging"
	"github.com/reeltrack/reeltrack/internal/metrics"
)

// Task is one background regeneration unit.
type Task func(ctx context.Context)

// Scheduler runs fire-and-forget tasks with per-key de-duplication: while
// a task for a key is in flight, submissions for the same key are dropped.
type Scheduler interface {
	// Submit schedules the task unless one is already in flight for key.
	// Returns whether the task was accepted.
	Submit(key string, task Task) bool
}

// AsyncScheduler runs submitted tasks on their own goroutines under a
// supervisor-owned context. It implements suture.Service; tasks submitted
// before Serve run under context.Background().
type AsyncScheduler struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	ctx      context.Context
	wg       sync.WaitGroup
	logger   zerolog.Logger
}

// NewAsyncScheduler builds an idle scheduler.
func NewAsyncScheduler() *AsyncScheduler {
	return &AsyncScheduler{
		inflight: make(map[string]struct{}),
		logger:   logging.With().Str("component", "scheduler").Logger(),
	}
}

// Serve adopts the supervisor context and blocks until it is cancelled,
// then waits for in-flight tasks to drain.
func (s *AsyncScheduler) Serve(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	<-ctx.Done()

	s.wg.Wait()
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *AsyncScheduler) String() string {
	return "bundle-refresh-scheduler"
}

// Submit schedules one task per key at a time. Duplicate submissions while
// a regeneration is in flight are counted and dropped, which keeps two
// near-simultaneous stale reads from doubling catalog load.
func (s *AsyncScheduler) Submit(key string, task Task) bool {
	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		metrics.BundleRegenerationsDeduped.Inc()
		s.logger.Debug().Str("key", key).Msg("regeneration already in flight")
		return false
	}
	s.inflight[key] = struct{}{}
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
		}()
		task(ctx)
	}()
	return true
}
