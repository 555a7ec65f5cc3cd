// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package metrics provides Prometheus instrumentation for ReelTrack:
// bundle cache efficiency, background regeneration, catalog client health
// and API endpoint latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Bundle cache metrics

	BundleCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_cache_hits_total",
			Help: "Bundle cache hits by kind and freshness (fresh, stale)",
		},
		[]string{"kind", "freshness"},
	)

	BundleCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_cache_misses_total",
			Help: "Bundle cache misses by kind (synchronous first build)",
		},
		[]string{"kind"},
	)

	BundleRegenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_regenerations_total",
			Help: "Background bundle regenerations by kind and outcome (success, error)",
		},
		[]string{"kind", "outcome"},
	)

	BundleRegenerationsDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bundle_regenerations_deduped_total",
			Help: "Background regenerations skipped because one was already in flight",
		},
	)

	BundleStaleMarks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bundle_stale_marks_total",
			Help: "Bundles flagged stale by write-path mutations, by kind",
		},
		[]string{"kind"},
	)

	// Catalog client metrics

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of catalog API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_request_errors_total",
			Help: "Catalog API request errors by operation",
		},
		[]string{"operation"},
	)

	CatalogItemsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_items_dropped_total",
			Help: "Catalog payload entries rejected by boundary validation",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "API requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Store metrics

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "DuckDB query errors by operation",
		},
		[]string{"operation"},
	)
)
