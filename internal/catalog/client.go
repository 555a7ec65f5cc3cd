// ReelTrack - Personal Media Tracking and Recommendations
// Copyright 2026 ReelTrack contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reeltrack/reeltrack

// Package catalog implements the client for the external discovery API.
//
// The client carries two resilience layers: a token-bucket rate limiter so
// ReelTrack stays inside the catalog's request budget, and a circuit breaker
// that sheds load when the catalog degrades. Callers treat every method as
// fallible and degrade their own output instead of propagating (the
// recommendation engine drops a list, it never fails the bundle).
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/reeltrack/reeltrack/internal/config"
	"github.com/reeltrack/reeltrack/internal/logging"
	"github.com/reeltrack/reeltrack/internal/metrics"
	"github.com/reeltrack/reeltrack/internal/models"
)

// maxErrorBodySize bounds how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

// Filters narrows a discover query.
type Filters struct {
	// MinVotes is the catalog-side vote-count floor; zero means no floor.
	MinVotes int

	// SortBy is the catalog sort key, e.g. "popularity.desc". Empty uses
	// the catalog default.
	SortBy string
}

// Client is the discovery API surface the recommendation engine consumes.
// Implemented by HTTPClient in production and by mocks in tests.
type Client interface {
	// DiscoverByGenres returns candidates matching any of the genre names.
	DiscoverByGenres(ctx context.Context, genres []string, f Filters) ([]models.CatalogItem, error)

	// DiscoverByKeywords returns candidates matching the keyword tags.
	DiscoverByKeywords(ctx context.Context, keywords []string, f Filters) ([]models.CatalogItem, error)

	// Similar returns titles the catalog considers similar to the given one.
	Similar(ctx context.Context, titleID int) ([]models.CatalogItem, error)

	// Trending returns the catalog's current trending titles.
	Trending(ctx context.Context) ([]models.CatalogItem, error)

	// Genres returns the catalog's full genre vocabulary.
	Genres(ctx context.Context) ([]string, error)
}

// HTTPClient talks to a TMDB-style discovery API over HTTP.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[any]
	logger  zerolog.Logger

	// genre vocabulary cache, fetched once and reused
	genreMu      sync.Mutex
	genreByName  map[string]int
	genreByID    map[int]string
	genresLoaded bool
}

// NewHTTPClient builds the production catalog client from config.
// Breaker settings follow the usual shape: open at a 60% failure rate over
// at least 10 requests, probe again after 2 minutes.
func NewHTTPClient(cfg config.CatalogConfig) *HTTPClient {
	cbName := "catalog-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	logger := logging.With().Str("component", "catalog").Logger()

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("catalog circuit state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:      cb,
		logger:  logger,
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// DiscoverByGenres resolves genre names to catalog ids and issues a
// discover query. Unknown genre names are skipped; all names unknown is an
// empty result, not an error.
func (c *HTTPClient) DiscoverByGenres(ctx context.Context, genres []string, f Filters) ([]models.CatalogItem, error) {
	byName, byID, err := c.genreTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving genres: %w", err)
	}

	ids := make([]string, 0, len(genres))
	for _, g := range genres {
		if id, ok := byName[strings.ToLower(g)]; ok {
			ids = append(ids, strconv.Itoa(id))
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("with_genres", strings.Join(ids, ","))
	applyFilters(params, f)

	return c.fetchItems(ctx, "discover_genres", "/discover/movie", params, byID)
}

// DiscoverByKeywords issues a discover query over keyword tags.
func (c *HTTPClient) DiscoverByKeywords(ctx context.Context, keywords []string, f Filters) ([]models.CatalogItem, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	_, byID, err := c.genreTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving genres: %w", err)
	}

	params := url.Values{}
	params.Set("with_keywords", strings.Join(keywords, ","))
	applyFilters(params, f)

	return c.fetchItems(ctx, "discover_keywords", "/discover/movie", params, byID)
}

// Similar returns the catalog's similar-titles list for one title.
func (c *HTTPClient) Similar(ctx context.Context, titleID int) ([]models.CatalogItem, error) {
	_, byID, err := c.genreTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving genres: %w", err)
	}
	path := fmt.Sprintf("/movie/%d/similar", titleID)
	return c.fetchItems(ctx, "similar", path, url.Values{}, byID)
}

// Trending returns the catalog's weekly trending titles.
func (c *HTTPClient) Trending(ctx context.Context) ([]models.CatalogItem, error) {
	_, byID, err := c.genreTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving genres: %w", err)
	}
	return c.fetchItems(ctx, "trending", "/trending/movie/week", url.Values{}, byID)
}

// Genres returns the catalog genre vocabulary as names, sorted so callers
// that iterate it produce the same output on identical inputs.
func (c *HTTPClient) Genres(ctx context.Context) ([]string, error) {
	_, byID, err := c.genreTable(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(byID))
	for _, name := range byID {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func applyFilters(params url.Values, f Filters) {
	if f.MinVotes > 0 {
		params.Set("vote_count.gte", strconv.Itoa(f.MinVotes))
	}
	if f.SortBy != "" {
		params.Set("sort_by", f.SortBy)
	}
}

// fetchItems performs one discover-shaped request through the breaker and
// converts the payload at the boundary, counting dropped rows.
func (c *HTTPClient) fetchItems(ctx context.Context, operation, path string, params url.Values, genreNames map[int]string) ([]models.CatalogItem, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var resp discoverResponse
		if err := c.get(ctx, operation, path, params, &resp); err != nil {
			return nil, err
		}
		return resp.Results, nil
	})
	if err != nil {
		metrics.CatalogRequestErrors.WithLabelValues(operation).Inc()
		return nil, fmt.Errorf("catalog %s: %w", operation, err)
	}

	rows := result.([]wireItem)
	items, dropped := toCatalogItems(rows, genreNames)
	if dropped > 0 {
		metrics.CatalogItemsDropped.Add(float64(dropped))
		c.logger.Warn().Int("dropped", dropped).Str("operation", operation).Msg("dropped malformed catalog entries")
	}
	return items, nil
}

// genreTable returns the cached genre maps, fetching the vocabulary on
// first use. The vocabulary is small and effectively static, so one fetch
// per process lifetime is enough.
func (c *HTTPClient) genreTable(ctx context.Context) (map[string]int, map[int]string, error) {
	c.genreMu.Lock()
	defer c.genreMu.Unlock()

	if c.genresLoaded {
		return c.genreByName, c.genreByID, nil
	}

	result, err := c.cb.Execute(func() (any, error) {
		var resp genreListResponse
		if err := c.get(ctx, "genres", "/genre/movie/list", url.Values{}, &resp); err != nil {
			return nil, err
		}
		return resp.Genres, nil
	})
	if err != nil {
		metrics.CatalogRequestErrors.WithLabelValues("genres").Inc()
		return nil, nil, fmt.Errorf("catalog genres: %w", err)
	}

	byName := make(map[string]int)
	byID := make(map[int]string)
	for _, g := range result.([]wireGenre) {
		byName[strings.ToLower(g.Name)] = g.ID
		byID[g.ID] = g.Name
	}

	c.genreByName = byName
	c.genreByID = byID
	c.genresLoaded = true
	return byName, byID, nil
}

// get performs one rate-limited HTTP GET and decodes the JSON body.
func (c *HTTPClient) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + path
	if enc := params.Encode(); enc != "" {
		reqURL += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.CatalogRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding catalog response: %w", err)
	}
	return nil
}

// readBodyForError reads at most maxErrorBodySize bytes of an error
// response for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
