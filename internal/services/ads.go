package services

import (
	"context"
	"strings"

	"github.com/brandradar/server/internal/adstore"
	"github.com/brandradar/server/internal/discovery"
	"github.com/brandradar/server/internal/logger"
	"github.com/brandradar/server/internal/models"
	"github.com/brandradar/server/internal/telemetry"
)

const (
	// CacheHitThreshold is the minimum number of cached matches for a
	// free-text search to skip the external call. External calls are
	// rate-limited and billed; the cache is free.
	CacheHitThreshold = 10

	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// AdStore is the cache store adapter contract. adstore.Store is the
// production implementation; tests substitute a fake.
type AdStore interface {
	LookupByQuery(ctx context.Context, query string, platform models.Platform, niche string, limit int) ([]models.AdRecord, error)
	LookupCurated(ctx context.Context, platform models.Platform, niche, search string, limit int) ([]models.AdRecord, error)
	UpsertIfAbsent(ctx context.Context, rec *models.AdRecord) (bool, error)
}

// AdDiscoverer is the external search client contract.
type AdDiscoverer interface {
	Discover(ctx context.Context, req discovery.DiscoverRequest) (*discovery.Page, error)
}

// AdEnricher resolves media details for discovery stubs.
type AdEnricher interface {
	Enrich(ctx context.Context, stubs []discovery.AdStub) []models.AdRecord
}

// SearchRequest is one inbound ad search call.
type SearchRequest struct {
	Query    string          `json:"query,omitempty"`
	Platform models.Platform `json:"platform,omitempty"`
	Niche    string          `json:"niche,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Cursor   string          `json:"cursor,omitempty"`
}

// SearchResult is the diversified, ordered response page.
type SearchResult struct {
	Ads        []models.AdRecord
	NextCursor string
	HasMore    bool
	FromCache  bool
}

// AdSearchService orchestrates the discovery flow:
// cache lookup → external fetch → enrich → persist → respond.
type AdSearchService struct {
	store    AdStore
	client   AdDiscoverer
	enricher AdEnricher
	writer   *DedupWriter
}

func NewAdSearchService(store AdStore, client AdDiscoverer, enricher AdEnricher) *AdSearchService {
	return &AdSearchService{
		store:    store,
		client:   client,
		enricher: enricher,
		writer:   NewDedupWriter(store),
	}
}

// Search answers "find ads matching query/platform/niche".
//
// Decision order:
//   - empty query → curated browse only, the external service is
//     never invoked;
//   - cursor present → straight to the external service (cached pages
//     cannot satisfy arbitrary continuation cursors);
//   - otherwise → cache first, external only when the cache holds
//     fewer than CacheHitThreshold matches.
//
// Discovery and store errors abort the request; enrichment and
// persistence failures are absorbed so partial results still reach
// the caller.
func (s *AdSearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	log := logger.GetLogger("services.ads")

	limit := clampLimit(req.Limit)
	query := strings.TrimSpace(req.Query)

	// Pure browse: cache only.
	if query == "" && req.Cursor == "" {
		ads, err := s.BrowseCurated(ctx, req.Platform, req.Niche, "", limit)
		if err != nil {
			return nil, err
		}
		return &SearchResult{Ads: ads, FromCache: true}, nil
	}

	// Cache short-circuit, skipped on "load more".
	if req.Cursor == "" {
		cached, err := s.store.LookupByQuery(ctx, query, req.Platform, req.Niche, limit)
		if err != nil {
			return nil, err
		}
		if len(cached) >= CacheHitThreshold {
			log.Infof("Cache HIT for %q: %d records, external call skipped", query, len(cached))
			if telemetry.AdSearchCacheHits != nil {
				telemetry.AdSearchCacheHits.Add(ctx, 1)
			}
			return &SearchResult{Ads: cached, FromCache: true}, nil
		}
		log.Infof("Cache MISS for %q (%d cached, threshold %d)", query, len(cached), CacheHitThreshold)
	}

	if telemetry.AdSearchExternalCalls != nil {
		telemetry.AdSearchExternalCalls.Add(ctx, 1)
	}
	page, err := s.client.Discover(ctx, discovery.DiscoverRequest{
		Query:     query,
		Platform:  req.Platform,
		Niche:     req.Niche,
		Limit:     limit,
		PageToken: req.Cursor,
	})
	if err != nil {
		return nil, err
	}

	records := s.enricher.Enrich(ctx, page.Ads)

	// Cache warming: every discovery call also populates the cache so
	// future similar searches become hits. Failures are absorbed; a
	// broken write must not cost the caller their results.
	var searchQuery *string
	if query != "" {
		normalized := adstore.NormalizeQuery(query)
		searchQuery = &normalized
	}
	persisted := s.writer.PersistNewAds(ctx, records, searchQuery)
	if len(persisted.Errors) > 0 {
		log.Warnf("Persisted %d ads with %d errors (skipped %d duplicates)",
			persisted.Saved, len(persisted.Errors), persisted.Skipped)
	} else {
		log.Infof("Persisted %d new ads, skipped %d duplicates", persisted.Saved, persisted.Skipped)
	}
	if telemetry.AdsPersistedTotal != nil && persisted.Saved > 0 {
		telemetry.AdsPersistedTotal.Add(ctx, int64(persisted.Saved))
	}

	// External results keep upstream relevance order: no reshuffle,
	// no diversification (the service ranks with its own spread).
	nextCursor, hasMore := cursorFrom(page.NextPageToken)
	return &SearchResult{
		Ads:        records,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// BrowseCurated serves the cache-only browse path: curated records,
// capped per advertiser and shuffled so the same leaders do not open
// every browse.
func (s *AdSearchService) BrowseCurated(ctx context.Context, platform models.Platform, niche, search string, limit int) ([]models.AdRecord, error) {
	records, err := s.store.LookupCurated(ctx, platform, niche, search, clampLimit(limit))
	if err != nil {
		return nil, err
	}

	records = Diversify(records, DefaultMaxPerAdvertiser)
	Shuffle(records)
	return records, nil
}

// cursorFrom derives the caller-facing continuation state from the
// upstream token, unmodified. The engine holds no pagination state
// between calls; the caller is the sole owner of the cursor.
func cursorFrom(token string) (nextCursor string, hasMore bool) {
	return token, token != ""
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}
