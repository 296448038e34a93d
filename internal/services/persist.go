package services

import (
	"context"
	"fmt"

	"github.com/brandradar/server/internal/logger"
	"github.com/brandradar/server/internal/models"
)

// PersistResult reports the outcome of one cache-warming pass.
// Callers and tests assert on this instead of parsing logs.
type PersistResult struct {
	Saved   int
	Skipped int
	Errors  []error
}

// DedupWriter idempotently writes newly discovered ads into the cache
// store. A duplicate external_id is a skip, never an error; two
// concurrent requests racing on the same ad resolve through the
// store's uniqueness constraint.
type DedupWriter struct {
	store AdStore
}

func NewDedupWriter(store AdStore) *DedupWriter {
	return &DedupWriter{store: store}
}

// PersistNewAds inserts each record unless its external_id is already
// cached. searchQuery is the normalized query that surfaced the batch,
// or nil for a curated browse. Per-record failures are collected, not
// propagated: one bad row must not lose the rest of the batch.
func (w *DedupWriter) PersistNewAds(ctx context.Context, records []models.AdRecord, searchQuery *string) PersistResult {
	log := logger.GetLogger("services.persist")

	var result PersistResult
	for i := range records {
		rec := records[i]
		rec.IsCurated = false
		rec.SearchQuery = searchQuery

		if rec.ExternalID == "" {
			result.Errors = append(result.Errors, fmt.Errorf("record %d has no external id", i))
			continue
		}
		if rec.ThumbnailURL == "" {
			result.Errors = append(result.Errors, fmt.Errorf("ad %s has no thumbnail", rec.ExternalID))
			continue
		}

		inserted, err := w.store.UpsertIfAbsent(ctx, &rec)
		if err != nil {
			log.Warnf("Failed to persist ad %s: %v", rec.ExternalID, err)
			result.Errors = append(result.Errors, fmt.Errorf("ad %s: %w", rec.ExternalID, err))
			continue
		}

		if inserted {
			result.Saved++
		} else {
			result.Skipped++
		}
	}

	return result
}
