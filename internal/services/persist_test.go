package services

import (
	"context"
	"testing"

	"github.com/brandradar/server/internal/models"
)

func TestPersistNewAdsCountsOutcomes(t *testing.T) {
	store := &fakeStore{existing: map[string]bool{"dup-1": true}}
	writer := NewDedupWriter(store)

	query := "runningshoes"
	records := []models.AdRecord{
		{ExternalID: "new-1", ThumbnailURL: "https://cdn.example.com/1.jpg"},
		{ExternalID: "dup-1", ThumbnailURL: "https://cdn.example.com/2.jpg"},
		{ExternalID: "new-2", ThumbnailURL: "https://cdn.example.com/3.jpg"},
		{ExternalID: "", ThumbnailURL: "https://cdn.example.com/4.jpg"},
		{ExternalID: "new-3", ThumbnailURL: ""},
	}

	result := writer.PersistNewAds(context.Background(), records, &query)

	if result.Saved != 2 {
		t.Errorf("Expected 2 saved, got %d", result.Saved)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected 1 skipped duplicate, got %d", result.Skipped)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Expected 2 validation errors, got %d", len(result.Errors))
	}

	for _, rec := range store.upserted {
		if rec.IsCurated {
			t.Errorf("Record %s written as curated", rec.ExternalID)
		}
		if rec.SearchQuery == nil || *rec.SearchQuery != query {
			t.Errorf("Record %s missing search query", rec.ExternalID)
		}
	}
}

func TestPersistNewAdsNilQueryForBrowse(t *testing.T) {
	store := &fakeStore{}
	writer := NewDedupWriter(store)

	records := []models.AdRecord{
		{ExternalID: "a", ThumbnailURL: "https://cdn.example.com/a.jpg"},
	}

	result := writer.PersistNewAds(context.Background(), records, nil)

	if result.Saved != 1 {
		t.Fatalf("Expected 1 saved, got %d", result.Saved)
	}
	if store.upserted[0].SearchQuery != nil {
		t.Error("Browse-sourced record must not carry a search query")
	}
}

func TestPersistNewAdsEmptyBatch(t *testing.T) {
	writer := NewDedupWriter(&fakeStore{})

	result := writer.PersistNewAds(context.Background(), nil, nil)

	if result.Saved != 0 || result.Skipped != 0 || len(result.Errors) != 0 {
		t.Errorf("Expected zero result for empty batch, got %+v", result)
	}
}
