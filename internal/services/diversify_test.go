package services

import (
	"fmt"
	"testing"

	"github.com/brandradar/server/internal/models"
)

func recordsFor(advertisers []string) []models.AdRecord {
	out := make([]models.AdRecord, len(advertisers))
	for i, name := range advertisers {
		out[i] = models.AdRecord{
			ExternalID:     fmt.Sprintf("ext-%d", i),
			AdvertiserName: name,
		}
	}
	return out
}

func TestDiversifyCapsPerAdvertiser(t *testing.T) {
	var advertisers []string
	for i := 0; i < 5; i++ {
		for j := 0; j < 4; j++ {
			advertisers = append(advertisers, fmt.Sprintf("brand-%d", i))
		}
	}
	records := recordsFor(advertisers)

	kept := Diversify(records, 2)

	if len(kept) != 10 {
		t.Fatalf("Expected 10 records after capping 5 advertisers at 2, got %d", len(kept))
	}

	counts := make(map[string]int)
	for _, rec := range kept {
		counts[rec.AdvertiserName]++
	}
	for name, n := range counts {
		if n > 2 {
			t.Errorf("Advertiser %s kept %d records, cap is 2", name, n)
		}
	}
}

func TestDiversifyPreservesOrder(t *testing.T) {
	records := recordsFor([]string{"a", "b", "a", "c", "a", "b", "c"})

	kept := Diversify(records, 2)

	// The third "a" drops; everything else keeps relative order.
	want := []string{"ext-0", "ext-1", "ext-2", "ext-3", "ext-5", "ext-6"}
	if len(kept) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(kept))
	}
	for i, rec := range kept {
		if rec.ExternalID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], rec.ExternalID)
		}
	}
}

func TestDiversifyDisabled(t *testing.T) {
	records := recordsFor([]string{"a", "a", "a"})

	kept := Diversify(records, 0)
	if len(kept) != 3 {
		t.Errorf("Cap 0 disables the filter, expected 3 records, got %d", len(kept))
	}
}

func TestDiversifyEmpty(t *testing.T) {
	if got := Diversify(nil, 2); len(got) != 0 {
		t.Errorf("Expected empty result for nil input, got %d records", len(got))
	}
}

func TestShuffleKeepsAllRecords(t *testing.T) {
	records := recordsFor([]string{"a", "b", "c", "d", "e", "f", "g", "h"})

	before := make(map[string]int)
	for _, rec := range records {
		before[rec.ExternalID]++
	}

	Shuffle(records)

	after := make(map[string]int)
	for _, rec := range records {
		after[rec.ExternalID]++
	}

	if len(records) != 8 {
		t.Fatalf("Shuffle changed length: got %d", len(records))
	}
	for id, n := range before {
		if after[id] != n {
			t.Errorf("Record %s count changed from %d to %d", id, n, after[id])
		}
	}
}
