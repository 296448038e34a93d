package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brandradar/server/internal/models"
)

// fakeFetcher returns canned details, failing the IDs in failOn, and
// tracks peak concurrency.
type fakeFetcher struct {
	failOn      map[string]bool
	delay       time.Duration
	inFlight    int32
	maxInFlight int32
}

func (f *fakeFetcher) FetchAdDetail(ctx context.Context, externalID string) (*AdDetail, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, cur) {
			break
		}
	}
	defer atomic.AddInt32(&f.inFlight, -1)

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if f.failOn[externalID] {
		return nil, errors.New("detail fetch failed")
	}
	return &AdDetail{
		ThumbnailURL: "https://cdn.example.com/hd/" + externalID + ".jpg",
		Media: []MediaAsset{
			{Type: "image", URL: "https://cdn.example.com/img.jpg"},
			{Type: "video", URL: "https://cdn.example.com/" + externalID + ".mp4"},
		},
	}, nil
}

func testStubs(n int) []AdStub {
	stubs := make([]AdStub, n)
	for i := range stubs {
		stubs[i] = AdStub{
			ExternalID:     fmt.Sprintf("ad-%d", i),
			AdvertiserName: "brand",
			Platform:       models.PlatformFacebook,
			ThumbnailURL:   "https://cdn.example.com/stub.jpg",
		}
	}
	return stubs
}

func TestEnrichMergesDetails(t *testing.T) {
	e := &Enricher{client: &fakeFetcher{}, workers: 4, timeout: time.Second}

	records := e.Enrich(context.Background(), testStubs(3))

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for i, rec := range records {
		wantThumb := fmt.Sprintf("https://cdn.example.com/hd/ad-%d.jpg", i)
		if rec.ThumbnailURL != wantThumb {
			t.Errorf("Record %d: expected detail thumbnail %s, got %s", i, wantThumb, rec.ThumbnailURL)
		}
		wantVideo := fmt.Sprintf("https://cdn.example.com/ad-%d.mp4", i)
		if rec.VideoURL == nil || *rec.VideoURL != wantVideo {
			t.Errorf("Record %d: expected video %s, got %v", i, wantVideo, rec.VideoURL)
		}
	}
}

func TestEnrichPartialFailureDegradesOneAd(t *testing.T) {
	fetcher := &fakeFetcher{failOn: map[string]bool{"ad-3": true}}
	e := &Enricher{client: fetcher, workers: 4, timeout: time.Second}

	records := e.Enrich(context.Background(), testStubs(10))

	if len(records) != 10 {
		t.Fatalf("One failed fetch must not shrink the batch: got %d records", len(records))
	}

	degraded := 0
	for _, rec := range records {
		if rec.ThumbnailURL == "https://cdn.example.com/stub.jpg" {
			degraded++
			if rec.ExternalID != "ad-3" {
				t.Errorf("Wrong record degraded: %s", rec.ExternalID)
			}
			if rec.VideoURL != nil {
				t.Errorf("Degraded record %s should have no video", rec.ExternalID)
			}
		}
	}
	if degraded != 1 {
		t.Errorf("Expected exactly 1 degraded record, got %d", degraded)
	}
}

func TestEnrichPreservesOrder(t *testing.T) {
	// Staggered delays push completion out of submission order; the
	// output must still line up with the input.
	fetcher := &fakeFetcher{delay: 5 * time.Millisecond}
	e := &Enricher{client: fetcher, workers: 8, timeout: time.Second}

	stubs := testStubs(20)
	records := e.Enrich(context.Background(), stubs)

	for i, rec := range records {
		if rec.ExternalID != stubs[i].ExternalID {
			t.Errorf("Slot %d: expected %s, got %s", i, stubs[i].ExternalID, rec.ExternalID)
		}
	}
}

func TestEnrichBoundedConcurrency(t *testing.T) {
	fetcher := &fakeFetcher{delay: 10 * time.Millisecond}
	e := &Enricher{client: fetcher, workers: 3, timeout: time.Second}

	e.Enrich(context.Background(), testStubs(12))

	if peak := atomic.LoadInt32(&fetcher.maxInFlight); peak > 3 {
		t.Errorf("Worker pool of 3 reached %d concurrent fetches", peak)
	}
}

func TestEnrichCancelledContextReturnsStubs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &Enricher{client: &fakeFetcher{}, workers: 2, timeout: time.Second}
	records := e.Enrich(ctx, testStubs(5))

	if len(records) != 5 {
		t.Fatalf("Expected 5 records from cancelled context, got %d", len(records))
	}
	for _, rec := range records {
		if rec.ExternalID == "" {
			t.Error("Cancelled enrichment returned an empty record")
		}
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	e := NewEnricher(nil, 0, 0)

	records := e.Enrich(context.Background(), nil)
	if len(records) != 0 {
		t.Errorf("Expected empty output, got %d records", len(records))
	}
}
