package adstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brandradar/server/internal/models"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Nike", "nike"},
		{"inner spaces stripped", "Summer Sale", "summersale"},
		{"surrounding whitespace", "  running shoes  ", "runningshoes"},
		{"tabs and newlines", "a\tb\nc", "abc"},
		{"unicode whitespace", "a b", "ab"},
		{"already normalized", "summersale", "summersale"},
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.in); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "shoes", "shoes"},
		{"percent escaped", "100%", `100\%`},
		{"underscore escaped", "a_b", `a\_b`},
		{"backslash escaped", `a\b`, `a\\b`},
		{"mixed", `50%_off\now`, `50\%\_off\\now`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeLikePattern(tt.in); got != tt.want {
				t.Errorf("escapeLikePattern(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestStoreRoundTrip exercises the real Postgres store. Requires a
// reachable database; skipped in short mode or when TEST_DATABASE_URL
// is unset.
func TestStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping live database test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer store.Close()

	query := NormalizeQuery("store roundtrip test")
	rec := &models.AdRecord{
		ExternalID:     "test-roundtrip-" + time.Now().Format("20060102150405"),
		SearchQuery:    &query,
		Platform:       models.PlatformFacebook,
		AdvertiserName: "Test Advertiser",
		ThumbnailURL:   "https://cdn.example.com/test.jpg",
	}

	inserted, err := store.UpsertIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("UpsertIfAbsent failed: %v", err)
	}
	if !inserted {
		t.Error("Expected first insert to report inserted=true")
	}

	// Same external_id again: silent skip, not an error.
	inserted, err = store.UpsertIfAbsent(ctx, rec)
	if err != nil {
		t.Fatalf("Duplicate upsert failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate insert to report inserted=false")
	}

	found, err := store.LookupByQuery(ctx, "Store RoundTrip", rec.Platform, "", 50)
	if err != nil {
		t.Fatalf("LookupByQuery failed: %v", err)
	}

	seen := false
	for _, r := range found {
		if r.ExternalID == rec.ExternalID {
			seen = true
		}
	}
	if !seen {
		t.Errorf("Inserted record not found via substring query (%d rows)", len(found))
	}
}
