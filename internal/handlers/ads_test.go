package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brandradar/server/internal/discovery"
	"github.com/brandradar/server/internal/models"
	"github.com/brandradar/server/internal/services"
	"github.com/gofiber/fiber/v2"
)

// fakeAdStore backs the search service without a database.
type fakeAdStore struct {
	curated     []models.AdRecord
	curateCalls int
}

func (f *fakeAdStore) LookupByQuery(ctx context.Context, query string, platform models.Platform, niche string, limit int) ([]models.AdRecord, error) {
	return nil, nil
}

func (f *fakeAdStore) LookupCurated(ctx context.Context, platform models.Platform, niche, search string, limit int) ([]models.AdRecord, error) {
	f.curateCalls++
	return f.curated, nil
}

func (f *fakeAdStore) UpsertIfAbsent(ctx context.Context, rec *models.AdRecord) (bool, error) {
	return true, nil
}

type fakeAdDiscoverer struct {
	calls int
	last  discovery.DiscoverRequest
}

func (f *fakeAdDiscoverer) Discover(ctx context.Context, req discovery.DiscoverRequest) (*discovery.Page, error) {
	f.calls++
	f.last = req
	return &discovery.Page{}, nil
}

type fakeAdEnricher struct{}

func (f *fakeAdEnricher) Enrich(ctx context.Context, stubs []discovery.AdStub) []models.AdRecord {
	out := make([]models.AdRecord, len(stubs))
	for i, s := range stubs {
		out[i] = s.Record()
	}
	return out
}

func newTestAdsApp(store *fakeAdStore, client *fakeAdDiscoverer) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h := NewAdsHandler(services.NewAdSearchService(store, client, &fakeAdEnricher{}), nil)
	app.Post("/search", h.Search)
	app.Get("/curated", h.Curated)
	return app
}

func TestSearchPlatformAllMeansNoFilter(t *testing.T) {
	store := &fakeAdStore{}
	client := &fakeAdDiscoverer{}
	app := newTestAdsApp(store, client)

	// Free-text search: "all" must reach the discoverer as no filter,
	// not as a 400 and not as a literal platform value.
	req := httptest.NewRequest(http.MethodPost, "/search",
		strings.NewReader(`{"query":"shoes","platform":"All"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Platform \"All\" must be accepted, got status %d", resp.StatusCode)
	}
	if client.calls != 1 {
		t.Fatalf("Expected 1 discovery call, got %d", client.calls)
	}
	if client.last.Platform != "" {
		t.Errorf("Platform \"All\" must be stripped before discovery, got %q", client.last.Platform)
	}
}

func TestCuratedPlatformAllMeansNoFilter(t *testing.T) {
	store := &fakeAdStore{curated: []models.AdRecord{{ExternalID: "ad-1"}}}
	app := newTestAdsApp(store, &fakeAdDiscoverer{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/curated?platform=ALL", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Platform \"ALL\" must be accepted on browse, got status %d", resp.StatusCode)
	}
	if store.curateCalls != 1 {
		t.Errorf("Expected 1 curated lookup, got %d", store.curateCalls)
	}
}

func TestSearchUnknownPlatformRejected(t *testing.T) {
	app := newTestAdsApp(&fakeAdStore{}, &fakeAdDiscoverer{})

	req := httptest.NewRequest(http.MethodPost, "/search",
		strings.NewReader(`{"query":"shoes","platform":"Myspace"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown platform, got %d", resp.StatusCode)
	}
}

func TestSearchResponseEnvelope(t *testing.T) {
	resp := searchResponse(&services.SearchResult{
		Ads:        []models.AdRecord{{ExternalID: "ad-1"}},
		NextCursor: "c1",
		HasMore:    true,
	})

	if !resp.Success {
		t.Error("Expected success=true")
	}
	if len(resp.Data) != 1 {
		t.Errorf("Expected 1 record, got %d", len(resp.Data))
	}
	if resp.Metadata.Cursor == nil || *resp.Metadata.Cursor != "c1" {
		t.Errorf("Expected cursor c1, got %v", resp.Metadata.Cursor)
	}
	if !resp.Metadata.HasMore {
		t.Error("Expected has_more=true")
	}
}

func TestSearchResponseEmptyResult(t *testing.T) {
	resp := searchResponse(&services.SearchResult{})

	if resp.Data == nil {
		t.Error("Data must serialize as [] rather than null")
	}
	if resp.Metadata.Cursor != nil {
		t.Errorf("Expected null cursor, got %v", *resp.Metadata.Cursor)
	}
	if resp.Metadata.HasMore {
		t.Error("Expected has_more=false")
	}
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing credentials", discovery.ErrNotConfigured, http.StatusServiceUnavailable},
		{"upstream rate limit", &discovery.ServiceError{Status: 429, Message: "slow down"}, 429},
		{"upstream server error", &discovery.ServiceError{Status: 500, Message: "boom"}, 500},
		{"upstream timeout", &discovery.ServiceError{Status: 504, Message: "timeout"}, 504},
		{"nonsense upstream status", &discovery.ServiceError{Status: 302, Message: "redirect"}, http.StatusBadGateway},
		{"fiber error keeps its code", fiber.ErrNotFound, http.StatusNotFound},
		{"store failure", errors.New("pg: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/t", func(c *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t", nil))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}
