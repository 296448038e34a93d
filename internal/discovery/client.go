package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brandradar/server/internal/config"
	"github.com/brandradar/server/internal/logger"
	"github.com/brandradar/server/internal/models"
)

const (
	// MaxPageSize is the external service's page ceiling. Larger
	// requests are clamped silently rather than rejected.
	MaxPageSize = 100

	defaultRequestTimeout = 25 * time.Second
)

// Client calls the external ad-search service. One round trip per
// Discover call; pagination is the caller's job via the opaque token.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a discovery client from config. The client is
// usable with an empty API key, but every call will return
// ErrNotConfigured.
func NewClient(cfg *config.AdDiscoveryConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// DiscoverRequest describes one page of an ad discovery search.
// Zero-valued filters are omitted from the outgoing request, as is a
// platform or niche of "all" (any casing).
type DiscoverRequest struct {
	Query     string
	Platform  models.Platform // empty = all platforms
	Niche     string          // empty or "all" = all niches
	Limit     int
	PageToken string
}

// Page is one page of discovery results plus the continuation token
// handed back by the external service, unmodified.
type Page struct {
	Ads           []AdStub
	NextPageToken string
}

type discoverResponse struct {
	Data          []rawStub `json:"data"`
	NextPageToken string    `json:"next_page_token"`
}

// Discover fetches a single page from GET /discovery/ads.
func (c *Client) Discover(ctx context.Context, req DiscoverRequest) (*Page, error) {
	log := logger.GetLogger("discovery.client")

	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	params := url.Values{}
	if req.Query != "" {
		params.Set("query", req.Query)
	}
	params.Set("limit", strconv.Itoa(limit))
	if req.Platform != "" && !strings.EqualFold(string(req.Platform), "all") {
		params.Add("publisher_platform[]", platformParam(req.Platform))
	}
	if req.Niche != "" && !strings.EqualFold(req.Niche, "all") {
		params.Add("niches[]", strings.ToLower(req.Niche))
	}
	if req.PageToken != "" {
		params.Set("page_token", req.PageToken)
	}

	endpoint := c.baseURL + "/discovery/ads?" + params.Encode()
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var decoded discoverResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode discovery response: %w", err)
	}

	page := &Page{NextPageToken: decoded.NextPageToken}
	for _, raw := range decoded.Data {
		stub := normalizeStub(raw)
		if stub.ExternalID == "" {
			log.Warnf("Dropping stub without external id (advertiser=%s)", stub.AdvertiserName)
			continue
		}
		page.Ads = append(page.Ads, stub)
	}

	log.Infof("Discovery page fetched: query=%q platform=%s ads=%d has_next=%v",
		req.Query, req.Platform, len(page.Ads), page.NextPageToken != "")

	return page, nil
}

// AdDetail is the single-ad media detail record.
type AdDetail struct {
	ThumbnailURL string       `json:"thumbnail_url"`
	Media        []MediaAsset `json:"media"`
}

// MediaAsset is one media entry on an ad detail record.
type MediaAsset struct {
	Type string `json:"type"` // "image" | "video"
	URL  string `json:"url"`
}

// FirstVideoURL returns the URL of the first video asset, or "".
func (d *AdDetail) FirstVideoURL() string {
	for _, m := range d.Media {
		if m.Type == "video" && m.URL != "" {
			return m.URL
		}
	}
	return ""
}

// FetchAdDetail fetches full media details for one ad from GET /ad.
func (c *Client) FetchAdDetail(ctx context.Context, externalID string) (*AdDetail, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	endpoint := c.baseURL + "/ad?id=" + url.QueryEscape(externalID)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var detail AdDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode ad detail: %w", err)
	}

	return &detail, nil
}

// get performs one authenticated round trip. Non-2xx responses and
// timeouts surface as *ServiceError; no automatic retry.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ServiceError{
			Status:  http.StatusGatewayTimeout,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	// Bounded read: upstream error bodies can be arbitrarily large.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}
