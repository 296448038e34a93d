// Package brandai is a thin proxy to the brand-intelligence AI
// service. The analysis itself is opaque to this server: requests go
// out, generated copy comes back, nothing is interpreted in between.
package brandai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brandradar/server/internal/config"
	"github.com/brandradar/server/internal/logger"
	"github.com/google/uuid"
)

// ErrNotConfigured means the AI service credentials are absent.
var ErrNotConfigured = errors.New("brand AI service not configured")

// Generator is the AI copy generator contract; tests substitute fakes.
type Generator interface {
	GenerateAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg *config.BrandAIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// AnalysisRequest describes the brand to analyze.
type AnalysisRequest struct {
	BrandName string `json:"brand_name"`
	Website   string `json:"website,omitempty"`
	Industry  string `json:"industry,omitempty"`
	Tone      string `json:"tone,omitempty"`
}

// AnalysisResult is the generated output, passed through untouched.
type AnalysisResult struct {
	RequestID string          `json:"request_id"`
	Summary   string          `json:"summary"`
	Insights  json.RawMessage `json:"insights,omitempty"`
}

// GenerateAnalysis invokes the AI service once. No retry: generation
// calls are slow and billed per request.
func (c *Client) GenerateAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	log := logger.GetLogger("brandai.client")

	if c.baseURL == "" || c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	requestID := uuid.NewString()

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/analyze", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Request-ID", requestID)

	log.Infof("[BrandAI] analysis request %s for brand %q", requestID, req.BrandName)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("brand AI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brand AI service error: status=%d", resp.StatusCode)
	}

	var result AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if result.RequestID == "" {
		result.RequestID = requestID
	}

	return &result, nil
}
