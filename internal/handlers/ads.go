package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/brandradar/server/internal/database"
	"github.com/brandradar/server/internal/models"
	"github.com/brandradar/server/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdsHandler struct {
	search  *services.AdSearchService
	library *services.AdLibraryService
}

func NewAdsHandler(search *services.AdSearchService, db *database.DB) *AdsHandler {
	return &AdsHandler{
		search:  search,
		library: services.NewAdLibraryService(db),
	}
}

func SetupAdsRoutes(router fiber.Router, search *services.AdSearchService, db *database.DB) {
	h := NewAdsHandler(search, db)

	router.Post("/search", h.Search)
	router.Get("/curated", h.Curated)
	router.Post("/:id/save", h.SaveToBrand)
}

// SearchMetadata is the pagination envelope on search responses.
type SearchMetadata struct {
	Cursor  *string `json:"cursor"`
	HasMore bool    `json:"has_more"`
}

// SearchResponse is the inbound API envelope.
type SearchResponse struct {
	Success  bool              `json:"success"`
	Data     []models.AdRecord `json:"data"`
	Metadata SearchMetadata    `json:"metadata"`
}

// Search godoc
// @Summary Search ads across platforms
// @Description Combines the local ad cache with the external discovery service
// @Tags ads
// @Accept json
// @Produce json
// @Param request body services.SearchRequest true "Search parameters"
// @Success 200 {object} SearchResponse
// @Router /ads/search [post]
func (h *AdsHandler) Search(c *fiber.Ctx) error {
	var req services.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	req.Platform = normalizePlatform(req.Platform)
	if req.Platform != "" && !req.Platform.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown platform: " + string(req.Platform)})
	}

	// Discovery and store errors flow to the central ErrorHandler,
	// which maps the taxonomy onto HTTP statuses.
	result, err := h.search.Search(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(searchResponse(result))
}

// Curated godoc
// @Summary Browse curated ads
// @Description Cache-only browse path; the external service is never called
// @Tags ads
// @Produce json
// @Param platform query string false "Platform filter"
// @Param niche query string false "Niche filter"
// @Param limit query int false "Max records"
// @Param search query string false "Advertiser or copy text filter"
// @Success 200 {object} SearchResponse
// @Router /ads/curated [get]
func (h *AdsHandler) Curated(c *fiber.Ctx) error {
	platform := normalizePlatform(models.Platform(c.Query("platform")))
	if platform != "" && !platform.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown platform: " + string(platform)})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	ads, err := h.search.BrowseCurated(c.UserContext(), platform, c.Query("niche"), c.Query("search"), limit)
	if err != nil {
		return err
	}

	return c.JSON(searchResponse(&services.SearchResult{Ads: ads, FromCache: true}))
}

// SaveToBrandRequest names the target brand collection.
type SaveToBrandRequest struct {
	BrandID uint `json:"brand_id"`
}

// SaveToBrand godoc
// @Summary Save an ad to a brand's inspiration collection
// @Tags ads
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body SaveToBrandRequest true "Target brand"
// @Success 200 {object} models.AdRecord
// @Router /ads/{id}/save [post]
func (h *AdsHandler) SaveToBrand(c *fiber.Ctx) error {
	adID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ad ID"})
	}

	var req SaveToBrandRequest
	if err := c.BodyParser(&req); err != nil || req.BrandID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "brand_id is required"})
	}

	ad, err := h.library.SaveToBrand(uint(adID), req.BrandID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ad or brand not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(ad)
}

// normalizePlatform treats "all" (any casing) as no platform filter,
// matching how an empty value behaves.
func normalizePlatform(p models.Platform) models.Platform {
	if strings.EqualFold(string(p), "all") {
		return ""
	}
	return p
}

func searchResponse(result *services.SearchResult) SearchResponse {
	data := result.Ads
	if data == nil {
		data = []models.AdRecord{}
	}

	var cursor *string
	if result.NextCursor != "" {
		cursor = &result.NextCursor
	}

	return SearchResponse{
		Success: true,
		Data:    data,
		Metadata: SearchMetadata{
			Cursor:  cursor,
			HasMore: result.HasMore,
		},
	}
}
