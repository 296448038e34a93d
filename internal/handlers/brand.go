package handlers

import (
	"errors"
	"strconv"

	"github.com/brandradar/server/internal/brandai"
	"github.com/brandradar/server/internal/database"
	"github.com/brandradar/server/internal/models"
	"github.com/brandradar/server/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BrandHandler struct {
	service   *services.BrandService
	library   *services.AdLibraryService
	generator brandai.Generator
}

func NewBrandHandler(db *database.DB, generator brandai.Generator) *BrandHandler {
	return &BrandHandler{
		service:   services.NewBrandService(db),
		library:   services.NewAdLibraryService(db),
		generator: generator,
	}
}

func SetupBrandRoutes(router fiber.Router, db *database.DB, generator brandai.Generator) {
	h := NewBrandHandler(db, generator)

	router.Get("/", h.List)
	router.Post("/", h.Create)
	router.Get("/:id", h.Get)
	router.Put("/:id", h.Update)
	router.Delete("/:id", h.Delete)

	router.Get("/:id/saved-ads", h.ListSavedAds)
	router.Post("/:id/competitors", h.AddCompetitor)
	router.Delete("/:id/competitors/:profileId", h.RemoveCompetitor)
	router.Post("/:id/analysis", h.GenerateAnalysis)
}

// List godoc
// @Summary List brands
// @Tags brands
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} services.BrandListResponse
// @Router /brands [get]
func (h *BrandHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	response, err := h.service.List(page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// Get godoc
// @Summary Get brand by ID
// @Tags brands
// @Produce json
// @Param id path int true "Brand ID"
// @Success 200 {object} models.Brand
// @Router /brands/{id} [get]
func (h *BrandHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid brand ID"})
	}

	brand, err := h.service.GetByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Brand not found"})
	}

	return c.JSON(brand)
}

func (h *BrandHandler) Create(c *fiber.Ctx) error {
	var brand models.Brand
	if err := c.BodyParser(&brand); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if brand.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	if err := h.service.Create(&brand); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(brand)
}

func (h *BrandHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid brand ID"})
	}

	brand, err := h.service.GetByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Brand not found"})
	}

	if err := c.BodyParser(brand); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	brand.ID = uint(id)

	if err := h.service.Update(brand); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(brand)
}

func (h *BrandHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid brand ID"})
	}

	if err := h.service.Delete(uint(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListSavedAds returns the brand's inspiration collection
func (h *BrandHandler) ListSavedAds(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid brand ID"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	ads, err := h.library.ListSaved(uint(id), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"items": ads})
}

func (h *BrandHandler) AddCompetitor(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid brand ID"})
	}

	var profile models.CompetitorProfile
	if err := c.BodyParser(&profile); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if profile.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	profile.BrandID = uint(id)

	if err := h.service.AddCompetitor(&profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *BrandHandler) RemoveCompetitor(c *fiber.Ctx) error {
	brandID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid brand ID"})
	}
	profileID, err := strconv.Atoi(c.Params("profileId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid competitor ID"})
	}

	if err := h.service.RemoveCompetitor(uint(brandID), uint(profileID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateAnalysis godoc
// @Summary Generate AI brand analysis
// @Description Proxies the brand profile to the AI intelligence service
// @Tags brands
// @Produce json
// @Param id path int true "Brand ID"
// @Success 200 {object} brandai.AnalysisResult
// @Router /brands/{id}/analysis [post]
func (h *BrandHandler) GenerateAnalysis(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid brand ID"})
	}

	brand, err := h.service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Brand not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	req := brandai.AnalysisRequest{BrandName: brand.Name}
	if brand.Website != nil {
		req.Website = *brand.Website
	}
	if brand.Industry != nil {
		req.Industry = *brand.Industry
	}
	if brand.ToneOfVoice != nil {
		req.Tone = *brand.ToneOfVoice
	}

	result, err := h.generator.GenerateAnalysis(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, brandai.ErrNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Brand AI service not configured",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}
