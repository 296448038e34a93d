package services

import (
	"github.com/brandradar/server/internal/database"
	"github.com/brandradar/server/internal/models"
)

type BrandService struct {
	db *database.DB
}

func NewBrandService(db *database.DB) *BrandService {
	return &BrandService{db: db}
}

type BrandListResponse struct {
	Items      []models.Brand `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// List retrieves brands with pagination
func (s *BrandService) List(page, limit int) (*BrandListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var brands []models.Brand
	var total int64

	query := s.db.Model(&models.Brand{})
	query.Count(&total)

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&brands).Error; err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &BrandListResponse{
		Items:      brands,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetByID retrieves a brand with its competitor profiles
func (s *BrandService) GetByID(id uint) (*models.Brand, error) {
	var brand models.Brand
	err := s.db.Preload("Competitors").First(&brand, id).Error
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (s *BrandService) Create(brand *models.Brand) error {
	return s.db.Create(brand).Error
}

func (s *BrandService) Update(brand *models.Brand) error {
	return s.db.Save(brand).Error
}

func (s *BrandService) Delete(id uint) error {
	return s.db.Delete(&models.Brand{}, id).Error
}

// AddCompetitor attaches a competitor profile to a brand
func (s *BrandService) AddCompetitor(profile *models.CompetitorProfile) error {
	return s.db.Create(profile).Error
}

// RemoveCompetitor drops a competitor profile
func (s *BrandService) RemoveCompetitor(brandID, profileID uint) error {
	return s.db.Where("brand_id = ?", brandID).Delete(&models.CompetitorProfile{}, profileID).Error
}
