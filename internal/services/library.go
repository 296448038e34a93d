package services

import (
	"github.com/brandradar/server/internal/database"
	"github.com/brandradar/server/internal/models"
)

// AdLibraryService manages brand inspiration collections: ads a user
// explicitly saved to a brand.
type AdLibraryService struct {
	db *database.DB
}

func NewAdLibraryService(db *database.DB) *AdLibraryService {
	return &AdLibraryService{db: db}
}

// SaveToBrand marks an ad as saved to a brand's collection. The
// search-query linkage is cleared: a saved ad leaves the shared search
// cache so brand-private collections never surface in other users'
// repeat searches.
func (s *AdLibraryService) SaveToBrand(adID, brandID uint) (*models.AdRecord, error) {
	var brand models.Brand
	if err := s.db.First(&brand, brandID).Error; err != nil {
		return nil, err
	}

	var ad models.AdRecord
	if err := s.db.First(&ad, adID).Error; err != nil {
		return nil, err
	}

	ad.SavedByBrandID = &brand.ID
	ad.SearchQuery = nil

	err := s.db.Model(&ad).
		Select("saved_by_brand_id", "search_query").
		Updates(map[string]interface{}{
			"saved_by_brand_id": brand.ID,
			"search_query":      nil,
		}).Error
	if err != nil {
		return nil, err
	}

	return &ad, nil
}

// ListSaved returns the ads saved to a brand's collection, newest first.
func (s *AdLibraryService) ListSaved(brandID uint, limit int) ([]models.AdRecord, error) {
	var ads []models.AdRecord
	err := s.db.
		Where("saved_by_brand_id = ? OR owner_brand_id = ?", brandID, brandID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&ads).Error
	if err != nil {
		return nil, err
	}
	return ads, nil
}
