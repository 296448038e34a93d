package models

import (
	"time"
)

// Brand represents a customer brand workspace
// DB: brands
type Brand struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:255;not null" json:"name"`
	Website     *string   `gorm:"column:website;type:text" json:"website,omitempty"`
	Industry    *string   `gorm:"column:industry;size:100" json:"industry,omitempty"`
	ToneOfVoice *string   `gorm:"column:tone_of_voice;size:100" json:"tone_of_voice,omitempty"`
	Description *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updated_at"`

	// Relations
	Competitors []CompetitorProfile `gorm:"foreignKey:BrandID" json:"competitors,omitempty"`
}

func (Brand) TableName() string {
	return "brands"
}

// CompetitorProfile tracks a competitor being watched for a brand
// DB: competitor_profiles
type CompetitorProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BrandID        uint      `gorm:"column:brand_id;not null;index:idx_competitors_brand" json:"brand_id"`
	Name           string    `gorm:"column:name;size:255;not null" json:"name"`
	Website        *string   `gorm:"column:website;type:text" json:"website,omitempty"`
	AdvertiserName *string   `gorm:"column:advertiser_name;size:255" json:"advertiser_name,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (CompetitorProfile) TableName() string {
	return "competitor_profiles"
}
