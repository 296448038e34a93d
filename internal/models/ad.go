package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Platform enumerates the ad platforms the dashboard tracks.
type Platform string

const (
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
	PlatformYouTube   Platform = "YouTube"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformPinterest Platform = "Pinterest"
	PlatformTwitter   Platform = "Twitter"
)

// KnownPlatforms lists every valid Platform value.
var KnownPlatforms = []Platform{
	PlatformFacebook,
	PlatformInstagram,
	PlatformTikTok,
	PlatformYouTube,
	PlatformLinkedIn,
	PlatformPinterest,
	PlatformTwitter,
}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	for _, known := range KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// AdMetadata carries free-form attributes of a discovered ad.
// Stored as a single JSONB column.
type AdMetadata struct {
	CTALabel    string     `json:"cta_label,omitempty"`
	LandingPage string     `json:"landing_page,omitempty"`
	FirstSeen   *time.Time `json:"first_seen,omitempty"`
	IsLive      bool       `json:"is_live,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (m AdMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *AdMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = AdMetadata{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for AdMetadata: %T", value)
	}
}

// AdRecord is the unit of storage and transport for discovered ads.
// DB: ad_records
//
// Exactly one row exists per ExternalID regardless of how many search
// queries surfaced it; the unique index plus conflict-tolerant inserts
// keep concurrent discovery attempts from creating duplicates.
type AdRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ExternalID     string     `gorm:"column:external_id;size:100;not null;uniqueIndex:ad_records_external_id_key" json:"external_id"`
	SearchQuery    *string    `gorm:"column:search_query;size:255;index:idx_ads_search_query" json:"search_query,omitempty"`
	Platform       Platform   `gorm:"column:platform;size:20;not null;index:idx_ads_platform" json:"platform"`
	AdvertiserName string     `gorm:"column:advertiser_name;size:255;not null" json:"advertiser_name"`
	Niche          *string    `gorm:"column:niche;size:100;index:idx_ads_niche" json:"niche,omitempty"`
	AdCopy         *string    `gorm:"column:ad_copy;type:text" json:"ad_copy,omitempty"`
	ThumbnailURL   string     `gorm:"column:thumbnail_url;type:text;not null" json:"thumbnail_url"`
	VideoURL       *string    `gorm:"column:video_url;type:text" json:"video_url,omitempty"`
	Metadata       AdMetadata `gorm:"column:metadata;type:jsonb" json:"metadata"`
	IsCurated      bool       `gorm:"column:is_curated;not null;default:false;index:idx_ads_curated" json:"is_curated"`
	OwnerBrandID   *uint      `gorm:"column:owner_brand_id;index:idx_ads_owner" json:"owner_brand_id,omitempty"`
	SavedByBrandID *uint      `gorm:"column:saved_by_brand_id;index:idx_ads_saved_by" json:"saved_by_brand_id,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null;index:idx_ads_created,sort:desc" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (AdRecord) TableName() string {
	return "ad_records"
}

// Owned reports whether the record belongs to a brand's collection,
// either brand-owned or explicitly saved.
func (r *AdRecord) Owned() bool {
	return r.OwnerBrandID != nil || r.SavedByBrandID != nil
}
