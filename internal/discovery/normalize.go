package discovery

import (
	"strings"

	"github.com/brandradar/server/internal/models"
)

// AdStub is the canonical lightweight shape of a discovered ad. The
// external service renames fields between endpoints, so everything
// funnels through normalizeStub at the boundary and the rest of the
// engine only ever sees this one type.
type AdStub struct {
	ExternalID     string          `json:"external_id"`
	AdvertiserName string          `json:"advertiser_name"`
	Platform       models.Platform `json:"platform"`
	Niche          string          `json:"niche,omitempty"`
	AdCopy         string          `json:"ad_copy,omitempty"`
	ThumbnailURL   string          `json:"thumbnail_url"`
	VideoURL       string          `json:"video_url,omitempty"`
}

// rawStub mirrors the loose wire shape. Every known field alias is
// decoded; normalizeStub picks with an explicit priority.
type rawStub struct {
	ID             string `json:"id"`
	AdID           string `json:"ad_id"`
	Advertiser     string `json:"advertiser"`
	AdvertiserName string `json:"advertiser_name"`
	BrandName      string `json:"brand_name"`
	Platform       string `json:"publisher_platform"`
	Niche          string `json:"niche"`
	AdText         string `json:"ad_text"`
	Copy           string `json:"copy"`
	Body           string `json:"body"`
	Thumbnail      string `json:"thumbnail"`
	Image          string `json:"image"`
	Avatar         string `json:"avatar"`
	VideoURL       string `json:"video_url"`
}

// normalizeStub maps a raw wire stub into the canonical AdStub.
// Thumbnail priority: thumbnail, then image, then avatar.
func normalizeStub(raw rawStub) AdStub {
	return AdStub{
		ExternalID:     firstNonEmpty(raw.ID, raw.AdID),
		AdvertiserName: firstNonEmpty(raw.AdvertiserName, raw.Advertiser, raw.BrandName),
		Platform:       ParsePlatform(raw.Platform),
		Niche:          raw.Niche,
		AdCopy:         firstNonEmpty(raw.AdText, raw.Copy, raw.Body),
		ThumbnailURL:   firstNonEmpty(raw.Thumbnail, raw.Image, raw.Avatar),
		VideoURL:       raw.VideoURL,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ParsePlatform maps the external service's lowercase platform
// vocabulary onto the Platform enum. Unknown values fall back to
// Facebook, the service's default inventory.
func ParsePlatform(s string) models.Platform {
	for _, p := range models.KnownPlatforms {
		if strings.EqualFold(s, string(p)) {
			return p
		}
	}
	return models.PlatformFacebook
}

// platformParam renders a Platform in the external service's casing.
func platformParam(p models.Platform) string {
	return strings.ToLower(string(p))
}

// Record converts a stub into a persistable AdRecord without any
// enrichment applied. This is the degraded form used when a detail
// fetch fails.
func (s AdStub) Record() models.AdRecord {
	rec := models.AdRecord{
		ExternalID:     s.ExternalID,
		Platform:       s.Platform,
		AdvertiserName: s.AdvertiserName,
		ThumbnailURL:   s.ThumbnailURL,
	}
	if s.Niche != "" {
		niche := s.Niche
		rec.Niche = &niche
	}
	if s.AdCopy != "" {
		copyText := s.AdCopy
		rec.AdCopy = &copyText
	}
	if s.VideoURL != "" {
		video := s.VideoURL
		rec.VideoURL = &video
	}
	return rec
}
