package services

import (
	"math/rand"

	"github.com/brandradar/server/internal/models"
)

// DefaultMaxPerAdvertiser caps how many ads from one advertiser appear
// together in a browse page.
const DefaultMaxPerAdvertiser = 2

// Diversify keeps at most maxPerAdvertiser records per advertiser,
// preserving the relative order of first appearance among the kept
// records. A cap of zero or less disables the filter.
func Diversify(records []models.AdRecord, maxPerAdvertiser int) []models.AdRecord {
	if maxPerAdvertiser <= 0 || len(records) == 0 {
		return records
	}

	counts := make(map[string]int, len(records))
	kept := make([]models.AdRecord, 0, len(records))
	for _, rec := range records {
		if counts[rec.AdvertiserName] >= maxPerAdvertiser {
			continue
		}
		counts[rec.AdvertiserName]++
		kept = append(kept, rec)
	}
	return kept
}

// Shuffle applies a uniform random permutation in place. Browse pages
// are shuffled so the same leading records do not open every visit;
// search results are not (their order is upstream relevance).
func Shuffle(records []models.AdRecord) {
	rand.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
}
