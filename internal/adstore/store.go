// Package adstore is the read/write adapter for the ad_records cache
// table. It goes through pgx directly rather than the ORM: the search
// path needs tolerant-match SQL and conflict-tolerant inserts, and
// runs hot enough that the extra layer is not worth it.
package adstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/brandradar/server/internal/logger"
	"github.com/brandradar/server/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store holds the pgx connection pool for the ad cache.
type Store struct {
	Pool *pgxpool.Pool
}

// New creates the connection pool and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	log := logger.GetLogger("adstore")

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(pingCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Ad cache store connection established")

	return &Store{Pool: pool}, nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// NormalizeQuery lowercases a search string and strips all whitespace,
// so "Summer Sale" and "summersale" hit the same cached rows.
func NormalizeQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range strings.ToLower(q) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeLikePattern backslash-escapes LIKE metacharacters so a query
// containing "%" or "_" matches those characters literally. Without
// this, a search like "100%" matches far more cached rows than
// intended and can fake a cache hit.
func escapeLikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

const adRecordColumns = `id, external_id, search_query, platform, advertiser_name, niche,
	ad_copy, thumbnail_url, video_url, metadata, is_curated,
	owner_brand_id, saved_by_brand_id, created_at, updated_at`

// LookupByQuery returns cached, unowned, non-curated records whose
// original search query matches the normalized query as a substring
// (case- and whitespace-insensitive). Curated and brand-owned rows are
// excluded so repeat-search caching never leaks editorial or
// brand-private data.
func (s *Store) LookupByQuery(ctx context.Context, query string, platform models.Platform, niche string, limit int) ([]models.AdRecord, error) {
	log := logger.GetLogger("adstore")

	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil, nil
	}

	sql := `
		SELECT ` + adRecordColumns + `
		FROM ad_records
		WHERE is_curated = FALSE
		  AND owner_brand_id IS NULL
		  AND saved_by_brand_id IS NULL
		  AND search_query IS NOT NULL
		  AND REGEXP_REPLACE(LOWER(search_query), '\s', '', 'g') LIKE $1 ESCAPE '\'
	`
	args := []interface{}{"%" + escapeLikePattern(normalized) + "%"}

	if platform != "" {
		args = append(args, string(platform))
		sql += fmt.Sprintf(" AND platform = $%d", len(args))
	}
	if niche != "" {
		args = append(args, niche)
		sql += fmt.Sprintf(" AND niche = $%d", len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	records, err := s.queryRecords(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cached ads: %w", err)
	}

	log.Infof("[ad_cache] query=%q normalized=%q → %d rows", query, normalized, len(records))
	return records, nil
}

// LookupCurated returns editorially-selected records only, newest
// first. The optional search filter matches advertiser name or copy.
func (s *Store) LookupCurated(ctx context.Context, platform models.Platform, niche, search string, limit int) ([]models.AdRecord, error) {
	sql := `
		SELECT ` + adRecordColumns + `
		FROM ad_records
		WHERE is_curated = TRUE
	`
	var args []interface{}

	if platform != "" {
		args = append(args, string(platform))
		sql += fmt.Sprintf(" AND platform = $%d", len(args))
	}
	if niche != "" {
		args = append(args, niche)
		sql += fmt.Sprintf(" AND niche = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+escapeLikePattern(search)+"%")
		sql += fmt.Sprintf(` AND (advertiser_name ILIKE $%d ESCAPE '\' OR ad_copy ILIKE $%d ESCAPE '\')`, len(args), len(args))
	}

	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	records, err := s.queryRecords(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up curated ads: %w", err)
	}
	return records, nil
}

// UpsertIfAbsent inserts the record unless a row with the same
// external_id already exists. Safe under concurrent callers racing on
// the same external_id: the unique constraint plus ON CONFLICT DO
// NOTHING guarantees exactly one insert wins and the loser sees
// inserted=false with no error.
func (s *Store) UpsertIfAbsent(ctx context.Context, rec *models.AdRecord) (bool, error) {
	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return false, fmt.Errorf("failed to encode ad metadata: %w", err)
	}

	sql := `
		INSERT INTO ad_records (
			external_id, search_query, platform, advertiser_name, niche,
			ad_copy, thumbnail_url, video_url, metadata, is_curated,
			owner_brand_id, saved_by_brand_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, NOW(), NOW()
		)
		ON CONFLICT (external_id) DO NOTHING
	`

	tag, err := s.Pool.Exec(ctx, sql,
		rec.ExternalID, rec.SearchQuery, string(rec.Platform), rec.AdvertiserName, rec.Niche,
		rec.AdCopy, rec.ThumbnailURL, rec.VideoURL, string(metaJSON), rec.IsCurated,
		rec.OwnerBrandID, rec.SavedByBrandID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert ad record: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *Store) queryRecords(ctx context.Context, sql string, args ...interface{}) ([]models.AdRecord, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AdRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (models.AdRecord, error) {
	var rec models.AdRecord
	var platform string
	var metaJSON []byte

	err := row.Scan(
		&rec.ID,
		&rec.ExternalID,
		&rec.SearchQuery,
		&platform,
		&rec.AdvertiserName,
		&rec.Niche,
		&rec.AdCopy,
		&rec.ThumbnailURL,
		&rec.VideoURL,
		&metaJSON,
		&rec.IsCurated,
		&rec.OwnerBrandID,
		&rec.SavedByBrandID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return rec, err
	}

	rec.Platform = models.Platform(platform)
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &rec.Metadata); err != nil {
			return rec, fmt.Errorf("failed to decode ad metadata: %w", err)
		}
	}
	return rec, nil
}
