package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kailas-cloud/lumenpick/internal/domain/catalog"
)

// snapshotQuery loads every active flashlight with its latest USD price, primary
// Amazon US link, first image, compatible batteries, use-case tags ordered by
// confidence and the profile scores of the latest completed scoring run.
const snapshotQuery = `
WITH latest_run AS (
	SELECT id
	FROM scoring_runs
	WHERE status = 'completed'
	ORDER BY completed_at DESC NULLS LAST, id DESC
	LIMIT 1
),
latest_price AS (
	SELECT DISTINCT ON (p.flashlight_id)
		p.flashlight_id,
		p.price
	FROM flashlight_price_snapshots p
	WHERE p.currency_code = 'USD'
	ORDER BY p.flashlight_id, p.captured_at DESC
),
latest_affiliate AS (
	SELECT DISTINCT ON (a.flashlight_id)
		a.flashlight_id,
		a.affiliate_url
	FROM affiliate_links a
	WHERE a.provider = 'amazon'
	  AND a.region_code = 'US'
	  AND a.is_active = TRUE
	ORDER BY a.flashlight_id, a.is_primary DESC, a.updated_at DESC, a.id DESC
),
latest_media AS (
	SELECT DISTINCT ON (m.flashlight_id)
		m.flashlight_id,
		m.url
	FROM flashlight_media m
	WHERE m.media_type = 'image'
	ORDER BY m.flashlight_id, m.sort_order ASC, m.id ASC
),
latest_scores AS (
	SELECT
		fs.flashlight_id,
		json_object_agg(sp.slug, fs.score)::text AS profile_scores
	FROM flashlight_scores fs
	JOIN scoring_profiles sp ON sp.id = fs.profile_id
	JOIN latest_run lr ON lr.id = fs.run_id
	GROUP BY fs.flashlight_id
),
batteries AS (
	SELECT
		fbc.flashlight_id,
		string_agg(bt.code, ',' ORDER BY bt.code) AS codes
	FROM flashlight_battery_compatibility fbc
	JOIN battery_types bt ON bt.id = fbc.battery_type_id
	GROUP BY fbc.flashlight_id
),
tags AS (
	SELECT
		fuc.flashlight_id,
		string_agg(u.slug, ',' ORDER BY fuc.confidence DESC, u.slug ASC) AS slugs
	FROM flashlight_use_cases fuc
	JOIN use_cases u ON u.id = fuc.use_case_id
	GROUP BY fuc.flashlight_id
)
SELECT
	f.id,
	b.name,
	f.name,
	COALESCE(f.model_code, ''),
	f.slug,
	t.slugs,
	lm.url,
	la.affiliate_url,
	lp.price,
	s.max_lumens,
	s.max_candela,
	s.beam_distance_m,
	s.runtime_high_min,
	s.runtime_500_min,
	s.weight_g,
	s.length_mm,
	s.impact_resistance_m,
	s.waterproof_rating,
	s.usb_c_rechargeable,
	bc.codes,
	ls.profile_scores
FROM flashlights f
JOIN brands b ON b.id = f.brand_id
LEFT JOIN flashlight_specs s ON s.flashlight_id = f.id
LEFT JOIN latest_price lp ON lp.flashlight_id = f.id
LEFT JOIN latest_affiliate la ON la.flashlight_id = f.id
LEFT JOIN latest_media lm ON lm.flashlight_id = f.id
LEFT JOIN latest_scores ls ON ls.flashlight_id = f.id
LEFT JOIN batteries bc ON bc.flashlight_id = f.id
LEFT JOIN tags t ON t.flashlight_id = f.id
WHERE f.is_active = TRUE
ORDER BY f.id
`

// SQLSource reads catalog snapshots from the PostgreSQL catalog schema.
type SQLSource struct {
	db *sql.DB
}

// OpenPostgres opens a pgx-backed pool. The caller owns Close.
func OpenPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("catalog: dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewSQLSource creates a source over an open database handle.
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

// Name identifies the source in metrics and logs.
func (s *SQLSource) Name() string { return "postgres" }

// Ping checks the database connection.
func (s *SQLSource) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Snapshot loads all active items. The version is the content fingerprint.
func (s *SQLSource) Snapshot(ctx context.Context) (catalog.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, snapshotQuery)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	items := make([]catalog.Item, 0, 64)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return catalog.Snapshot{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return catalog.Snapshot{}, fmt.Errorf("iterate catalog: %w", err)
	}
	return catalog.NewSnapshot("", items), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (catalog.Item, error) {
	var (
		item                                                 catalog.Item
		tags, imageURL, amazonURL, waterproof, batteryCodes  sql.NullString
		profileScores                                        sql.NullString
		price, weight, length, impact                        sql.NullFloat64
		maxLumens, maxCandela, beam, runtimeHigh, runtimeMed sql.NullInt64
		usbC                                                 sql.NullBool
	)
	if err := row.Scan(
		&item.ID,
		&item.Brand,
		&item.Name,
		&item.Model,
		&item.Slug,
		&tags,
		&imageURL,
		&amazonURL,
		&price,
		&maxLumens,
		&maxCandela,
		&beam,
		&runtimeHigh,
		&runtimeMed,
		&weight,
		&length,
		&impact,
		&waterproof,
		&usbC,
		&batteryCodes,
		&profileScores,
	); err != nil {
		return catalog.Item{}, fmt.Errorf("scan catalog row: %w", err)
	}

	item.Tags = splitList(tags.String)
	item.Category = "general"
	if len(item.Tags) > 0 {
		item.Category = item.Tags[0]
	}
	item.ImageURL = imageURL.String
	item.AmazonURL = amazonURL.String
	item.PriceUSD = nullFloat(price)
	item.MaxLumens = nullInt(maxLumens)
	item.MaxCandela = nullInt(maxCandela)
	item.BeamDistanceM = nullInt(beam)
	item.RuntimeHighMin = nullInt(runtimeHigh)
	item.RuntimeMediumMin = nullInt(runtimeMed)
	item.WeightG = nullFloat(weight)
	item.LengthMM = nullFloat(length)
	item.ImpactResistanceM = nullFloat(impact)
	item.WaterproofRating = waterproof.String
	item.BatteryTypes = splitList(strings.ToLower(batteryCodes.String))
	if usbC.Valid {
		item.USBCRechargeable = catalog.Bool(usbC.Bool)
	}

	if profileScores.Valid && profileScores.String != "" {
		var scores map[string]float64
		if err := json.Unmarshal([]byte(profileScores.String), &scores); err != nil {
			return catalog.Item{}, fmt.Errorf("decode profile scores of item %d: %w", item.ID, err)
		}
		item.ProfileScores = scores
	}
	return item, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return catalog.Float(v.Float64)
}

func nullInt(v sql.NullInt64) *float64 {
	if !v.Valid {
		return nil
	}
	return catalog.Float(float64(v.Int64))
}
