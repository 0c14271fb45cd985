package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"kujang-advisor/api/internal/advisor/types"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS calculations (
	id               text PRIMARY KEY,
	request_id       text NOT NULL DEFAULT '',
	created_at       timestamptz NOT NULL,
	crop             text NOT NULL,
	land_size        double precision NOT NULL,
	target           double precision NOT NULL,
	vendor_available boolean NOT NULL,
	backend          text NOT NULL DEFAULT '',
	result_json      jsonb,
	error            text NOT NULL DEFAULT '',
	duration_ms      bigint NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS calculations_created_at_idx ON calculations (created_at DESC)`,
}

type CalculationRepo struct{ pool Pool }

func NewCalculationRepo(pool Pool) *CalculationRepo { return &CalculationRepo{pool: pool} }

func (r *CalculationRepo) Close() { r.pool.Close() }

func (r *CalculationRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *CalculationRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "store: ensure schema")
		}
	}
	return nil
}

// Record inserts one calculation. A nil Result is stored as SQL NULL.
func (r *CalculationRepo) Record(ctx context.Context, rec types.CalculationRecord) error {
	var result []byte
	if rec.Result != nil {
		b, err := json.Marshal(rec.Result)
		if err != nil {
			return eris.Wrap(err, "store: marshal result")
		}
		result = b
	}

	const q = `
INSERT INTO calculations (id, request_id, created_at, crop, land_size, target,
                          vendor_available, backend, result_json, error, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, q,
		rec.ID, rec.RequestID, rec.CreatedAt,
		rec.Request.Crop, rec.Request.LandSize, rec.Request.Target,
		rec.VendorAvailable, rec.Backend, result, rec.Error, rec.DurationMs,
	)
	return eris.Wrapf(err, "store: insert calculation %s", rec.ID)
}

// Recent returns the newest calculations first.
func (r *CalculationRepo) Recent(ctx context.Context, limit int) ([]types.CalculationRecord, error) {
	const q = `
SELECT id, request_id, created_at, crop, land_size, target,
       vendor_available, backend, result_json, error, duration_ms
FROM calculations
ORDER BY created_at DESC
LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: query calculations")
	}
	defer rows.Close()

	var out []types.CalculationRecord
	for rows.Next() {
		var (
			rec    types.CalculationRecord
			ts     time.Time
			result []byte
		)
		if err := rows.Scan(
			&rec.ID, &rec.RequestID, &ts,
			&rec.Request.Crop, &rec.Request.LandSize, &rec.Request.Target,
			&rec.VendorAvailable, &rec.Backend, &result, &rec.Error, &rec.DurationMs,
		); err != nil {
			return nil, eris.Wrap(err, "store: scan calculation")
		}
		rec.CreatedAt = ts.UTC()
		if len(result) > 0 {
			var res types.RecommendationResult
			if err := json.Unmarshal(result, &res); err != nil {
				return nil, eris.Wrapf(err, "store: decode result of %s", rec.ID)
			}
			res.Normalize()
			rec.Result = &res
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "store: iterate calculations")
	}
	return out, nil
}
