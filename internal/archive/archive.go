// Package archive persists one row per completed inference cycle to
// PostgreSQL for later calibration against observed weather. Archiving is
// optional: a nil Recorder is a no-op, so the daemon runs unchanged without
// a database.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"microweather/internal/config"
	"microweather/internal/types"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx, so the
// recorder works inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS cycles (
    cycle_id          UUID PRIMARY KEY,
    observed_at       TIMESTAMPTZ NOT NULL,
    condition         TEXT NOT NULL,
    temperature_c     DOUBLE PRECISION NOT NULL,
    pressure_hpa      DOUBLE PRECISION NOT NULL,
    wind_speed_kmh    DOUBLE PRECISION NOT NULL,
    humidity_percent  DOUBLE PRECISION NOT NULL,
    visibility_km     DOUBLE PRECISION NOT NULL,
    storm_probability DOUBLE PRECISION NOT NULL
)`

const insertCycleSQL = `
INSERT INTO cycles
    (cycle_id, observed_at, condition, temperature_c, pressure_hpa,
     wind_speed_kmh, humidity_percent, visibility_km, storm_probability)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (cycle_id) DO NOTHING`

// Recorder writes completed cycles. A nil *Recorder is safe to use and
// records nothing.
type Recorder struct {
	db     DBTX
	logger *slog.Logger
}

// NewRecorder creates a Recorder over an existing connection.
func NewRecorder(db DBTX, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, logger: logger}
}

// Connect opens a pool from the database configuration, verifies it, and
// ensures the cycles table exists. Returns (nil, nil, nil) when archiving
// is disabled.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Recorder, *pgxpool.Pool, error) {
	if !cfg.ArchiveEnabled() {
		return nil, nil, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: opening pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("archive: pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("archive: creating cycles table: %w", err)
	}

	return NewRecorder(pool, logger), pool, nil
}

// Record persists one cycle. Failures are logged and swallowed: archiving
// must never take a poll cycle down with it.
func (r *Recorder) Record(ctx context.Context, bundle types.Bundle) {
	if r == nil {
		return
	}
	_, err := r.db.Exec(ctx, insertCycleSQL,
		bundle.CycleID,
		bundle.Timestamp.UTC(),
		string(bundle.Condition),
		bundle.TemperatureC,
		bundle.PressureHPa,
		bundle.WindSpeedKmh,
		bundle.Humidity,
		bundle.VisibilityKm,
		bundle.StormProbability,
	)
	if err != nil {
		r.logger.Warn("recording cycle failed",
			"cycle_id", bundle.CycleID,
			"error", err,
		)
	}
}

// RecentConditions returns the conditions observed within the lookback, most
// recent first. Used by the ops tooling to eyeball classifier stability.
func (r *Recorder) RecentConditions(ctx context.Context, lookback time.Duration) ([]ObservedCondition, error) {
	if r == nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT cycle_id, observed_at, condition, storm_probability
		 FROM cycles
		 WHERE observed_at >= $1
		 ORDER BY observed_at DESC`,
		time.Now().UTC().Add(-lookback),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: querying recent conditions: %w", err)
	}
	defer rows.Close()

	var out []ObservedCondition
	for rows.Next() {
		var oc ObservedCondition
		if err := rows.Scan(&oc.CycleID, &oc.ObservedAt, &oc.Condition, &oc.StormProbability); err != nil {
			return nil, fmt.Errorf("archive: scanning condition row: %w", err)
		}
		out = append(out, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: reading condition rows: %w", err)
	}
	return out, nil
}

// ObservedCondition is one archived classification.
type ObservedCondition struct {
	CycleID          string
	ObservedAt       time.Time
	Condition        string
	StormProbability float64
}
