package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/piresc/ridertrack/internal/pkg/models"
)

const insertEventQuery = `
	INSERT INTO location_events (
		id, rider_user_id, device_id,
		ts_ms, lat, lng, accuracy_m, altitude_m, speed_mps, heading_deg, mocked, provider,
		geohash, fraud_score, fraud_signals, meta, server_received_at_ms
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

const latestEventQuery = `
	SELECT
		id, rider_user_id, device_id,
		ts_ms, lat, lng, accuracy_m, altitude_m, speed_mps, heading_deg, mocked, provider,
		geohash, fraud_score, fraud_signals, meta, server_received_at_ms
	FROM location_events
	WHERE rider_user_id = $1 AND device_id = $2
	ORDER BY server_received_at_ms DESC, id DESC
	LIMIT 1
`

type eventRow struct {
	ID                 string          `db:"id"`
	RiderUserID        string          `db:"rider_user_id"`
	DeviceID           string          `db:"device_id"`
	TsMs               int64           `db:"ts_ms"`
	Lat                float64         `db:"lat"`
	Lng                float64         `db:"lng"`
	AccuracyM          sql.NullFloat64 `db:"accuracy_m"`
	AltitudeM          sql.NullFloat64 `db:"altitude_m"`
	SpeedMps           sql.NullFloat64 `db:"speed_mps"`
	HeadingDeg         sql.NullFloat64 `db:"heading_deg"`
	Mocked             sql.NullBool    `db:"mocked"`
	Provider           string          `db:"provider"`
	Geohash            string          `db:"geohash"`
	FraudScore         int             `db:"fraud_score"`
	FraudSignals       pq.StringArray  `db:"fraud_signals"`
	Meta               []byte          `db:"meta"`
	ServerReceivedAtMs int64           `db:"server_received_at_ms"`
}

// PostgresRepo stores location events in the append-only location_events table
type PostgresRepo struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new location event repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// InsertEvent appends a scored event
func (r *PostgresRepo) InsertEvent(ctx context.Context, event *models.LocationEvent) error {
	meta, err := json.Marshal(event.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal event meta: %w", err)
	}

	signals := event.FraudSignals
	if signals == nil {
		signals = []string{}
	}

	_, err = r.db.ExecContext(
		ctx,
		insertEventQuery,
		event.ID,
		event.RiderUserID,
		event.DeviceID,
		event.Fix.TimestampMs,
		event.Fix.Lat,
		event.Fix.Lng,
		event.Fix.AccuracyM,
		event.Fix.AltitudeM,
		event.Fix.SpeedMps,
		event.Fix.HeadingDeg,
		event.Fix.Mocked,
		string(event.Fix.Provider),
		event.Geohash,
		event.FraudScore,
		pq.StringArray(signals),
		meta,
		event.ServerReceivedAtMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert location event: %w", err)
	}
	return nil
}

// GetLatestEvent returns the last received event of the binding, nil when the binding has none
func (r *PostgresRepo) GetLatestEvent(ctx context.Context, riderUserID, deviceID string) (*models.LocationEvent, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, latestEventQuery, riderUserID, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest location event: %w", err)
	}
	return row.toEvent()
}

func (row eventRow) toEvent() (*models.LocationEvent, error) {
	event := &models.LocationEvent{
		ID:          row.ID,
		RiderUserID: row.RiderUserID,
		DeviceID:    row.DeviceID,
		Fix: models.Fix{
			TimestampMs: row.TsMs,
			Lat:         row.Lat,
			Lng:         row.Lng,
			AccuracyM:   nullFloat(row.AccuracyM),
			AltitudeM:   nullFloat(row.AltitudeM),
			SpeedMps:    nullFloat(row.SpeedMps),
			HeadingDeg:  nullFloat(row.HeadingDeg),
			Provider:    models.Provider(row.Provider),
		},
		Geohash:            row.Geohash,
		FraudScore:         row.FraudScore,
		FraudSignals:       []string(row.FraudSignals),
		ServerReceivedAtMs: row.ServerReceivedAtMs,
	}
	if row.Mocked.Valid {
		mocked := row.Mocked.Bool
		event.Fix.Mocked = &mocked
	}
	if event.FraudSignals == nil {
		event.FraudSignals = []string{}
	}
	if len(row.Meta) > 0 {
		if err := json.Unmarshal(row.Meta, &event.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event meta: %w", err)
		}
	}
	return event, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
