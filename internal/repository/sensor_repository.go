package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"aquaculture-platform/internal/models"
	"aquaculture-platform/pkg/database"
	"aquaculture-platform/pkg/logging"
	"aquaculture-platform/pkg/metrics"
)

// SensorRepository provides data access for sensor readings, tank metadata
// and computed feature rows.
type SensorRepository interface {
	// GetReadings returns quality-filtered readings for one tank in
	// [start, end], joined with sensor device metadata and ordered by
	// (time, sensor_type).
	GetReadings(ctx context.Context, tankID string, start, end time.Time) ([]*models.SensorReading, error)

	// GetTankMetadata returns the tank configuration, or a NotFoundError.
	GetTankMetadata(ctx context.Context, tankID string) (*models.TankMetadata, error)

	// UpsertFeatures persists feature rows, replacing on
	// (feature_timestamp, tank_id) conflicts. All-or-nothing per call.
	UpsertFeatures(ctx context.Context, rows []models.FeatureRow) error

	// HealthCheck verifies the underlying connection.
	HealthCheck(ctx context.Context) error
}

// sensorRepository implements SensorRepository
type sensorRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewSensorRepository creates a new sensor repository
func NewSensorRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) SensorRepository {
	return &sensorRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetReadings retrieves sensor readings for feature engineering
func (r *sensorRepository) GetReadings(ctx context.Context, tankID string, start, end time.Time) ([]*models.SensorReading, error) {
	query := `
		SELECT
			r.time,
			r.sensor_id,
			r.tank_id,
			r.sensor_type,
			r.value,
			r.quality_score,
			s.model,
			s.manufacturer,
			s.accuracy,
			s.min_value,
			s.max_value
		FROM sensor_data.readings r
		JOIN sensor_data.sensors s ON r.sensor_id = s.id
		WHERE r.tank_id = $1
		  AND r.time BETWEEN $2 AND $3
		  AND r.quality_score >= $4
		ORDER BY r.time, r.sensor_type
	`

	var readings []*models.SensorReading
	err := r.db.SelectContext(ctx, "get_readings", &readings, query, tankID, start, end, models.MinQualityScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get readings: %w", err)
	}

	r.metrics.ReadingsFetchedTotal.Add(float64(len(readings)))
	r.logger.Debug(ctx, "[REPO_GET_READINGS] Readings extracted", logging.Fields{
		"tank_id": tankID,
		"count":   len(readings),
		"start":   start.Format(time.RFC3339),
		"end":     end.Format(time.RFC3339),
	})

	return readings, nil
}

// tankRow is the raw tanks record; location and optimal_parameters are JSON.
type tankRow struct {
	CapacityValue     float64        `db:"capacity_value"`
	CapacityUnit      string         `db:"capacity_unit"`
	TankType          string         `db:"tank_type"`
	Location          sql.NullString `db:"location"`
	OptimalParameters sql.NullString `db:"optimal_parameters"`
}

// GetTankMetadata retrieves tank configuration by ID
func (r *sensorRepository) GetTankMetadata(ctx context.Context, tankID string) (*models.TankMetadata, error) {
	query := `
		SELECT
			capacity_value,
			capacity_unit,
			tank_type,
			location,
			optimal_parameters
		FROM sensor_data.tanks
		WHERE id = $1
	`

	var row tankRow
	err := r.db.GetContext(ctx, "get_tank_metadata", &row, query, tankID)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "tank",
			ID:       tankID,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get tank metadata: %w", err)
	}

	meta := &models.TankMetadata{
		TankID:        tankID,
		CapacityValue: row.CapacityValue,
		CapacityUnit:  row.CapacityUnit,
		TankType:      row.TankType,
	}

	if row.Location.Valid && row.Location.String != "" {
		if err := json.Unmarshal([]byte(row.Location.String), &meta.Location); err != nil {
			return nil, fmt.Errorf("failed to decode tank location: %w", err)
		}
	}

	if row.OptimalParameters.Valid && row.OptimalParameters.String != "" {
		if err := json.Unmarshal([]byte(row.OptimalParameters.String), &meta.OptimalParameters); err != nil {
			return nil, fmt.Errorf("failed to decode optimal parameters: %w", err)
		}
	}

	return meta, nil
}

// UpsertFeatures persists feature rows in a single transaction
func (r *sensorRepository) UpsertFeatures(ctx context.Context, rows []models.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.FeatureUpsertBatchSize.Observe(float64(len(rows)))
		r.logger.Debug(ctx, "[REPO_UPSERT_FEATURES] Feature upsert completed", logging.Fields{
			"count":       len(rows),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ml_features.tank_features (
			feature_timestamp, tank_id, features, feature_version
		)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (feature_timestamp, tank_id) DO UPDATE SET
			features = EXCLUDED.features,
			feature_version = EXCLUDED.feature_version
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		payload, err := featurePayload(row)
		if err != nil {
			return fmt.Errorf("failed to encode features for tank %s: %w", row.TankID, err)
		}

		_, err = stmt.ExecContext(ctx,
			row.FeatureTimestamp,
			row.TankID,
			payload,
			row.FeatureVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert features: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// featurePayload builds the features JSON object: every non-null numeric
// column, the categorical labels, and the row's source timestamp.
func featurePayload(row models.FeatureRow) ([]byte, error) {
	payload := make(map[string]interface{}, len(row.Features)+len(row.Labels)+1)

	for name, v := range row.Features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		payload[name] = v
	}
	for name, v := range row.Labels {
		payload[name] = v
	}
	payload["timestamp"] = row.Timestamp.UTC().Format(time.RFC3339)

	return json.Marshal(payload)
}

// HealthCheck performs a repository health check
func (r *sensorRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
