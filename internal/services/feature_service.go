package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aquaculture-platform/internal/features"
	"aquaculture-platform/internal/models"
	"aquaculture-platform/internal/repository"
	"aquaculture-platform/pkg/logging"
	"aquaculture-platform/pkg/metrics"
)

// CacheTTL is how long a computed feature table stays valid in the cache.
const CacheTTL = time.Hour

// FeatureCache is the result cache collaborator. The cache is strictly a
// memoization layer: pipeline results are identical whether an entry is
// present, absent or evicted.
type FeatureCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CacheKey builds the feature cache key for one tank and target time.
func CacheKey(tankID string, targetTime time.Time) string {
	return fmt.Sprintf("features:%s:%s", tankID, targetTime.UTC().Format(time.RFC3339))
}

// FeatureService orchestrates the feature-engineering pipeline:
// extraction, time/sensor/cross features, tank context, imputation,
// caching and metadata tagging.
type FeatureService struct {
	repo    repository.SensorRepository
	cache   FeatureCache
	config  features.Config
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewFeatureService creates a feature service. The configuration is validated
// here, before any I/O happens.
func NewFeatureService(
	repo repository.SensorRepository,
	cache FeatureCache,
	cfg features.Config,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) (*FeatureService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature configuration: %w", err)
	}

	return &FeatureService{
		repo:    repo,
		cache:   cache,
		config:  cfg,
		logger:  logger,
		metrics: metricsCollector,
	}, nil
}

// Config returns the immutable pipeline configuration.
func (s *FeatureService) Config() features.Config {
	return s.config
}

// EngineerFeatures computes the full feature table for one tank at one target
// time. A window with no qualifying readings yields an empty, non-error
// result. I/O failures propagate to the caller.
func (s *FeatureService) EngineerFeatures(ctx context.Context, tankID string, targetTime time.Time) ([]models.FeatureRow, error) {
	startedAt := time.Now()
	defer func() {
		s.metrics.FeatureGenDuration.Observe(time.Since(startedAt).Seconds())
	}()

	key := CacheKey(tankID, targetTime)

	var cached []models.FeatureRow
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, fmt.Errorf("feature cache lookup: %w", err)
	}
	if hit {
		s.metrics.RecordCacheHit()
		s.logger.Info(ctx, "[FEATURES_CACHE_HIT] Using cached features", logging.Fields{
			"tank_id":     tankID,
			"target_time": targetTime.Format(time.RFC3339),
			"rows":        len(cached),
		})
		return cached, nil
	}
	s.metrics.RecordCacheMiss()

	start := targetTime.Add(-time.Duration(s.config.LookbackHours) * time.Hour)
	readings, err := s.repo.GetReadings(ctx, tankID, start, targetTime)
	if err != nil {
		return nil, fmt.Errorf("extract sensor data: %w", err)
	}

	if len(readings) == 0 {
		s.logger.Warn(ctx, "[FEATURES_NO_DATA] No sensor data found for window", logging.Fields{
			"tank_id":     tankID,
			"target_time": targetTime.Format(time.RFC3339),
			"lookback_h":  s.config.LookbackHours,
		})
		return []models.FeatureRow{}, nil
	}

	frame, err := s.buildFrame(readings)
	if err != nil {
		return nil, err
	}
	if frame.Len() == 0 {
		s.logger.Warn(ctx, "[FEATURES_NO_SERIES] No configured sensor type present in window", logging.Fields{
			"tank_id":  tankID,
			"readings": len(readings),
		})
		return []models.FeatureRow{}, nil
	}

	// Tank context enrichment. A missing tank record is non-fatal: the
	// table passes through unenriched.
	meta, err := s.repo.GetTankMetadata(ctx, tankID)
	if err != nil {
		var nf *repository.NotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("fetch tank metadata: %w", err)
		}
		s.logger.Info(ctx, "[FEATURES_NO_METADATA] Tank metadata missing, skipping context features", logging.Fields{
			"tank_id": tankID,
		})
		meta = nil
	}
	features.AddTankContext(frame, meta)

	frame.ImputeMedian()

	rows := materializeRows(frame, tankID, targetTime)

	s.metrics.FeatureRowsTotal.Add(float64(len(rows)))
	s.metrics.FeatureColumnsCount.Observe(float64(len(frame.Columns())))

	if err := s.cache.Set(ctx, key, rows, CacheTTL); err != nil {
		return nil, fmt.Errorf("feature cache store: %w", err)
	}

	s.logger.Info(ctx, "[FEATURES_GENERATED] Feature table generated", logging.Fields{
		"tank_id":     tankID,
		"target_time": targetTime.Format(time.RFC3339),
		"rows":        len(rows),
		"columns":     len(frame.Columns()),
		"duration_ms": time.Since(startedAt).Milliseconds(),
	})

	return rows, nil
}

// buildFrame pivots the readings per configured sensor type and assembles the
// feature table: time features, per-sensor statistics and cross-sensor
// interaction columns, indexed by the union of the sensors' timestamps.
func (s *FeatureService) buildFrame(readings []*models.SensorReading) (*features.Frame, error) {
	series := make(map[models.SensorType]*features.PivotedSeries, len(s.config.SensorTypes))
	for _, st := range s.config.SensorTypes {
		if pivot := features.BuildPivotedSeries(readings, st); pivot != nil {
			series[st] = pivot
		}
	}

	frame := features.NewFrame(features.UnionIndex(series))
	if frame.Len() == 0 {
		return frame, nil
	}

	features.AddTimeFeatures(frame, s.config.IncludeSeasonal)

	for _, st := range s.config.SensorTypes {
		pivot, ok := series[st]
		if !ok {
			continue
		}
		if err := features.AddSensorFeatures(frame, pivot, st, s.config); err != nil {
			return nil, fmt.Errorf("sensor features for %s: %w", st, err)
		}
	}

	features.AddCrossSensorFeatures(frame, s.config)

	return frame, nil
}

// materializeRows fixes the frame's schema and tags every row with the tank,
// target time and feature version.
func materializeRows(frame *features.Frame, tankID string, targetTime time.Time) []models.FeatureRow {
	floatCols := frame.FloatColumns()
	index := frame.Index()

	rows := make([]models.FeatureRow, len(index))
	for i := range index {
		feats := make(map[string]float64, len(floatCols))
		for _, name := range floatCols {
			col, _ := frame.Float(name)
			feats[name] = col[i]
		}

		var labels map[string]string
		for _, name := range frame.Columns() {
			col, ok := frame.Label(name)
			if !ok {
				continue
			}
			if labels == nil {
				labels = make(map[string]string)
			}
			labels[name] = col[i]
		}

		rows[i] = models.FeatureRow{
			TankID:           tankID,
			FeatureTimestamp: targetTime,
			FeatureVersion:   models.FeatureVersion,
			Timestamp:        index[i],
			Features:         feats,
			Labels:           labels,
		}
	}
	return rows
}

// BatchResult summarizes a batch feature-engineering run.
type BatchResult struct {
	RunID     string
	Units     int
	Succeeded int
	Empty     int
	Failed    int
	Rows      []models.FeatureRow
	Duration  time.Duration
}

// BatchEngineerFeatures runs the pipeline for every (tank, target time) pair
// in the range. A failing unit is logged and skipped; it never aborts the
// batch. The result concatenates all non-empty unit outputs.
func (s *FeatureService) BatchEngineerFeatures(ctx context.Context, tankIDs []string, start, end time.Time, intervalHours int) (*BatchResult, error) {
	if intervalHours <= 0 {
		return nil, &models.ValidationError{
			Field:   "interval_hours",
			Value:   fmt.Sprintf("%d", intervalHours),
			Message: "interval_hours must be positive",
		}
	}

	startedAt := time.Now()
	result := &BatchResult{
		RunID: uuid.NewString(),
	}

	s.logger.Info(ctx, "[BATCH_START] Starting batch feature engineering", logging.Fields{
		"run_id":         result.RunID,
		"tanks":          len(tankIDs),
		"start":          start.Format(time.RFC3339),
		"end":            end.Format(time.RFC3339),
		"interval_hours": intervalHours,
	})

	for current := start; !current.After(end); current = current.Add(time.Duration(intervalHours) * time.Hour) {
		for _, tankID := range tankIDs {
			result.Units++

			rows, err := s.EngineerFeatures(ctx, tankID, current)
			if err != nil {
				result.Failed++
				s.metrics.RecordBatchUnit("failed")
				s.logger.Error(ctx, "[BATCH_UNIT_ERROR] Feature engineering failed for unit", logging.Fields{
					"run_id":      result.RunID,
					"tank_id":     tankID,
					"target_time": current.Format(time.RFC3339),
				}, err)
				continue
			}

			if len(rows) == 0 {
				result.Empty++
				s.metrics.RecordBatchUnit("empty")
				continue
			}

			result.Succeeded++
			s.metrics.RecordBatchUnit("success")
			result.Rows = append(result.Rows, rows...)
		}
	}

	result.Duration = time.Since(startedAt)

	s.logger.Info(ctx, "[BATCH_COMPLETE] Batch feature engineering completed", logging.Fields{
		"run_id":           result.RunID,
		"units":            result.Units,
		"succeeded":        result.Succeeded,
		"empty":            result.Empty,
		"failed":           result.Failed,
		"rows":             len(result.Rows),
		"duration_seconds": result.Duration.Seconds(),
	})

	return result, nil
}

// SaveFeatures persists computed feature rows through the repository upsert.
func (s *FeatureService) SaveFeatures(ctx context.Context, rows []models.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	if err := s.repo.UpsertFeatures(ctx, rows); err != nil {
		return fmt.Errorf("save features: %w", err)
	}

	s.logger.Info(ctx, "[FEATURES_SAVED] Feature rows persisted", logging.Fields{
		"rows": len(rows),
	})
	return nil
}
