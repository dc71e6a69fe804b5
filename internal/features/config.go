package features

import (
	"fmt"

	"aquaculture-platform/internal/models"
)

// Config controls the feature-computation engine. It is immutable for the
// lifetime of a pipeline instance and validated before any I/O happens.
type Config struct {
	// LookbackHours is the raw-data window fetched behind each target time.
	LookbackHours int

	// AggregationWindows are the rolling window sizes, as duration strings
	// understood by ParseWindow. Order is preserved in column layout.
	AggregationWindows []string

	// SensorTypes selects which sensors contribute feature columns.
	SensorTypes []models.SensorType

	// IncludeSeasonal adds the season label and temp_season_factor columns.
	IncludeSeasonal bool

	// IncludeLagFeatures adds lag_1h..lag_{MaxLagHours}h columns per sensor.
	IncludeLagFeatures bool

	// MaxLagHours bounds the lag feature horizon.
	MaxLagHours int
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		LookbackHours:      24,
		AggregationWindows: []string{"1H", "3H", "6H", "12H", "24H"},
		SensorTypes: []models.SensorType{
			models.SensorTemperature,
			models.SensorPH,
			models.SensorDissolvedOxygen,
			models.SensorSalinity,
		},
		IncludeSeasonal:    true,
		IncludeLagFeatures: true,
		MaxLagHours:        6,
	}
}

// Validate checks the configuration and returns a descriptive error for the
// first problem found.
func (c Config) Validate() error {
	if c.LookbackHours <= 0 {
		return &models.ValidationError{
			Field:   "lookback_hours",
			Value:   fmt.Sprintf("%d", c.LookbackHours),
			Message: "lookback_hours must be positive",
		}
	}

	if len(c.AggregationWindows) == 0 {
		return &models.ValidationError{
			Field:   "aggregation_windows",
			Message: "at least one aggregation window is required",
		}
	}
	for _, w := range c.AggregationWindows {
		if _, err := ParseWindow(w); err != nil {
			return &models.ValidationError{
				Field:   "aggregation_windows",
				Value:   w,
				Message: err.Error(),
			}
		}
	}

	if len(c.SensorTypes) == 0 {
		return &models.ValidationError{
			Field:   "sensor_types",
			Message: "at least one sensor type is required",
		}
	}
	for _, st := range c.SensorTypes {
		if _, err := models.ParseSensorType(string(st)); err != nil {
			return &models.ValidationError{
				Field:   "sensor_types",
				Value:   string(st),
				Message: fmt.Sprintf("unknown sensor type: %s", st),
			}
		}
	}

	if c.MaxLagHours < 0 {
		return &models.ValidationError{
			Field:   "max_lag_hours",
			Value:   fmt.Sprintf("%d", c.MaxLagHours),
			Message: "max_lag_hours must not be negative",
		}
	}

	return nil
}

// HasSensorType reports whether the configuration includes a sensor type.
func (c Config) HasSensorType(st models.SensorType) bool {
	for _, t := range c.SensorTypes {
		if t == st {
			return true
		}
	}
	return false
}
