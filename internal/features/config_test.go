package features

import (
	"errors"
	"testing"

	"aquaculture-platform/internal/models"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "default is valid",
			mutate: func(c *Config) {},
		},
		{
			name:      "zero lookback",
			mutate:    func(c *Config) { c.LookbackHours = 0 },
			wantField: "lookback_hours",
		},
		{
			name:      "negative lookback",
			mutate:    func(c *Config) { c.LookbackHours = -4 },
			wantField: "lookback_hours",
		},
		{
			name:      "no windows",
			mutate:    func(c *Config) { c.AggregationWindows = nil },
			wantField: "aggregation_windows",
		},
		{
			name:      "malformed window",
			mutate:    func(c *Config) { c.AggregationWindows = []string{"1H", "bogus"} },
			wantField: "aggregation_windows",
		},
		{
			name:      "no sensor types",
			mutate:    func(c *Config) { c.SensorTypes = nil },
			wantField: "sensor_types",
		},
		{
			name:      "unknown sensor type",
			mutate:    func(c *Config) { c.SensorTypes = []models.SensorType{"Turbidity"} },
			wantField: "sensor_types",
		},
		{
			name:      "negative lag horizon",
			mutate:    func(c *Config) { c.MaxLagHours = -1 },
			wantField: "max_lag_hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want *models.ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Validate() field = %s, want %s", verr.Field, tt.wantField)
			}
			if verr.IsTransient() {
				t.Error("validation errors must not be transient")
			}
		})
	}
}

func TestConfigHasSensorType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SensorTypes = []models.SensorType{models.SensorTemperature, models.SensorPH}

	if !cfg.HasSensorType(models.SensorPH) {
		t.Error("HasSensorType(pH) = false, want true")
	}
	if cfg.HasSensorType(models.SensorSalinity) {
		t.Error("HasSensorType(Salinity) = true, want false")
	}
}
