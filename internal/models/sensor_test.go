package models

import (
	"errors"
	"testing"
)

func TestParseSensorType(t *testing.T) {
	tests := []struct {
		input   string
		want    SensorType
		wantErr bool
	}{
		{"Temperature", SensorTemperature, false},
		{"temperature", SensorTemperature, false},
		{"pH", SensorPH, false},
		{"PH", SensorPH, false},
		{"DissolvedOxygen", SensorDissolvedOxygen, false},
		{"dissolvedoxygen", SensorDissolvedOxygen, false},
		{"Salinity", SensorSalinity, false},
		{"Turbidity", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSensorType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSensorType(%q) error = nil, want error", tt.input)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("ParseSensorType(%q) error type = %T, want *ValidationError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSensorType(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSensorType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestColumnPrefix(t *testing.T) {
	tests := []struct {
		st   SensorType
		want string
	}{
		{SensorTemperature, "temperature"},
		{SensorPH, "ph"},
		{SensorDissolvedOxygen, "dissolvedoxygen"},
		{SensorSalinity, "salinity"},
	}

	for _, tt := range tests {
		if got := tt.st.ColumnPrefix(); got != tt.want {
			t.Errorf("ColumnPrefix(%v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "tank_id", Value: "", Message: "tank_id is required"}

	if err.Error() != "tank_id is required" {
		t.Errorf("Error() = %q, want %q", err.Error(), "tank_id is required")
	}
	if err.IsTransient() {
		t.Error("IsTransient() = true, want false")
	}
}
