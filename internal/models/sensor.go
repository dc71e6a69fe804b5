package models

import (
	"fmt"
	"strings"
	"time"
)

// MinQualityScore is the quality threshold below which readings are excluded
// from feature computation.
const MinQualityScore = 0.7

// FeatureVersion tags every computed feature row with the revision of the
// feature-generation logic.
const FeatureVersion = "v1.0"

// SensorType identifies the physical quantity a sensor measures.
type SensorType string

const (
	SensorTemperature     SensorType = "Temperature"
	SensorPH              SensorType = "pH"
	SensorDissolvedOxygen SensorType = "DissolvedOxygen"
	SensorSalinity        SensorType = "Salinity"
)

// AllSensorTypes lists the sensor types supported by the feature pipeline.
var AllSensorTypes = []SensorType{
	SensorTemperature,
	SensorPH,
	SensorDissolvedOxygen,
	SensorSalinity,
}

// ParseSensorType converts a string to a known SensorType.
func ParseSensorType(s string) (SensorType, error) {
	for _, st := range AllSensorTypes {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", &ValidationError{
		Field:   "sensor_type",
		Value:   s,
		Message: fmt.Sprintf("unknown sensor type: %s", s),
	}
}

// ColumnPrefix returns the lowercased sensor name used to prefix feature columns.
func (st SensorType) ColumnPrefix() string {
	return strings.ToLower(string(st))
}

// SensorReading represents a single quality-filtered sensor measurement,
// joined with the device metadata of the sensor that produced it.
type SensorReading struct {
	Time         time.Time  `json:"time" db:"time"`
	SensorID     string     `json:"sensor_id" db:"sensor_id"`
	TankID       string     `json:"tank_id" db:"tank_id"`
	SensorType   SensorType `json:"sensor_type" db:"sensor_type"`
	Value        float64    `json:"value" db:"value"`
	QualityScore float64    `json:"quality_score" db:"quality_score"`

	// Device metadata joined from the sensors table.
	Model        string   `json:"model" db:"model"`
	Manufacturer string   `json:"manufacturer" db:"manufacturer"`
	Accuracy     *float64 `json:"accuracy,omitempty" db:"accuracy"`
	MinValue     *float64 `json:"min_value,omitempty" db:"min_value"`
	MaxValue     *float64 `json:"max_value,omitempty" db:"max_value"`
}

// TankLocation describes where a tank physically sits.
type TankLocation struct {
	Building string `json:"building"`
	Room     string `json:"room"`
	Zone     string `json:"zone,omitempty"`
}

// TankMetadata holds static tank configuration used for context features.
// Location and OptimalParameters are stored as JSON in the tanks table.
type TankMetadata struct {
	TankID            string             `json:"tank_id"`
	CapacityValue     float64            `json:"capacity_value"`
	CapacityUnit      string             `json:"capacity_unit"`
	TankType          string             `json:"tank_type"`
	Location          TankLocation       `json:"location"`
	OptimalParameters map[string]float64 `json:"optimal_parameters"`
}

// FeatureRow is one computed feature vector for a tank at one source timestamp.
// Features holds every numeric column; Labels holds categorical columns such
// as the season name.
type FeatureRow struct {
	TankID           string             `json:"tank_id"`
	FeatureTimestamp time.Time          `json:"feature_timestamp"`
	FeatureVersion   string             `json:"feature_version"`
	Timestamp        time.Time          `json:"timestamp"`
	Features         map[string]float64 `json:"features"`
	Labels           map[string]string  `json:"labels,omitempty"`
}

// ValidationError represents a data or configuration validation failure.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent.
func (e *ValidationError) IsTransient() bool {
	return false
}
