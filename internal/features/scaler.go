package features

import (
	"math"
	"sort"

	"aquaculture-platform/internal/models"
)

// Scaler normalizes a feature column. Scalers fit once: the first Fit locks
// the parameters and later calls are no-ops, so a scaler fitted on training
// data keeps producing identical transforms.
//
// Scaling is an optional post-processing stage. The feature-generation
// pipeline itself emits unscaled values; callers that need normalized inputs
// apply a ScalerSet to the finished rows.
type Scaler interface {
	Fit(values []float64)
	Transform(values []float64) []float64
	Fitted() bool
}

// StandardScaler centers on the mean and scales by the standard deviation.
type StandardScaler struct {
	mean   float64
	std    float64
	fitted bool
}

// Fit computes mean and population standard deviation over the finite values.
func (s *StandardScaler) Fit(values []float64) {
	if s.fitted {
		return
	}

	finite := finiteOnly(values)
	if len(finite) == 0 {
		return
	}

	var sum float64
	for _, v := range finite {
		sum += v
	}
	s.mean = sum / float64(len(finite))

	var sq float64
	for _, v := range finite {
		d := v - s.mean
		sq += d * d
	}
	s.std = math.Sqrt(sq / float64(len(finite)))
	if s.std == 0 {
		s.std = 1
	}
	s.fitted = true
}

// Transform returns (x − mean)/std for each value. Non-finite values pass
// through unchanged.
func (s *StandardScaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if !s.fitted || math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = v
			continue
		}
		out[i] = (v - s.mean) / s.std
	}
	return out
}

// Fitted reports whether parameters are locked.
func (s *StandardScaler) Fitted() bool {
	return s.fitted
}

// RobustScaler centers on the median and scales by the inter-quartile range,
// making it insensitive to the outliers common in raw sensor data.
type RobustScaler struct {
	median float64
	iqr    float64
	fitted bool
}

// Fit computes the median and IQR over the finite values.
func (s *RobustScaler) Fit(values []float64) {
	if s.fitted {
		return
	}

	finite := finiteOnly(values)
	if len(finite) == 0 {
		return
	}

	sorted := make([]float64, len(finite))
	copy(sorted, finite)
	sort.Float64s(sorted)

	s.median = quantile(sorted, 0.5)
	s.iqr = quantile(sorted, 0.75) - quantile(sorted, 0.25)
	if s.iqr == 0 {
		s.iqr = 1
	}
	s.fitted = true
}

// Transform returns (x − median)/IQR for each value. Non-finite values pass
// through unchanged.
func (s *RobustScaler) Transform(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if !s.fitted || math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = v
			continue
		}
		out[i] = (v - s.median) / s.iqr
	}
	return out
}

// Fitted reports whether parameters are locked.
func (s *RobustScaler) Fitted() bool {
	return s.fitted
}

// NewScalerSet returns the per-sensor-type scalers: robust scaling for
// temperature and oxygen (spiky series), standard scaling for pH and salinity.
func NewScalerSet() map[models.SensorType]Scaler {
	return map[models.SensorType]Scaler{
		models.SensorTemperature:     &RobustScaler{},
		models.SensorPH:              &StandardScaler{},
		models.SensorDissolvedOxygen: &RobustScaler{},
		models.SensorSalinity:        &StandardScaler{},
	}
}

func finiteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
