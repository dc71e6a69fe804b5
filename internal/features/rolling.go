package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"aquaculture-platform/internal/models"
)

// anomalyWindow is the fixed trailing window for z-score anomaly detection,
// independent of the configured aggregation windows.
const anomalyWindow = 24 * time.Hour

// zScoreThreshold flags values deviating more than this many standard
// deviations from the trailing 24h mean.
const zScoreThreshold = 3.0

// columnSet accumulates feature columns on a single sensor's own index before
// they are aligned onto the frame.
type columnSet struct {
	names []string
	data  map[string][]float64
}

func newColumnSet() *columnSet {
	return &columnSet{data: make(map[string][]float64)}
}

func (c *columnSet) add(name string, values []float64) {
	if _, ok := c.data[name]; !ok {
		c.names = append(c.names, name)
	}
	c.data[name] = values
}

func (c *columnSet) get(name string) ([]float64, bool) {
	v, ok := c.data[name]
	return v, ok
}

// rollingStats holds per-position trailing window statistics. The window at
// position i covers (t_i − w, t_i], so it always contains at least the current
// sample. Standard deviation is the sample deviation (NaN below two points).
type rollingStats struct {
	mean, std, min, max, q25, q75 []float64
}

// computeRollingStats walks the series once per window size with a trailing
// start pointer. Timestamps must be sorted ascending.
func computeRollingStats(times []time.Time, values []float64, w time.Duration) rollingStats {
	n := len(values)
	rs := rollingStats{
		mean: make([]float64, n),
		std:  make([]float64, n),
		min:  make([]float64, n),
		max:  make([]float64, n),
		q25:  make([]float64, n),
		q75:  make([]float64, n),
	}

	start := 0
	for i := 0; i < n; i++ {
		cutoff := times[i].Add(-w)
		for !times[start].After(cutoff) {
			start++
		}

		seg := values[start : i+1]
		cnt := len(seg)

		sum := 0.0
		for _, v := range seg {
			sum += v
		}
		mean := sum / float64(cnt)
		rs.mean[i] = mean

		if cnt < 2 {
			rs.std[i] = math.NaN()
		} else {
			var sq float64
			for _, v := range seg {
				d := v - mean
				sq += d * d
			}
			rs.std[i] = math.Sqrt(sq / float64(cnt-1))
		}

		sorted := make([]float64, cnt)
		copy(sorted, seg)
		sort.Float64s(sorted)

		rs.min[i] = sorted[0]
		rs.max[i] = sorted[cnt-1]
		rs.q25[i] = quantile(sorted, 0.25)
		rs.q75[i] = quantile(sorted, 0.75)
	}

	return rs
}

// quantile interpolates linearly between order statistics of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}

// diffN returns values[i] − values[i−n], NaN for the first n positions.
// NaN operands propagate.
func diffN(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < n {
			out[i] = math.NaN()
		} else {
			out[i] = values[i] - values[i-n]
		}
	}
	return out
}

// shiftN returns values delayed by n positions, NaN for the first n.
func shiftN(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < n {
			out[i] = math.NaN()
		} else {
			out[i] = values[i-n]
		}
	}
	return out
}

// boolToFlag converts a predicate over values into a 0/1 column. NaN inputs
// fail every predicate and yield 0.
func boolToFlag(values []float64, pred func(float64) bool) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if pred(v) {
			out[i] = 1
		}
	}
	return out
}

// AddSensorFeatures computes the full per-sensor feature set for one pivoted
// series and writes it into the frame, aligned to the frame index. Column
// names are prefixed with the lowercased sensor type except the risk flags,
// which are sensor-specific by construction and keep their shared names.
func AddSensorFeatures(f *Frame, s *PivotedSeries, st models.SensorType, cfg Config) error {
	if s == nil || s.Len() == 0 {
		return nil
	}

	prefix := st.ColumnPrefix()
	cols := newColumnSet()

	// Raw pivoted value, named by the sensor itself. Tank optimal-parameter
	// keys match against this column.
	cols.add(prefix, s.Values)

	for _, window := range cfg.AggregationWindows {
		w, err := ParseWindow(window)
		if err != nil {
			return fmt.Errorf("invalid aggregation window %q: %w", window, err)
		}

		rs := computeRollingStats(s.Times, s.Values, w)

		n := s.Len()
		rng := make([]float64, n)
		iqr := make([]float64, n)
		trend := make([]float64, n)
		cv := make([]float64, n)
		for i := 0; i < n; i++ {
			rng[i] = rs.max[i] - rs.min[i]
			iqr[i] = rs.q75[i] - rs.q25[i]
			trend[i] = s.Values[i] - rs.mean[i]
			cv[i] = rs.std[i] / rs.mean[i]
		}

		cols.add(fmt.Sprintf("%s_mean_%s", prefix, window), rs.mean)
		cols.add(fmt.Sprintf("%s_std_%s", prefix, window), rs.std)
		cols.add(fmt.Sprintf("%s_min_%s", prefix, window), rs.min)
		cols.add(fmt.Sprintf("%s_max_%s", prefix, window), rs.max)
		cols.add(fmt.Sprintf("%s_range_%s", prefix, window), rng)
		cols.add(fmt.Sprintf("%s_q25_%s", prefix, window), rs.q25)
		cols.add(fmt.Sprintf("%s_q75_%s", prefix, window), rs.q75)
		cols.add(fmt.Sprintf("%s_iqr_%s", prefix, window), iqr)
		cols.add(fmt.Sprintf("%s_trend_%s", prefix, window), trend)
		cols.add(fmt.Sprintf("%s_cv_%s", prefix, window), cv)
	}

	// Rate of change at fixed 1h/3h/6h horizons, counted in 5-minute samples.
	roc1h := diffN(s.Values, SamplesPerHour)
	cols.add(prefix+"_roc_1h", roc1h)
	cols.add(prefix+"_roc_3h", diffN(s.Values, 3*SamplesPerHour))
	cols.add(prefix+"_roc_6h", diffN(s.Values, 6*SamplesPerHour))
	cols.add(prefix+"_acceleration", diffN(roc1h, 1))

	if cfg.IncludeLagFeatures {
		for lag := 1; lag <= cfg.MaxLagHours; lag++ {
			cols.add(fmt.Sprintf("%s_lag_%dh", prefix, lag), shiftN(s.Values, lag*SamplesPerHour))
		}
	}

	// Z-score anomaly detection on a fixed 24h window regardless of the
	// configured aggregation windows.
	anomaly := computeRollingStats(s.Times, s.Values, anomalyWindow)
	zscore := make([]float64, s.Len())
	for i := range zscore {
		zscore[i] = (s.Values[i] - anomaly.mean[i]) / anomaly.std[i]
	}
	cols.add(prefix+"_zscore", zscore)
	cols.add(prefix+"_is_anomaly", boolToFlag(zscore, func(z float64) bool {
		return math.Abs(z) > zScoreThreshold
	}))

	addRiskFlags(cols, s, st, prefix)

	// Align every column onto the frame index.
	pos := make(map[int64]int, f.Len())
	for i, t := range f.Index() {
		pos[t.UnixNano()] = i
	}

	for _, name := range cols.names {
		values := cols.data[name]
		aligned := make([]float64, f.Len())
		for i := range aligned {
			aligned[i] = math.NaN()
		}
		for i, t := range s.Times {
			if p, ok := pos[t.UnixNano()]; ok {
				aligned[p] = values[i]
			}
		}
		f.SetFloat(name, aligned)
	}

	return nil
}

// addRiskFlags derives the domain-specific risk indicators for one sensor
// type. Flags referencing a particular window column are only produced when
// that window is configured.
func addRiskFlags(cols *columnSet, s *PivotedSeries, st models.SensorType, prefix string) {
	switch st {
	case models.SensorTemperature:
		if roc, ok := cols.get(prefix + "_roc_1h"); ok {
			cols.add("temp_shock_risk", boolToFlag(roc, func(v float64) bool {
				return math.Abs(v) > 2.0
			}))
		}
		if std3h, ok := cols.get(prefix + "_std_3H"); ok {
			cols.add("thermal_stratification", boolToFlag(std3h, func(v float64) bool {
				return v > 1.5
			}))
		}

	case models.SensorPH:
		if std6h, ok := cols.get(prefix + "_std_6H"); ok {
			stability := make([]float64, len(std6h))
			for i, v := range std6h {
				stability[i] = 1 / (1 + v)
			}
			cols.add("ph_stability", stability)
		}
		cols.add("ph_stress_low", boolToFlag(s.Values, func(v float64) bool { return v < 6.5 }))
		cols.add("ph_stress_high", boolToFlag(s.Values, func(v float64) bool { return v > 8.5 }))

	case models.SensorDissolvedOxygen:
		cols.add("oxygen_depletion_risk", boolToFlag(s.Values, func(v float64) bool { return v < 4.0 }))
		cols.add("oxygen_critical", boolToFlag(s.Values, func(v float64) bool { return v < 2.0 }))
		if trend3h, ok := cols.get(prefix + "_trend_3H"); ok {
			cols.add("oxygen_declining_trend", boolToFlag(trend3h, func(v float64) bool {
				return v < -0.5
			}))
		}
	}
}

// AddCrossSensorFeatures derives interaction columns between sensors. The
// temperature/oxygen ratio captures the inverse correlation expected between
// water temperature and dissolved oxygen; the epsilon keeps the ratio defined
// when the oxygen mean is zero.
func AddCrossSensorFeatures(f *Frame, cfg Config) {
	const epsilon = 1e-6

	if !cfg.HasSensorType(models.SensorTemperature) || !cfg.HasSensorType(models.SensorDissolvedOxygen) {
		return
	}

	tempPrefix := models.SensorTemperature.ColumnPrefix()
	oxyPrefix := models.SensorDissolvedOxygen.ColumnPrefix()

	for _, window := range cfg.AggregationWindows {
		tempMean, ok := f.Float(fmt.Sprintf("%s_mean_%s", tempPrefix, window))
		if !ok {
			continue
		}
		oxyMean, ok := f.Float(fmt.Sprintf("%s_mean_%s", oxyPrefix, window))
		if !ok {
			continue
		}

		ratio := make([]float64, f.Len())
		for i := range ratio {
			ratio[i] = tempMean[i] / (oxyMean[i] + epsilon)
		}
		f.SetFloat(fmt.Sprintf("temp_oxygen_ratio_%s", window), ratio)
	}
}
