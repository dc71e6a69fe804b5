package features

import (
	"math"
	"sort"
	"time"

	"aquaculture-platform/internal/models"
)

// PivotedSeries is one sensor type's time series after pivoting: co-timestamped
// readings averaged into a single value per timestamp, sorted by time, with
// interior gaps removed by forward- then backward-fill.
type PivotedSeries struct {
	Times  []time.Time
	Values []float64
}

// BuildPivotedSeries pivots the readings of one sensor type. Readings of other
// types are ignored. Returns nil when the source series is entirely empty.
func BuildPivotedSeries(readings []*models.SensorReading, st models.SensorType) *PivotedSeries {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	stamps := make(map[int64]time.Time)

	for _, r := range readings {
		if r.SensorType != st {
			continue
		}
		key := r.Time.UnixNano()
		sums[key] += r.Value
		counts[key]++
		stamps[key] = r.Time
	}

	if len(sums) == 0 {
		return nil
	}

	keys := make([]int64, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	s := &PivotedSeries{
		Times:  make([]time.Time, len(keys)),
		Values: make([]float64, len(keys)),
	}
	for i, k := range keys {
		s.Times[i] = stamps[k]
		s.Values[i] = sums[k] / float64(counts[k])
	}

	s.ForwardFill()
	s.BackwardFill()

	return s
}

// Len returns the number of samples.
func (s *PivotedSeries) Len() int {
	return len(s.Times)
}

// ForwardFill replaces each NaN with the most recent preceding value.
func (s *PivotedSeries) ForwardFill() {
	last := math.NaN()
	for i, v := range s.Values {
		if math.IsNaN(v) {
			s.Values[i] = last
		} else {
			last = v
		}
	}
}

// BackwardFill replaces each remaining NaN with the next following value.
func (s *PivotedSeries) BackwardFill() {
	next := math.NaN()
	for i := len(s.Values) - 1; i >= 0; i-- {
		if math.IsNaN(s.Values[i]) {
			s.Values[i] = next
		} else {
			next = s.Values[i]
		}
	}
}

// AlignTo projects the series onto a target index, yielding NaN at timestamps
// the series does not cover. Alignment is by exact timestamp.
func (s *PivotedSeries) AlignTo(index []time.Time) []float64 {
	byTime := make(map[int64]float64, len(s.Times))
	for i, t := range s.Times {
		byTime[t.UnixNano()] = s.Values[i]
	}

	out := make([]float64, len(index))
	for i, t := range index {
		if v, ok := byTime[t.UnixNano()]; ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// UnionIndex merges the timestamp indices of several pivoted series into one
// sorted, deduplicated index. This is the row index of the feature table.
func UnionIndex(series map[models.SensorType]*PivotedSeries) []time.Time {
	seen := make(map[int64]time.Time)
	for _, s := range series {
		if s == nil {
			continue
		}
		for _, t := range s.Times {
			seen[t.UnixNano()] = t
		}
	}

	keys := make([]int64, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	index := make([]time.Time, len(keys))
	for i, k := range keys {
		index[i] = seen[k]
	}
	return index
}
