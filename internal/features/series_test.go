package features

import (
	"math"
	"testing"
	"time"

	"aquaculture-platform/internal/models"
)

func reading(ts time.Time, st models.SensorType, value float64) *models.SensorReading {
	return &models.SensorReading{
		Time:         ts,
		SensorID:     "sensor-1",
		TankID:       "tank-1",
		SensorType:   st,
		Value:        value,
		QualityScore: 0.95,
	}
}

func TestBuildPivotedSeries(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	readings := []*models.SensorReading{
		// Out of order on purpose; co-timestamped pair should average.
		reading(t0.Add(10*time.Minute), models.SensorTemperature, 22.0),
		reading(t0, models.SensorTemperature, 20.0),
		reading(t0, models.SensorTemperature, 24.0),
		reading(t0.Add(5*time.Minute), models.SensorTemperature, 21.0),
		reading(t0, models.SensorPH, 7.2), // other type, ignored
	}

	s := BuildPivotedSeries(readings, models.SensorTemperature)
	if s == nil {
		t.Fatal("expected non-nil series")
	}

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	wantTimes := []time.Time{t0, t0.Add(5 * time.Minute), t0.Add(10 * time.Minute)}
	wantValues := []float64{22.0, 21.0, 22.0}

	for i := range wantTimes {
		if !s.Times[i].Equal(wantTimes[i]) {
			t.Errorf("Times[%d] = %v, want %v", i, s.Times[i], wantTimes[i])
		}
		if s.Values[i] != wantValues[i] {
			t.Errorf("Values[%d] = %v, want %v", i, s.Values[i], wantValues[i])
		}
	}
}

func TestBuildPivotedSeries_Empty(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	readings := []*models.SensorReading{
		reading(t0, models.SensorPH, 7.2),
	}

	if s := BuildPivotedSeries(readings, models.SensorSalinity); s != nil {
		t.Errorf("expected nil series for absent sensor type, got %d samples", s.Len())
	}
	if s := BuildPivotedSeries(nil, models.SensorTemperature); s != nil {
		t.Error("expected nil series for no readings")
	}
}

func TestPivotedSeries_Fill(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"interior gap forward-filled", []float64{1, nan, nan, 4}, []float64{1, 1, 1, 4}},
		{"leading gap backward-filled", []float64{nan, 2, 3, 4}, []float64{2, 2, 3, 4}},
		{"trailing gap forward-filled", []float64{1, 2, 3, nan}, []float64{1, 2, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &PivotedSeries{
				Times:  hourlyIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), len(tt.values), time.Hour),
				Values: append([]float64(nil), tt.values...),
			}
			s.ForwardFill()
			s.BackwardFill()

			for i := range tt.want {
				if s.Values[i] != tt.want[i] {
					t.Errorf("Values[%d] = %v, want %v", i, s.Values[i], tt.want[i])
				}
			}
		})
	}
}

func TestUnionIndexAndAlign(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	temp := &PivotedSeries{
		Times:  []time.Time{t0, t0.Add(10 * time.Minute)},
		Values: []float64{20, 21},
	}
	ph := &PivotedSeries{
		Times:  []time.Time{t0.Add(5 * time.Minute), t0.Add(10 * time.Minute)},
		Values: []float64{7.0, 7.1},
	}

	index := UnionIndex(map[models.SensorType]*PivotedSeries{
		models.SensorTemperature: temp,
		models.SensorPH:          ph,
	})

	if len(index) != 3 {
		t.Fatalf("UnionIndex length = %d, want 3", len(index))
	}
	for i := 1; i < len(index); i++ {
		if !index[i-1].Before(index[i]) {
			t.Errorf("index not strictly increasing at %d: %v >= %v", i, index[i-1], index[i])
		}
	}

	aligned := temp.AlignTo(index)
	if aligned[0] != 20 {
		t.Errorf("aligned[0] = %v, want 20", aligned[0])
	}
	if !math.IsNaN(aligned[1]) {
		t.Errorf("aligned[1] = %v, want NaN for uncovered timestamp", aligned[1])
	}
	if aligned[2] != 21 {
		t.Errorf("aligned[2] = %v, want 21", aligned[2])
	}
}
