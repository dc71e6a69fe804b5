package features

import (
	"math"
	"testing"

	"aquaculture-platform/internal/models"
)

func TestStandardScaler(t *testing.T) {
	s := &StandardScaler{}
	// mean = 3, population std = sqrt(2)
	s.Fit([]float64{1, 2, 3, 4, 5})

	if !s.Fitted() {
		t.Fatal("Fitted() = false after Fit")
	}

	got := s.Transform([]float64{3, 5, math.NaN(), math.Inf(1)})
	if got[0] != 0 {
		t.Errorf("Transform(mean) = %v, want 0", got[0])
	}
	want := 2 / math.Sqrt(2)
	if math.Abs(got[1]-want) > 1e-12 {
		t.Errorf("Transform(5) = %v, want %v", got[1], want)
	}
	if !math.IsNaN(got[2]) {
		t.Errorf("Transform(NaN) = %v, want NaN", got[2])
	}
	if !math.IsInf(got[3], 1) {
		t.Errorf("Transform(+Inf) = %v, want +Inf", got[3])
	}

	// Refitting is a no-op once parameters are locked.
	s.Fit([]float64{100, 200, 300})
	again := s.Transform([]float64{3})
	if again[0] != 0 {
		t.Errorf("Transform(3) after refit attempt = %v, want 0", again[0])
	}
}

func TestStandardScaler_ZeroStd(t *testing.T) {
	s := &StandardScaler{}
	s.Fit([]float64{7, 7, 7})

	got := s.Transform([]float64{7, 8})
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("Transform with zero std = %v, want [0 1]", got)
	}
}

func TestStandardScaler_AllNonFinite(t *testing.T) {
	s := &StandardScaler{}
	s.Fit([]float64{math.NaN(), math.Inf(-1)})

	if s.Fitted() {
		t.Error("Fitted() = true after fitting on no finite values")
	}
	got := s.Transform([]float64{5})
	if got[0] != 5 {
		t.Errorf("unfitted Transform(5) = %v, want 5 (pass-through)", got[0])
	}
}

func TestRobustScaler(t *testing.T) {
	s := &RobustScaler{}
	// median = 3, q25 = 2, q75 = 4, iqr = 2
	s.Fit([]float64{1, 2, 3, 4, 5})

	got := s.Transform([]float64{3, 5, 1})
	want := []float64{0, 1, -1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Transform[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRobustScaler_OutlierInsensitive(t *testing.T) {
	s := &RobustScaler{}
	s.Fit([]float64{1, 2, 3, 4, 1000})

	// The outlier shifts the median only to 3 and the IQR to 2; the bulk of
	// the data still maps near zero.
	got := s.Transform([]float64{3})
	if got[0] != 0 {
		t.Errorf("Transform(median) = %v, want 0", got[0])
	}
}

func TestRobustScaler_ZeroIQR(t *testing.T) {
	s := &RobustScaler{}
	s.Fit([]float64{5, 5, 5, 5})

	got := s.Transform([]float64{5, 6})
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("Transform with zero IQR = %v, want [0 1]", got)
	}
}

func TestNewScalerSet(t *testing.T) {
	set := NewScalerSet()

	if _, ok := set[models.SensorTemperature].(*RobustScaler); !ok {
		t.Errorf("temperature scaler = %T, want *RobustScaler", set[models.SensorTemperature])
	}
	if _, ok := set[models.SensorDissolvedOxygen].(*RobustScaler); !ok {
		t.Errorf("oxygen scaler = %T, want *RobustScaler", set[models.SensorDissolvedOxygen])
	}
	if _, ok := set[models.SensorPH].(*StandardScaler); !ok {
		t.Errorf("pH scaler = %T, want *StandardScaler", set[models.SensorPH])
	}
	if _, ok := set[models.SensorSalinity].(*StandardScaler); !ok {
		t.Errorf("salinity scaler = %T, want *StandardScaler", set[models.SensorSalinity])
	}
}
