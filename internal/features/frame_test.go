package features

import (
	"math"
	"testing"
	"time"
)

func TestFrame_ColumnsAndOrder(t *testing.T) {
	f := NewFrame(hourlyIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3, time.Hour))

	f.SetFloat("a", []float64{1, 2, 3})
	f.SetLabel("s", []string{"x", "y", "z"})
	f.SetFloat("b", []float64{4, 5, 6})

	got := f.Columns()
	want := []string{"a", "s", "b"}
	if len(got) != len(want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Columns()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	floats := f.FloatColumns()
	if len(floats) != 2 || floats[0] != "a" || floats[1] != "b" {
		t.Errorf("FloatColumns() = %v, want [a b]", floats)
	}

	// Replacing a column must not duplicate it in the order.
	f.SetFloat("a", []float64{7, 8, 9})
	if len(f.Columns()) != 3 {
		t.Errorf("Columns() after replace = %v, want 3 entries", f.Columns())
	}
}

func TestFrame_ImputeMedian(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{
			name:   "odd count of finite values",
			values: []float64{1, nan, 2, 3, nan},
			want:   []float64{1, 2, 2, 3, 2},
		},
		{
			name:   "even count averages middle pair",
			values: []float64{1, nan, 2, 3, 4},
			want:   []float64{1, 2.5, 2, 3, 4},
		},
		{
			name:   "infinities treated as missing",
			values: []float64{math.Inf(1), 5, math.Inf(-1), 5, nan},
			want:   []float64{5, 5, 5, 5, 5},
		},
		{
			name:   "no missing values untouched",
			values: []float64{1, 2, 3, 4, 5},
			want:   []float64{1, 2, 3, 4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(hourlyIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 5, time.Hour))
			f.SetFloat("col", tt.values)
			f.ImputeMedian()

			got, ok := f.Float("col")
			if !ok {
				t.Fatal("column dropped unexpectedly")
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("value[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFrame_ImputeMedianDropsEmptyColumns(t *testing.T) {
	nan := math.NaN()
	f := NewFrame(hourlyIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3, time.Hour))
	f.SetFloat("all_nan", []float64{nan, nan, nan})
	f.SetFloat("kept", []float64{1, nan, 3})

	f.ImputeMedian()

	if f.HasColumn("all_nan") {
		t.Error("column with no finite values should be dropped")
	}
	if !f.HasColumn("kept") {
		t.Error("column with finite values should be kept")
	}

	kept, _ := f.Float("kept")
	for i, v := range kept {
		if math.IsNaN(v) {
			t.Errorf("value[%d] is NaN after imputation", i)
		}
	}
}
