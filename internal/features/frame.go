package features

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame is a wide feature table assembled column by column. The column set is
// dynamic: it depends on which sensor types are present in the data and which
// tank parameters are configured, so the schema is only fixed when rows are
// materialized at the end of the pipeline.
//
// Numeric columns are float64 slices aligned to the timestamp index; NaN marks
// a missing value until the imputation pass. Categorical columns (such as the
// season name) are kept separately as string slices.
type Frame struct {
	index  []time.Time
	order  []string
	floats map[string][]float64
	labels map[string][]string
}

// NewFrame creates an empty frame over the given timestamp index.
func NewFrame(index []time.Time) *Frame {
	return &Frame{
		index:  index,
		floats: make(map[string][]float64),
		labels: make(map[string][]string),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.index)
}

// Index returns the timestamp index.
func (f *Frame) Index() []time.Time {
	return f.index
}

// SetFloat adds or replaces a numeric column. The column length must match
// the frame index; a mismatch is a programming error.
func (f *Frame) SetFloat(name string, values []float64) {
	if len(values) != len(f.index) {
		panic(fmt.Sprintf("features: column %s has %d values, frame has %d rows", name, len(values), len(f.index)))
	}
	if _, exists := f.floats[name]; !exists {
		if _, isLabel := f.labels[name]; !isLabel {
			f.order = append(f.order, name)
		}
	}
	f.floats[name] = values
}

// SetConstFloat adds a numeric column holding the same value in every row.
func (f *Frame) SetConstFloat(name string, value float64) {
	values := make([]float64, len(f.index))
	for i := range values {
		values[i] = value
	}
	f.SetFloat(name, values)
}

// SetLabel adds or replaces a categorical column.
func (f *Frame) SetLabel(name string, values []string) {
	if len(values) != len(f.index) {
		panic(fmt.Sprintf("features: column %s has %d values, frame has %d rows", name, len(values), len(f.index)))
	}
	if _, exists := f.labels[name]; !exists {
		if _, isFloat := f.floats[name]; !isFloat {
			f.order = append(f.order, name)
		}
	}
	f.labels[name] = values
}

// Float returns a numeric column by name.
func (f *Frame) Float(name string) ([]float64, bool) {
	v, ok := f.floats[name]
	return v, ok
}

// Label returns a categorical column by name.
func (f *Frame) Label(name string) ([]string, bool) {
	v, ok := f.labels[name]
	return v, ok
}

// HasColumn reports whether a column of either kind exists.
func (f *Frame) HasColumn(name string) bool {
	if _, ok := f.floats[name]; ok {
		return true
	}
	_, ok := f.labels[name]
	return ok
}

// Columns returns all column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// FloatColumns returns the names of numeric columns in insertion order.
func (f *Frame) FloatColumns() []string {
	out := make([]string, 0, len(f.floats))
	for _, name := range f.order {
		if _, ok := f.floats[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// dropColumn removes a column of either kind.
func (f *Frame) dropColumn(name string) {
	delete(f.floats, name)
	delete(f.labels, name)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// ImputeMedian replaces every non-finite numeric value with the median of the
// column's finite values. This is the single shared imputation pass over the
// full result; columns with no finite values at all carry no information and
// are dropped.
func (f *Frame) ImputeMedian() {
	var empty []string

	for name, values := range f.floats {
		finite := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				finite = append(finite, v)
			}
		}

		if len(finite) == 0 {
			empty = append(empty, name)
			continue
		}
		if len(finite) == len(values) {
			continue
		}

		med := median(finite)
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values[i] = med
			}
		}
	}

	for _, name := range empty {
		f.dropColumn(name)
	}
}

// median returns the median of values, averaging the two middle elements for
// even lengths. The input slice is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
