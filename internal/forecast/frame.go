package forecast

import (
	"sort"
	"time"
)

// RegressorSpec describes one exogenous regressor: its column name, the
// prior scale controlling how strongly it is regularized during fitting
// (larger scale, weaker shrinkage), and whether the column is standardized
// before fitting.
type RegressorSpec struct {
	Name        string
	PriorScale  float64
	Standardize bool
}

// Frame is a design matrix keyed by column name: timestamps, an optional
// target series (training frames only), and one column per registered
// regressor.
type Frame struct {
	Times   []time.Time
	Target  []float64
	Columns map[string][]float64
}

// NewFrame returns an empty frame with n pre-allocated rows.
func NewFrame(n int) *Frame {
	return &Frame{
		Times:   make([]time.Time, 0, n),
		Target:  make([]float64, 0, n),
		Columns: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Times)
}

// Column returns the named column and whether it exists with the right
// length.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.Columns[name]
	return col, ok && len(col) == f.Len()
}

// ColumnNames returns the column names in sorted order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, 0, len(f.Columns))
	for name := range f.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// medianSpacing returns the median gap between consecutive timestamps,
// falling back to one hour when fewer than two rows exist.
func medianSpacing(times []time.Time) time.Duration {
	if len(times) < 2 {
		return time.Hour
	}
	gaps := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		if d := times[i].Sub(times[i-1]); d > 0 {
			gaps = append(gaps, d)
		}
	}
	if len(gaps) == 0 {
		return time.Hour
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps[len(gaps)/2]
}
