// Package dataset provides the value types shared by the data processing
// pipeline and the forecast model: hourly visitor observations and
// prediction records with interval bounds.
package dataset

import (
	"math"
	"sort"
	"time"
)

// Observation is one cleaned row of the historical visitor series.
type Observation struct {
	Timestamp    time.Time
	VisitorCount float64
	FestivalFlag bool
	Weather      string
}

// Dataset is an ordered sequence of observations sorted by timestamp.
type Dataset []Observation

// Sort orders the dataset by timestamp ascending.
func (d Dataset) Sort() {
	sort.Slice(d, func(i, j int) bool {
		return d[i].Timestamp.Before(d[j].Timestamp)
	})
}

// Len returns the number of observations.
func (d Dataset) Len() int {
	return len(d)
}

// Times extracts just the timestamps from the dataset.
func (d Dataset) Times() []time.Time {
	times := make([]time.Time, len(d))
	for i, o := range d {
		times[i] = o.Timestamp
	}
	return times
}

// Values extracts just the visitor counts from the dataset.
func (d Dataset) Values() []float64 {
	values := make([]float64, len(d))
	for i, o := range d {
		values[i] = o.VisitorCount
	}
	return values
}

// Mean calculates the mean visitor count.
func (d Dataset) Mean() float64 {
	if len(d) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range d {
		sum += o.VisitorCount
	}
	return sum / float64(len(d))
}

// StdDev calculates the sample standard deviation of visitor counts.
func (d Dataset) StdDev() float64 {
	if len(d) < 2 {
		return 0
	}
	mean := d.Mean()
	sumSq := 0.0
	for _, o := range d {
		diff := o.VisitorCount - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(d)-1))
}

// Forecast is one prediction record. Bounds always satisfy
// 0 <= LowerBound <= PredictedValue <= UpperBound.
type Forecast struct {
	Timestamp      time.Time
	PredictedValue float64
	LowerBound     float64
	UpperBound     float64
}
