package processor

import (
	"math"
	"sort"
	"time"

	"github.com/templecast/templecast/internal/dataset"
)

// RawTable holds the untyped CSV columns exactly as loaded.
type RawTable struct {
	Date     []string
	Hour     []string
	Visitors []string
	Festival []string
	Weather  []string
}

// Len returns the number of rows.
func (rt *RawTable) Len() int {
	return len(rt.Date)
}

// Table holds the typed columns produced by preprocessing. Missing values
// are NaN for numeric columns, the zero time plus DateOK=false for dates,
// FestivalOK=false for the festival flag, and "" for weather.
type Table struct {
	Dates      []time.Time
	DateOK     []bool
	Hours      []float64
	Visitors   []float64
	Festival   []bool
	FestivalOK []bool
	Weather    []string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Dates)
}

// Clone returns a deep copy. Cleaning stages operate on clones so a failed
// stage never leaves the caller with a half-mutated table.
func (t *Table) Clone() *Table {
	c := &Table{
		Dates:      make([]time.Time, len(t.Dates)),
		DateOK:     make([]bool, len(t.DateOK)),
		Hours:      make([]float64, len(t.Hours)),
		Visitors:   make([]float64, len(t.Visitors)),
		Festival:   make([]bool, len(t.Festival)),
		FestivalOK: make([]bool, len(t.FestivalOK)),
		Weather:    make([]string, len(t.Weather)),
	}
	copy(c.Dates, t.Dates)
	copy(c.DateOK, t.DateOK)
	copy(c.Hours, t.Hours)
	copy(c.Visitors, t.Visitors)
	copy(c.Festival, t.Festival)
	copy(c.FestivalOK, t.FestivalOK)
	copy(c.Weather, t.Weather)
	return c
}

// Timestamp merges date and hour into a single instant for row i.
// Only valid when the row's date is set and the hour is not missing.
func (t *Table) Timestamp(i int) time.Time {
	h := t.Hours[i]
	if math.IsNaN(h) {
		return t.Dates[i]
	}
	return t.Dates[i].Add(time.Duration(int(h)) * time.Hour)
}

// sortByTime orders rows by merged timestamp; rows with missing dates sink
// to the end in their original relative order.
func (t *Table) sortByTime() {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if !t.DateOK[ia] || !t.DateOK[ib] {
			return t.DateOK[ia] && !t.DateOK[ib]
		}
		return t.Timestamp(ia).Before(t.Timestamp(ib))
	})
	t.reorder(idx)
}

func (t *Table) reorder(idx []int) {
	dates := make([]time.Time, len(idx))
	dateOK := make([]bool, len(idx))
	hours := make([]float64, len(idx))
	visitors := make([]float64, len(idx))
	festival := make([]bool, len(idx))
	festivalOK := make([]bool, len(idx))
	weather := make([]string, len(idx))
	for pos, i := range idx {
		dates[pos] = t.Dates[i]
		dateOK[pos] = t.DateOK[i]
		hours[pos] = t.Hours[i]
		visitors[pos] = t.Visitors[i]
		festival[pos] = t.Festival[i]
		festivalOK[pos] = t.FestivalOK[i]
		weather[pos] = t.Weather[i]
	}
	t.Dates = dates
	t.DateOK = dateOK
	t.Hours = hours
	t.Visitors = visitors
	t.Festival = festival
	t.FestivalOK = festivalOK
	t.Weather = weather
}

// dropRows removes the rows whose indices are marked true.
func (t *Table) dropRows(drop []bool) {
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if !drop[i] {
			keep = append(keep, i)
		}
	}
	t.reorder(keep)
}

// Observations converts the cleaned table into a sorted dataset. Rows that
// still lack a date or hour after imputation are skipped.
func (t *Table) Observations() dataset.Dataset {
	obs := make(dataset.Dataset, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if !t.DateOK[i] || math.IsNaN(t.Hours[i]) || math.IsNaN(t.Visitors[i]) {
			continue
		}
		obs = append(obs, dataset.Observation{
			Timestamp:    t.Timestamp(i),
			VisitorCount: t.Visitors[i],
			FestivalFlag: t.Festival[i],
			Weather:      t.Weather[i],
		})
	}
	obs.Sort()
	return obs
}
