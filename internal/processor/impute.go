package processor

import (
	"math"
)

// ImputeReport records every fill action per column so a run is auditable.
type ImputeReport struct {
	DroppedRows          int `json:"dropped_rows"`
	FilledDates          int `json:"filled_dates"`
	FilledHours          int `json:"filled_hours"`
	InterpolatedVisitors int `json:"interpolated_visitors"`
	MedianFilledVisitors int `json:"median_filled_visitors"`
	FilledFestival       int `json:"filled_festival"`
	FilledWeather        int `json:"filled_weather"`
}

// Total returns the number of individual fill actions.
func (r ImputeReport) Total() int {
	return r.FilledDates + r.FilledHours + r.InterpolatedVisitors +
		r.MedianFilledVisitors + r.FilledFestival + r.FilledWeather
}

// Impute fills missing values with per-column strategies: dates are
// forward-filled (or the rows dropped when more than the configured
// fraction is missing), hours take the mode (12 when no mode exists),
// visitor counts are interpolated in time order then median-filled,
// festival flags default to false, weather takes the mode or "unknown".
// The input table is never modified.
func (p *Processor) Impute(t *Table) (*Table, ImputeReport, error) {
	out := t.Clone()
	var report ImputeReport

	p.imputeDates(out, &report)
	p.imputeHours(out, &report)
	p.imputeVisitors(out, &report)
	p.imputeFestival(out, &report)
	p.imputeWeather(out, &report)

	if report.Total() > 0 || report.DroppedRows > 0 {
		p.logger.Info("Missing value handling summary",
			"dropped_rows", report.DroppedRows,
			"filled_dates", report.FilledDates,
			"filled_hours", report.FilledHours,
			"interpolated_visitors", report.InterpolatedVisitors,
			"median_filled_visitors", report.MedianFilledVisitors,
			"filled_festival", report.FilledFestival,
			"filled_weather", report.FilledWeather)
	} else {
		p.logger.Info("No missing values found")
	}

	return out, report, nil
}

func (p *Processor) imputeDates(t *Table, report *ImputeReport) {
	missing := 0
	for _, ok := range t.DateOK {
		if !ok {
			missing++
		}
	}
	if missing == 0 {
		return
	}

	fraction := float64(missing) / float64(t.Len())
	if fraction > p.cfg.MaxMissingDateFraction {
		p.logger.Warn("High fraction of missing dates, dropping rows",
			"missing", missing,
			"fraction", fraction)
		drop := make([]bool, t.Len())
		for i, ok := range t.DateOK {
			drop[i] = !ok
		}
		t.dropRows(drop)
		report.DroppedRows += missing
		return
	}

	// Forward-fill; leading rows with no prior value to carry are dropped
	filled := 0
	leading := make([]bool, t.Len())
	for i := 0; i < t.Len(); i++ {
		if t.DateOK[i] {
			continue
		}
		if i > 0 && t.DateOK[i-1] {
			t.Dates[i] = t.Dates[i-1]
			t.DateOK[i] = true
			filled++
		} else {
			leading[i] = true
		}
	}
	report.FilledDates += filled

	dropCount := 0
	for _, d := range leading {
		if d {
			dropCount++
		}
	}
	if dropCount > 0 {
		t.dropRows(leading)
		report.DroppedRows += dropCount
	}
}

func (p *Processor) imputeHours(t *Table, report *ImputeReport) {
	fill, ok := modeFloat(t.Hours)
	if !ok {
		fill = 12 // noon default when no mode exists
	}
	for i, h := range t.Hours {
		if math.IsNaN(h) {
			t.Hours[i] = fill
			report.FilledHours++
		}
	}
}

func (p *Processor) imputeVisitors(t *Table, report *ImputeReport) {
	hasMissing := false
	for _, v := range t.Visitors {
		if math.IsNaN(v) {
			hasMissing = true
			break
		}
	}
	if !hasMissing {
		return
	}

	// Interpolation requires time order
	t.sortByTime()

	// Linear interpolation over the merged timestamps for interior gaps
	for i := 0; i < t.Len(); i++ {
		if !math.IsNaN(t.Visitors[i]) || !t.DateOK[i] {
			continue
		}
		prev, next := -1, -1
		for j := i - 1; j >= 0; j-- {
			if !math.IsNaN(t.Visitors[j]) && t.DateOK[j] {
				prev = j
				break
			}
		}
		for j := i + 1; j < t.Len(); j++ {
			if !math.IsNaN(t.Visitors[j]) && t.DateOK[j] {
				next = j
				break
			}
		}
		if prev < 0 || next < 0 {
			continue
		}

		t0 := t.Timestamp(prev)
		t1 := t.Timestamp(next)
		span := t1.Sub(t0).Seconds()
		if span <= 0 {
			t.Visitors[i] = t.Visitors[prev]
		} else {
			frac := t.Timestamp(i).Sub(t0).Seconds() / span
			t.Visitors[i] = t.Visitors[prev] + frac*(t.Visitors[next]-t.Visitors[prev])
		}
		report.InterpolatedVisitors++
	}

	// Median-fill the remainder (leading/trailing gaps)
	med := median(t.Visitors)
	for i, v := range t.Visitors {
		if math.IsNaN(v) {
			t.Visitors[i] = med
			report.MedianFilledVisitors++
		}
	}
}

func (p *Processor) imputeFestival(t *Table, report *ImputeReport) {
	for i, ok := range t.FestivalOK {
		if !ok {
			t.Festival[i] = false
			t.FestivalOK[i] = true
			report.FilledFestival++
		}
	}
}

func (p *Processor) imputeWeather(t *Table, report *ImputeReport) {
	fill, ok := modeString(t.Weather)
	if !ok {
		fill = "unknown"
	}
	for i, w := range t.Weather {
		if w == "" {
			t.Weather[i] = fill
			report.FilledWeather++
		}
	}
}
