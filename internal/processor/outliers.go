package processor

import (
	"math"
)

// OutlierReport summarizes the two-tier IQR pass over visitor counts.
type OutlierReport struct {
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	FlagLower  float64 `json:"flag_lower"`
	FlagUpper  float64 `json:"flag_upper"`
	Flagged    int     `json:"flagged"`
	CappedLow  int     `json:"capped_low"`
	CappedHigh int     `json:"capped_high"`
	TotalRows  int     `json:"total_rows"`
}

// DetectAndCapOutliers applies the two-tier IQR policy to visitor counts:
// values outside the flag bounds (flag multiplier, default 1.5x IQR) are
// counted and logged but left alone; only values beyond the cap bounds
// (cap multiplier, default 3x IQR) are pulled back to the nearer flag
// bound, with the lower cap floored at zero. The two tiers are distinct
// on purpose: collapsing them to one threshold changes which values move.
func (p *Processor) DetectAndCapOutliers(t *Table) (*Table, OutlierReport) {
	out := t.Clone()

	values := make([]float64, 0, out.Len())
	for _, v := range out.Visitors {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}

	report := OutlierReport{TotalRows: out.Len()}
	if len(values) == 0 {
		return out, report
	}

	report.Q1 = percentile(values, 25)
	report.Q3 = percentile(values, 75)
	report.IQR = report.Q3 - report.Q1

	flagMult := p.cfg.OutlierFlagMultiplier
	capMult := p.cfg.OutlierCapMultiplier
	if flagMult <= 0 {
		flagMult = 1.5
	}
	if capMult < flagMult {
		capMult = 2 * flagMult
	}

	report.FlagLower = report.Q1 - flagMult*report.IQR
	report.FlagUpper = report.Q3 + flagMult*report.IQR
	capLower := report.Q1 - capMult*report.IQR
	capUpper := report.Q3 + capMult*report.IQR

	// Lower cap target floored at zero: visitor counts cannot be negative
	safeLower := math.Max(0, report.FlagLower)

	for i, v := range out.Visitors {
		if math.IsNaN(v) {
			continue
		}
		if v < report.FlagLower || v > report.FlagUpper {
			report.Flagged++
		}
		if v < capLower {
			out.Visitors[i] = safeLower
			report.CappedLow++
		} else if v > capUpper {
			out.Visitors[i] = report.FlagUpper
			report.CappedHigh++
		}
	}

	if report.Flagged > 0 {
		p.logger.Warn("Detected outliers in visitor data",
			"flagged", report.Flagged,
			"capped_low", report.CappedLow,
			"capped_high", report.CappedHigh,
			"q1", report.Q1,
			"q3", report.Q3,
			"iqr", report.IQR,
			"normal_range_low", report.FlagLower,
			"normal_range_high", report.FlagUpper)
	} else {
		p.logger.Info("No outliers detected in visitor data")
	}

	return out, report
}
