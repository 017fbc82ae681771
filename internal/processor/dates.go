package processor

import (
	"strings"
	"time"
)

// dateLayouts is the fixed priority list of accepted date formats. The
// first layout that parses at least one value wins; values it cannot parse
// stay missing for the imputation stage.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	"20060102",
}

// automaticLayouts is the wider per-value fallback used when no single
// layout from the priority list makes progress.
var automaticLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	"20060102",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// parseDates tries each layout in priority order and accepts the first one
// that parses any value at all, falling back to per-value automatic
// parsing as a last resort. Returns a DateParseError only when nothing
// parses a single row.
func (p *Processor) parseDates(raw []string) ([]time.Time, []bool, string, error) {
	n := len(raw)

	for _, layout := range dateLayouts {
		dates := make([]time.Time, n)
		ok := make([]bool, n)
		parsed := 0
		for i, s := range raw {
			t, err := time.Parse(layout, strings.TrimSpace(s))
			if err == nil {
				dates[i] = t
				ok[i] = true
				parsed++
			}
		}
		if parsed > 0 {
			if parsed < n {
				p.logger.Warn("Unparseable dates left missing",
					"format", layout, "count", n-parsed)
			}
			return dates, ok, layout, nil
		}
	}

	// Automatic fallback: best-effort layout per value
	dates := make([]time.Time, n)
	ok := make([]bool, n)
	parsed := 0
	for i, s := range raw {
		trimmed := strings.TrimSpace(s)
		for _, layout := range automaticLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				dates[i] = t
				ok[i] = true
				parsed++
				break
			}
		}
	}
	if parsed == 0 {
		return nil, nil, "", &DateParseError{}
	}
	if parsed < n {
		p.logger.Warn("Unparseable dates left missing",
			"format", "automatic", "count", n-parsed)
	}
	return dates, ok, "automatic", nil
}
