// Package processor turns a raw, possibly malformed visitor CSV into a
// clean, model-ready table: load, validate, parse, impute, de-outlier.
// Each stage either returns a new table or fails with a typed error; no
// stage partially mutates its input.
package processor

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/utils"
)

var requiredColumns = []string{"date", "hour", "visitors", "festival_flag", "weather"}

// Processor runs the cleaning pipeline for historical visitor data
type Processor struct {
	logger *logging.Logger
	cfg    config.ProcessingConfig
}

// New creates a Processor with the given thresholds
func New(logger *logging.Logger, cfg config.ProcessingConfig) *Processor {
	return &Processor{
		logger: logger,
		cfg:    cfg,
	}
}

// Load reads a visitor CSV into memory and returns the raw table plus the
// record count. The file must exist, carry a .csv extension, parse as CSV,
// contain at least one data row, and include every required column.
func (p *Processor) Load(path string) (*RawTable, int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, 0, &FormatError{Path: path, Reason: "file not found", Err: err}
	}

	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, 0, &FormatError{Path: path, Reason: "file must be a CSV file"}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &FormatError{Path: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, &FormatError{Path: path, Reason: "error parsing CSV file", Err: err}
	}

	if len(records) == 0 {
		return nil, 0, &FormatError{Path: path, Reason: "CSV file is empty"}
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, 0, &SchemaError{Missing: missing}
	}

	rows := records[1:]
	if len(rows) == 0 {
		return nil, 0, &FormatError{Path: path, Reason: "CSV file has no data rows"}
	}

	rt := &RawTable{
		Date:     make([]string, len(rows)),
		Hour:     make([]string, len(rows)),
		Visitors: make([]string, len(rows)),
		Festival: make([]string, len(rows)),
		Weather:  make([]string, len(rows)),
	}
	for i, rec := range rows {
		rt.Date[i] = rec[colIdx["date"]]
		rt.Hour[i] = rec[colIdx["hour"]]
		rt.Visitors[i] = rec[colIdx["visitors"]]
		rt.Festival[i] = rec[colIdx["festival_flag"]]
		rt.Weather[i] = rec[colIdx["weather"]]
	}

	p.logger.Info("Loaded CSV",
		"path", path,
		"rows", len(rows),
		"columns", len(header))

	return rt, len(rows), nil
}

// Validate checks types and ranges for every required column and collects
// every violation before failing once with the combined list. The
// collect-then-report policy spares callers from fixing one error per run.
func (p *Processor) Validate(rt *RawTable) error {
	var violations []string

	// Hour: numeric, 0-23
	invalidHours := uniqueTokens(rt.Hour, func(s string) bool {
		_, ok := utils.ParseFloatToken(s)
		return !ok
	})
	if len(invalidHours) > 0 {
		violations = append(violations, fmt.Sprintf("invalid hour values found: %s", strings.Join(invalidHours, ", ")))
	}
	outOfRange := uniqueTokens(rt.Hour, func(s string) bool {
		h, ok := utils.ParseFloatToken(s)
		return ok && !math.IsNaN(h) && (h < 0 || h > 23)
	})
	if len(outOfRange) > 0 {
		violations = append(violations, fmt.Sprintf("hour values outside 0-23 range: %s", strings.Join(outOfRange, ", ")))
	}

	// Visitors: numeric, non-negative (NaN tokens allowed, imputed later)
	invalidVisitors := uniqueTokens(rt.Visitors, func(s string) bool {
		_, ok := utils.ParseFloatToken(s)
		return !ok
	})
	if len(invalidVisitors) > 0 {
		violations = append(violations, fmt.Sprintf("invalid visitor count values: %s", strings.Join(invalidVisitors, ", ")))
	}
	negatives := 0
	for _, s := range rt.Visitors {
		if v, ok := utils.ParseFloatToken(s); ok && !math.IsNaN(v) && v < 0 {
			negatives++
		}
	}
	if negatives > 0 {
		violations = append(violations, fmt.Sprintf("found %d negative visitor count values", negatives))
	}

	// Festival flag: fixed truthy/falsy token set
	invalidFlags := uniqueTokens(rt.Festival, func(s string) bool {
		return !utils.IsBoolToken(s)
	})
	if len(invalidFlags) > 0 {
		violations = append(violations, fmt.Sprintf("invalid festival_flag values: %s", strings.Join(invalidFlags, ", ")))
	}

	// Weather: non-empty string
	emptyWeather := 0
	for _, s := range rt.Weather {
		if strings.TrimSpace(s) == "" {
			emptyWeather++
		}
	}
	if emptyWeather > 0 {
		violations = append(violations, fmt.Sprintf("found %d empty weather values", emptyWeather))
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	p.logger.Info("Data validation passed")
	return nil
}

// Preprocess converts the raw table into typed columns: dates parsed with
// the format fallback chain, hours and visitors coerced to numbers with
// negative visitor counts clipped to zero, festival tokens mapped to
// booleans, and weather trimmed and lower-cased.
func (p *Processor) Preprocess(rt *RawTable) (*Table, error) {
	dates, dateOK, layout, err := p.parseDates(rt.Date)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Parsed dates", "format", layout)

	n := rt.Len()
	t := &Table{
		Dates:      dates,
		DateOK:     dateOK,
		Hours:      make([]float64, n),
		Visitors:   make([]float64, n),
		Festival:   make([]bool, n),
		FestivalOK: make([]bool, n),
		Weather:    make([]string, n),
	}

	unmappableFlags := 0
	for i := 0; i < n; i++ {
		if h, ok := utils.ParseFloatToken(rt.Hour[i]); ok {
			t.Hours[i] = math.Trunc(h)
		} else {
			t.Hours[i] = math.NaN()
		}

		if v, ok := utils.ParseFloatToken(rt.Visitors[i]); ok {
			if v < 0 {
				v = 0
			}
			t.Visitors[i] = v
		} else {
			t.Visitors[i] = math.NaN()
		}

		token := strings.TrimSpace(rt.Festival[i])
		if token == "" {
			t.FestivalOK[i] = false
		} else if flag, ok := utils.ParseBoolToken(token); ok {
			t.Festival[i] = flag
			t.FestivalOK[i] = true
		} else {
			// Unmappable tokens become false, matching the validation set
			t.Festival[i] = false
			t.FestivalOK[i] = true
			unmappableFlags++
		}

		t.Weather[i] = strings.ToLower(strings.TrimSpace(rt.Weather[i]))
	}

	if unmappableFlags > 0 {
		p.logger.Warn("Unmappable festival_flag tokens set to false", "count", unmappableFlags)
	}

	p.logger.Info("Data preprocessing completed", "rows", n)
	return t, nil
}

// uniqueTokens returns the distinct non-blank tokens matching pred, in
// first-seen order.
func uniqueTokens(col []string, pred func(string) bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range col {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		if pred(s) && !seen[trimmed] {
			seen[trimmed] = true
			out = append(out, trimmed)
		}
	}
	return out
}
