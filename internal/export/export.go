// Package export shapes forecast output into the published JSON document
// and writes it to disk.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/dataset"
	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/utils"
)

// timestampLayout matches the ISO 8601 timestamps in the published schema.
const timestampLayout = "2006-01-02T15:04:05"

// Metadata describes the run that produced the predictions.
type Metadata struct {
	GeneratedAt      string           `json:"generated_at"`
	ModelType        string           `json:"model_type"`
	TotalPredictions int              `json:"total_predictions"`
	PredictionPeriod PredictionPeriod `json:"prediction_period"`
}

// PredictionPeriod is the closed timestamp range covered by the document.
type PredictionPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ConfidenceInterval carries the interval bounds for one prediction.
type ConfidenceInterval struct {
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// Prediction is one published forecast row. ActualVisitors is present only
// when a matching historical observation exists.
type Prediction struct {
	Timestamp          string              `json:"timestamp"`
	PredictedVisitors  float64             `json:"predicted_visitors"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval,omitempty"`
	ActualVisitors     *float64            `json:"actual_visitors,omitempty"`
}

// Document is the full export payload.
type Document struct {
	Metadata    Metadata     `json:"metadata"`
	Predictions []Prediction `json:"predictions"`
}

// Exporter writes prediction documents.
type Exporter struct {
	logger *logging.Logger
	cfg    config.ExportConfig
	now    func() time.Time
}

// New creates an Exporter.
func New(logger *logging.Logger, cfg config.ExportConfig) *Exporter {
	return &Exporter{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// FormatPredictions builds the export document from forecasts, attaching
// actual visitor counts where the historical data covers a predicted
// timestamp. Values are rounded to two decimals.
func (e *Exporter) FormatPredictions(forecasts []dataset.Forecast, historical dataset.Dataset, modelType string) *Document {
	actuals := make(map[time.Time]float64, len(historical))
	for _, o := range historical {
		actuals[o.Timestamp] = o.VisitorCount
	}

	predictions := make([]Prediction, len(forecasts))
	for i, fc := range forecasts {
		pred := Prediction{
			Timestamp:         fc.Timestamp.Format(timestampLayout),
			PredictedVisitors: utils.Round2(fc.PredictedValue),
		}
		if e.cfg.IncludeConfidenceIntervals {
			pred.ConfidenceInterval = &ConfidenceInterval{
				LowerBound: utils.Round2(fc.LowerBound),
				UpperBound: utils.Round2(fc.UpperBound),
			}
		}
		if actual, ok := actuals[fc.Timestamp]; ok {
			rounded := utils.Round2(actual)
			pred.ActualVisitors = &rounded
		}
		predictions[i] = pred
	}

	doc := &Document{
		Metadata: Metadata{
			GeneratedAt:      e.now().Format(timestampLayout),
			ModelType:        modelType,
			TotalPredictions: len(predictions),
		},
		Predictions: predictions,
	}
	if len(forecasts) > 0 {
		doc.Metadata.PredictionPeriod = PredictionPeriod{
			Start: forecasts[0].Timestamp.Format(timestampLayout),
			End:   forecasts[len(forecasts)-1].Timestamp.Format(timestampLayout),
		}
	}
	return doc
}

// Save writes the document as indented JSON, creating parent directories
// as needed.
func (e *Exporter) Save(doc *Document, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ExportError{Op: "create output directory", Path: path, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &ExportError{Op: "create output file", Path: path, Err: err}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	indent := e.cfg.Indent
	if indent <= 0 {
		indent = 2
	}
	enc.SetIndent("", strings.Repeat(" ", indent))
	if err := enc.Encode(doc); err != nil {
		return &ExportError{Op: "encode predictions", Path: path, Err: err}
	}

	e.logger.Info("Exported predictions",
		"path", path,
		"predictions", len(doc.Predictions))
	return nil
}

// ValidateOutput re-reads a saved document and checks it parses back into
// the expected shape with a consistent prediction count.
func (e *Exporter) ValidateOutput(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ExportError{Op: "read output file", Path: path, Err: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ExportError{Op: "reparse output file", Path: path, Err: err}
	}

	if doc.Metadata.TotalPredictions != len(doc.Predictions) {
		return &ExportError{
			Op:   "validate output file",
			Path: path,
			Err:  fmt.Errorf("metadata reports %d predictions, document has %d", doc.Metadata.TotalPredictions, len(doc.Predictions)),
		}
	}
	return nil
}
