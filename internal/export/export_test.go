package export

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/dataset"
	"github.com/templecast/templecast/internal/logging"
)

func newTestExporter(includeIntervals bool) *Exporter {
	e := New(logging.NewWithWriter(io.Discard, zerolog.Disabled), config.ExportConfig{
		Indent:                     2,
		IncludeConfidenceIntervals: includeIntervals,
	})
	e.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func sampleForecasts() []dataset.Forecast {
	base := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	return []dataset.Forecast{
		{Timestamp: base, PredictedValue: 123.456, LowerBound: 100.111, UpperBound: 150.999},
		{Timestamp: base.Add(time.Hour), PredictedValue: 130.0, LowerBound: 104.5, UpperBound: 160.25},
	}
}

func TestFormatPredictions(t *testing.T) {
	e := newTestExporter(true)
	historical := dataset.Dataset{
		{Timestamp: time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), VisitorCount: 118.0},
	}

	doc := e.FormatPredictions(sampleForecasts(), historical, "prophet")

	assert.Equal(t, "2024-06-01T12:00:00", doc.Metadata.GeneratedAt)
	assert.Equal(t, "prophet", doc.Metadata.ModelType)
	assert.Equal(t, 2, doc.Metadata.TotalPredictions)
	assert.Equal(t, "2024-06-02T09:00:00", doc.Metadata.PredictionPeriod.Start)
	assert.Equal(t, "2024-06-02T10:00:00", doc.Metadata.PredictionPeriod.End)

	require.Len(t, doc.Predictions, 2)
	first := doc.Predictions[0]
	assert.Equal(t, "2024-06-02T09:00:00", first.Timestamp)
	assert.Equal(t, 123.46, first.PredictedVisitors)
	require.NotNil(t, first.ConfidenceInterval)
	assert.Equal(t, 100.11, first.ConfidenceInterval.LowerBound)
	assert.Equal(t, 151.0, first.ConfidenceInterval.UpperBound)
	require.NotNil(t, first.ActualVisitors)
	assert.Equal(t, 118.0, *first.ActualVisitors)

	second := doc.Predictions[1]
	assert.Nil(t, second.ActualVisitors, "no matching historical row")
}

func TestFormatPredictionsWithoutIntervals(t *testing.T) {
	e := newTestExporter(false)

	doc := e.FormatPredictions(sampleForecasts(), nil, "prophet")

	for _, p := range doc.Predictions {
		assert.Nil(t, p.ConfidenceInterval)
	}
}

func TestFormatPredictionsEmpty(t *testing.T) {
	e := newTestExporter(true)

	doc := e.FormatPredictions(nil, nil, "prophet")

	assert.Equal(t, 0, doc.Metadata.TotalPredictions)
	assert.Empty(t, doc.Predictions)
	assert.Empty(t, doc.Metadata.PredictionPeriod.Start)
}

func TestSaveCreatesDirectoriesAndValidates(t *testing.T) {
	e := newTestExporter(true)
	doc := e.FormatPredictions(sampleForecasts(), nil, "prophet")

	path := filepath.Join(t.TempDir(), "out", "nested", "predictions.json")
	require.NoError(t, e.Save(doc, path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, e.ValidateOutput(path))
}

func TestValidateOutputRejectsGarbage(t *testing.T) {
	e := newTestExporter(true)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := e.ValidateOutput(path)

	var ee *ExportError
	require.ErrorAs(t, err, &ee)
}

func TestValidateOutputRejectsInconsistentCount(t *testing.T) {
	e := newTestExporter(true)
	path := filepath.Join(t.TempDir(), "mismatch.json")
	body := `{"metadata":{"generated_at":"x","model_type":"prophet","total_predictions":5,"prediction_period":{"start":"","end":""}},"predictions":[]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	err := e.ValidateOutput(path)

	var ee *ExportError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, err.Error(), "metadata reports 5")
}

func TestValidateOutputMissingFile(t *testing.T) {
	e := newTestExporter(true)

	err := e.ValidateOutput(filepath.Join(t.TempDir(), "missing.json"))

	var ee *ExportError
	require.ErrorAs(t, err, &ee)
}
