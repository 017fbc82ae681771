package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/export"
	"github.com/templecast/templecast/internal/forecast"
	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/processor"
	"github.com/templecast/templecast/internal/visualization"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
)

const (
	defaultPredictionDays = 30
	maxRecommendedDays    = 365
)

// exceedsRecommendedHorizon reports whether the requested horizon is past
// the point where yearly-seasonality extrapolation stops being trustworthy.
func exceedsRecommendedHorizon(days int) bool {
	return days > maxRecommendedDays
}

func main() {
	// Command line flags
	inputFile := flag.String("input-file", "", "Path to the historical visitor CSV (required)")
	outputDir := flag.String("output-dir", "./output", "Directory for generated artifacts")
	predictionDays := flag.Int("prediction-days", defaultPredictionDays, "Number of days to forecast")
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Override log level (debug, info, warn, error)")
	chartOutput := flag.String("chart-output", "", "Chart PNG path (default <output-dir>/predictions.png)")
	jsonOutput := flag.String("json-output", "", "Predictions JSON path (default <output-dir>/predictions.json)")

	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -input-file is required")
		flag.Usage()
		os.Exit(2)
	}
	if *predictionDays <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -prediction-days must be positive")
		os.Exit(2)
	}

	cfg := config.LoadOrDefault(*configPath)
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	runID := uuid.New().String()
	logger = logger.With("run_id", runID)
	logger.Info("Forecast pipeline starting",
		"version", Version,
		"commit", GitCommit,
		"input", *inputFile,
		"prediction_days", *predictionDays)

	if exceedsRecommendedHorizon(*predictionDays) {
		logger.Warn("Prediction horizon exceeds one year, forecast quality degrades",
			"prediction_days", *predictionDays,
			"recommended_max", maxRecommendedDays)
	}

	chartPath := *chartOutput
	if chartPath == "" {
		chartPath = filepath.Join(*outputDir, "predictions.png")
	}
	jsonPath := *jsonOutput
	if jsonPath == "" {
		jsonPath = filepath.Join(*outputDir, "predictions.json")
	}

	// Core pipeline: any failure here is fatal
	proc := processor.New(logger, cfg.Processing)

	raw, rows, err := proc.Load(*inputFile)
	if err != nil {
		logger.Fatal("Failed to load input data", "error", err)
	}
	logger.Info("Input loaded", "rows", rows)

	if err := proc.Validate(raw); err != nil {
		logger.Fatal("Input data failed validation", "error", err)
	}

	table, err := proc.Preprocess(raw)
	if err != nil {
		logger.Fatal("Preprocessing failed", "error", err)
	}

	table, imputeReport, err := proc.Impute(table)
	if err != nil {
		logger.Fatal("Missing value handling failed", "error", err)
	}
	if imputeReport.Total() > 0 || imputeReport.DroppedRows > 0 {
		logger.Info("Imputation applied",
			"filled", imputeReport.Total(),
			"dropped_rows", imputeReport.DroppedRows)
	}

	table, outlierReport := proc.DetectAndCapOutliers(table)
	if outlierReport.Flagged > 0 {
		logger.Info("Outlier handling applied",
			"flagged", outlierReport.Flagged,
			"capped", outlierReport.CappedLow+outlierReport.CappedHigh)
	}

	observations := table.Observations()
	logger.Info("Cleaned dataset ready",
		"rows", observations.Len(),
		"mean_visitors", observations.Mean(),
		"stddev_visitors", observations.StdDev())

	manager := forecast.NewManager(logger, cfg.Forecast, cfg.Processing.MinDataPoints)
	frame := manager.PrepareTrainingFrame(observations)
	if err := manager.Train(frame); err != nil {
		logger.Fatal("Model training failed", "error", err)
	}

	periods := int(time.Duration(*predictionDays) * 24 * time.Hour / manager.Frequency())
	future, err := manager.BuildFutureFrame(periods, nil)
	if err != nil {
		logger.Fatal("Failed to build future periods", "error", err)
	}

	forecasts, err := manager.Predict(future)
	if err != nil {
		logger.Fatal("Prediction failed", "error", err)
	}
	logger.Info("Core pipeline completed",
		"observations", observations.Len(),
		"predictions", len(forecasts),
		"mape", manager.Info().MAPE)

	// Auxiliary outputs: failures are reported but do not fail the run
	failures := 0

	exporter := export.New(logger, cfg.Export)
	doc := exporter.FormatPredictions(forecasts, observations, manager.Info().ModelType)
	if err := exporter.Save(doc, jsonPath); err != nil {
		logger.Error("Prediction export failed", "error", err)
		failures++
	} else if err := exporter.ValidateOutput(jsonPath); err != nil {
		logger.Error("Exported file failed validation", "error", err)
		failures++
	}

	renderer := visualization.New(logger, cfg.Chart)
	if err := renderer.RenderPredictionChart(observations, forecasts, chartPath); err != nil {
		logger.Error("Chart rendering failed", "error", err)
		failures++
	}

	if failures > 0 {
		logger.Warn("Pipeline completed with partial outputs", "failed_outputs", failures)
	} else {
		logger.Info("Pipeline completed", "json", jsonPath, "chart", chartPath)
	}
}
