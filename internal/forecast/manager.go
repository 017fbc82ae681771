// Package forecast fits a seasonal decomposition model to visitor counts
// and produces point predictions with uncertainty intervals. Exogenous
// regressors (festival flag, one-hot weather) enter the fit with
// per-regressor prior scales.
package forecast

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/dataset"
	"github.com/templecast/templecast/internal/logging"
)

// DefaultMinTrainingRows is the floor below which training refuses to run.
const DefaultMinTrainingRows = 30

// Regressor naming and prior scales
const (
	FestivalRegressor  = "festival_flag"
	WeatherPrefix      = "weather_"
	festivalPriorScale = 15.0
	weatherPriorScale  = 5.0
)

// Manager owns the regressor registry, the fitted model, and the training
// timeline needed to extend predictions into the future.
type Manager struct {
	logger  *logging.Logger
	cfg     config.ForecastConfig
	minRows int

	specs   []RegressorSpec
	specIdx map[string]int

	weatherCategories []string

	model      *Model
	info       ModelInfo
	trainTimes []time.Time
	freq       time.Duration
}

// NewManager creates a Manager. minRows <= 0 selects the default floor.
func NewManager(logger *logging.Logger, cfg config.ForecastConfig, minRows int) *Manager {
	if minRows <= 0 {
		minRows = DefaultMinTrainingRows
	}
	return &Manager{
		logger:  logger,
		cfg:     cfg,
		minRows: minRows,
		specIdx: make(map[string]int),
	}
}

// Trained reports whether a model has been fitted.
func (m *Manager) Trained() bool {
	return m.model != nil
}

// Info returns fit metadata from the most recent training run.
func (m *Manager) Info() ModelInfo {
	return m.info
}

// Frequency returns the training timeline's median step.
func (m *Manager) Frequency() time.Duration {
	return m.freq
}

// RegisterRegressor adds a regressor spec. Registering a name twice is a
// warning no-op; the first registration wins.
func (m *Manager) RegisterRegressor(name string, priorScale float64, standardize bool) {
	if _, exists := m.specIdx[name]; exists {
		m.logger.Warn("Regressor already registered, keeping existing spec", "name", name)
		return
	}
	m.specIdx[name] = len(m.specs)
	m.specs = append(m.specs, RegressorSpec{
		Name:        name,
		PriorScale:  priorScale,
		Standardize: standardize,
	})
	m.logger.Debug("Registered regressor",
		"name", name,
		"prior_scale", priorScale,
		"standardize", standardize)
}

// Regressors returns the registered specs in registration order.
func (m *Manager) Regressors() []RegressorSpec {
	out := make([]RegressorSpec, len(m.specs))
	copy(out, m.specs)
	return out
}

// EncodeWeather one-hot encodes weather values into weather_<category>
// columns. The first call fixes the category set from the observed values
// and registers one regressor per category; later calls reuse that set and
// values outside it contribute nothing beyond a warning.
func (m *Manager) EncodeWeather(values []string) map[string][]float64 {
	if m.weatherCategories == nil {
		seen := make(map[string]bool)
		for _, v := range values {
			if v != "" && !seen[v] {
				seen[v] = true
				m.weatherCategories = append(m.weatherCategories, v)
			}
		}
		sort.Strings(m.weatherCategories)
		for _, cat := range m.weatherCategories {
			m.RegisterRegressor(WeatherPrefix+cat, weatherPriorScale, true)
		}
	}

	known := make(map[string]bool, len(m.weatherCategories))
	for _, cat := range m.weatherCategories {
		known[cat] = true
	}

	columns := make(map[string][]float64, len(m.weatherCategories))
	for _, cat := range m.weatherCategories {
		columns[WeatherPrefix+cat] = make([]float64, len(values))
	}

	unseen := make(map[string]int)
	for i, v := range values {
		if v == "" {
			continue
		}
		if !known[v] {
			unseen[v]++
			continue
		}
		columns[WeatherPrefix+v][i] = 1
	}

	for cat, count := range unseen {
		m.logger.Warn("Weather category not seen in training, dropped",
			"category", cat,
			"rows", count)
	}

	return columns
}

// PrepareTrainingFrame builds the design matrix from cleaned observations:
// sorted timestamps, visitor counts as the target, the festival flag, and
// one-hot weather columns. Registered numeric regressor columns that are
// missing get median-filled; one-hot columns zero-filled.
func (m *Manager) PrepareTrainingFrame(obs dataset.Dataset) *Frame {
	sorted := make(dataset.Dataset, len(obs))
	copy(sorted, obs)
	sorted.Sort()

	frame := NewFrame(len(sorted))
	frame.Times = sorted.Times()
	frame.Target = sorted.Values()

	festival := make([]float64, len(sorted))
	weather := make([]string, len(sorted))
	for i, o := range sorted {
		if o.FestivalFlag {
			festival[i] = 1
		}
		weather[i] = o.Weather
	}

	m.RegisterRegressor(FestivalRegressor, festivalPriorScale, true)
	frame.Columns[FestivalRegressor] = festival

	for name, col := range m.EncodeWeather(weather) {
		frame.Columns[name] = col
	}

	m.fillMissingColumns(frame)

	m.logger.Info("Prepared training frame",
		"rows", frame.Len(),
		"regressors", len(m.specs))
	return frame
}

// fillMissingColumns guarantees every registered regressor has a complete
// column: one-hot columns default to zero, numeric columns to their median
// (zero when empty), and NaN cells get the same fill.
func (m *Manager) fillMissingColumns(frame *Frame) {
	for _, spec := range m.specs {
		col, ok := frame.Column(spec.Name)
		if !ok {
			frame.Columns[spec.Name] = make([]float64, frame.Len())
			continue
		}
		hasNaN := false
		for _, v := range col {
			if math.IsNaN(v) {
				hasNaN = true
				break
			}
		}
		if !hasNaN {
			continue
		}
		fill := 0.0
		if !isOneHot(spec.Name) {
			fill = medianOf(col)
		}
		filled := 0
		for i, v := range col {
			if math.IsNaN(v) {
				col[i] = fill
				filled++
			}
		}
		m.logger.Warn("Filled missing regressor values",
			"name", spec.Name,
			"count", filled,
			"fill", fill)
	}
}

func isOneHot(name string) bool {
	return name == FestivalRegressor || strings.HasPrefix(name, WeatherPrefix)
}

func medianOf(values []float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0
	}
	sort.Float64s(clean)
	mid := len(clean) / 2
	if len(clean)%2 == 1 {
		return clean[mid]
	}
	return (clean[mid-1] + clean[mid]) / 2
}

// Train fits the model to the frame, replacing any earlier fit.
func (m *Manager) Train(frame *Frame) error {
	if frame.Len() < m.minRows {
		return &InsufficientDataError{Required: m.minRows, Got: frame.Len()}
	}

	cols := make([][]float64, len(m.specs))
	for j, spec := range m.specs {
		col, ok := frame.Column(spec.Name)
		if !ok {
			col = make([]float64, frame.Len())
		}
		cols[j] = col
	}

	model := &Model{cfg: m.cfg, specs: m.Regressors()}
	if err := model.fit(frame.Times, frame.Target, cols); err != nil {
		return &TrainingError{Err: err}
	}

	m.model = model
	m.trainTimes = make([]time.Time, len(frame.Times))
	copy(m.trainTimes, frame.Times)
	m.freq = medianSpacing(frame.Times)

	fitted := make([]float64, frame.Len())
	for i, ts := range frame.Times {
		fitted[i] = model.predict(ts, regressorRow(cols, i))
	}
	m.info = ModelInfo{
		ModelType: "prophet",
		Parameters: map[string]interface{}{
			"seasonality_mode":        m.cfg.SeasonalityMode,
			"daily_seasonality":       m.cfg.DailySeasonality,
			"weekly_seasonality":      m.cfg.WeeklySeasonality,
			"yearly_seasonality":      m.cfg.YearlySeasonality,
			"changepoint_prior_scale": m.cfg.ChangepointPriorScale,
			"interval_width":          m.cfg.IntervalWidth,
		},
		MAPE:       MAPE(frame.Target, fitted),
		MAE:        MAE(frame.Target, fitted),
		RMSE:       RMSE(frame.Target, fitted),
		DataPoints: frame.Len(),
		Regressors: regressorNames(m.specs),
	}

	m.logger.Info("Model training completed",
		"rows", frame.Len(),
		"regressors", len(m.specs),
		"frequency", m.freq.String(),
		"mape", m.info.MAPE,
		"rmse", m.info.RMSE)
	return nil
}

// BuildFutureFrame extends the training timeline the given number of steps
// at the training frequency. Regressor columns supplied in futureColumns
// are used as-is when they cover every step; anything else is filled by
// heuristic, with a warning per filled column: festival off, weather
// "sunny" on, every other column zero.
func (m *Manager) BuildFutureFrame(periods int, futureColumns map[string][]float64) (*Frame, error) {
	if m.model == nil {
		return nil, &NotTrainedError{Op: "building future periods"}
	}

	frame := NewFrame(periods)
	last := m.trainTimes[len(m.trainTimes)-1]
	for i := 1; i <= periods; i++ {
		frame.Times = append(frame.Times, last.Add(time.Duration(i)*m.freq))
	}

	for _, spec := range m.specs {
		if col, ok := futureColumns[spec.Name]; ok {
			if len(col) == periods {
				frame.Columns[spec.Name] = col
				continue
			}
			m.logger.Warn("Future regressor column has wrong length, using heuristic fill",
				"name", spec.Name,
				"got", len(col),
				"want", periods)
		}

		fill := heuristicFill(spec.Name)
		col := make([]float64, periods)
		for i := range col {
			col[i] = fill
		}
		frame.Columns[spec.Name] = col
		m.logger.Warn("Future regressor filled by heuristic",
			"name", spec.Name,
			"value", fill)
	}

	return frame, nil
}

// heuristicFill picks the assumed future value for an unspecified
// regressor: no festivals, sunny weather, zero otherwise.
func heuristicFill(name string) float64 {
	switch {
	case name == FestivalRegressor:
		return 0
	case strings.HasPrefix(name, WeatherPrefix) && strings.Contains(name, "sunny"):
		return 1
	default:
		return 0
	}
}

// Predict produces one forecast per frame row. Predicted values and both
// bounds are clipped non-negative, and lower <= predicted <= upper always
// holds.
func (m *Manager) Predict(frame *Frame) ([]dataset.Forecast, error) {
	if m.model == nil {
		return nil, &NotTrainedError{Op: "prediction"}
	}

	cols := make([][]float64, len(m.specs))
	for j, spec := range m.specs {
		col, ok := frame.Column(spec.Name)
		if !ok {
			col = make([]float64, frame.Len())
		}
		cols[j] = col
	}

	forecasts := make([]dataset.Forecast, frame.Len())
	for i, ts := range frame.Times {
		value := m.model.predict(ts, regressorRow(cols, i))

		// Interval widens with horizon
		horizonFactor := math.Sqrt(float64(i + 1))
		lower, upper := predictionInterval(value, m.model.sigma*horizonFactor, m.cfg.IntervalWidth)

		value = math.Max(0, value)
		lower = math.Max(0, lower)
		upper = math.Max(0, upper)
		if lower > value {
			lower = value
		}
		if upper < value {
			upper = value
		}

		forecasts[i] = dataset.Forecast{
			Timestamp:      ts,
			PredictedValue: value,
			LowerBound:     lower,
			UpperBound:     upper,
		}
	}

	m.logger.Info("Generated predictions", "count", len(forecasts))
	return forecasts, nil
}

func regressorNames(specs []RegressorSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
