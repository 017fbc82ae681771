package forecast

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/dataset"
	"github.com/templecast/templecast/internal/logging"
)

func testForecastConfig() config.ForecastConfig {
	return config.ForecastConfig{
		SeasonalityMode:       "additive",
		DailySeasonality:      true,
		WeeklySeasonality:     true,
		YearlySeasonality:     false,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10.0,
		NChangepoints:         25,
		ChangepointRange:      0.8,
		IntervalWidth:         0.80,
	}
}

func newTestManager() *Manager {
	return NewManager(logging.NewWithWriter(io.Discard, zerolog.Disabled), testForecastConfig(), 0)
}

// hourlyDataset builds n hourly observations with a daily sinusoid plus a
// mild upward trend, alternating weather and an occasional festival day.
func hourlyDataset(n int) dataset.Dataset {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obs := make(dataset.Dataset, n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		value := 200 + 0.5*float64(i) + 80*math.Sin(2*math.Pi*float64(ts.Hour())/24)
		weather := "sunny"
		if i%3 == 0 {
			weather = "rainy"
		}
		obs[i] = dataset.Observation{
			Timestamp:    ts,
			VisitorCount: value,
			FestivalFlag: i%50 == 0,
			Weather:      weather,
		}
	}
	return obs
}

func TestRegisterRegressorIdempotent(t *testing.T) {
	m := newTestManager()

	m.RegisterRegressor("temperature", 10.0, true)
	m.RegisterRegressor("temperature", 99.0, false)

	specs := m.Regressors()
	require.Len(t, specs, 1)
	assert.Equal(t, 10.0, specs[0].PriorScale, "first registration wins")
	assert.True(t, specs[0].Standardize)
}

func TestPrepareTrainingFrameColumns(t *testing.T) {
	m := newTestManager()
	frame := m.PrepareTrainingFrame(hourlyDataset(48))

	require.Equal(t, 48, frame.Len())

	festival, ok := frame.Column(FestivalRegressor)
	require.True(t, ok)
	assert.Equal(t, 1.0, festival[0])
	assert.Equal(t, 0.0, festival[1])

	sunny, ok := frame.Column("weather_sunny")
	require.True(t, ok)
	rainy, ok := frame.Column("weather_rainy")
	require.True(t, ok)
	for i := 0; i < frame.Len(); i++ {
		assert.Equal(t, 1.0, sunny[i]+rainy[i], "row %d is exactly one category", i)
	}

	specs := m.Regressors()
	byName := make(map[string]RegressorSpec)
	for _, s := range specs {
		byName[s.Name] = s
	}
	assert.Equal(t, 15.0, byName[FestivalRegressor].PriorScale)
	assert.Equal(t, 5.0, byName["weather_sunny"].PriorScale)
	assert.True(t, byName[FestivalRegressor].Standardize)
	assert.True(t, byName["weather_sunny"].Standardize)
	assert.True(t, byName["weather_rainy"].Standardize)
}

func TestTrainInsufficientData(t *testing.T) {
	m := newTestManager()
	frame := m.PrepareTrainingFrame(hourlyDataset(29))

	err := m.Train(frame)

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 30, ide.Required)
	assert.Equal(t, 29, ide.Got)
	assert.False(t, m.Trained())
}

func TestTrainAtMinimumRows(t *testing.T) {
	m := newTestManager()
	frame := m.PrepareTrainingFrame(hourlyDataset(30))

	require.NoError(t, m.Train(frame))
	assert.True(t, m.Trained())
	assert.Equal(t, 30, m.Info().DataPoints)
}

func TestBuildFutureFrameRequiresTraining(t *testing.T) {
	m := newTestManager()

	_, err := m.BuildFutureFrame(24, nil)

	var nte *NotTrainedError
	require.ErrorAs(t, err, &nte)
}

func TestPredictRequiresTraining(t *testing.T) {
	m := newTestManager()

	_, err := m.Predict(NewFrame(0))

	var nte *NotTrainedError
	require.ErrorAs(t, err, &nte)
}

func TestBuildFutureFrameTimeline(t *testing.T) {
	m := newTestManager()
	frame := m.PrepareTrainingFrame(hourlyDataset(72))
	require.NoError(t, m.Train(frame))

	future, err := m.BuildFutureFrame(24, nil)
	require.NoError(t, err)

	require.Equal(t, 24, future.Len())
	assert.Equal(t, time.Hour, m.Frequency())

	last := frame.Times[len(frame.Times)-1]
	assert.Equal(t, last.Add(time.Hour), future.Times[0])
	assert.Equal(t, last.Add(24*time.Hour), future.Times[23])
}

func TestBuildFutureFrameHeuristicFill(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Train(m.PrepareTrainingFrame(hourlyDataset(72))))

	future, err := m.BuildFutureFrame(6, nil)
	require.NoError(t, err)

	festival, _ := future.Column(FestivalRegressor)
	sunny, _ := future.Column("weather_sunny")
	rainy, _ := future.Column("weather_rainy")
	for i := 0; i < 6; i++ {
		assert.Equal(t, 0.0, festival[i], "festivals assumed off")
		assert.Equal(t, 1.0, sunny[i], "weather assumed sunny")
		assert.Equal(t, 0.0, rainy[i])
	}
}

func TestBuildFutureFrameExplicitColumnsWin(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Train(m.PrepareTrainingFrame(hourlyDataset(72))))

	future, err := m.BuildFutureFrame(3, map[string][]float64{
		FestivalRegressor: {1, 1, 0},
	})
	require.NoError(t, err)

	festival, _ := future.Column(FestivalRegressor)
	assert.Equal(t, []float64{1, 1, 0}, festival)
}

func TestBuildFutureFrameWrongLengthFallsBack(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Train(m.PrepareTrainingFrame(hourlyDataset(72))))

	future, err := m.BuildFutureFrame(4, map[string][]float64{
		FestivalRegressor: {1, 1},
	})
	require.NoError(t, err)

	festival, _ := future.Column(FestivalRegressor)
	assert.Equal(t, []float64{0, 0, 0, 0}, festival, "mismatched column falls back to heuristic")
}

func TestPredictBoundsInvariant(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Train(m.PrepareTrainingFrame(hourlyDataset(24*14))))

	future, err := m.BuildFutureFrame(48, nil)
	require.NoError(t, err)

	forecasts, err := m.Predict(future)
	require.NoError(t, err)
	require.Len(t, forecasts, 48)

	for i, fc := range forecasts {
		assert.GreaterOrEqual(t, fc.LowerBound, 0.0, "row %d", i)
		assert.LessOrEqual(t, fc.LowerBound, fc.PredictedValue, "row %d", i)
		assert.LessOrEqual(t, fc.PredictedValue, fc.UpperBound, "row %d", i)
		assert.Equal(t, future.Times[i], fc.Timestamp)
	}

	// Intervals widen with horizon
	firstWidth := forecasts[0].UpperBound - forecasts[0].LowerBound
	lastWidth := forecasts[47].UpperBound - forecasts[47].LowerBound
	assert.Greater(t, lastWidth, firstWidth)
}

func TestEncodeWeatherUnseenCategoryDropped(t *testing.T) {
	m := newTestManager()
	m.EncodeWeather([]string{"sunny", "rainy", "sunny"})

	cols := m.EncodeWeather([]string{"sunny", "foggy"})

	require.Contains(t, cols, "weather_sunny")
	assert.NotContains(t, cols, "weather_foggy", "unseen category is dropped, not added")
	assert.Equal(t, []float64{1, 0}, cols["weather_sunny"])
	assert.Equal(t, []float64{0, 0}, cols["weather_rainy"])
}

func TestTrainReplacesEarlierState(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Train(m.PrepareTrainingFrame(hourlyDataset(48))))
	first := m.Info()

	require.NoError(t, m.Train(m.PrepareTrainingFrame(hourlyDataset(96))))
	second := m.Info()

	assert.Equal(t, 48, first.DataPoints)
	assert.Equal(t, 96, second.DataPoints)
}

func TestMedianSpacing(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		gaps []time.Duration
		want time.Duration
	}{
		{"hourly", []time.Duration{time.Hour, time.Hour, time.Hour}, time.Hour},
		{"daily with one gap", []time.Duration{24 * time.Hour, 24 * time.Hour, 72 * time.Hour}, 24 * time.Hour},
		{"single point", nil, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := []time.Time{base}
			for _, g := range tt.gaps {
				times = append(times, times[len(times)-1].Add(g))
			}
			assert.Equal(t, tt.want, medianSpacing(times))
		})
	}
}
