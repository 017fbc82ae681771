package forecast

import (
	"math"
	"testing"
	"time"
)

func trendModel(t *testing.T, values func(i int) float64, n int) (*Model, []time.Time) {
	t.Helper()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = baseTime.Add(time.Duration(i) * time.Hour)
		y[i] = values(i)
	}

	md := &Model{cfg: testForecastConfig()}
	if err := md.fit(times, y, nil); err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	return md, times
}

func TestModelFitLinearTrend(t *testing.T) {
	md, times := trendModel(t, func(i int) float64 { return 100.0 + float64(i)*2.0 }, 50)

	// Predictions should continue the upward trend
	last := md.predict(times[len(times)-1], nil)
	ahead := md.predict(times[len(times)-1].Add(10*time.Hour), nil)
	if ahead <= last {
		t.Errorf("Expected trend to continue upward, got %f then %f", last, ahead)
	}

	// In-sample fit should be close for a clean linear series
	for i := 0; i < len(times); i += 10 {
		want := 100.0 + float64(i)*2.0
		got := md.predict(times[i], nil)
		if math.Abs(got-want) > want*0.25 {
			t.Errorf("Prediction at index %d too far off: want near %f, got %f", i, want, got)
		}
	}
}

func TestModelFitConstantSeries(t *testing.T) {
	md, times := trendModel(t, func(i int) float64 { return 42.0 }, 40)

	got := md.predict(times[20], nil)
	if math.Abs(got-42.0) > 5.0 {
		t.Errorf("Expected prediction near 42 for constant series, got %f", got)
	}
}

func TestModelFitRejectsTooFewPoints(t *testing.T) {
	md := &Model{cfg: testForecastConfig()}
	times := []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	if err := md.fit(times, []float64{1.0}, nil); err == nil {
		t.Error("Expected error for single data point")
	}
}

func TestModelFitRejectsMismatchedRegressors(t *testing.T) {
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 10)
	y := make([]float64, 10)
	for i := range times {
		times[i] = baseTime.Add(time.Duration(i) * time.Hour)
		y[i] = float64(i)
	}

	md := &Model{
		cfg:   testForecastConfig(),
		specs: []RegressorSpec{{Name: "festival_flag", PriorScale: 15.0}},
	}
	if err := md.fit(times, y, [][]float64{{1, 0}}); err == nil {
		t.Error("Expected error for regressor column with wrong length")
	}
}

func TestModelRegressorEffect(t *testing.T) {
	// Identical series except a constant bump on flagged rows: the fitted
	// regressor should push flagged predictions higher.
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 200
	times := make([]time.Time, n)
	y := make([]float64, n)
	flag := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = baseTime.Add(time.Duration(i) * time.Hour)
		y[i] = 100.0
		if i%7 == 0 {
			flag[i] = 1
			y[i] = 160.0
		}
	}

	cfg := testForecastConfig()
	cfg.DailySeasonality = false
	cfg.WeeklySeasonality = false
	md := &Model{
		cfg:   cfg,
		specs: []RegressorSpec{{Name: "festival_flag", PriorScale: 15.0}},
	}
	if err := md.fit(times, y, [][]float64{flag}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	future := times[n-1].Add(time.Hour)
	off := md.predict(future, []float64{0})
	on := md.predict(future, []float64{1})
	if on <= off {
		t.Errorf("Expected flagged prediction above unflagged, got on=%f off=%f", on, off)
	}
}

func TestPredictionIntervalZScores(t *testing.T) {
	tests := []struct {
		width float64
		z     float64
	}{
		{0.99, 2.576},
		{0.95, 1.96},
		{0.90, 1.645},
		{0.80, 1.282},
		{0.50, 1.282},
	}
	for _, tt := range tests {
		lower, upper := predictionInterval(100.0, 10.0, tt.width)
		wantLower := 100.0 - tt.z*10.0
		wantUpper := 100.0 + tt.z*10.0
		if math.Abs(lower-wantLower) > 1e-9 || math.Abs(upper-wantUpper) > 1e-9 {
			t.Errorf("width %.2f: expected [%f, %f], got [%f, %f]",
				tt.width, wantLower, wantUpper, lower, upper)
		}
	}
}

func TestStddev(t *testing.T) {
	if got := stddev([]float64{2, 2, 2}); got != 1.0 {
		t.Errorf("Expected fallback 1.0 for zero variance, got %f", got)
	}
	if got := stddev([]float64{1, 3}); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected std 1.0, got %f", got)
	}
}
