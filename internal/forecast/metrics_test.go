package forecast

import (
	"math"
	"testing"
)

func TestMAPE(t *testing.T) {
	actual := []float64{100, 200, 300}
	predicted := []float64{110, 190, 300}

	// |10/100| + |10/200| + 0 = 0.15, / 3 * 100 = 5%
	if got := MAPE(actual, predicted); math.Abs(got-5.0) > 1e-9 {
		t.Errorf("Expected MAPE 5.0, got %f", got)
	}

	if got := MAPE([]float64{0, 0}, []float64{1, 2}); got != 0 {
		t.Errorf("Expected MAPE 0 for all-zero actuals, got %f", got)
	}

	if got := MAPE(actual, predicted[:2]); got != 0 {
		t.Errorf("Expected MAPE 0 for mismatched lengths, got %f", got)
	}
}

func TestMAE(t *testing.T) {
	if got := MAE([]float64{100, 200}, []float64{90, 210}); math.Abs(got-10.0) > 1e-9 {
		t.Errorf("Expected MAE 10.0, got %f", got)
	}
}

func TestRMSE(t *testing.T) {
	if got := RMSE([]float64{100, 200}, []float64{97, 204}); math.Abs(got-3.5355339) > 1e-6 {
		t.Errorf("Expected RMSE ~3.536, got %f", got)
	}
}
