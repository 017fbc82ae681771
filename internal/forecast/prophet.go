package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/templecast/templecast/internal/config"
)

// Fourier orders per seasonal component
const (
	fourierOrderYearly = 10
	fourierOrderWeekly = 3
	fourierOrderDaily  = 4
)

// Model is a Prophet-style additive decomposition fitted to visitor
// counts: piecewise linear trend with automatic changepoint detection,
// Fourier-series seasonality (daily, weekly, yearly), and exogenous
// regressors fitted by ridge least squares on the detrended,
// deseasonalized residuals.
type Model struct {
	cfg   config.ForecastConfig
	specs []RegressorSpec

	// Trend
	k            float64
	m            float64
	changepoints []float64
	deltas       []float64

	// Seasonality coefficients
	yearlyCoeffs []float64
	weeklyCoeffs []float64
	dailyCoeffs  []float64

	// Regressor coefficients, aligned with specs; standardization stats
	// captured at fit time
	beta     []float64
	colMeans []float64
	colStds  []float64

	// Normalization
	yMin   float64
	yScale float64
	tMin   float64
	tScale float64

	// Residual std for prediction intervals
	sigma float64
}

// fit estimates all model parameters. cols holds one column per spec, each
// the same length as times.
func (md *Model) fit(times []time.Time, y []float64, cols [][]float64) error {
	n := len(times)
	if n < 2 {
		return fmt.Errorf("need at least 2 data points")
	}
	if len(y) != n {
		return fmt.Errorf("target length %d does not match %d timestamps", len(y), n)
	}
	for i, col := range cols {
		if len(col) != n {
			return fmt.Errorf("regressor %q has %d rows, want %d", md.specs[i].Name, len(col), n)
		}
	}

	// Normalize time to [0, 1]
	t := make([]float64, n)
	md.tMin = float64(times[0].Unix())
	md.tScale = float64(times[n-1].Unix()) - md.tMin
	if md.tScale == 0 {
		md.tScale = 1
	}
	for i, ts := range times {
		t[i] = (float64(ts.Unix()) - md.tMin) / md.tScale
	}

	// Normalize values to [0, 1]
	md.yMin, md.yScale = y[0], 1.0
	yMax := y[0]
	for _, v := range y {
		if v < md.yMin {
			md.yMin = v
		}
		if v > yMax {
			yMax = v
		}
	}
	md.yScale = yMax - md.yMin
	if md.yScale == 0 {
		md.yScale = 1
	}
	yNorm := make([]float64, n)
	for i := range y {
		yNorm[i] = (y[i] - md.yMin) / md.yScale
	}

	md.fitTrend(t, yNorm)

	detrended := make([]float64, n)
	for i := range t {
		detrended[i] = yNorm[i] - md.trendAt(t[i])
	}

	if md.cfg.YearlySeasonality {
		md.yearlyCoeffs = md.fitFourier(times, detrended, 365.25, fourierOrderYearly)
	}
	if md.cfg.WeeklySeasonality {
		md.weeklyCoeffs = md.fitFourier(times, detrended, 7.0, fourierOrderWeekly)
	}
	if md.cfg.DailySeasonality {
		md.dailyCoeffs = md.fitFourier(times, detrended, 1.0, fourierOrderDaily)
	}

	if err := md.fitRegressors(times, t, yNorm, cols); err != nil {
		return err
	}

	// Residual std in the original scale drives the prediction intervals
	residuals := make([]float64, n)
	for i := range times {
		row := regressorRow(cols, i)
		residuals[i] = y[i] - md.predict(times[i], row)
	}
	md.sigma = stddev(residuals)

	return nil
}

// fitTrend fits the base linear trend and locates changepoints by scoring
// residual mean shifts over a sliding window.
func (md *Model) fitTrend(t, y []float64) {
	n := len(t)

	sumT, sumY, sumTY, sumT2 := 0.0, 0.0, 0.0, 0.0
	for i := range t {
		sumT += t[i]
		sumY += y[i]
		sumTY += t[i] * y[i]
		sumT2 += t[i] * t[i]
	}

	nf := float64(n)
	denom := nf*sumT2 - sumT*sumT
	if denom == 0 {
		md.k = 0
		md.m = sumY / nf
	} else {
		md.k = (nf*sumTY - sumT*sumY) / denom
		md.m = (sumY - md.k*sumT) / nf
	}

	if md.cfg.NChangepoints > 0 && n > md.cfg.NChangepoints {
		idx := md.detectChangepoints(t, y)
		md.changepoints = make([]float64, len(idx))
		md.deltas = make([]float64, len(idx))
		for i, j := range idx {
			md.changepoints[i] = t[j]
			if j > 0 && j < n-1 {
				localSlope := (y[j+1] - y[j-1]) / (t[j+1] - t[j-1])
				md.deltas[i] = (localSlope - md.k) * md.cfg.ChangepointPriorScale
			}
		}
	}
}

func (md *Model) detectChangepoints(t, y []float64) []int {
	n := len(t)
	rangeEnd := int(float64(n) * md.cfg.ChangepointRange)
	if rangeEnd < 2 {
		return nil
	}

	residuals := make([]float64, n)
	for i := range t {
		residuals[i] = y[i] - (md.k*t[i] + md.m)
	}

	type candidate struct {
		idx   int
		score float64
	}
	candidates := make([]candidate, 0, rangeEnd)

	window := n / 20
	if window < 3 {
		window = 3
	}
	for i := window; i < rangeEnd-window; i++ {
		before, after := 0.0, 0.0
		for j := i - window; j < i; j++ {
			before += residuals[j]
		}
		for j := i; j < i+window; j++ {
			after += residuals[j]
		}
		before /= float64(window)
		after /= float64(window)
		candidates = append(candidates, candidate{idx: i, score: math.Abs(after - before)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	numCP := md.cfg.NChangepoints
	if numCP > len(candidates) {
		numCP = len(candidates)
	}
	result := make([]int, numCP)
	for i := 0; i < numCP; i++ {
		result[i] = candidates[i].idx
	}
	sort.Ints(result)
	return result
}

func (md *Model) trendAt(t float64) float64 {
	trend := md.k*t + md.m
	for i, cp := range md.changepoints {
		if t > cp {
			trend += md.deltas[i] * (t - cp)
		}
	}
	return trend
}

// fitFourier fits a Fourier series of the given order per-harmonic by
// regularized least squares; the seasonality prior scale acts as the ridge
// term (larger scale, weaker shrinkage). Period is in days.
func (md *Model) fitFourier(times []time.Time, detrended []float64, period float64, order int) []float64 {
	coeffs := make([]float64, 2*order)
	periodSec := period * 24 * 3600

	ridge := 0.0
	if md.cfg.SeasonalityPriorScale > 0 {
		ridge = 1.0 / (md.cfg.SeasonalityPriorScale * md.cfg.SeasonalityPriorScale)
	}

	for k := 1; k <= order; k++ {
		sinSum, cosSum := 0.0, 0.0
		sinSqSum, cosSqSum := 0.0, 0.0

		for i, ts := range times {
			phase := 2.0 * math.Pi * float64(k) * float64(ts.Unix()) / periodSec
			sinVal := math.Sin(phase)
			cosVal := math.Cos(phase)

			sinSum += detrended[i] * sinVal
			cosSum += detrended[i] * cosVal
			sinSqSum += sinVal * sinVal
			cosSqSum += cosVal * cosVal
		}

		if sinSqSum > 0 {
			coeffs[2*(k-1)] = sinSum / (sinSqSum + ridge)
		}
		if cosSqSum > 0 {
			coeffs[2*(k-1)+1] = cosSum / (cosSqSum + ridge)
		}
	}

	return coeffs
}

// fitRegressors solves the ridge system (XᵀX + Λ)β = Xᵀr on the residuals
// left after trend and seasonality, with a per-column penalty of
// 1/PriorScale².
func (md *Model) fitRegressors(times []time.Time, t, yNorm []float64, cols [][]float64) error {
	p := len(md.specs)
	if p == 0 {
		return nil
	}
	n := len(times)

	md.colMeans = make([]float64, p)
	md.colStds = make([]float64, p)
	for j, spec := range md.specs {
		md.colMeans[j] = 0
		md.colStds[j] = 1
		if spec.Standardize {
			md.colMeans[j] = mean(cols[j])
			if s := stddev(cols[j]); s > 0 {
				md.colStds[j] = s
			}
		}
	}

	resid := mat.NewVecDense(n, nil)
	for i := range t {
		r := yNorm[i] - md.trendAt(t[i]) - md.seasonalityAt(times[i])
		resid.SetVec(i, r)
	}

	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			x.Set(i, j, (cols[j][i]-md.colMeans[j])/md.colStds[j])
		}
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j, spec := range md.specs {
		lambda := 1.0
		if spec.PriorScale > 0 {
			lambda = 1.0 / (spec.PriorScale * spec.PriorScale)
		}
		xtx.Set(j, j, xtx.At(j, j)+lambda)
	}

	var xtr mat.VecDense
	xtr.MulVec(x.T(), resid)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xtr); err != nil {
		return fmt.Errorf("regressor coefficient solve: %w", err)
	}

	md.beta = make([]float64, p)
	for j := 0; j < p; j++ {
		md.beta[j] = beta.AtVec(j)
	}
	return nil
}

func (md *Model) seasonalityAt(ts time.Time) float64 {
	s := 0.0
	if md.cfg.YearlySeasonality && len(md.yearlyCoeffs) > 0 {
		s += fourierAt(md.yearlyCoeffs, ts, 365.25)
	}
	if md.cfg.WeeklySeasonality && len(md.weeklyCoeffs) > 0 {
		s += fourierAt(md.weeklyCoeffs, ts, 7.0)
	}
	if md.cfg.DailySeasonality && len(md.dailyCoeffs) > 0 {
		s += fourierAt(md.dailyCoeffs, ts, 1.0)
	}
	return s
}

func fourierAt(coeffs []float64, ts time.Time, period float64) float64 {
	periodSec := period * 24 * 3600
	tSec := float64(ts.Unix())

	result := 0.0
	order := len(coeffs) / 2
	for k := 1; k <= order; k++ {
		phase := 2.0 * math.Pi * float64(k) * tSec / periodSec
		result += coeffs[2*(k-1)] * math.Sin(phase)
		result += coeffs[2*(k-1)+1] * math.Cos(phase)
	}
	return result
}

// regressorEffect maps a raw regressor row through standardization and the
// fitted coefficients.
func (md *Model) regressorEffect(row []float64) float64 {
	if len(md.beta) == 0 || len(row) == 0 {
		return 0
	}
	effect := 0.0
	for j := range md.beta {
		if j >= len(row) {
			break
		}
		effect += md.beta[j] * (row[j] - md.colMeans[j]) / md.colStds[j]
	}
	return effect
}

// predict returns the point prediction at ts for the given regressor row
// (values aligned with the model's specs; nil when no regressors).
func (md *Model) predict(ts time.Time, row []float64) float64 {
	tNorm := (float64(ts.Unix()) - md.tMin) / md.tScale
	trend := md.trendAt(tNorm)
	seasonality := md.seasonalityAt(ts)
	regressors := md.regressorEffect(row)

	var prediction float64
	if md.cfg.SeasonalityMode == "multiplicative" {
		prediction = trend*(1+seasonality) + regressors
	} else {
		prediction = trend + seasonality + regressors
	}

	return prediction*md.yScale + md.yMin
}

// regressorRow extracts row i across the column slice.
func regressorRow(cols [][]float64, i int) []float64 {
	if len(cols) == 0 {
		return nil
	}
	row := make([]float64, len(cols))
	for j, col := range cols {
		row[j] = col[i]
	}
	return row
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 1.0
	}
	mu := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mu
		variance += diff * diff
	}
	variance /= float64(len(values))
	std := math.Sqrt(variance)
	if std == 0 {
		return 1.0
	}
	return std
}

// predictionInterval returns bounds at the configured interval width.
func predictionInterval(value, stdError, width float64) (lower, upper float64) {
	var z float64
	switch {
	case width >= 0.99:
		z = 2.576
	case width >= 0.95:
		z = 1.96
	case width >= 0.90:
		z = 1.645
	case width >= 0.80:
		z = 1.282
	default:
		z = 1.282
	}

	margin := z * stdError
	return value - margin, value + margin
}
