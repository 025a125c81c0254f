package forecast

import (
	"math"

	"github.com/canopywatch/canopy-engine/pkg/apperrors"
)

// Order holds the ARIMA hyperparameters fitted offline: autoregressive
// terms, differencing degree, and moving-average terms.
type Order struct {
	P int `yaml:"p" json:"p"`
	D int `yaml:"d" json:"d"`
	Q int `yaml:"q" json:"q"`
}

// fittedARIMA is one record's independently fitted model. Nothing in it
// is shared across records; only the hyperparameter order is.
type fittedARIMA struct {
	order       Order
	mean        float64
	arCoeffs    []float64
	maCoeffs    []float64
	centered    []float64 // stationary series minus mean
	residuals   []float64
	residualStd float64
	lastLevels  []float64 // tail value at each integration level, lastLevels[0] = last observation
}

// fitARIMA fits the configured order to one historical series. The
// differencing degree is capped so at least two stationary points remain;
// with five yearly observations that keeps the fit defined for any
// persisted order.
func fitARIMA(values []float64, order Order) (*fittedARIMA, error) {
	d := order.D
	if d < 0 {
		d = 0
	}
	for d > 0 && len(values)-d < 2 {
		d--
	}

	stationary := difference(values, d)
	mean := meanOf(stationary)
	centered := make([]float64, len(stationary))
	for i, v := range stationary {
		centered[i] = v - mean
	}

	p := order.P
	if p > len(centered)-1 {
		p = len(centered) - 1
	}
	if p < 0 {
		p = 0
	}
	arCoeffs, err := fitAR(centered, p)
	if err != nil {
		return nil, err
	}

	residuals := computeResiduals(centered, arCoeffs, p)
	q := order.Q
	if q < 0 {
		q = 0
	}
	maCoeffs := fitMA(residuals, q)

	residualStd := 0.0
	if len(residuals) > 1 {
		var sumSq float64
		for _, r := range residuals {
			sumSq += r * r
		}
		residualStd = math.Sqrt(sumSq / float64(len(residuals)-1))
	}

	// Tail value at each integration level, needed to undo differencing
	// one forecast step at a time.
	lastLevels := make([]float64, d+1)
	level := values
	for k := 0; k <= d; k++ {
		lastLevels[k] = level[len(level)-1]
		level = difference(level, 1)
	}

	return &fittedARIMA{
		order:       Order{P: p, D: d, Q: q},
		mean:        mean,
		arCoeffs:    arCoeffs,
		maCoeffs:    maCoeffs,
		centered:    centered,
		residuals:   residuals,
		residualStd: residualStd,
		lastLevels:  lastLevels,
	}, nil
}

// forecastSteps produces h point forecasts in one pass so the step
// recursion (and therefore the interval widening) stays internally
// consistent across the horizon.
func (m *fittedARIMA) forecastSteps(h int) []float64 {
	z := append([]float64(nil), m.centered...)
	errs := append([]float64(nil), m.residuals...)
	levels := append([]float64(nil), m.lastLevels...)

	out := make([]float64, h)
	for t := 0; t < h; t++ {
		var zhat float64
		for i := 0; i < m.order.P && i < len(z); i++ {
			zhat += m.arCoeffs[i] * z[len(z)-1-i]
		}
		for j := 0; j < m.order.Q && j < len(errs); j++ {
			zhat += m.maCoeffs[j] * errs[len(errs)-1-j]
		}
		z = append(z, zhat)
		errs = append(errs, 0) // future shocks are their expectation

		// Undo differencing: the stationary-scale forecast increments
		// each integration level's running tail.
		value := zhat + m.mean
		for k := len(levels) - 2; k >= 0; k-- {
			value = levels[k] + value
			levels[k] = value
		}
		out[t] = value
	}
	return out
}

// stepStdErr is the forecast standard error t+1 steps out. Uncertainty
// widens with the square root of the horizon; a zero residual spread
// falls back to the offline RMSE so intervals never collapse to a point.
func (m *fittedARIMA) stepStdErr(t int, fallbackRMSE float64) float64 {
	se := m.residualStd
	if se <= 0 {
		se = fallbackRMSE
	}
	return se * math.Sqrt(float64(t+1))
}

func difference(series []float64, d int) []float64 {
	out := append([]float64(nil), series...)
	for ; d > 0 && len(out) > 1; d-- {
		next := make([]float64, len(out)-1)
		for i := range next {
			next[i] = out[i+1] - out[i]
		}
		out = next
	}
	return out
}

func meanOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

func varianceOf(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	mean := meanOf(series)
	var sumSq float64
	for _, v := range series {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(len(series))
}

// autocorr computes the lag-k autocorrelation of the series.
func autocorr(series []float64, lag int) float64 {
	if lag < 0 || lag >= len(series) {
		return 0
	}
	mean := meanOf(series)
	var c0, ck float64
	for i := range series {
		c0 += (series[i] - mean) * (series[i] - mean)
	}
	for i := 0; i < len(series)-lag; i++ {
		ck += (series[i] - mean) * (series[i+lag] - mean)
	}
	if c0 == 0 {
		return 0
	}
	return ck / c0
}

// fitAR estimates AR coefficients from the Yule-Walker equations via
// Levinson-Durbin. A near-constant series fits flat (all-zero
// coefficients) rather than failing.
func fitAR(centered []float64, p int) ([]float64, error) {
	if p == 0 {
		return nil, nil
	}
	if varianceOf(centered) < 1e-10 {
		return make([]float64, p), nil
	}

	acf := make([]float64, p+1)
	for k := 0; k <= p; k++ {
		acf[k] = autocorr(centered, k)
	}
	return levinsonDurbin(acf, p)
}

func levinsonDurbin(acf []float64, p int) ([]float64, error) {
	phi := make([][]float64, p+1)
	for i := range phi {
		phi[i] = make([]float64, p+1)
	}

	v := acf[0]
	for k := 1; k <= p; k++ {
		num := acf[k]
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
		}
		if v == 0 {
			return nil, &apperrors.FitFailureError{Reason: "levinson-durbin: zero innovation variance"}
		}
		phi[k][k] = num / v
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
		v *= 1 - phi[k][k]*phi[k][k]
		if v < 0 {
			return nil, &apperrors.FitFailureError{Reason: "levinson-durbin: negative innovation variance"}
		}
	}

	coeffs := make([]float64, p)
	for i := 0; i < p; i++ {
		coeffs[i] = phi[p][i+1]
	}
	return coeffs, nil
}

// computeResiduals replays one-step AR predictions over the fitted window.
func computeResiduals(centered []float64, arCoeffs []float64, p int) []float64 {
	if len(centered) <= p {
		return nil
	}
	residuals := make([]float64, len(centered)-p)
	for t := p; t < len(centered); t++ {
		var pred float64
		for i := 0; i < p && i < len(arCoeffs); i++ {
			pred += arCoeffs[i] * centered[t-1-i]
		}
		residuals[t-p] = centered[t] - pred
	}
	return residuals
}

// fitMA estimates MA coefficients from residual autocorrelations,
// shrinking any coefficient outside the invertible region.
func fitMA(residuals []float64, q int) []float64 {
	if q == 0 || len(residuals) == 0 {
		return nil
	}
	coeffs := make([]float64, q)
	for i := 0; i < q && i < len(residuals); i++ {
		coeffs[i] = autocorr(residuals, i+1)
	}
	for i := range coeffs {
		if math.Abs(coeffs[i]) > 1 {
			coeffs[i] = math.Copysign(0.9, coeffs[i])
		}
	}
	return coeffs
}
