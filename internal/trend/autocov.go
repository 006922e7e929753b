package trend

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateSeries is returned when a series has zero variance or a zero
// integral timescale, which leaves the serial-correlation correction
// undefined.
var ErrDegenerateSeries = errors.New("trend: degenerate series (zero variance or zero timescale)")

// Autocovariance returns the lag-k autocovariance of y,
//
//	C(k) = 1/(N-1-k) * sum_{i=0}^{N-k-1} (y[i]-ybar)(y[i+k]-ybar),
//
// following Thomson & Emery (2014) eqn. 3.139a. The mean is the full-series
// mean; it is not re-centered per lag. The lag must satisfy 0 <= k < N-1,
// and the estimate is only statistically reliable for k well below N/2.
func Autocovariance(y []float64, k int) (float64, error) {
	n := len(y)
	if k < 0 {
		return 0, fmt.Errorf("trend: negative lag %d", k)
	}
	if k >= n-1 {
		return 0, fmt.Errorf("trend: lag %d out of range for series of length %d", k, n)
	}

	mean := stat.Mean(y, nil)
	var sum float64
	for i := 0; i < n-k; i++ {
		sum += (y[i] - mean) * (y[i+k] - mean)
	}
	return sum / float64(n-1-k), nil
}

// AutocovarianceFunc returns C(0..maxLag) as a slice of maxLag+1 values.
func AutocovarianceFunc(y []float64, maxLag int) ([]float64, error) {
	cc := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		c, err := Autocovariance(y, k)
		if err != nil {
			return nil, err
		}
		cc[k] = c
	}
	return cc, nil
}

// IntegralTimescale returns the discrete integral timescale of y, Thomson &
// Emery (2014) eqn. 3.137a: a trapezoidal integration of the normalized
// autocovariance over lags 0..m-1, with lag step dtau. The result is the
// characteristic decorrelation time in the units of dtau. m should be small
// relative to the record length (50 lags is the usual choice) because the
// autocovariance estimate becomes erratic as the lag approaches N/2.
func IntegralTimescale(dtau float64, y []float64, m int) (float64, error) {
	c0, err := Autocovariance(y, 0)
	if err != nil {
		return 0, err
	}
	if c0 == 0 {
		return 0, ErrDegenerateSeries
	}

	var T float64
	prev := c0
	for k := 0; k < m-1; k++ {
		next, err := Autocovariance(y, k+1)
		if err != nil {
			return 0, err
		}
		T += dtau / 2 * (next + prev)
		prev = next
	}
	return T * 2 / c0, nil
}

// EffectiveSampleSize returns N* = N*dt/T, the effective number of
// independent samples in a record of N observations with sampling step dt
// and integral timescale T. Thomson & Emery (2014) eqn. 3.138. Serial
// correlation gives T > dt and therefore N* < N.
func EffectiveSampleSize(n int, dt, T float64) (float64, error) {
	if T == 0 {
		return 0, ErrDegenerateSeries
	}
	return float64(n) * dt / T, nil
}
