package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TheilSenExact is the from-scratch Theil-Sen estimator: the slope is the
// median of ALL pairwise slopes (y[j]-y[i])/(x[j]-x[i]) and the intercept
// the median of y - m*x. Unlike the subsampling TheilSen backend it is
// exact, and FitMatrix exposes the full pairwise-slope matrix for
// diagnostic use. Cost is O(n^2) in both time and memory.
type TheilSenExact struct{}

func (t *TheilSenExact) Name() string { return BackendTheilSenExact }

func (t *TheilSenExact) Fit(x, y []float64) (*Fit, error) {
	fit, _, err := t.FitMatrix(x, y)
	return fit, err
}

// FitMatrix fits the trend and also returns the pairwise-slope matrix:
// cc[i][j] holds the slope between observations i and j for j >= i, and
// NaN elsewhere (including the diagonal). Pairs with coincident predictor
// values produce non-finite entries and are excluded from the median.
func (t *TheilSenExact) FitMatrix(x, y []float64) (*Fit, [][]float64, error) {
	if err := checkObservations(x, y); err != nil {
		return nil, nil, err
	}
	n := len(x)

	cc := make([][]float64, n)
	finite := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		cc[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			cc[i][j] = math.NaN()
		}
		for j := i; j < n; j++ {
			s := (y[i] - y[j]) / (x[i] - x[j])
			cc[i][j] = s
			if !math.IsInf(s, 0) && !math.IsNaN(s) {
				finite = append(finite, s)
			}
		}
	}
	if len(finite) == 0 {
		return nil, cc, ErrDegenerateSeries
	}
	slope := median(finite)

	offsets := make([]float64, 0, n)
	for i := range x {
		if !math.IsInf(x[i], 0) && !math.IsNaN(x[i]) {
			offsets = append(offsets, y[i]-slope*x[i])
		}
	}
	intercept := median(offsets)

	fitted := make([]float64, n)
	for i, xi := range x {
		fitted[i] = intercept + slope*xi
	}
	fit := &Fit{
		Slope:     slope,
		Intercept: intercept,
		Fitted:    fitted,
		ResidDF:   n - 2,
	}
	if n > 2 {
		cl, err := ConfLimit(StandardErrorOfEstimate(y, fitted), float64(n), stat.StdDev(x, nil))
		if err != nil {
			return nil, cc, err
		}
		fit.ConfLimit95 = cl
	}
	return fit, cc, nil
}
