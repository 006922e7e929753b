package trend

import (
	"gonum.org/v1/gonum/stat"
)

// OLS fits a trend by ordinary least squares. Its confidence limit uses the
// raw N-2 degrees of freedom, which overstates significance for serially
// correlated records; compare against the Thomson & Emery limit computed
// with the effective sample size.
type OLS struct{}

func (o *OLS) Name() string { return BackendOLS }

func (o *OLS) Fit(x, y []float64) (*Fit, error) {
	if err := checkObservations(x, y); err != nil {
		return nil, err
	}
	n := len(x)

	intercept, slope := stat.LinearRegression(x, y, nil, false)
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
			return nil, err
		}
		fit.ConfLimit95 = cl
	}
	return fit, nil
}
