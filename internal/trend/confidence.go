package trend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StandardErrorOfEstimate returns s_eta, the standard error of the estimate
// for a fitted trend line (Thomson & Emery 2014, eqn. 3.134):
// sqrt( sum (y - yhat)^2 / (N-2) ).
func StandardErrorOfEstimate(y, fitted []float64) float64 {
	n := len(y)
	var ss float64
	for i := range y {
		d := y[i] - fitted[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-2))
}

// ConfLimit returns the two-sided 95% confidence limit on a least-squares
// slope (Thomson & Emery 2014, eqn. 3.136a):
//
//	CI = s_eta * t_{0.975, N*-2} / ( sqrt(N*-1) * s_x )
//
// where nStar is the effective sample size and sX the standard deviation of
// the predictor. Passing nStar = N gives the naive, uncorrected limit;
// passing the autocorrelation-reduced N* widens the interval accordingly.
func ConfLimit(sEta, nStar, sX float64) (float64, error) {
	df := nStar - 2
	if df <= 0 {
		return 0, fmt.Errorf("trend: nonpositive degrees of freedom %.3f (effective sample size %.3f)", df, nStar)
	}
	tcrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(0.975)
	return sEta * tcrit / (math.Sqrt(nStar-1) * sX), nil
}
