package trend

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoStraddle is returned when no histogram bin pair straddles a target
// cumulative level, which happens for degenerate simulated distributions.
// The policy is to fail the run rather than clamp to the outermost bin.
var ErrNoStraddle = errors.New("trend: no histogram bin straddles the target cumulative level")

// EmpiricalInterval is a two-sided confidence interval read off the
// histogram of a simulated trend distribution.
type EmpiricalInterval struct {
	Lower     float64
	Upper     float64
	HalfWidth float64
}

// EmpiricalConfInterval converts simulated trend slopes into a two-sided
// 95% confidence interval. The slopes are histogrammed into 100 bins when
// there are at least 500 of them, else 5 (the resolution achievable at low
// trial counts), with linear bin edges spanning the sample range.
//
// The empirical CDF is evaluated at the LEFT edge of each bin and excludes
// the bin's own count: CDF[k] = sum_{j<k} count[j] / M. The convention is
// asymmetric on purpose and pinned by tests; changing it moves reported
// bounds by up to one bin width. Each confidence bound is the midpoint of
// the first bin whose edges straddle the 2.5% or 97.5% level, not an
// interpolated position within it.
func EmpiricalConfInterval(trends []float64) (*EmpiricalInterval, error) {
	m := len(trends)
	if m == 0 {
		return nil, fmt.Errorf("trend: empty trend distribution")
	}
	nbins := 5
	if m >= 500 {
		nbins = 100
	}

	lo := floats.Min(trends)
	hi := floats.Max(trends)
	if lo == hi {
		return nil, fmt.Errorf("trend: constant trend distribution (%g): %w", lo, ErrNoStraddle)
	}

	sorted := append([]float64(nil), trends...)
	sort.Float64s(sorted)
	dividers := make([]float64, nbins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram needs every sample strictly below the last divider;
	// nudging it one ulp up puts the maximum in the top bin instead of
	// panicking.
	dividers[nbins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	cdf := make([]float64, nbins)
	var run float64
	for k := 0; k < nbins; k++ {
		cdf[k] = run
		run += counts[k] / float64(m)
	}

	const alimLow, alimHigh = 0.025, 0.975
	var lower, upper float64
	var haveLower, haveUpper bool
	for n := 0; n < nbins-1; n++ {
		if cdf[n] < alimLow && alimLow <= cdf[n+1] {
			lower = 0.5 * (dividers[n] + dividers[n+1])
			haveLower = true
		}
		if cdf[n] <= alimHigh && alimHigh < cdf[n+1] {
			upper = 0.5 * (dividers[n] + dividers[n+1])
			haveUpper = true
		}
	}
	if !haveLower {
		return nil, fmt.Errorf("trend: lower bound at %.3f: %w", alimLow, ErrNoStraddle)
	}
	if !haveUpper {
		return nil, fmt.Errorf("trend: upper bound at %.3f: %w", alimHigh, ErrNoStraddle)
	}

	return &EmpiricalInterval{
		Lower:     lower,
		Upper:     upper,
		HalfWidth: 0.5 * (upper - lower),
	}, nil
}
