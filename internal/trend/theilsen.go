package trend

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// defaultMaxSubpopulation bounds the number of observation pairs examined
// by the TheilSen backend, matching scikit-learn's max_subpopulation.
const defaultMaxSubpopulation = 10000

// TheilSen estimates the trend as the median of pairwise slopes over a
// bounded random subpopulation of observation pairs. It is robust to
// outliers in the response. The pairwise-slope search is distributed over
// Workers goroutines; the concurrency is internal and the call blocks until
// the fit completes.
type TheilSen struct {
	// Workers is the parallelism hint for the pairwise-slope search. Zero
	// or one means serial.
	Workers int
	// MaxSubpopulation caps how many pairs are examined. When the full
	// pair population exceeds the cap, pairs are subsampled with a fixed
	// seed so repeated fits are reproducible. Zero means the default of
	// 10000.
	MaxSubpopulation int
	// Seed fixes the pair subsampling. Zero means 42.
	Seed int64
}

func (t *TheilSen) Name() string { return BackendTheilSen }

func (t *TheilSen) Fit(x, y []float64) (*Fit, error) {
	if err := checkObservations(x, y); err != nil {
		return nil, err
	}
	n := len(x)

	pairs := t.selectPairs(n)
	slopes := t.pairwiseSlopes(x, y, pairs)

	// A single-predictor design must reduce to exactly one slope
	// coefficient. Anything else signals a malformed design matrix and
	// aborts the caller's run.
	coef := slopeCoefficients(slopes)
	if len(coef) != 1 {
		return nil, fmt.Errorf("%w: %v", ErrBackendInconsistent, coef)
	}
	slope := coef[0]

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
			return nil, err
		}
		fit.ConfLimit95 = cl
	}
	return fit, nil
}

// selectPairs returns the (i,j) index pairs to examine: every i<j pair when
// they fit under the subpopulation cap, otherwise a reproducible random
// sample of that size.
func (t *TheilSen) selectPairs(n int) [][2]int {
	maxPop := t.MaxSubpopulation
	if maxPop <= 0 {
		maxPop = defaultMaxSubpopulation
	}
	total := n * (n - 1) / 2
	if total <= maxPop {
		pairs := make([][2]int, 0, total)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, [2]int{i, j})
			}
		}
		return pairs
	}

	seed := t.Seed
	if seed == 0 {
		seed = 42
	}
	rng := rand.New(rand.NewSource(seed))
	pairs := make([][2]int, maxPop)
	for k := range pairs {
		i := rng.Intn(n)
		j := rng.Intn(n - 1)
		if j >= i {
			j++
		}
		if i > j {
			i, j = j, i
		}
		pairs[k] = [2]int{i, j}
	}
	return pairs
}

// pairwiseSlopes computes the slope of each pair, chunked across the
// configured number of workers. Non-finite slopes (coincident predictor
// values) are discarded.
func (t *TheilSen) pairwiseSlopes(x, y []float64, pairs [][2]int) []float64 {
	workers := t.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	chunks := make([][]float64, workers)
	chunkSize := (len(pairs) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunkSize
		hi := lo + chunkSize
		if hi > len(pairs) {
			hi = len(pairs)
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			out := make([]float64, 0, hi-lo)
			for _, p := range pairs[lo:hi] {
				s := (y[p[1]] - y[p[0]]) / (x[p[1]] - x[p[0]])
				if !math.IsInf(s, 0) && !math.IsNaN(s) {
					out = append(out, s)
				}
			}
			chunks[w] = out
		}(w, lo, hi)
	}
	wg.Wait()

	var slopes []float64
	for _, c := range chunks {
		slopes = append(slopes, c...)
	}
	return slopes
}

// slopeCoefficients reduces the pairwise slopes to the coefficient vector
// of the fit: one entry per non-intercept predictor. An empty vector means
// no finite pairwise slope existed.
func slopeCoefficients(slopes []float64) []float64 {
	if len(slopes) == 0 {
		return nil
	}
	return []float64{median(slopes)}
}
