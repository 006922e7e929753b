package trend

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Defaults for the Monte Carlo simulator and the analytic method.
const (
	DefaultTrials   = 500
	DefaultMaxLag   = 50
	DefaultBaseSeed = 42
)

// MonteCarloConfig controls a surrogate simulation run.
type MonteCarloConfig struct {
	// Trials is the number of surrogates to generate and refit. Zero means
	// DefaultTrials.
	Trials int
	// MaxLag bounds the per-trial autocovariance diagnostic. Zero means
	// DefaultMaxLag.
	MaxLag int
	// BaseSeed anchors the per-trial seed: trial t uses BaseSeed + t. The
	// formula makes trials reproducible regardless of execution order.
	// Zero means DefaultBaseSeed.
	BaseSeed int64
	// Backend refits the trend on each surrogate. Nil means ordinary least
	// squares.
	Backend Backend
}

// MonteCarloResult holds the output of a surrogate simulation run.
type MonteCarloResult struct {
	// Trends holds one fitted slope per surrogate trial.
	Trends []float64
	// MeanACVF and StdACVF summarize the per-trial autocovariance
	// diagnostics flattened across all lags and all trials. They are
	// scalar summaries, not per-lag curves. The per-lag estimates use
	// Autocovariance's 1/(N-1-k) normalization, so these run slightly
	// larger than summaries built on 1/N-normalized estimators.
	MeanACVF float64
	StdACVF  float64
	// MeanSpec is the power spectrum |FFT|^2/N averaged over all
	// surrogates; it should track the spectrum of the input residual.
	MeanSpec []float64
}

// MonteCarloTrend runs the surrogate trend simulation of Cummins & Masson
// (2014): for each trial it draws a phase-randomized surrogate of the
// detrended residual, refits a trend to (times, surrogate), and records the
// slope. The distribution of slopes is the null distribution against which
// the observed trend's confidence interval is set (see
// EmpiricalConfInterval).
//
// The first backend failure aborts the whole run; partial results are
// discarded rather than interpolated.
func MonteCarloTrend(cfg MonteCarloConfig, times, residual []float64) (*MonteCarloResult, error) {
	if len(times) != len(residual) {
		return nil, fmt.Errorf("trend: time and residual lengths differ (%d vs %d)", len(times), len(residual))
	}
	trials := cfg.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	maxLag := cfg.MaxLag
	if maxLag <= 0 {
		maxLag = DefaultMaxLag
	}
	baseSeed := cfg.BaseSeed
	if baseSeed == 0 {
		baseSeed = DefaultBaseSeed
	}
	backend := cfg.Backend
	if backend == nil {
		backend = &OLS{}
	}
	npts := len(residual)
	if maxLag >= npts-1 {
		return nil, fmt.Errorf("trend: max lag %d out of range for residual of length %d", maxLag, npts)
	}

	gen := NewSurrogateGenerator(residual)
	trends := make([]float64, trials)
	acvf := make([]float64, 0, trials*(maxLag+1))
	meanSpec := make([]float64, npts)

	for trial := 0; trial < trials; trial++ {
		rng := rand.New(rand.NewSource(baseSeed + int64(trial)))
		surrogate := gen.Generate(rng)
		gen.AccumulatePower(surrogate, meanSpec)

		fit, err := backend.Fit(times, surrogate)
		if err != nil {
			return nil, fmt.Errorf("trend: monte carlo trial %d (%s): %w", trial, backend.Name(), err)
		}
		trends[trial] = fit.Slope

		cc, err := AutocovarianceFunc(surrogate, maxLag)
		if err != nil {
			return nil, fmt.Errorf("trend: monte carlo trial %d: %w", trial, err)
		}
		acvf = append(acvf, cc...)
	}

	for i := range meanSpec {
		meanSpec[i] /= float64(trials)
	}

	return &MonteCarloResult{
		Trends:   trends,
		MeanACVF: stat.Mean(acvf, nil),
		StdACVF:  stat.PopStdDev(acvf, nil),
		MeanSpec: meanSpec,
	}, nil
}
