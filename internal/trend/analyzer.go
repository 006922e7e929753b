package trend

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Config is the configuration surface of a trend analysis run.
type Config struct {
	// Trials is the Monte Carlo trial count. Zero means DefaultTrials.
	Trials int
	// MaxLag is the number of autocovariance lags used for the integral
	// timescale and the per-trial diagnostics. Zero means DefaultMaxLag.
	MaxLag int
	// DeltaTauFactor multiplies the sampling step to form the lag step of
	// the integral timescale. Zero means 1.
	DeltaTauFactor float64
	// Backend names the regression estimator: "ols", "theilsen" or
	// "theilsen-exact". Empty means OLS.
	Backend string
	// Workers is the parallelism hint for the "theilsen" backend.
	Workers int
	// BaseSeed anchors the deterministic per-trial Monte Carlo seeds.
	// Zero means DefaultBaseSeed.
	BaseSeed int64
}

// Result is the per-record output of an analysis: the fitted trend plus the
// three confidence limits that bracket it. Slopes and limits are in value
// units per timestamp unit (degrees per year for fractional-year input);
// callers converting to per-century multiply by 100.
type Result struct {
	RecordLength int
	// RawDF is the uncorrected N-2 residual degrees of freedom.
	RawDF int
	// EffectiveDF is N*-2, with N* the autocorrelation-reduced effective
	// sample size.
	EffectiveDF float64
	Slope       float64
	Intercept   float64
	// NaiveConfLimit is the OLS 95% limit at N-2 degrees of freedom; it
	// overstates significance when the record is serially correlated.
	NaiveConfLimit float64
	// AnalyticConfLimit is the Thomson & Emery 95% limit at N*-2 degrees
	// of freedom.
	AnalyticConfLimit float64
	// MonteCarloConfLimit is the empirical 95% half-width from the
	// surrogate trend distribution.
	MonteCarloConfLimit float64
	// MonteCarlo keeps the simulation diagnostics (trend distribution,
	// autocovariance summary, mean power spectrum).
	MonteCarlo *MonteCarloResult
}

// Analyze runs the full trend-significance chain on a gap-free record:
// OLS detrend, integral timescale and effective sample size, analytic and
// naive confidence limits, and the Monte Carlo surrogate limit. times must
// be strictly increasing with uniform nominal spacing; values must contain
// no gaps (see the timeseries package for gap filling).
func Analyze(cfg Config, times, values []float64) (*Result, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("trend: time and value lengths differ (%d vs %d)", len(times), len(values))
	}
	n := len(values)
	if n < 3 {
		return nil, ErrTooFewObservations
	}
	maxLag := cfg.MaxLag
	if maxLag <= 0 {
		maxLag = DefaultMaxLag
	}
	dtFactor := cfg.DeltaTauFactor
	if dtFactor == 0 {
		dtFactor = 1
	}

	dt := times[1] - times[0]
	dtau := dtFactor * dt

	// The detrending fit is always least squares, whatever backend reports
	// the headline slope.
	ols := &OLS{}
	base, err := ols.Fit(times, values)
	if err != nil {
		return nil, err
	}
	residual := make([]float64, n)
	for i := range values {
		residual[i] = values[i] - base.Fitted[i]
	}

	T, err := IntegralTimescale(dtau, values, maxLag)
	if err != nil {
		return nil, err
	}
	nStar, err := EffectiveSampleSize(n, dt, T)
	if err != nil {
		return nil, err
	}

	sEta := StandardErrorOfEstimate(values, base.Fitted)
	sX := stat.StdDev(times, nil)
	analytic, err := ConfLimit(sEta, nStar, sX)
	if err != nil {
		return nil, err
	}

	backend, err := NewBackend(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, err
	}
	headline := base
	if backend.Name() != BackendOLS {
		headline, err = backend.Fit(times, values)
		if err != nil {
			return nil, err
		}
	}

	mc, err := MonteCarloTrend(MonteCarloConfig{
		Trials:   cfg.Trials,
		MaxLag:   maxLag,
		BaseSeed: cfg.BaseSeed,
		Backend:  backend,
	}, times, residual)
	if err != nil {
		return nil, err
	}
	interval, err := EmpiricalConfInterval(mc.Trends)
	if err != nil {
		return nil, err
	}

	return &Result{
		RecordLength:        n,
		RawDF:               n - 2,
		EffectiveDF:         nStar - 2,
		Slope:               headline.Slope,
		Intercept:           headline.Intercept,
		NaiveConfLimit:      base.ConfLimit95,
		AnalyticConfLimit:   analytic,
		MonteCarloConfLimit: interval.HalfWidth,
		MonteCarlo:          mc,
	}, nil
}
