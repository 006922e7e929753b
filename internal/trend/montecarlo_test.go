package trend

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func monthlyTimes(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 1990 + float64(i)/12
	}
	return x
}

func TestMonteCarloDeterminism(t *testing.T) {
	times := monthlyTimes(120)
	residual := testResidual(120, 21)
	cfg := MonteCarloConfig{Trials: 60, MaxLag: 12}

	a, err := MonteCarloTrend(cfg, times, residual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MonteCarloTrend(cfg, times, residual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(a.Trends, b.Trends) {
		t.Error("repeated runs with the same base seed produced different trend arrays")
	}
	if a.MeanACVF != b.MeanACVF || a.StdACVF != b.StdACVF {
		t.Error("repeated runs produced different autocovariance summaries")
	}
	if !reflect.DeepEqual(a.MeanSpec, b.MeanSpec) {
		t.Error("repeated runs produced different mean power spectra")
	}
}

func TestMonteCarloSeedChangesTrends(t *testing.T) {
	times := monthlyTimes(120)
	residual := testResidual(120, 21)

	a, err := MonteCarloTrend(MonteCarloConfig{Trials: 40, MaxLag: 10, BaseSeed: 42}, times, residual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := MonteCarloTrend(MonteCarloConfig{Trials: 40, MaxLag: 10, BaseSeed: 1042}, times, residual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reflect.DeepEqual(a.Trends, b.Trends) {
		t.Error("different base seeds produced identical trend arrays")
	}
}

func TestMonteCarloShapes(t *testing.T) {
	times := monthlyTimes(96)
	residual := testResidual(96, 33)

	res, err := MonteCarloTrend(MonteCarloConfig{Trials: 25, MaxLag: 8}, times, residual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trends) != 25 {
		t.Errorf("trend count = %d, want 25", len(res.Trends))
	}
	if len(res.MeanSpec) != 96 {
		t.Errorf("mean spectrum length = %d, want 96", len(res.MeanSpec))
	}
	if res.StdACVF < 0 {
		t.Errorf("negative autocovariance stddev %g", res.StdACVF)
	}
}

type failingBackend struct {
	failAt int
	calls  int
}

func (f *failingBackend) Name() string { return "failing" }

func (f *failingBackend) Fit(x, y []float64) (*Fit, error) {
	f.calls++
	if f.calls > f.failAt {
		return nil, fmt.Errorf("%w: [0.1 0.2]", ErrBackendInconsistent)
	}
	return (&OLS{}).Fit(x, y)
}

// A backend failure mid-run aborts the whole simulation; no partial trend
// distribution is returned.
func TestMonteCarloAbortsOnBackendFailure(t *testing.T) {
	times := monthlyTimes(96)
	residual := testResidual(96, 4)

	res, err := MonteCarloTrend(MonteCarloConfig{
		Trials:  30,
		MaxLag:  8,
		Backend: &failingBackend{failAt: 10},
	}, times, residual)
	if !errors.Is(err, ErrBackendInconsistent) {
		t.Fatalf("expected ErrBackendInconsistent, got %v", err)
	}
	if res != nil {
		t.Error("expected no partial result after backend failure")
	}
}

func TestMonteCarloInputValidation(t *testing.T) {
	if _, err := MonteCarloTrend(MonteCarloConfig{}, monthlyTimes(10), testResidual(12, 1)); err == nil {
		t.Error("expected error for mismatched input lengths")
	}
	// Default max lag of 50 cannot be computed on a 40-point residual.
	if _, err := MonteCarloTrend(MonteCarloConfig{}, monthlyTimes(40), testResidual(40, 1)); err == nil {
		t.Error("expected error for max lag exceeding record length")
	}
}
