package trend

import (
	"errors"
	"math"
	"testing"
)

// line returns n observations of y = a*x + b on integer x.
func line(n int, a, b float64) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = a*float64(i) + b
	}
	return x, y
}

func TestOLSExactLine(t *testing.T) {
	x, y := line(10, 0.5, 0.25)

	fit, err := (&OLS{}).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(fit.Slope-0.5) > 1e-12 {
		t.Errorf("slope = %g, want 0.5", fit.Slope)
	}
	if math.Abs(fit.Intercept-0.25) > 1e-12 {
		t.Errorf("intercept = %g, want 0.25", fit.Intercept)
	}
	if fit.ResidDF != 8 {
		t.Errorf("residual df = %d, want 8", fit.ResidDF)
	}
	if len(fit.Fitted) != 10 {
		t.Fatalf("fitted length = %d, want 10", len(fit.Fitted))
	}
	for i := range y {
		if math.Abs(fit.Fitted[i]-y[i]) > 1e-10 {
			t.Errorf("fitted[%d] = %g, want %g", i, fit.Fitted[i], y[i])
		}
	}
	// Noise-free record: the confidence limit collapses toward zero.
	if fit.ConfLimit95 > 1e-9 {
		t.Errorf("confidence limit = %g for noise-free line, want ~0", fit.ConfLimit95)
	}
}

func TestTheilSenExactPerfectLine(t *testing.T) {
	// 0.5 and 0.25 are exactly representable, so every pairwise slope is
	// exactly 0.5 and the median is exact.
	x, y := line(30, 0.5, 0.25)

	fit, cc, err := (&TheilSenExact{}).FitMatrix(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit.Slope != 0.5 {
		t.Errorf("slope = %g, want exactly 0.5", fit.Slope)
	}
	if fit.Intercept != 0.25 {
		t.Errorf("intercept = %g, want exactly 0.25", fit.Intercept)
	}

	if len(cc) != 30 || len(cc[0]) != 30 {
		t.Fatalf("slope matrix is %dx%d, want 30x30", len(cc), len(cc[0]))
	}
	if !math.IsNaN(cc[0][0]) {
		t.Errorf("diagonal entry = %g, want NaN", cc[0][0])
	}
	if !math.IsNaN(cc[5][2]) {
		t.Errorf("lower-triangle entry = %g, want NaN", cc[5][2])
	}
	if cc[0][1] != 0.5 {
		t.Errorf("cc[0][1] = %g, want 0.5", cc[0][1])
	}
}

func TestTheilSenRobustToOutliers(t *testing.T) {
	x, y := line(60, 0.5, 0.25)
	// Corrupt a handful of responses; the median of pairwise slopes should
	// shrug them off where OLS would not.
	y[5] += 40
	y[23] -= 25
	y[48] += 100

	for _, backend := range []Backend{&TheilSen{}, &TheilSenExact{}} {
		fit, err := backend.Fit(x, y)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", backend.Name(), err)
		}
		if math.Abs(fit.Slope-0.5) > 0.02 {
			t.Errorf("%s: slope = %g with outliers, want ~0.5", backend.Name(), fit.Slope)
		}
	}

	olsFit, err := (&OLS{}).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(olsFit.Slope-0.5) < 0.02 {
		t.Errorf("OLS slope = %g unexpectedly unaffected by outliers", olsFit.Slope)
	}
}

// The worker count is a performance hint; the slope must not depend on it.
func TestTheilSenWorkersDoNotChangeResult(t *testing.T) {
	x, y := line(80, -0.3, 1.0)
	y[10] += 5
	y[60] -= 3

	serial, err := (&TheilSen{Workers: 1}).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, workers := range []int{2, 4, 7} {
		parallel, err := (&TheilSen{Workers: workers}).Fit(x, y)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		if parallel.Slope != serial.Slope || parallel.Intercept != serial.Intercept {
			t.Errorf("workers=%d: fit (%g, %g) differs from serial (%g, %g)",
				workers, parallel.Slope, parallel.Intercept, serial.Slope, serial.Intercept)
		}
	}
}

func TestTheilSenSubsamplingDeterministic(t *testing.T) {
	// 200 observations give 19900 pairs, above the default cap of 10000,
	// so the backend subsamples. Repeated fits must agree.
	x, y := line(200, 0.02, 0.0)
	for i := range y {
		y[i] += 0.1 * math.Sin(float64(i)*1.3)
	}

	a, err := (&TheilSen{}).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := (&TheilSen{}).Fit(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Slope != b.Slope {
		t.Errorf("subsampled fits differ: %g vs %g", a.Slope, b.Slope)
	}
	if math.Abs(a.Slope-0.02) > 0.005 {
		t.Errorf("slope = %g, want ~0.02", a.Slope)
	}
}

func TestBackendsRejectTooFewObservations(t *testing.T) {
	backends := []Backend{&OLS{}, &TheilSen{}, &TheilSenExact{}}
	for _, b := range backends {
		if _, err := b.Fit([]float64{1}, []float64{2}); !errors.Is(err, ErrTooFewObservations) {
			t.Errorf("%s: expected ErrTooFewObservations, got %v", b.Name(), err)
		}
		if _, err := b.Fit(nil, nil); !errors.Is(err, ErrTooFewObservations) {
			t.Errorf("%s: expected ErrTooFewObservations for empty input, got %v", b.Name(), err)
		}
	}
}

func TestBackendsRejectLengthMismatch(t *testing.T) {
	for _, b := range []Backend{&OLS{}, &TheilSen{}, &TheilSenExact{}} {
		if _, err := b.Fit([]float64{1, 2, 3}, []float64{1, 2}); err == nil {
			t.Errorf("%s: expected error for mismatched lengths", b.Name())
		}
	}
}

func TestTheilSenDegeneratePredictor(t *testing.T) {
	// All predictor values coincide: every pairwise slope is non-finite and
	// the coefficient vector comes back empty.
	x := []float64{2, 2, 2, 2}
	y := []float64{1, 3, 2, 5}
	if _, err := (&TheilSen{}).Fit(x, y); !errors.Is(err, ErrBackendInconsistent) {
		t.Errorf("expected ErrBackendInconsistent, got %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name     string
		backend  string
		wantName string
		wantErr  bool
	}{
		{"default is ols", "", BackendOLS, false},
		{"ols", "ols", BackendOLS, false},
		{"theilsen", "theilsen", BackendTheilSen, false},
		{"theilsen-exact", "theilsen-exact", BackendTheilSenExact, false},
		{"unknown", "ransac", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(tt.backend, 2)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for backend %q", tt.backend)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Name() != tt.wantName {
				t.Errorf("backend name = %q, want %q", b.Name(), tt.wantName)
			}
		})
	}
}
