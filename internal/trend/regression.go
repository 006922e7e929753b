package trend

import (
	"errors"
	"fmt"
	"sort"
)

// Regression backend names accepted by NewBackend.
const (
	BackendOLS           = "ols"
	BackendTheilSen      = "theilsen"
	BackendTheilSenExact = "theilsen-exact"
)

// ErrTooFewObservations is returned when a backend is given fewer than two
// observations.
var ErrTooFewObservations = errors.New("trend: need at least 2 observations")

// ErrBackendInconsistent is returned when a backend's internal solve yields
// an unexpected coefficient vector, which signals a malformed input design.
// The Monte Carlo simulator treats this as a hard abort.
var ErrBackendInconsistent = errors.New("trend: regression backend produced an inconsistent coefficient vector")

// Fit holds the result of a linear trend fit.
type Fit struct {
	Slope     float64
	Intercept float64
	// Fitted holds the trend line evaluated at each input timestamp.
	Fitted  []float64
	ResidDF int
	// ConfLimit95 is the half-width of the two-sided 95% confidence
	// interval on the slope, computed from the fit residuals with the raw
	// (uncorrected) degrees of freedom.
	ConfLimit95 float64
}

// Backend fits a linear trend to parallel predictor/response slices. Inputs
// must be the same length and contain no missing values; gap filling is the
// caller's job.
type Backend interface {
	Name() string
	Fit(x, y []float64) (*Fit, error)
}

// NewBackend returns the regression backend with the given name. An empty
// name selects ordinary least squares. The workers hint only affects the
// "theilsen" backend, which distributes its pairwise-slope search across
// that many goroutines.
func NewBackend(name string, workers int) (Backend, error) {
	switch name {
	case "", BackendOLS:
		return &OLS{}, nil
	case BackendTheilSen:
		return &TheilSen{Workers: workers}, nil
	case BackendTheilSenExact:
		return &TheilSenExact{}, nil
	}
	return nil, fmt.Errorf("trend: unknown regression backend %q", name)
}

func checkObservations(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("trend: predictor and response lengths differ (%d vs %d)", len(x), len(y))
	}
	if len(x) < 2 {
		return ErrTooFewObservations
	}
	return nil
}

// median matches numpy's convention: the mean of the two middle values for
// an even count.
func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}
