// Package timeseries prepares monthly anomaly records for trend analysis:
// reshaping year-by-month tables into one-dimensional series, stripping
// unusable record ends, and filling interior gaps by linear interpolation.
// The trend package consumes only gap-free output from here.
package timeseries

import (
	"fmt"
	"math"
)

// MonthsPerYear is the number of columns in a monthly anomaly table.
const MonthsPerYear = 12

// Series is a uniformly sampled record with fractional-year timestamps.
// Values may contain NaN gaps until FillGaps has been applied.
type Series struct {
	Times  []float64
	Values []float64
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.Values) }

// TimeStep returns the nominal sampling step (one month, in years, for
// monthly records).
func (s *Series) TimeStep() float64 {
	return s.Times[1] - s.Times[0]
}

// FlattenMonthly reshapes a year-by-month table into a one-dimensional
// series. rows[i] holds the twelve monthly values for years[i]; the
// timestamp of month m in year y is y + m/12. Gaps (NaN cells) are
// preserved.
func FlattenMonthly(years []int, rows [][]float64) (*Series, error) {
	if len(years) != len(rows) {
		return nil, fmt.Errorf("timeseries: %d years but %d rows", len(years), len(rows))
	}
	s := &Series{
		Times:  make([]float64, 0, len(rows)*MonthsPerYear),
		Values: make([]float64, 0, len(rows)*MonthsPerYear),
	}
	for i, row := range rows {
		if len(row) != MonthsPerYear {
			return nil, fmt.Errorf("timeseries: year %d has %d values, want %d", years[i], len(row), MonthsPerYear)
		}
		for m, v := range row {
			s.Times = append(s.Times, float64(years[i])+float64(m)/MonthsPerYear)
			s.Values = append(s.Values, v)
		}
	}
	return s, nil
}

// Strip returns a copy of the series with the given number of leading and
// trailing observations removed. Records carry unusable runs of missing
// months at their ends; stripping them avoids extrapolating during gap
// filling.
func (s *Series) Strip(leading, trailing int) (*Series, error) {
	if leading < 0 || trailing < 0 {
		return nil, fmt.Errorf("timeseries: negative strip counts (%d, %d)", leading, trailing)
	}
	if leading+trailing >= s.Len() {
		return nil, fmt.Errorf("timeseries: stripping %d+%d observations from a record of %d", leading, trailing, s.Len())
	}
	end := s.Len() - trailing
	return &Series{
		Times:  append([]float64(nil), s.Times[leading:end]...),
		Values: append([]float64(nil), s.Values[leading:end]...),
	}, nil
}

// FillGaps replaces interior NaN runs with first-order (linear)
// interpolation between the bracketing observations, in place. The series
// must not begin or end with a gap; use Strip first.
func (s *Series) FillGaps() error {
	n := s.Len()
	if n == 0 {
		return fmt.Errorf("timeseries: empty series")
	}
	if math.IsNaN(s.Values[0]) || math.IsNaN(s.Values[n-1]) {
		return fmt.Errorf("timeseries: series begins or ends with a gap; strip record ends first")
	}

	last := 0 // index of the most recent observed value
	for i := 1; i < n; i++ {
		if math.IsNaN(s.Values[i]) {
			continue
		}
		if i > last+1 {
			t0, v0 := s.Times[last], s.Values[last]
			t1, v1 := s.Times[i], s.Values[i]
			for j := last + 1; j < i; j++ {
				s.Values[j] = v0 + (v1-v0)*(s.Times[j]-t0)/(t1-t0)
			}
		}
		last = i
	}
	return nil
}

// HasGaps reports whether any value is missing.
func (s *Series) HasGaps() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
