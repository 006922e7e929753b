package timeseries

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ReadMonthlyAnomalies reads a station CSV whose first column is the year
// and remaining twelve columns are monthly anomaly values, and flattens it
// into a series. A header row is skipped when its first field is not a
// number. Blank cells and "NaN" are gaps.
func ReadMonthlyAnomalies(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("timeseries: reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("timeseries: %s is empty", path)
	}
	if _, err := strconv.Atoi(strings.TrimSpace(records[0][0])); err != nil {
		records = records[1:]
	}

	years := make([]int, 0, len(records))
	rows := make([][]float64, 0, len(records))
	for _, rec := range records {
		if len(rec) != MonthsPerYear+1 {
			return nil, fmt.Errorf("timeseries: %s: row has %d columns, want %d", path, len(rec), MonthsPerYear+1)
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("timeseries: %s: bad year %q: %w", path, rec[0], err)
		}
		row := make([]float64, MonthsPerYear)
		for m := 0; m < MonthsPerYear; m++ {
			cell := strings.TrimSpace(rec[m+1])
			if cell == "" || strings.EqualFold(cell, "nan") {
				row[m] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("timeseries: %s: year %d month %d: bad value %q: %w", path, year, m+1, cell, err)
			}
			row[m] = v
		}
		years = append(years, year)
		rows = append(rows, row)
	}
	return FlattenMonthly(years, rows)
}

var monthHeader = []string{"Year", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// WriteMonthlyAnomalies writes a year-by-month anomaly table in the layout
// ReadMonthlyAnomalies expects. NaN cells are written blank.
func WriteMonthlyAnomalies(path string, years []int, rows [][]float64) error {
	if len(years) != len(rows) {
		return fmt.Errorf("timeseries: %d years but %d rows", len(years), len(rows))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(monthHeader); err != nil {
		return err
	}
	rec := make([]string, MonthsPerYear+1)
	for i, row := range rows {
		if len(row) != MonthsPerYear {
			return fmt.Errorf("timeseries: year %d has %d values, want %d", years[i], len(row), MonthsPerYear)
		}
		rec[0] = strconv.Itoa(years[i])
		for m, v := range row {
			if math.IsNaN(v) {
				rec[m+1] = ""
			} else {
				rec[m+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
