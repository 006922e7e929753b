package storage

import (
	"encoding/csv"
	"os"
	"strconv"
)

var csvHeader = []string{
	"Station",
	"Record length",
	"Original degrees of freedom",
	"Effective degrees of freedom",
	"Trend [deg C/century]",
	"Original confidence limit [deg C/century]",
	"Effective confidence limit [deg C/century]",
	"Monte Carlo confidence limit [deg C/century]",
}

// WriteResultsCSV exports per-station results as CSV, one row per station.
func WriteResultsCSV(path string, trends []StationTrend) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range trends {
		rec := []string{
			t.Station,
			strconv.Itoa(t.RecordLength),
			strconv.Itoa(t.RawDF),
			strconv.FormatFloat(t.EffectiveDF, 'f', 3, 64),
			strconv.FormatFloat(t.SlopePerCentury, 'f', 4, 64),
			strconv.FormatFloat(t.NaiveCLimit, 'f', 4, 64),
			strconv.FormatFloat(t.AnalyticCLimit, 'f', 4, 64),
			strconv.FormatFloat(t.MonteCarloCLimit, 'f', 4, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
