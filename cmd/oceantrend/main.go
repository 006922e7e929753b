// oceantrend estimates long-term linear trends in monthly ocean temperature
// anomaly records with confidence limits corrected for serial correlation:
// the Thomson & Emery effective-degrees-of-freedom method and a Monte Carlo
// phase-randomized surrogate method.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/chrissnell/oceantrend/internal/log"
	"github.com/chrissnell/oceantrend/internal/server"
	"github.com/chrissnell/oceantrend/internal/storage"
	"github.com/chrissnell/oceantrend/internal/timeseries"
	"github.com/chrissnell/oceantrend/internal/trend"
	"github.com/chrissnell/oceantrend/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source (YAML file or SQLite database)")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	trials := flag.Int("trials", 0, "Override the configured number of Monte Carlo trials")
	regBackend := flag.String("backend", "", "Override the configured regression backend (ols, theilsen, theilsen-exact)")
	serve := flag.Bool("serve", false, "Serve the results REST API after the analysis completes")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("oceantrend %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	if *trials > 0 {
		cfgData.Analysis.Trials = *trials
	}
	if *regBackend != "" {
		cfgData.Analysis.Backend = *regBackend
	}
	trendCfg := cfgData.Analysis.TrendConfig()

	var store *storage.TrendStore
	var run *storage.Run
	if cfgData.Storage.ResultsDB != "" {
		store, err = storage.New(cfgData.Storage.ResultsDB, log.GetSugaredLogger())
		if err != nil {
			log.Errorf("Failed to open results database: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		run, err = store.BeginRun(trendCfg)
		if err != nil {
			log.Errorf("Failed to record run: %v", err)
			os.Exit(1)
		}
	}

	var exported []storage.StationTrend
	failed := 0
	for _, station := range cfgData.Stations {
		result, err := analyzeStation(trendCfg, station)
		if err != nil {
			// One bad record must not sink the others.
			log.Errorf("Station %s failed: %v", station.Name, err)
			failed++
			continue
		}

		log.Infow("station analyzed",
			"station", station.Name,
			"n", result.RecordLength,
			"raw_df", result.RawDF,
			"effective_df", fmt.Sprintf("%.1f", result.EffectiveDF),
			"trend_per_century", fmt.Sprintf("%.4f", result.Slope*100),
			"naive_cl", fmt.Sprintf("%.4f", result.NaiveConfLimit*100),
			"analytic_cl", fmt.Sprintf("%.4f", result.AnalyticConfLimit*100),
			"monte_carlo_cl", fmt.Sprintf("%.4f", result.MonteCarloConfLimit*100),
		)

		row := storage.StationTrend{
			Station:          station.Name,
			RecordLength:     result.RecordLength,
			RawDF:            result.RawDF,
			EffectiveDF:      result.EffectiveDF,
			SlopePerCentury:  result.Slope * 100,
			NaiveCLimit:      result.NaiveConfLimit * 100,
			AnalyticCLimit:   result.AnalyticConfLimit * 100,
			MonteCarloCLimit: result.MonteCarloConfLimit * 100,
		}
		if run != nil {
			row.RunID = run.ID
			if err := store.SaveTrend(run.ID, station.Name, result); err != nil {
				log.Errorf("Failed to persist %s: %v", station.Name, err)
			}
		}
		exported = append(exported, row)
	}

	if cfgData.Storage.ResultsCSV != "" && len(exported) > 0 {
		if err := storage.WriteResultsCSV(cfgData.Storage.ResultsCSV, exported); err != nil {
			log.Errorf("Failed to write CSV export: %v", err)
		} else {
			log.Infof("Wrote %d results to %s", len(exported), cfgData.Storage.ResultsCSV)
		}
	}

	if failed == len(cfgData.Stations) {
		log.Errorf("All %d stations failed", failed)
		os.Exit(1)
	}

	if *serve {
		if store == nil || cfgData.HTTP == nil || cfgData.HTTP.ListenAddr == "" {
			log.Errorf("-serve requires storage.results_db and http.listen_addr in the configuration")
			os.Exit(1)
		}
		srv := server.New(cfgData.HTTP.ListenAddr, store, log.GetSugaredLogger())
		if err := srv.ListenAndServe(); err != nil {
			log.Errorf("Results API error: %v", err)
			os.Exit(1)
		}
	}
}

// analyzeStation runs the full pipeline for one record: read, strip the
// unusable record ends, fill interior gaps, analyze.
func analyzeStation(cfg trend.Config, station config.StationData) (*trend.Result, error) {
	series, err := timeseries.ReadMonthlyAnomalies(station.File)
	if err != nil {
		return nil, err
	}
	series, err = series.Strip(station.StripLeading, station.StripTrailing)
	if err != nil {
		return nil, err
	}
	if err := series.FillGaps(); err != nil {
		return nil, err
	}
	return trend.Analyze(cfg, series.Times, series.Values)
}

// loadConfig creates the appropriate configuration provider and loads the
// configuration.
func loadConfig(cfgFile, backend string) (*config.ConfigData, error) {
	var provider config.ConfigProvider

	switch strings.ToLower(backend) {
	case "yaml":
		provider = config.NewYAMLProvider(cfgFile)
	case "sqlite":
		p, err := config.NewSQLiteProvider(cfgFile)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unknown config backend %q (use 'yaml' or 'sqlite')", backend)
	}
	defer provider.Close()

	return provider.LoadConfig()
}
