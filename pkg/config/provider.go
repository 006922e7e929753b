// Package config loads oceantrend configuration from YAML files or SQLite
// databases through a common provider interface.
package config

import "github.com/chrissnell/oceantrend/internal/trend"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Stations []StationData `json:"stations" yaml:"stations"`
	Analysis AnalysisData  `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Storage  StorageData   `json:"storage,omitempty" yaml:"storage,omitempty"`
	HTTP     *HTTPData     `json:"http,omitempty" yaml:"http,omitempty"`
}

// StationData holds configuration for one monthly anomaly record
type StationData struct {
	Name string `json:"name" yaml:"name"`
	File string `json:"file" yaml:"file"`
	// StripLeading/StripTrailing are the unusable observations at the
	// record ends, discarded before gap filling.
	StripLeading  int `json:"strip_leading,omitempty" yaml:"strip_leading,omitempty"`
	StripTrailing int `json:"strip_trailing,omitempty" yaml:"strip_trailing,omitempty"`
}

// AnalysisData holds the trend-analysis parameters shared by all stations
type AnalysisData struct {
	Trials         int     `json:"trials,omitempty" yaml:"trials,omitempty"`
	MaxLag         int     `json:"max_lag,omitempty" yaml:"max_lag,omitempty"`
	DeltaTauFactor float64 `json:"delta_tau_factor,omitempty" yaml:"delta_tau_factor,omitempty"`
	Backend        string  `json:"backend,omitempty" yaml:"backend,omitempty"`
	Workers        int     `json:"workers,omitempty" yaml:"workers,omitempty"`
	BaseSeed       int64   `json:"base_seed,omitempty" yaml:"base_seed,omitempty"`
}

// StorageData holds the configuration for result persistence
type StorageData struct {
	// ResultsDB is the SQLite database results are appended to. Empty
	// disables database persistence.
	ResultsDB string `json:"results_db,omitempty" yaml:"results_db,omitempty"`
	// ResultsCSV is the per-run CSV export path. Empty disables it.
	ResultsCSV string `json:"results_csv,omitempty" yaml:"results_csv,omitempty"`
}

// HTTPData holds the configuration for the results REST API
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
}

// TrendConfig converts the analysis section into the core configuration,
// leaving zero fields for the trend package's own defaults.
func (a AnalysisData) TrendConfig() trend.Config {
	return trend.Config{
		Trials:         a.Trials,
		MaxLag:         a.MaxLag,
		DeltaTauFactor: a.DeltaTauFactor,
		Backend:        a.Backend,
		Workers:        a.Workers,
		BaseSeed:       a.BaseSeed,
	}
}
