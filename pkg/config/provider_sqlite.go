package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	stations, err := s.GetStations()
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("config: %s defines no stations", s.dbPath)
	}
	config.Stations = stations

	analysis, err := s.GetAnalysis()
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis settings: %w", err)
	}
	config.Analysis = *analysis

	storage, err := s.GetStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	httpData, err := s.GetHTTP()
	if err != nil {
		return nil, fmt.Errorf("failed to load http config: %w", err)
	}
	config.HTTP = httpData

	return config, nil
}

// GetStations returns station configurations from the database
func (s *SQLiteProvider) GetStations() ([]StationData, error) {
	rows, err := s.db.Query(`
		SELECT name, file, strip_leading, strip_trailing
		FROM stations
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []StationData
	for rows.Next() {
		var st StationData
		if err := rows.Scan(&st.Name, &st.File, &st.StripLeading, &st.StripTrailing); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// GetAnalysis returns the analysis settings row, or defaults when absent
func (s *SQLiteProvider) GetAnalysis() (*AnalysisData, error) {
	a := &AnalysisData{}
	err := s.db.QueryRow(`
		SELECT trials, max_lag, delta_tau_factor, backend, workers, base_seed
		FROM analysis
		LIMIT 1`).Scan(&a.Trials, &a.MaxLag, &a.DeltaTauFactor, &a.Backend, &a.Workers, &a.BaseSeed)
	if err == sql.ErrNoRows {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis settings: %w", err)
	}
	return a, nil
}

// GetStorage returns the result persistence settings, or defaults when absent
func (s *SQLiteProvider) GetStorage() (*StorageData, error) {
	st := &StorageData{}
	err := s.db.QueryRow(`
		SELECT results_db, results_csv
		FROM storage
		LIMIT 1`).Scan(&st.ResultsDB, &st.ResultsCSV)
	if err == sql.ErrNoRows {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}
	return st, nil
}

// GetHTTP returns the REST API settings, or nil when the API is not configured
func (s *SQLiteProvider) GetHTTP() (*HTTPData, error) {
	h := &HTTPData{}
	err := s.db.QueryRow(`
		SELECT listen_addr
		FROM http
		LIMIT 1`).Scan(&h.ListenAddr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query http config: %w", err)
	}
	return h, nil
}

// IsReadOnly returns false; SQLite configurations can be updated in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
