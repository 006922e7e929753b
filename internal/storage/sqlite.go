// Package storage persists trend analysis results to SQLite and exports
// them as CSV.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/oceantrend/internal/trend"
)

// Run identifies one invocation of the analyzer and the parameters it ran
// with.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Trials    int       `json:"trials"`
	MaxLag    int       `json:"max_lag"`
	Backend   string    `json:"backend"`
	BaseSeed  int64     `json:"base_seed"`
}

// StationTrend is one station's persisted result. Slopes and confidence
// limits are stored in degrees per century, the reporting unit.
type StationTrend struct {
	RunID            string  `json:"run_id"`
	Station          string  `json:"station"`
	RecordLength     int     `json:"record_length"`
	RawDF            int     `json:"raw_df"`
	EffectiveDF      float64 `json:"effective_df"`
	SlopePerCentury  float64 `json:"slope_per_century"`
	NaiveCLimit      float64 `json:"naive_conf_limit_per_century"`
	AnalyticCLimit   float64 `json:"analytic_conf_limit_per_century"`
	MonteCarloCLimit float64 `json:"monte_carlo_conf_limit_per_century"`
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	trials INTEGER NOT NULL,
	max_lag INTEGER NOT NULL,
	backend TEXT NOT NULL,
	base_seed INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS trends (
	run_id TEXT NOT NULL REFERENCES runs(id),
	station TEXT NOT NULL,
	record_length INTEGER NOT NULL,
	raw_df INTEGER NOT NULL,
	effective_df REAL NOT NULL,
	slope_per_century REAL NOT NULL,
	naive_cl_per_century REAL NOT NULL,
	analytic_cl_per_century REAL NOT NULL,
	monte_carlo_cl_per_century REAL NOT NULL,
	PRIMARY KEY (run_id, station)
);
`

// TrendStore wraps the SQLite results database.
type TrendStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// New opens (creating if necessary) the results database at path.
func New(path string, logger *zap.SugaredLogger) (*TrendStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: pinging %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: creating schema: %w", err)
	}
	return &TrendStore{db: db, logger: logger}, nil
}

// BeginRun records a new analysis run and returns its identity.
func (s *TrendStore) BeginRun(cfg trend.Config) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Trials:    cfg.Trials,
		MaxLag:    cfg.MaxLag,
		Backend:   cfg.Backend,
		BaseSeed:  cfg.BaseSeed,
	}
	if run.Trials == 0 {
		run.Trials = trend.DefaultTrials
	}
	if run.MaxLag == 0 {
		run.MaxLag = trend.DefaultMaxLag
	}
	if run.Backend == "" {
		run.Backend = trend.BackendOLS
	}
	if run.BaseSeed == 0 {
		run.BaseSeed = trend.DefaultBaseSeed
	}

	_, err := s.db.Exec(`INSERT INTO runs (id, created_at, trials, max_lag, backend, base_seed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Trials, run.MaxLag, run.Backend, run.BaseSeed)
	if err != nil {
		return nil, fmt.Errorf("storage: inserting run: %w", err)
	}
	s.logger.Infow("started analysis run", "run_id", run.ID, "trials", run.Trials, "backend", run.Backend)
	return run, nil
}

// SaveTrend persists one station's result under the given run, converting
// slopes and limits to per-century units.
func (s *TrendStore) SaveTrend(runID, station string, r *trend.Result) error {
	_, err := s.db.Exec(`INSERT INTO trends
		(run_id, station, record_length, raw_df, effective_df,
		 slope_per_century, naive_cl_per_century, analytic_cl_per_century, monte_carlo_cl_per_century)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, station, r.RecordLength, r.RawDF, r.EffectiveDF,
		r.Slope*100, r.NaiveConfLimit*100, r.AnalyticConfLimit*100, r.MonteCarloConfLimit*100)
	if err != nil {
		return fmt.Errorf("storage: inserting trend for %s: %w", station, err)
	}
	return nil
}

// ListRuns returns all recorded runs, newest first.
func (s *TrendStore) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, created_at, trials, max_lag, backend, base_seed
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage: querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Trials, &r.MaxLag, &r.Backend, &r.BaseSeed); err != nil {
			return nil, fmt.Errorf("storage: scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// TrendsForRun returns the per-station results of one run.
func (s *TrendStore) TrendsForRun(runID string) ([]StationTrend, error) {
	return s.queryTrends(`SELECT run_id, station, record_length, raw_df, effective_df,
		slope_per_century, naive_cl_per_century, analytic_cl_per_century, monte_carlo_cl_per_century
		FROM trends WHERE run_id = ? ORDER BY station`, runID)
}

// TrendsForStation returns one station's results across all runs.
func (s *TrendStore) TrendsForStation(station string) ([]StationTrend, error) {
	return s.queryTrends(`SELECT run_id, station, record_length, raw_df, effective_df,
		slope_per_century, naive_cl_per_century, analytic_cl_per_century, monte_carlo_cl_per_century
		FROM trends WHERE station = ? ORDER BY run_id`, station)
}

func (s *TrendStore) queryTrends(query string, arg any) ([]StationTrend, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("storage: querying trends: %w", err)
	}
	defer rows.Close()

	var trends []StationTrend
	for rows.Next() {
		var t StationTrend
		if err := rows.Scan(&t.RunID, &t.Station, &t.RecordLength, &t.RawDF, &t.EffectiveDF,
			&t.SlopePerCentury, &t.NaiveCLimit, &t.AnalyticCLimit, &t.MonteCarloCLimit); err != nil {
			return nil, fmt.Errorf("storage: scanning trend: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// Close closes the database.
func (s *TrendStore) Close() error {
	return s.db.Close()
}
