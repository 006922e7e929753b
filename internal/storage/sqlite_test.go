package storage

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/chrissnell/oceantrend/internal/trend"
)

func testStore(t *testing.T) *TrendStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "trends.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult() *trend.Result {
	return &trend.Result{
		RecordLength:        720,
		RawDF:               718,
		EffectiveDF:         87.4,
		Slope:               0.0081,
		NaiveConfLimit:      0.0021,
		AnalyticConfLimit:   0.0058,
		MonteCarloConfLimit: 0.0063,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := testStore(t)

	run, err := store.BeginRun(trend.Config{Trials: 500, Backend: trend.BackendTheilSen, BaseSeed: 42})
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run has empty id")
	}
	if run.MaxLag != trend.DefaultMaxLag {
		t.Errorf("max lag default = %d, want %d", run.MaxLag, trend.DefaultMaxLag)
	}

	if err := store.SaveTrend(run.ID, "Amphitrite Point", sampleResult()); err != nil {
		t.Fatalf("save trend: %v", err)
	}

	trends, err := store.TrendsForRun(run.ID)
	if err != nil {
		t.Fatalf("trends for run: %v", err)
	}
	if len(trends) != 1 {
		t.Fatalf("trend count = %d, want 1", len(trends))
	}
	got := trends[0]
	if got.Station != "Amphitrite Point" {
		t.Errorf("station = %q", got.Station)
	}
	// Persisted units are per-century.
	if math.Abs(got.SlopePerCentury-0.81) > 1e-12 {
		t.Errorf("slope = %g, want 0.81", got.SlopePerCentury)
	}
	if math.Abs(got.MonteCarloCLimit-0.63) > 1e-12 {
		t.Errorf("monte carlo limit = %g, want 0.63", got.MonteCarloCLimit)
	}

	byStation, err := store.TrendsForStation("Amphitrite Point")
	if err != nil {
		t.Fatalf("trends for station: %v", err)
	}
	if len(byStation) != 1 || byStation[0].RunID != run.ID {
		t.Errorf("station query returned %+v", byStation)
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Backend != trend.BackendTheilSen {
		t.Errorf("runs = %+v", runs)
	}
}

func TestSaveTrendDuplicateStation(t *testing.T) {
	store := testStore(t)
	run, err := store.BeginRun(trend.Config{})
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	if err := store.SaveTrend(run.ID, "Kains Island", sampleResult()); err != nil {
		t.Fatalf("save trend: %v", err)
	}
	if err := store.SaveTrend(run.ID, "Kains Island", sampleResult()); err == nil {
		t.Error("expected error for duplicate station within a run")
	}
}

func TestWriteResultsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	trends := []StationTrend{
		{
			Station:          "Race Rocks",
			RecordLength:     900,
			RawDF:            898,
			EffectiveDF:      101.2,
			SlopePerCentury:  0.74,
			NaiveCLimit:      0.2,
			AnalyticCLimit:   0.55,
			MonteCarloCLimit: 0.6,
		},
	}
	if err := WriteResultsCSV(path, trends); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "Race Rocks,900,898,") {
		t.Errorf("data row = %q", lines[1])
	}
}
