package main

import (
	"os"
	"path/filepath"
	"testing"

	"insertbench/config"
	"insertbench/worker"
)

func TestBuildConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	if err := os.WriteFile(path, []byte("driver: sqlite3\nconnection: ':memory:'\nreps: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := buildConfig(path, 0, "")
	if cfg.Reps != 2 || cfg.Clock != "wall" {
		t.Errorf("without overrides: reps=%d clock=%q", cfg.Reps, cfg.Clock)
	}

	cfg = buildConfig(path, 5, "cpu")
	if cfg.Reps != 5 || cfg.Clock != "cpu" {
		t.Errorf("with overrides: reps=%d clock=%q", cfg.Reps, cfg.Clock)
	}
}

// A file value that only the flags make valid is accepted
func TestBuildConfigValidatesAfterOverrides(t *testing.T) {
	tests := []struct {
		data  string
		reps  int
		clock string
	}{
		{"time: 0\n", 5, ""},
		{"clock: sundial\n", 0, "wall"},
	}

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "bench.yaml")
		if err := os.WriteFile(path, []byte("driver: sqlite3\nconnection: ':memory:'\n"+tt.data), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := buildConfig(path, tt.reps, tt.clock)
		if tt.reps != 0 && cfg.Reps != tt.reps {
			t.Errorf("%q: reps=%d, want %d", tt.data, cfg.Reps, tt.reps)
		}
		if tt.clock != "" && cfg.Clock != tt.clock {
			t.Errorf("%q: clock=%q, want %q", tt.data, cfg.Clock, tt.clock)
		}
	}
}

func TestBuildStrategies(t *testing.T) {
	strategies := buildStrategies([]string{"copy", "singleInserts"})
	if len(strategies) != 2 || strategies[0].Name() != "copy" || strategies[1].Name() != "singleInserts" {
		t.Errorf("buildStrategies = %v", strategies)
	}
}

func TestBuildCorpusSeed(t *testing.T) {
	cfg := config.Default()
	cfg.Length = 50
	cfg.Seed = 9

	a, b := buildCorpus(cfg), buildCorpus(cfg)
	if len(a) != 50 {
		t.Fatalf("%d records", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between runs with the same seed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []*worker.Result{
		{Strategy: "singleInserts", BatchSize: 10, Length: 10, Rts: []float64{1, 3}},
		{Strategy: "copy", BatchSize: 10, Length: 10, Rts: []float64{0.5}},
	}
	summaries := summarize("run", "sqlite3", "wall", results)
	if len(summaries) != 2 {
		t.Fatalf("%d summaries", len(summaries))
	}
	if summaries[0].Mean != 2 || summaries[0].Driver != "sqlite3" || summaries[1].RowsPerSec != 20 {
		t.Errorf("summaries = %+v", summaries)
	}
}
