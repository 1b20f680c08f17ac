package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/swarmeng/internal/config"
	"github.com/san-kum/swarmeng/internal/engine"
)

func testConfig() *config.Config {
	return &config.Config{
		Model:     engine.ModelFromState,
		Algorithm: engine.AlgoFlockingID,
		Dt:        1.0 / 60.0,
		Duration:  1.0 / 30.0, // 2 steps
		Clusters: []config.ClusterConfig{
			{Shape: "sphere", Count: 4, Radius: 3},
		},
	}
}

func TestRunProducesFrames(t *testing.T) {
	cfg := testConfig()
	rec, err := Run(cfg, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.FrameCount < 2 {
		t.Errorf("expected at least 2 frames, got %d", rec.FrameCount)
	}
	if rec.Meta.AgentCount != 4 {
		t.Errorf("expected 4 agents, got %d", rec.Meta.AgentCount)
	}
	wantLen := rec.FrameCount * rec.Meta.AgentCount * len(rec.Meta.Fields)
	if len(rec.States) != wantLen {
		t.Errorf("states length: got %d want %d", len(rec.States), wantLen)
	}
}

func TestStoreSaveListLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	cfg := testConfig()
	rec, err := Run(cfg, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	runID, err := st.Save(cfg, rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, runConfigName)); err != nil {
		t.Errorf("run.yaml missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(runDir, trajectoryName)); err != nil {
		t.Errorf("trajectory.pb missing: %v", err)
	}

	summaries, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 run, got %d", len(summaries))
	}
	if summaries[0].Model != cfg.Model || summaries[0].Algorithm != cfg.Algorithm {
		t.Errorf("summary mismatch: %+v", summaries[0])
	}

	loadedCfg, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loadedCfg.Model != cfg.Model {
		t.Errorf("loaded model mismatch: got %s want %s", loadedCfg.Model, cfg.Model)
	}

	loadedRec, err := st.LoadTrajectory(runID)
	if err != nil {
		t.Fatalf("load trajectory: %v", err)
	}
	if loadedRec.FrameCount != rec.FrameCount {
		t.Errorf("frame count mismatch: got %d want %d", loadedRec.FrameCount, rec.FrameCount)
	}
}

func TestStoreListEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}
