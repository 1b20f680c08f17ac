// Package store persists swarm engine runs to disk: a YAML run
// description next to a binary trajectory recording, one subdirectory
// per run, discoverable by the CLI's list/inspect commands.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/swarmeng/internal/config"
	"github.com/san-kum/swarmeng/internal/trajectory"
)

const (
	runConfigName   = "run.yaml"
	trajectoryName  = "trajectory.pb"
	timestampLayout = time.RFC3339
)

// Store manages a directory of run subdirectories.
type Store struct {
	baseDir string
}

// New returns a Store rooted at baseDir. Call Init before first use.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the base directory if it does not already exist.
func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Summary is the lightweight, list-friendly view of a persisted run:
// model, algorithm, dt and duration come from its run.yaml; CreatedAt and
// FrameCount come from decoding the trajectory file.
type Summary struct {
	ID         string
	Model      string
	Algorithm  string
	Dt         float64
	Duration   float64
	CreatedAt  time.Time
	FrameCount int
}

// Save writes a run's config snapshot and trajectory recording under a
// fresh, timestamped subdirectory and returns its id.
func (s *Store) Save(cfg *config.Config, rec trajectory.Recording) (string, error) {
	runID := fmt.Sprintf("%s_%s_%d", cfg.Model, cfg.Algorithm, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, runConfigName), cfg); err != nil {
		return "", err
	}

	rec.Meta.CreatedAt = time.Now().Format(timestampLayout)
	encoded := trajectory.Encode(rec)
	if err := os.WriteFile(filepath.Join(runDir, trajectoryName), encoded, 0644); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns a Summary for every run subdirectory, sorted oldest
// first. Subdirectories missing a readable run.yaml are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, err
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		runID := entry.Name()
		cfg, err := config.Load(filepath.Join(s.baseDir, runID, runConfigName))
		if err != nil {
			continue
		}
		frameCount, createdAt := s.peekTrajectory(runID)
		summaries = append(summaries, Summary{
			ID:         runID,
			Model:      cfg.Model,
			Algorithm:  cfg.Algorithm,
			Dt:         cfg.Dt,
			Duration:   cfg.Duration,
			CreatedAt:  createdAt,
			FrameCount: frameCount,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (s *Store) peekTrajectory(runID string) (int, time.Time) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, trajectoryName))
	if err != nil {
		return 0, time.Time{}
	}
	rec, err := trajectory.Decode(data)
	if err != nil {
		return 0, time.Time{}
	}
	createdAt, _ := time.Parse(timestampLayout, rec.Meta.CreatedAt)
	return rec.FrameCount, createdAt
}

// LoadConfig reads back a run's config snapshot.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, runConfigName))
}

// LoadTrajectory reads back a run's full trajectory recording.
func (s *Store) LoadTrajectory(runID string) (trajectory.Recording, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, trajectoryName))
	if err != nil {
		return trajectory.Recording{}, err
	}
	return trajectory.Decode(data)
}
