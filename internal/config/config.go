// Package config loads and saves YAML run descriptions for the swarm
// engine, and exposes a small built-in preset table for common scenarios.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swarmeng/internal/engine"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

const (
	DefaultDt       = 1.0 / 60.0
	DefaultDuration = 20.0
)

// Config is the on-disk shape of a run description, deserialized with
// gopkg.in/yaml.v3 and turned into an engine.Config by ToEngineConfig.
type Config struct {
	Model     string             `yaml:"model"`
	Algorithm string             `yaml:"algorithm"`
	Dt        float64            `yaml:"dt"`
	Duration  float64            `yaml:"duration"`
	Plane2D   bool               `yaml:"plane2d"`
	Seed      int64              `yaml:"seed"`
	Agents    []AgentConfig      `yaml:"agents"`
	Clusters  []ClusterConfig    `yaml:"clusters"`
	Params    map[string]float64 `yaml:"params"`
}

type AgentConfig struct {
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity"`
	Drag     float64    `yaml:"drag"`
	Group    uint32     `yaml:"group"`
}

type ClusterConfig struct {
	Shape       string     `yaml:"shape"`
	Count       int        `yaml:"count"`
	Center      [3]float64 `yaml:"center"`
	Radius      float64    `yaml:"radius"`
	Velocity    [3]float64 `yaml:"velocity"`
	RadialSpeed float64    `yaml:"radial_speed"`
	Drag        float64    `yaml:"drag"`
	Group       uint32     `yaml:"group"`
}

// DefaultConfig returns a small lattice-swarm run under Reynolds
// flocking, the scenario a fresh CLI invocation with no flags builds.
func DefaultConfig() *Config {
	return &Config{
		Model:     engine.ModelLattice,
		Algorithm: engine.AlgoFlockingID,
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Clusters: []ClusterConfig{
			{Shape: "sphere", Count: 40, Center: [3]float64{0, 0, 0}, Radius: 8, Drag: 0.05},
		},
	}
}

// Load reads and parses a YAML run description, falling back to
// DefaultConfig's field values for anything the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save serializes cfg to YAML at path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToEngineConfig converts a loaded run description into the shape
// engine.NewFromConfig consumes.
func (c *Config) ToEngineConfig() engine.Config {
	out := engine.Config{
		Dt:        c.Dt,
		Algorithm: c.Algorithm,
		Plane2D:   c.Plane2D,
	}
	for _, a := range c.Agents {
		out.Agents = append(out.Agents, engine.AgentSpec{
			Position: vecmath.New(a.Position[0], a.Position[1], a.Position[2]),
			Velocity: vecmath.New(a.Velocity[0], a.Velocity[1], a.Velocity[2]),
			Drag:     a.Drag,
			Group:    a.Group,
		})
	}
	for _, cl := range c.Clusters {
		out.Clusters = append(out.Clusters, engine.ClusterSpec{
			Shape:       cl.Shape,
			Count:       cl.Count,
			Center:      vecmath.New(cl.Center[0], cl.Center[1], cl.Center[2]),
			Radius:      cl.Radius,
			Velocity:    vecmath.New(cl.Velocity[0], cl.Velocity[1], cl.Velocity[2]),
			RadialSpeed: cl.RadialSpeed,
			Drag:        cl.Drag,
			Group:       cl.Group,
		})
	}
	return out
}
