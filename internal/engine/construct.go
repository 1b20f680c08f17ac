package engine

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

// AgentSpec is one explicitly placed agent in a cluster config.
type AgentSpec struct {
	Position, Velocity vecmath.Vec3
	Drag               float64
	Group              uint32
}

// ClusterSpec describes a batch of agents spread over a shape. Only
// shape "sphere" ("ball", or an empty shape) and "circle" ("ring") are
// recognized; anything else is InvalidConfig.
type ClusterSpec struct {
	Shape       string
	Count       int
	Center      vecmath.Vec3
	Radius      float64
	Velocity    vecmath.Vec3
	RadialSpeed float64
	Drag        float64
	Group       uint32
}

// Config is the cluster spec new_from_config accepts.
type Config struct {
	Dt        float64
	Algorithm string
	Plane2D   bool
	Agents    []AgentSpec
	Clusters  []ClusterSpec
}

func buildStoreFromConfig(cfg Config) (*swarm.Store, error) {
	var agents []AgentSpec
	agents = append(agents, cfg.Agents...)

	for _, c := range cfg.Clusters {
		built, err := buildCluster(c)
		if err != nil {
			return nil, err
		}
		agents = append(agents, built...)
	}

	st := &swarm.Store{}
	st.Reset(len(agents))
	for i, a := range agents {
		st.Positions[i] = a.Position
		st.Velocities[i] = a.Velocity
		st.Drag[i] = a.Drag
		st.Groups[i] = a.Group
	}
	return st, nil
}

func buildCluster(c ClusterSpec) ([]AgentSpec, error) {
	switch c.Shape {
	case "sphere", "ball", "":
		return buildSphereCluster(c), nil
	case "circle", "ring":
		return buildCircleCluster(c), nil
	default:
		return nil, &OpError{Op: "new_from_config", ID: c.Shape, Wrapped: ErrInvalidConfig}
	}
}

// buildSphereCluster spreads agents over a Fibonacci sphere, a
// deterministic low-discrepancy covering rather than random sampling.
func buildSphereCluster(c ClusterSpec) []AgentSpec {
	if c.Count <= 0 {
		return nil
	}
	out := make([]AgentSpec, c.Count)
	golden := (1.0 + math.Sqrt(5)) * 0.5
	ga := 2.0 - 1.0/golden

	for i := 0; i < c.Count; i++ {
		fi := float64(i) + 0.5
		z := 1.0 - (2.0*fi)/float64(c.Count)
		r := math.Sqrt(math.Max(0, 1-z*z))
		theta := 2 * math.Pi * fi * ga
		dir := vecmath.New(math.Cos(theta)*r, math.Sin(theta)*r, z)
		pos := dir.Scale(c.Radius).Add(c.Center)

		vel := c.Velocity
		if c.RadialSpeed != 0 {
			vel = vel.Add(dir.Normalize().Scale(c.RadialSpeed))
		}
		out[i] = AgentSpec{Position: pos, Velocity: vel, Drag: c.Drag, Group: c.Group}
	}
	return out
}

func buildCircleCluster(c ClusterSpec) []AgentSpec {
	count := c.Count
	if count < 1 {
		count = 1
	}
	out := make([]AgentSpec, count)
	for i := 0; i < count; i++ {
		angle := float64(i) / float64(count) * 2 * math.Pi
		pos := vecmath.New(
			c.Center.X+c.Radius*math.Cos(angle),
			c.Center.Y+c.Radius*math.Sin(angle),
			c.Center.Z,
		)
		vel := c.Velocity
		if c.RadialSpeed != 0 {
			vel = vel.Add(vecmath.New(math.Cos(angle), math.Sin(angle), 0).Scale(c.RadialSpeed))
		}
		out[i] = AgentSpec{Position: pos, Velocity: vel, Drag: c.Drag, Group: c.Group}
	}
	return out
}

func storeFromStates(states []float64) (*swarm.Store, error) {
	if len(states)%6 != 0 {
		return nil, fmt.Errorf("%w: state slice length must be a multiple of 6", ErrInvalidConfig)
	}
	n := len(states) / 6
	st := &swarm.Store{}
	st.Reset(n)
	for i := 0; i < n; i++ {
		base := i * 6
		st.Positions[i] = vecmath.New(states[base], states[base+1], states[base+2])
		st.Velocities[i] = vecmath.New(states[base+3], states[base+4], states[base+5])
	}
	return st, nil
}
