// Package reynolds implements classic Reynolds flocking: cohesion,
// alignment and separation over a neighbor radius, a soft spherical
// boundary, and force/speed limits.
package reynolds

import (
	"fmt"

	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

// Params holds the tunable constants of the flocking force law. Defaults
// mirror the reference demo's tuned values, kept for parity.
type Params struct {
	NeighborRadius   float64
	SeparationRadius float64
	CohesionWeight   float64
	AlignmentWeight  float64
	SeparationWeight float64
	BoundaryRadius   float64
	BoundaryWeight   float64
	MaxSpeed         float64
	MaxForce         float64
	SpeedLimit       float64
}

func DefaultParams() Params {
	return Params{
		NeighborRadius:   2.6,
		SeparationRadius: 0.9,
		CohesionWeight:   0.45,
		AlignmentWeight:  0.65,
		SeparationWeight: 10.35,
		BoundaryRadius:   6.0,
		BoundaryWeight:   0.8,
		MaxSpeed:         2.4,
		MaxForce:         1.6,
		SpeedLimit:       2.0,
	}
}

// GetParams/SetParam follow the same Configurable idiom the rest of the
// engine's parameter records use, so a host can introspect and edit
// algorithm parameters by name.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"neighbor_radius":   p.NeighborRadius,
		"separation_radius": p.SeparationRadius,
		"cohesion_weight":   p.CohesionWeight,
		"alignment_weight":  p.AlignmentWeight,
		"separation_weight": p.SeparationWeight,
		"boundary_radius":   p.BoundaryRadius,
		"boundary_weight":   p.BoundaryWeight,
		"max_speed":         p.MaxSpeed,
		"max_force":         p.MaxForce,
		"speed_limit":       p.SpeedLimit,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "neighbor_radius":
		p.NeighborRadius = value
	case "separation_radius":
		p.SeparationRadius = value
	case "cohesion_weight":
		p.CohesionWeight = value
	case "alignment_weight":
		p.AlignmentWeight = value
	case "separation_weight":
		p.SeparationWeight = value
	case "boundary_radius":
		p.BoundaryRadius = value
	case "boundary_weight":
		p.BoundaryWeight = value
	case "max_speed":
		p.MaxSpeed = value
	case "max_force":
		p.MaxForce = value
	case "speed_limit":
		p.SpeedLimit = value
	default:
		return fmt.Errorf("reynolds: unknown param %q", name)
	}
	return nil
}

// Validate reports the first invariant violation, nil otherwise.
func (p Params) Validate() error {
	if p.NeighborRadius < 0 || p.SeparationRadius < 0 || p.BoundaryRadius < 0 {
		return fmt.Errorf("reynolds: radii must be >= 0")
	}
	return nil
}

// Algorithm evaluates Reynolds flocking over the current store, writing
// the resulting acceleration into out (len(out) == store.N(), reused
// across ticks by the caller to stay allocation-free).
type Algorithm struct {
	Params Params
}

func New(p Params) *Algorithm { return &Algorithm{Params: p} }

// Accelerate fills out[i] with agent i's commanded acceleration, using g
// to enumerate neighbors within NeighborRadius.
func (a *Algorithm) Accelerate(st *swarm.Store, g *grid.Grid, out []vecmath.Vec3) {
	p := a.Params
	sepR2 := p.SeparationRadius * p.SeparationRadius

	for i, pi := range st.Positions {
		vi := st.Velocities[i]

		var posSum, velSum, sep vecmath.Vec3
		count := 0

		g.ForEachNeighbor(pi, p.NeighborRadius, false, i, func(j int) {
			if j == i {
				return
			}
			count++
			posSum = posSum.Add(st.Positions[j])
			velSum = velSum.Add(st.Velocities[j])

			diff := pi.Sub(st.Positions[j])
			d2 := diff.NormSq()
			if d2 < sepR2 && d2 > 1e-12 {
				sep = sep.Add(diff.Scale(1 / d2))
			}
		})

		var force vecmath.Vec3
		if count > 0 {
			avgPos := posSum.Scale(1 / float64(count))
			avgVel := velSum.Scale(1 / float64(count))

			cohesion := avgPos.Sub(pi).Normalize().Scale(p.MaxSpeed).Sub(vi).Scale(p.CohesionWeight)
			alignment := avgVel.Sub(vi).Scale(p.AlignmentWeight)
			force = cohesion.Add(alignment)
		}
		force = force.Add(sep.Scale(p.SeparationWeight))

		dist := pi.Norm()
		if p.BoundaryRadius > 0 && dist > p.BoundaryRadius {
			dir := pi.Normalize()
			force = force.Sub(dir.Scale((dist - p.BoundaryRadius) * p.BoundaryWeight))
		}

		force = force.ClampNorm(p.MaxForce)

		speed := vi.Norm()
		if p.MaxSpeed > 0 && speed > p.MaxSpeed {
			force = force.Sub(vi.Normalize().Scale((speed - p.MaxSpeed) * p.SpeedLimit))
		}

		out[i] = force
	}
}
