// Package alphalattice implements Olfati-Saber α-lattice flocking: a
// σ-norm-based gradient action function for attraction/repulsion, a bump
// function for smooth neighbor weighting, and the same boundary/force
// limits as classic Reynolds flocking.
package alphalattice

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

type Params struct {
	NeighborRadius   float64
	DesiredDistance  float64
	SigmaEps         float64
	BumpH            float64
	PhiA, PhiB       float64
	Weight           float64
	AlignmentWeight  float64
	BoundaryRadius   float64
	BoundaryWeight   float64
	MaxSpeed         float64
	MaxForce         float64
	SpeedLimit       float64
}

func DefaultParams() Params {
	return Params{
		NeighborRadius:  2.6,
		DesiredDistance: 1.4,
		SigmaEps:        0.1,
		BumpH:           0.2,
		PhiA:            5.0,
		PhiB:            5.0,
		Weight:          1.0,
		AlignmentWeight: 0.65,
		BoundaryRadius:  6.0,
		BoundaryWeight:  0.8,
		MaxSpeed:        2.4,
		MaxForce:        1.6,
		SpeedLimit:      2.0,
	}
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"neighbor_radius":  p.NeighborRadius,
		"desired_distance": p.DesiredDistance,
		"sigma_eps":        p.SigmaEps,
		"bump_h":           p.BumpH,
		"phi_a":            p.PhiA,
		"phi_b":            p.PhiB,
		"weight":           p.Weight,
		"alignment_weight": p.AlignmentWeight,
		"boundary_radius":  p.BoundaryRadius,
		"boundary_weight":  p.BoundaryWeight,
		"max_speed":        p.MaxSpeed,
		"max_force":        p.MaxForce,
		"speed_limit":      p.SpeedLimit,
	}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "neighbor_radius":
		p.NeighborRadius = value
	case "desired_distance":
		p.DesiredDistance = value
	case "sigma_eps":
		p.SigmaEps = value
	case "bump_h":
		p.BumpH = value
	case "phi_a":
		p.PhiA = value
	case "phi_b":
		p.PhiB = value
	case "weight":
		p.Weight = value
	case "alignment_weight":
		p.AlignmentWeight = value
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
		return fmt.Errorf("alphalattice: unknown param %q", name)
	}
	return nil
}

func (p Params) Validate() error {
	if p.DesiredDistance > p.NeighborRadius {
		return fmt.Errorf("alphalattice: desired_distance must be <= neighbor_radius")
	}
	if p.NeighborRadius < 0 {
		return fmt.Errorf("alphalattice: neighbor_radius must be >= 0")
	}
	return nil
}

// sanitized returns a copy of p with the fallbacks the reference
// implementation applies before using each value in the σ-norm/bump/phi
// math, so a slightly out-of-range parameter never produces NaN.
func (p Params) sanitized() Params {
	out := p
	if out.NeighborRadius < out.DesiredDistance {
		out.NeighborRadius = out.DesiredDistance
	}
	if out.SigmaEps <= 0 {
		out.SigmaEps = 1e-9
	}
	if out.BumpH < 0 {
		out.BumpH = 0
	}
	if out.BumpH > 0.999 {
		out.BumpH = 0.999
	}
	if !(out.PhiA > 0) || math.IsNaN(out.PhiA) || math.IsInf(out.PhiA, 0) {
		out.PhiA = 5.0
	}
	if !(out.PhiB > 0) || math.IsNaN(out.PhiB) || math.IsInf(out.PhiB, 0) {
		out.PhiB = 5.0
	}
	return out
}

// sigmaNorm is the scalar σ-norm of a squared distance: (√(1+ε·d²)-1)/ε.
func sigmaNorm(d2, eps float64) float64 {
	return (math.Sqrt(1+eps*d2) - 1) / eps
}

// bumpRho is the bump function ρ_h(s).
func bumpRho(s, h float64) float64 {
	switch {
	case s < 0:
		return 0
	case s < h:
		return 1
	case s <= 1:
		return 0.5 * (1 + math.Cos(math.Pi*(s-h)/(1-h)))
	default:
		return 0
	}
}

func sigma1(x float64) float64 { return x / math.Sqrt(1+x*x) }

// unevenPhi implements φ(z) with the a≠b asymmetric bump.
func unevenPhi(x, a, b float64) float64 {
	denom := 4 * a * b
	c := 0.0
	if denom > 0 {
		c = math.Abs(a-b) / math.Sqrt(denom)
	}
	return 0.5 * ((a+b)*sigma1(x+c) + (a - b))
}

// phiAlpha is the action function φ_α(z) = ρ_h(z/r_α)·φ(z-d_α).
func phiAlpha(z, dAlpha, rAlpha, h, a, b float64) float64 {
	if rAlpha <= 0 {
		return 0
	}
	return bumpRho(z/rAlpha, h) * unevenPhi(z-dAlpha, a, b)
}

// Algorithm evaluates α-lattice flocking.
type Algorithm struct {
	Params Params
}

func New(p Params) *Algorithm { return &Algorithm{Params: p} }

func (a *Algorithm) Accelerate(st *swarm.Store, g *grid.Grid, out []vecmath.Vec3) {
	p := a.Params.sanitized()

	dAlpha := sigmaNorm(p.DesiredDistance*p.DesiredDistance, p.SigmaEps)
	rAlpha := sigmaNorm(p.NeighborRadius*p.NeighborRadius, p.SigmaEps)

	for i, pi := range st.Positions {
		vi := st.Velocities[i]

		var gradSum, consSum vecmath.Vec3
		neighborCount := 0

		g.ForEachNeighbor(pi, p.NeighborRadius, false, i, func(j int) {
			if j == i {
				return
			}
			diff := st.Positions[j].Sub(pi)
			d2 := diff.NormSq()
			denom := math.Sqrt(1 + p.SigmaEps*d2)
			z := (denom - 1) / p.SigmaEps
			nij := diff.Scale(1 / denom)

			varphi := phiAlpha(z, dAlpha, rAlpha, p.BumpH, p.PhiA, p.PhiB)
			gradSum = gradSum.Add(nij.Scale(varphi))

			aij := bumpRho(z/rAlpha, p.BumpH)
			consSum = consSum.Add(st.Velocities[j].Sub(vi).Scale(aij))
			neighborCount++
		})

		if neighborCount > 0 {
			consSum = consSum.Scale(1 / float64(neighborCount))
		}

		force := gradSum.Scale(p.Weight).Add(consSum.Scale(p.AlignmentWeight))

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
