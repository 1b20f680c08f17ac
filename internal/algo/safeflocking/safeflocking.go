// Package safeflocking composes α-lattice flocking's nominal acceleration
// with a per-agent CBF-QP safety filter: obstacle avoidance and, when
// enabled, inter-agent collision avoidance, with a slack variable so a
// momentarily infeasible agent degrades instead of failing.
package safeflocking

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmeng/internal/algo/alphalattice"
	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/obstacle"
	"github.com/san-kum/swarmeng/internal/qp"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

const activeConstraintTol = 1e-3

// Params holds the nominal α-lattice parameters plus the safety-filter
// knobs layered on top.
type Params struct {
	Nominal alphalattice.Params

	UseObstacles           bool
	UseAgentCBF            bool
	AgentSafeDistance      float64
	CBFNeighborRadius      float64
	Lambda1, Lambda2       float64
	DeltaTheta             float64
	Delta2Star             float64
	UseMovingObstacleTerms bool
	TwoPass                bool

	UMin, UMax vecmath.Vec3
	SlackWeight, SlackMax float64
	QPIters               int

	Obstacles []obstacle.Quadratic
}

func DefaultParams() Params {
	return Params{
		Nominal: alphalattice.DefaultParams(),

		UseObstacles:           true,
		UseAgentCBF:            true,
		AgentSafeDistance:      0.9,
		CBFNeighborRadius:      2.6,
		Lambda1:                2.0,
		Lambda2:                2.0,
		DeltaTheta:             0.2,
		Delta2Star:             0.0,
		UseMovingObstacleTerms: true,
		TwoPass:                false,

		UMin: vecmath.New(-6, -6, -6),
		UMax: vecmath.New(6, 6, 6),
		SlackWeight: 50.0,
		SlackMax:    50.0,
		QPIters:     14,

		Obstacles: obstacle.PaperObstacles(),
	}
}

func (p Params) Validate() error {
	if err := p.Nominal.Validate(); err != nil {
		return err
	}
	if p.AgentSafeDistance < 0 || p.CBFNeighborRadius < 0 {
		return fmt.Errorf("safeflocking: radii must be >= 0")
	}
	if p.QPIters < 1 {
		return fmt.Errorf("safeflocking: qp_iters must be >= 1")
	}
	if p.SlackWeight <= 0 || p.SlackMax < 0 {
		return fmt.Errorf("safeflocking: slack_weight must be > 0 and slack_max >= 0")
	}
	return nil
}

func (p Params) GetParams() map[string]float64 {
	out := p.Nominal.GetParams()
	out["agent_safe_distance"] = p.AgentSafeDistance
	out["cbf_neighbor_radius"] = p.CBFNeighborRadius
	out["lambda1"] = p.Lambda1
	out["lambda2"] = p.Lambda2
	out["delta_theta"] = p.DeltaTheta
	out["delta2_star"] = p.Delta2Star
	out["slack_weight"] = p.SlackWeight
	out["slack_max"] = p.SlackMax
	out["qp_iters"] = float64(p.QPIters)
	return out
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "agent_safe_distance":
		p.AgentSafeDistance = value
	case "cbf_neighbor_radius":
		p.CBFNeighborRadius = value
	case "lambda1":
		p.Lambda1 = value
	case "lambda2":
		p.Lambda2 = value
	case "delta_theta":
		p.DeltaTheta = value
	case "delta2_star":
		p.Delta2Star = value
	case "slack_weight":
		p.SlackWeight = value
	case "slack_max":
		p.SlackMax = value
	case "qp_iters":
		p.QPIters = int(value)
	default:
		return p.Nominal.SetParam(name, value)
	}
	return nil
}

// Debug carries the per-agent safety diagnostics the extended debug-state
// layout exposes.
type Debug struct {
	UNom             vecmath.Vec3
	U                vecmath.Vec3
	Slack            float64
	ActiveConstraints int
}

// Algorithm evaluates safe flocking: nominal α-lattice acceleration
// filtered through a per-agent CBF-QP.
type Algorithm struct {
	Params Params

	uPred     []vecmath.Vec3 // previous tick's filtered output, used as the neighbor-acceleration prediction
	nominal   []vecmath.Vec3
	pass1     []vecmath.Vec3
	nominalAlgo *alphalattice.Algorithm
	workspace   qp.Workspace4
	scratch     []qp.Halfspace4

	Debug []Debug
}

func New(p Params, n int) *Algorithm {
	return &Algorithm{
		Params:      p,
		uPred:       make([]vecmath.Vec3, n),
		nominal:     make([]vecmath.Vec3, n),
		pass1:       make([]vecmath.Vec3, n),
		nominalAlgo: alphalattice.New(p.Nominal),
		Debug:       make([]Debug, n),
	}
}

func (a *Algorithm) ensureSize(n int) {
	if len(a.uPred) != n {
		a.uPred = make([]vecmath.Vec3, n)
		a.nominal = make([]vecmath.Vec3, n)
		a.pass1 = make([]vecmath.Vec3, n)
		a.Debug = make([]Debug, n)
	}
}

// Accelerate computes the nominal α-lattice acceleration for every agent,
// then filters each through its CBF-QP (optionally twice, per TwoPass),
// writing the safe acceleration into out. It returns the number of agents
// whose post-solve (acceleration, slack) pair still violates a constraint
// after the fixed iteration budget — "could not be driven feasible" even
// with maximal slack relaxation — the diagnostic the engine accumulates
// into its infeasibility counter.
func (a *Algorithm) Accelerate(st *swarm.Store, g *grid.Grid, t float64, out []vecmath.Vec3) int {
	n := st.N()
	a.ensureSize(n)

	a.nominalAlgo.Params = a.Params.Nominal
	a.nominalAlgo.Accelerate(st, g, a.nominal)

	infeasible := 0
	for i := 0; i < n; i++ {
		u, dbg, bad := a.filter(st, i, t, a.nominal[i], a.uPred)
		out[i] = u
		a.Debug[i] = dbg
		if bad {
			infeasible++
		}
	}

	if a.Params.TwoPass {
		infeasible = 0
		copy(a.pass1, out)
		for i := 0; i < n; i++ {
			u, dbg, bad := a.filter(st, i, t, a.nominal[i], a.pass1)
			if dbg.Slack > a.Params.SlackMax {
				dbg.Slack = a.Params.SlackMax
			}
			out[i] = u
			a.Debug[i] = dbg
			if bad {
				infeasible++
			}
		}
	}

	copy(a.uPred, out)
	return infeasible
}

func (a *Algorithm) filter(st *swarm.Store, i int, t float64, uNom vecmath.Vec3, uPred []vecmath.Vec3) (vecmath.Vec3, Debug, bool) {
	p := a.Params
	pos, vel := st.Positions[i], st.Velocities[i]
	gammaI := -st.Drag[i]

	sigma := math.Sqrt(p.SlackWeight)
	slackCoef := 1 / sigma

	a.scratch = a.scratch[:0]

	if p.UseObstacles {
		for _, ob := range p.Obstacles {
			r := pos.Sub(ob.Position(t))
			r2 := r.NormSq()
			if r2 < 1e-10 {
				continue
			}
			h := r2 - ob.SafeRadius*ob.SafeRadius

			var lfh, cBase float64
			if p.UseMovingObstacleTerms {
				vRel := vel.Sub(ob.Velocity(t))
				lfh = 2 * r.Dot(vRel)
				cBase = 2*vRel.Dot(vRel) + 2*r.Dot(vel.Scale(gammaI).Sub(ob.Acceleration()))
			} else {
				lfh = 2 * r.Dot(vel)
				cBase = 2*vel.Dot(vel) + 2*r.Dot(vel.Scale(gammaI))
			}

			delta1 := 2 * r.Norm() * p.DeltaTheta
			pi1 := p.Lambda1 * p.Lambda2
			pi2 := p.Lambda1 + p.Lambda2
			phi := pi1*h + pi2*lfh - delta1
			xi1 := 1 + p.Delta2Star

			a.scratch = append(a.scratch, qp.Halfspace4{
				A: [4]float64{-r.X * 2 * xi1, -r.Y * 2 * xi1, -r.Z * 2 * xi1, -slackCoef},
				B: phi + xi1*cBase,
			})
		}
	}

	if p.UseAgentCBF {
		radius := p.CBFNeighborRadius
		if radius <= 0 {
			radius = p.Nominal.NeighborRadius
		}
		dSafe2 := p.AgentSafeDistance * p.AgentSafeDistance
		for j := range st.Positions {
			if j == i {
				continue
			}
			if pos.DistanceSq(st.Positions[j]) > radius*radius {
				continue
			}
			r := pos.Sub(st.Positions[j])
			r2 := r.NormSq()
			if r2 < 1e-10 {
				continue
			}
			h := r2 - dSafe2
			vRel := vel.Sub(st.Velocities[j])
			lfh := 2 * r.Dot(vRel)
			gammaJ := -st.Drag[j]
			uJ := uPred[j]
			c := 2*vRel.Dot(vRel) + 2*r.Dot(vel.Scale(gammaI).Sub(st.Velocities[j].Scale(gammaJ)).Sub(uJ))
			pi1 := p.Lambda1 * p.Lambda2
			pi2 := p.Lambda1 + p.Lambda2
			b := c + pi1*h + pi2*lfh

			a.scratch = append(a.scratch, qp.Halfspace4{
				A: [4]float64{-r.X * 2, -r.Y * 2, -r.Z * 2, 0},
				B: b,
			})
		}
	}

	yNom := [4]float64{uNom.X, uNom.Y, uNom.Z, 0}
	boxMin := [4]float64{p.UMin.X, p.UMin.Y, p.UMin.Z, 0}
	boxMax := [4]float64{p.UMax.X, p.UMax.Y, p.UMax.Z, sigma * p.SlackMax}

	sol := a.workspace.Solve(yNom, boxMin, boxMax, a.scratch, p.QPIters)
	// The last Dykstra step is a halfspace projection; clamp back into the
	// box before reading the solution and judging feasibility.
	for k := range sol {
		sol[k] = math.Max(boxMin[k], math.Min(boxMax[k], sol[k]))
	}

	u := vecmath.New(sol[0], sol[1], sol[2])
	slack := sol[3] / sigma
	if slack < 0 {
		slack = 0
	}
	active := qp.ActiveCount4(sol, a.scratch, activeConstraintTol)
	infeasible := len(a.scratch) > 0 && !qp.Feasible4(sol, a.scratch, activeConstraintTol)

	return u, Debug{UNom: uNom, U: u, Slack: slack, ActiveConstraints: active}, infeasible
}
