// Package formation implements fixed-time formation tracking with
// Exponential Control Barrier Function (ECBF) obstacle constraints solved
// per-agent by a fixed-iteration QP. This is the engine's centerpiece:
// a nominal finite-time consensus controller projected onto the
// barrier-safe, actuation-bounded set.
package formation

import (
	"fmt"
	"math"

	"github.com/san-kum/swarmeng/internal/obstacle"
	"github.com/san-kum/swarmeng/internal/qp"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

// activeConstraintTol matches the tolerance the safe-flocking filter uses
// to decide whether a constraint counts as "active" in the diagnostic.
const activeConstraintTol = 1e-3

// Params is the formation+ECBF+QP parameter record. Defaults are the
// nominal consensus gains (m1 = 1, m2 = 2; finite-time convergence takes
// m1 < 1 < m2) and the reference four-agent diamond formation.
type Params struct {
	// Nominal fixed-time consensus gains.
	K1, K2         float64
	Gamma1, Gamma2 float64
	M1, M2         float64
	SmoothEps      float64

	// ECBF robustness terms.
	Lambda1, Lambda2       float64
	DeltaTheta             float64
	Delta2Star             float64
	UseMovingObstacleTerms bool

	// Low-pass filter coefficients: MuDotFilter smooths the formation
	// velocity error, AlphaDotFilter the leader-acceleration feedforward.
	MuDotFilter, AlphaDotFilter float64

	Gravity     float64
	DesiredYaw  float64

	UMin, UMax vecmath.Vec3
	QPIters    int

	Obstacles []obstacle.Quadratic

	FormationOffsets []vecmath.Vec3
	AutoOffsets      bool
	Adjacency        [][]float64
	LeaderLinks      []float64
	Leader           obstacle.Leader
}

func DefaultParams() Params {
	return Params{
		K1: 2.0, K2: 3.0,
		Gamma1: 0.5, Gamma2: 0.5,
		M1: 1.0, M2: 2.0,
		SmoothEps: 1e-2,

		Lambda1: 2.0, Lambda2: 2.0,
		DeltaTheta:             0.2,
		Delta2Star:             0.0,
		UseMovingObstacleTerms: true,

		MuDotFilter: 0.8, AlphaDotFilter: 0.8,

		Gravity: 9.81,

		UMin: vecmath.New(-6, -6, 0),
		UMax: vecmath.New(6, 6, 20),
		QPIters: 12,

		Obstacles: obstacle.PaperObstacles(),

		FormationOffsets: []vecmath.Vec3{
			{X: -3, Y: 3, Z: 0},
			{X: -3, Y: -3, Z: 0},
			{X: 3, Y: 3, Z: 0},
			{X: 3, Y: -3, Z: 0},
		},
		AutoOffsets: true,
		Adjacency: [][]float64{
			{0, 0, 1, 0},
			{0, 0, 1, 1},
			{1, 1, 0, 0},
			{0, 1, 0, 0},
		},
		LeaderLinks: []float64{1, 1, 0, 0},
		Leader:      obstacle.DefaultLeader(),
	}
}

func (p Params) Validate() error {
	if p.M1 <= 0 || p.M2 <= 0 {
		return fmt.Errorf("formation: m1/m2 must be > 0")
	}
	if p.QPIters < 1 {
		return fmt.Errorf("formation: qp_iters must be >= 1")
	}
	if p.UMin.X > p.UMax.X || p.UMin.Y > p.UMax.Y || p.UMin.Z > p.UMax.Z {
		return fmt.Errorf("formation: u_min must be <= u_max componentwise")
	}
	if p.MuDotFilter < 0 || p.MuDotFilter >= 1 || p.AlphaDotFilter < 0 || p.AlphaDotFilter >= 1 {
		return fmt.Errorf("formation: filter coefficients must be in [0,1)")
	}
	if p.Delta2Star < 0 {
		return fmt.Errorf("formation: delta2_star must be >= 0")
	}
	return nil
}

// GetParams/SetParam cover the scalar knobs; obstacles, offsets, adjacency
// and the leader trajectory are structural and set through dedicated
// engine calls instead.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"k1": p.K1, "k2": p.K2,
		"gamma1": p.Gamma1, "gamma2": p.Gamma2,
		"m1": p.M1, "m2": p.M2,
		"smooth_eps": p.SmoothEps,
		"lambda1":    p.Lambda1, "lambda2": p.Lambda2,
		"delta_theta": p.DeltaTheta, "delta2_star": p.Delta2Star,
		"mu_dot_filter": p.MuDotFilter, "alpha_dot_filter": p.AlphaDotFilter,
		"gravity": p.Gravity, "desired_yaw": p.DesiredYaw,
		"qp_iters": float64(p.QPIters),
	}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "k1":
		p.K1 = value
	case "k2":
		p.K2 = value
	case "gamma1":
		p.Gamma1 = value
	case "gamma2":
		p.Gamma2 = value
	case "m1":
		p.M1 = value
	case "m2":
		p.M2 = value
	case "smooth_eps":
		p.SmoothEps = value
	case "lambda1":
		p.Lambda1 = value
	case "lambda2":
		p.Lambda2 = value
	case "delta_theta":
		p.DeltaTheta = value
	case "delta2_star":
		p.Delta2Star = value
	case "mu_dot_filter":
		p.MuDotFilter = value
	case "alpha_dot_filter":
		p.AlphaDotFilter = value
	case "gravity":
		p.Gravity = value
	case "desired_yaw":
		p.DesiredYaw = value
	case "qp_iters":
		p.QPIters = int(value)
	default:
		return fmt.Errorf("formation: unknown param %q", name)
	}
	return nil
}

// sigPow is the smooth, eps-floored sig function used by the fixed-time
// law: sign(x)*|x|^a, with the norm floored by SmoothEps so it stays
// differentiable at 0.
func sigPow(x, a, eps float64) float64 {
	s := math.Sqrt(x*x + eps*eps)
	return math.Pow(s, a-1) * x
}

func sigPowVec(v vecmath.Vec3, a, eps float64) vecmath.Vec3 {
	return vecmath.New(sigPow(v.X, a, eps), sigPow(v.Y, a, eps), sigPow(v.Z, a, eps))
}

// Algorithm evaluates formation+ECBF+QP. Filt holds the per-agent
// persistent filter state (μ̇, the filtered formation-error derivative);
// AlphaFilt holds the filtered leader-acceleration feedforward (α̇). Both
// are reset whenever the algorithm is (re)selected or the agent count
// changes.
type Algorithm struct {
	Params    Params
	Filt      []vecmath.Vec3
	AlphaFilt []vecmath.Vec3

	scratchConstraints []qp.Halfspace3
	workspace          qp.Workspace3
}

func New(p Params, n int) *Algorithm {
	return &Algorithm{
		Params:    p,
		Filt:      make([]vecmath.Vec3, n),
		AlphaFilt: make([]vecmath.Vec3, n),
	}
}

// Reset clears one agent's filter state, used when the host drags an
// agent to a new position/velocity interactively.
func (a *Algorithm) Reset(i int) {
	if i >= 0 && i < len(a.Filt) {
		a.Filt[i] = vecmath.Vec3{}
	}
	if i >= 0 && i < len(a.AlphaFilt) {
		a.AlphaFilt[i] = vecmath.Vec3{}
	}
}

// EnsureOffsets computes auto_offsets (each agent's initial position
// relative to the group centroid) the first time it is needed; callers
// pass the initial positions once, at construction or algorithm-switch
// time.
func (a *Algorithm) EnsureOffsets(initialPositions []vecmath.Vec3) {
	p := &a.Params
	n := len(initialPositions)
	if len(p.FormationOffsets) == n && !p.AutoOffsets {
		return
	}
	if !p.AutoOffsets && len(p.FormationOffsets) == n {
		return
	}
	if p.AutoOffsets {
		centroid := vecmath.Vec3{}
		for _, x := range initialPositions {
			centroid = centroid.Add(x)
		}
		if n > 0 {
			centroid = centroid.Scale(1 / float64(n))
		}
		offs := make([]vecmath.Vec3, n)
		for i, x := range initialPositions {
			offs[i] = x.Sub(centroid)
		}
		p.FormationOffsets = offs
	}
}

func (a *Algorithm) adjacencyRow(i, n int) []float64 {
	p := a.Params
	if len(p.Adjacency) == n && len(p.Adjacency[i]) == n {
		return p.Adjacency[i]
	}
	// Fallback: fully connected consensus graph (every other agent is a
	// neighbor), a reasonable default when no explicit topology is given.
	row := make([]float64, n)
	for j := range row {
		if j != i {
			row[j] = 1
		}
	}
	return row
}

func (a *Algorithm) leaderLink(i, n int) float64 {
	if len(a.Params.LeaderLinks) == n {
		return a.Params.LeaderLinks[i]
	}
	return 1
}

func (a *Algorithm) offset(i, n int) vecmath.Vec3 {
	if len(a.Params.FormationOffsets) == n {
		return a.Params.FormationOffsets[i]
	}
	return vecmath.Vec3{}
}

// formationError computes e_i and ė_i for agent i against the current
// store and leader state.
func (a *Algorithm) formationError(st *swarm.Store, i int, leaderPos, leaderVel vecmath.Vec3) (e, edot vecmath.Vec3) {
	n := st.N()
	row := a.adjacencyRow(i, n)
	xi, vi := st.Positions[i], st.Velocities[i]
	di := a.offset(i, n)

	for j, aij := range row {
		if aij == 0 || j == i {
			continue
		}
		dj := a.offset(j, n)
		e = e.Add(xi.Sub(st.Positions[j]).Sub(di.Sub(dj)).Scale(aij))
		edot = edot.Add(vi.Sub(st.Velocities[j]).Scale(aij))
	}

	if l := a.leaderLink(i, n); l != 0 {
		e = e.Add(xi.Sub(leaderPos).Sub(di).Scale(l))
		edot = edot.Add(vi.Sub(leaderVel).Scale(l))
	}
	return e, edot
}

// buildObstacleConstraint builds the ECBF halfspace A·u ≤ B for one
// obstacle, i.e. ḧ + π₂ḣ + π₁h − δ₁ ≥ 0 with ḧ scaled by ξ₁ = 1 + Delta2Star.
// Accelerate adds the ξ₂ row itself when Delta2Star > 0. gamma is the
// agent's linear drag decay rate (-drag_i) entering the acceleration
// dynamics ẍ = γv + u.
func buildObstacleConstraint(p Params, pos, vel vecmath.Vec3, gamma float64, ob obstacle.Quadratic, t float64) (qp.Halfspace3, bool) {
	obPos := ob.Position(t)
	r := pos.Sub(obPos)
	r2 := r.NormSq()
	if r2 < 1e-10 {
		return qp.Halfspace3{}, false
	}

	h := r2 - ob.SafeRadius*ob.SafeRadius

	var lfh, cBase float64
	if p.UseMovingObstacleTerms {
		obVel := ob.Velocity(t)
		obAcc := ob.Acceleration()
		vRel := vel.Sub(obVel)
		lfh = 2 * r.Dot(vRel)
		cBase = 2*vRel.Dot(vRel) + 2*r.Dot(vel.Scale(gamma).Sub(obAcc))
	} else {
		lfh = 2 * r.Dot(vel)
		cBase = 2*vel.Dot(vel) + 2*r.Dot(vel.Scale(gamma))
	}

	delta1 := 2 * r.Norm() * (p.DeltaTheta)
	pi1 := p.Lambda1 * p.Lambda2
	pi2 := p.Lambda1 + p.Lambda2
	phi := pi1*h + pi2*lfh - delta1

	xi1 := 1 + p.Delta2Star
	return qp.Halfspace3{
		A: [3]float64{-r.X * 2 * xi1, -r.Y * 2 * xi1, -r.Z * 2 * xi1},
		B: phi + xi1*cBase,
	}, true
}

// Accelerate computes u_nom, solves the per-agent ECBF-QP against
// obstacle constraints, and writes the filtered result into out. t is
// the current simulation time. It returns the number of agents whose QP
// solution, clamped to [UMin, UMax], still violates an obstacle constraint
// after the fixed iteration budget — the "could not be driven feasible" diagnostic the
// engine accumulates into its infeasibility counter.
func (a *Algorithm) Accelerate(st *swarm.Store, t float64, out []vecmath.Vec3) int {
	p := a.Params
	n := st.N()
	leaderPos, leaderVel, leaderAcc := p.Leader.State(t)

	if len(a.Filt) != n {
		a.Filt = make([]vecmath.Vec3, n)
	}
	if len(a.AlphaFilt) != n {
		a.AlphaFilt = make([]vecmath.Vec3, n)
	}

	infeasible := 0
	for i := 0; i < n; i++ {
		e, edot := a.formationError(st, i, leaderPos, leaderVel)

		a.Filt[i] = a.Filt[i].Scale(p.MuDotFilter).Add(edot.Scale(1 - p.MuDotFilter))
		filteredEdot := a.Filt[i]

		// Low-pass filter the leader-acceleration feedforward so a sharp
		// change in the leader's trajectory doesn't inject a step into
		// u_nom; this is the α̇ feedforward term's filtered analogue.
		a.AlphaFilt[i] = a.AlphaFilt[i].Scale(p.AlphaDotFilter).Add(leaderAcc.Scale(1 - p.AlphaDotFilter))

		uNom := sigPowVec(e, p.M1, p.SmoothEps).Scale(-p.K1 * p.Gamma1)
		uNom = uNom.Add(sigPowVec(filteredEdot, p.M2, p.SmoothEps).Scale(-p.K2 * p.Gamma2))
		uNom = uNom.Add(a.AlphaFilt[i])

		a.scratchConstraints = a.scratchConstraints[:0]
		pos, vel := st.Positions[i], st.Velocities[i]
		gamma := -st.Drag[i]
		for _, ob := range p.Obstacles {
			if c, ok := buildObstacleConstraint(p, pos, vel, gamma, ob, t); ok {
				a.scratchConstraints = append(a.scratchConstraints, c)
				if p.Delta2Star > 0 {
					xi2 := 1 - p.Delta2Star
					r := pos.Sub(ob.Position(t))
					a.scratchConstraints = append(a.scratchConstraints, qp.Halfspace3{
						A: [3]float64{-r.X * 2 * xi2, -r.Y * 2 * xi2, -r.Z * 2 * xi2},
						B: c.B,
					})
				}
			}
		}

		uMin := [3]float64{p.UMin.X, p.UMin.Y, p.UMin.Z}
		uMax := [3]float64{p.UMax.X, p.UMax.Y, p.UMax.Z}
		xNom := [3]float64{uNom.X, uNom.Y, uNom.Z}
		sol := a.workspace.Solve(xNom, uMin, uMax, a.scratchConstraints, p.QPIters)
		// The last Dykstra step is a halfspace projection; clamp back into
		// the actuation box before judging feasibility.
		for k := range sol {
			sol[k] = clamp(sol[k], uMin[k], uMax[k])
		}

		if len(a.scratchConstraints) > 0 && !qp.Feasible3(sol, a.scratchConstraints, activeConstraintTol) {
			infeasible++
		}

		out[i] = vecmath.New(sol[0], sol[1], sol[2])
	}
	return infeasible
}

// ActiveConstraints reports, for diagnostics, how many obstacle
// constraints are binding for the acceleration (uX, uY, uZ). The engine's
// debug-state readers do not call it.
func (a *Algorithm) ActiveConstraints(st *swarm.Store, i int, t, uX, uY, uZ float64) int {
	p := a.Params
	var constraints []qp.Halfspace3
	pos, vel := st.Positions[i], st.Velocities[i]
	gamma := -st.Drag[i]
	for _, ob := range p.Obstacles {
		if c, ok := buildObstacleConstraint(p, pos, vel, gamma, ob, t); ok {
			constraints = append(constraints, c)
		}
	}
	return qp.ActiveCount3([3]float64{uX, uY, uZ}, constraints, activeConstraintTol)
}

// Attitude derives the commanded roll, pitch and thrust for a commanded
// acceleration at the given desired yaw, matching a planar-quadrotor model
// with gravity compensated on the z axis.
func Attitude(u vecmath.Vec3, mass, gravity, desiredYaw float64) (roll, pitch, thrust float64) {
	uz := u.Z + gravity
	thrustMag := math.Sqrt(u.X*u.X + u.Y*u.Y + uz*uz)
	if thrustMag < 1e-6 {
		thrustMag = 1e-6
	}
	sinYaw, cosYaw := math.Sin(desiredYaw), math.Cos(desiredYaw)
	s := clamp((u.X*sinYaw-u.Y*cosYaw)/thrustMag, -1, 1)
	roll = math.Asin(s)
	pitch = math.Atan2(u.X*cosYaw+u.Y*sinYaw, uz)
	thrust = thrustMag * mass
	return roll, pitch, thrust
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
