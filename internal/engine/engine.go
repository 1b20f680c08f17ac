// Package engine ties the state store, spatial grid, integrator and the
// four steering algorithms together behind a small host-facing API:
// construction, tick, parameter setters, and flat-view readers.
package engine

import (
	"fmt"

	"github.com/san-kum/swarmeng/internal/algo/alphalattice"
	"github.com/san-kum/swarmeng/internal/algo/formation"
	"github.com/san-kum/swarmeng/internal/algo/reynolds"
	"github.com/san-kum/swarmeng/internal/algo/safeflocking"
	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/integrate"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

// RunState is the engine's two-state lifecycle: Configured is the state
// right after construction or a structural algorithm switch; Running is
// entered on the first tick, which is accepted from either state.
type RunState int

const (
	Configured RunState = iota
	Running
)

// Engine holds one simulation: the shared agent store, the spatial index,
// and a tagged-variant algorithm state. tick() dispatches through a
// switch on the algoKind value rather than an Algorithm interface, keeping the
// per-tick inner loop free of indirect calls.
type Engine struct {
	modelID     string
	algorithmID string
	plane2D     bool
	dt          float64
	t           float64
	state       RunState

	store *swarm.Store
	grid  *grid.Grid

	algoKind     algoKind
	reynoldsAlgo *reynolds.Algorithm
	alphaAlgo    *alphalattice.Algorithm
	formationAlgo *formation.Algorithm
	safeAlgo     *safeflocking.Algorithm

	appliedForce []vecmath.Vec3
	accelScratch []vecmath.Vec3

	numericalFaults int
	infeasibleCount int
}

type algoKind int

const (
	kindNone algoKind = iota
	kindFlocking
	kindAlpha
	kindFormation
	kindSafe
)

func algoKindFor(id string) algoKind {
	switch id {
	case AlgoFlockingID:
		return kindFlocking
	case AlgoAlphaID:
		return kindAlpha
	case AlgoFormationID:
		return kindFormation
	case AlgoSafeID:
		return kindSafe
	default:
		return kindNone
	}
}

// Len returns the agent count.
func (e *Engine) Len() int { return e.store.N() }

// Dt returns the fixed timestep.
func (e *Engine) Dt() float64 { return e.dt }

// Time returns the current simulation time.
func (e *Engine) Time() float64 { return e.t }

// ModelID/AlgorithmID report the engine's current catalog ids.
func (e *Engine) ModelID() string     { return e.modelID }
func (e *Engine) AlgorithmID() string { return e.algorithmID }

// NumericalFaults/InfeasibleCount are the internal, non-fatal diagnostic
// counters §7 describes: bumped when tick() sanitizes a non-finite value
// or a QP could not be driven feasible, never surfaced as an error.
func (e *Engine) NumericalFaults() int { return e.numericalFaults }
func (e *Engine) InfeasibleCount() int { return e.infeasibleCount }

func (e *Engine) neighborCellSize() float64 {
	size := 1.0
	switch e.algoKind {
	case kindFlocking:
		size = e.reynoldsAlgo.Params.NeighborRadius
	case kindAlpha:
		size = e.alphaAlgo.Params.NeighborRadius
	case kindSafe:
		p := e.safeAlgo.Params
		size = p.Nominal.NeighborRadius
		if p.CBFNeighborRadius > size {
			size = p.CBFNeighborRadius
		}
	}
	if size <= 0 {
		size = 1
	}
	return size
}

// Tick advances the simulation by one fixed step: rebuild the spatial
// grid if the active algorithm queries neighbors, evaluate that
// algorithm's acceleration, integrate, sanitize, and advance time. It
// never returns an error; QP infeasibility and non-finite values degrade
// to the documented fallbacks instead.
func (e *Engine) Tick() {
	e.state = Running
	n := e.store.N()
	if n == 0 {
		return
	}
	if len(e.accelScratch) != n {
		e.accelScratch = make([]vecmath.Vec3, n)
	}

	switch e.algoKind {
	case kindNone:
		copy(e.accelScratch, e.appliedForce)

	case kindFlocking:
		e.grid.SetCellSize(e.neighborCellSize())
		e.grid.Rebuild(e.store.Positions)
		e.reynoldsAlgo.Accelerate(e.store, e.grid, e.accelScratch)

	case kindAlpha:
		e.grid.SetCellSize(e.neighborCellSize())
		e.grid.Rebuild(e.store.Positions)
		e.alphaAlgo.Accelerate(e.store, e.grid, e.accelScratch)

	case kindFormation:
		e.infeasibleCount += e.formationAlgo.Accelerate(e.store, e.t, e.accelScratch)
		if e.store.HasAttitude() {
			p := e.formationAlgo.Params
			for i := range e.store.Attitudes {
				roll, pitch, thrust := formation.Attitude(e.accelScratch[i], 1.0, p.Gravity, p.DesiredYaw)
				e.store.Attitudes[i].Roll = roll
				e.store.Attitudes[i].Pitch = pitch
				e.store.Attitudes[i].Yaw = p.DesiredYaw
				e.store.Attitudes[i].Thrust = thrust
				e.store.Attitudes[i].MuDot = e.formationAlgo.Filt[i]
				e.store.Attitudes[i].AlphaDot = e.formationAlgo.AlphaFilt[i]
				e.store.Attitudes[i].LastAccel = e.accelScratch[i]
			}
		}

	case kindSafe:
		e.grid.SetCellSize(e.neighborCellSize())
		e.grid.Rebuild(e.store.Positions)
		e.infeasibleCount += e.safeAlgo.Accelerate(e.store, e.grid, e.t, e.accelScratch)
	}

	maxSpeed := e.maxSpeed()
	integrate.SemiImplicitEuler(e.store, e.accelScratch, e.dt, maxSpeed, e.plane2D)
	e.numericalFaults += e.store.Sanitize()
	if e.dt != 0 {
		e.t += e.dt
	}
}

func (e *Engine) maxSpeed() float64 {
	switch e.algoKind {
	case kindFlocking:
		return e.reynoldsAlgo.Params.MaxSpeed
	case kindAlpha:
		return e.alphaAlgo.Params.MaxSpeed
	case kindSafe:
		return e.safeAlgo.Params.Nominal.MaxSpeed
	default:
		return 0
	}
}

// SetPlaneTwoD toggles 2D-plane projection, effective starting with the
// next tick.
func (e *Engine) SetPlaneTwoD(enabled bool) { e.plane2D = enabled }

// SetAlgorithm switches the active algorithm. It fails with
// ErrIncompatibleAlgorithm if id is not permitted for the current model,
// with ErrUnknownID if id is not in the catalog at all. Setting the
// current algorithm again is a no-op. Switching to/from formation-ecbf
// (the only algorithm using attitude auxiliary state) transitions
// Running -> Configured -> Running, reallocating that auxiliary state.
func (e *Engine) SetAlgorithm(id string) error {
	if id == e.algorithmID {
		return nil
	}
	norm, ok := normalizeAlgorithmID(id)
	if !ok {
		return &OpError{Op: "set_algorithm", ID: id, Wrapped: ErrUnknownID}
	}
	if !isCompatible(e.modelID, norm) {
		return &OpError{Op: "set_algorithm", ID: id, Wrapped: ErrIncompatibleAlgorithm}
	}

	e.state = Configured
	e.algorithmID = norm
	e.algoKind = algoKindFor(norm)
	e.initAlgoState()
	e.state = Running
	return nil
}

func (e *Engine) initAlgoState() {
	n := e.store.N()
	switch e.algoKind {
	case kindFlocking:
		if e.reynoldsAlgo == nil {
			e.reynoldsAlgo = reynolds.New(reynolds.DefaultParams())
		}
		e.store.DisableAttitude()
	case kindAlpha:
		if e.alphaAlgo == nil {
			e.alphaAlgo = alphalattice.New(alphalattice.DefaultParams())
		}
		e.store.DisableAttitude()
	case kindFormation:
		if e.formationAlgo == nil {
			p := formation.DefaultParams()
			e.formationAlgo = formation.New(p, n)
			e.formationAlgo.EnsureOffsets(e.store.Positions)
		} else {
			for i := range e.formationAlgo.Filt {
				e.formationAlgo.Reset(i)
			}
		}
		e.store.EnableAttitude()
	case kindSafe:
		if e.safeAlgo == nil {
			e.safeAlgo = safeflocking.New(safeflocking.DefaultParams(), n)
		}
		e.store.DisableAttitude()
	default:
		e.store.DisableAttitude()
	}
}

// SetPositionAndVelocity performs the interactive "drag an agent" mutator:
// it overwrites agent i's position/velocity and, if the formation-ecbf
// algorithm is active, resets that agent's persistent filter state.
func (e *Engine) SetPositionAndVelocity(i int, pos, vel vecmath.Vec3) error {
	if i < 0 || i >= e.store.N() {
		return &OpError{Op: "set_position_and_velocity", ID: fmt.Sprintf("%d", i), Wrapped: ErrInvalidParameter}
	}
	e.store.Positions[i] = pos
	e.store.Velocities[i] = vel
	if e.algoKind == kindFormation {
		e.formationAlgo.Reset(i)
	}
	return nil
}

// SetForce / SetUniformForce set the externally applied acceleration used
// when the "none" algorithm is active (no autonomous steering).
func (e *Engine) SetForce(i int, f vecmath.Vec3) error {
	if i < 0 || i >= len(e.appliedForce) {
		return &OpError{Op: "set_force", ID: fmt.Sprintf("%d", i), Wrapped: ErrInvalidParameter}
	}
	e.appliedForce[i] = f
	return nil
}

func (e *Engine) SetUniformForce(f vecmath.Vec3) {
	for i := range e.appliedForce {
		e.appliedForce[i] = f
	}
}

// SetPosition / SetVelocity are single-field variants of
// SetPositionAndVelocity that do not reset formation filter state,
// matching the host API's finer-grained mutators.
func (e *Engine) SetPosition(i int, pos vecmath.Vec3) error {
	if i < 0 || i >= e.store.N() {
		return &OpError{Op: "set_position", ID: fmt.Sprintf("%d", i), Wrapped: ErrInvalidParameter}
	}
	e.store.Positions[i] = pos
	return nil
}

func (e *Engine) SetVelocity(i int, vel vecmath.Vec3) error {
	if i < 0 || i >= e.store.N() {
		return &OpError{Op: "set_velocity", ID: fmt.Sprintf("%d", i), Wrapped: ErrInvalidParameter}
	}
	e.store.Velocities[i] = vel
	return nil
}
