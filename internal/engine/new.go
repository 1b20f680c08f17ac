package engine

import (
	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

func newEngine(modelID string, st *swarm.Store, dt float64, algorithmID string) (*Engine, error) {
	norm, ok := normalizeModelID(modelID)
	if !ok {
		return nil, &OpError{Op: "new", ID: modelID, Wrapped: ErrUnknownID}
	}
	if algorithmID == "" {
		algorithmID = defaultAlgorithmFor(norm)
	}
	algNorm, ok := normalizeAlgorithmID(algorithmID)
	if !ok {
		return nil, &OpError{Op: "new", ID: algorithmID, Wrapped: ErrUnknownID}
	}
	if !isCompatible(norm, algNorm) {
		return nil, &OpError{Op: "new", ID: algNorm, Wrapped: ErrIncompatibleAlgorithm}
	}
	if dt <= 0 {
		dt = demoDt
	}

	e := &Engine{
		modelID:      norm,
		dt:           dt,
		state:        Configured,
		store:        st,
		grid:         grid.New(1.0),
		appliedForce: make([]vecmath.Vec3, st.N()),
	}
	e.algorithmID = algNorm
	e.algoKind = algoKindFor(algNorm)
	e.initAlgoState()
	return e, nil
}

// NewDemo builds the built-in ring-swarm demo running Reynolds flocking,
// the same seed a fresh host session starts from.
func NewDemo() *Engine {
	e, err := newEngine(ModelRing, ringDemo(), demoDt, AlgoFlockingID)
	if err != nil {
		panic(err)
	}
	return e
}

// NewWithIDs builds an engine from a catalog model id, seeding that
// model's built-in demo state, paired with the given algorithm id (or
// the model's default algorithm if algorithmID is empty).
func NewWithIDs(modelID, algorithmID string) (*Engine, error) {
	var st *swarm.Store
	switch modelID {
	case ModelRing:
		st = ringDemo()
	case ModelLattice:
		st = latticeDemo(latticeDemoSide)
	case ModelQuadrotor:
		st = latticeDemo(latticeDemoSide)
	case ModelFromState:
		st = &swarm.Store{}
		st.Reset(0)
	default:
		return nil, &OpError{Op: "new_with_ids", ID: modelID, Wrapped: ErrUnknownID}
	}
	return newEngine(modelID, st, demoDt, algorithmID)
}

// NewFromConfig builds an engine from an explicit agent/cluster
// description, as used by the run store and the CLI's "run" command.
func NewFromConfig(cfg Config) (*Engine, error) {
	st, err := buildStoreFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	modelID := ModelFromState
	if cfg.Algorithm == AlgoFormationID {
		modelID = ModelQuadrotor
	}
	e, err := newEngine(modelID, st, cfg.Dt, cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	e.SetPlaneTwoD(cfg.Plane2D)
	return e, nil
}

// NewFromStates builds an engine directly from a packed [x,y,z,vx,vy,vz]
// state matrix, the host API's escape hatch for externally computed
// initial conditions.
func NewFromStates(states []float64, dt float64, algorithmID string) (*Engine, error) {
	st, err := storeFromStates(states)
	if err != nil {
		return nil, err
	}
	return newEngine(ModelFromState, st, dt, algorithmID)
}
