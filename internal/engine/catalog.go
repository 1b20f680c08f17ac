package engine

// Model/algorithm id constants, matching the host-facing strings exposed
// through the discovery endpoints.
const (
	ModelRing      = "ring-swarm"
	ModelLattice   = "lattice-swarm"
	ModelQuadrotor = "quadrotor-swarm"
	ModelFromState = "from-states"

	AlgoNoneID      = "none"
	AlgoFlockingID  = "flocking"
	AlgoAlphaID     = "flocking-alpha"
	AlgoFormationID = "formation-ecbf"
	AlgoSafeID      = "safe-flocking-alpha"
)

// ModelInfo describes one entry in the model catalog.
type ModelInfo struct {
	ID               string
	Name             string
	Description      string
	DefaultAlgorithm string
}

// AlgorithmInfo describes one entry in the algorithm catalog, including
// which models it may be paired with.
type AlgorithmInfo struct {
	ID               string
	Name             string
	Description      string
	CompatibleModels []string
}

// ModelCatalog returns the data-driven table of built-in models. Kept as a
// function rather than a package variable so callers cannot mutate the
// shared catalog by accident.
func ModelCatalog() []ModelInfo {
	return []ModelInfo{
		{ID: ModelRing, Name: "Ring swarm", Description: "agents seeded on a wobbling ring", DefaultAlgorithm: AlgoFlockingID},
		{ID: ModelLattice, Name: "Lattice swarm", Description: "agents seeded on a cubic lattice", DefaultAlgorithm: AlgoFlockingID},
		{ID: ModelQuadrotor, Name: "Quadrotor swarm", Description: "second-order agents with attitude, formation-controlled", DefaultAlgorithm: AlgoFormationID},
		{ID: ModelFromState, Name: "From explicit states", Description: "agents seeded from an explicit state matrix", DefaultAlgorithm: AlgoFlockingID},
	}
}

// AlgorithmCatalog returns the data-driven table of steering algorithms
// and the models each is permitted to run against.
func AlgorithmCatalog() []AlgorithmInfo {
	return []AlgorithmInfo{
		{
			ID: AlgoNoneID, Name: "No steering", Description: "integrate applied forces only, no autonomous steering",
			CompatibleModels: []string{ModelRing, ModelLattice, ModelQuadrotor, ModelFromState},
		},
		{
			ID: AlgoFlockingID, Name: "Reynolds flocking", Description: "cohesion/alignment/separation",
			CompatibleModels: []string{ModelRing, ModelLattice, ModelFromState},
		},
		{
			ID: AlgoAlphaID, Name: "α-lattice flocking", Description: "Olfati-Saber potential-based flocking",
			CompatibleModels: []string{ModelRing, ModelLattice, ModelFromState},
		},
		{
			ID: AlgoFormationID, Name: "Formation + ECBF", Description: "fixed-time formation tracking with barrier-safe obstacle avoidance",
			CompatibleModels: []string{ModelRing, ModelLattice, ModelQuadrotor, ModelFromState},
		},
		{
			ID: AlgoSafeID, Name: "Safe flocking", Description: "α-lattice flocking filtered through a CBF-QP safety layer",
			CompatibleModels: []string{ModelRing, ModelLattice, ModelFromState},
		},
	}
}

// AlgorithmsForModel filters AlgorithmCatalog to the entries compatible
// with modelID.
func AlgorithmsForModel(modelID string) []AlgorithmInfo {
	var out []AlgorithmInfo
	for _, a := range AlgorithmCatalog() {
		for _, m := range a.CompatibleModels {
			if m == modelID {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func normalizeModelID(id string) (string, bool) {
	for _, m := range ModelCatalog() {
		if m.ID == id {
			return id, true
		}
	}
	return "", false
}

func normalizeAlgorithmID(id string) (string, bool) {
	for _, a := range AlgorithmCatalog() {
		if a.ID == id {
			return id, true
		}
	}
	return "", false
}

func isCompatible(modelID, algorithmID string) bool {
	for _, a := range AlgorithmsForModel(modelID) {
		if a.ID == algorithmID {
			return true
		}
	}
	return false
}

func defaultAlgorithmFor(modelID string) string {
	for _, m := range ModelCatalog() {
		if m.ID == modelID {
			return m.DefaultAlgorithm
		}
	}
	return AlgoNoneID
}
