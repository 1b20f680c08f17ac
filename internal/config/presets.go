package config

import "github.com/san-kum/swarmeng/internal/engine"

// Presets is a small catalog of ready-to-run scenarios keyed by model
// then preset name, covering each of the four steering algorithms
// against a model it is compatible with.
var Presets = map[string]map[string]*Config{
	engine.ModelRing: {
		"loose-flock": {
			Model: engine.ModelRing, Algorithm: engine.AlgoFlockingID, Dt: DefaultDt, Duration: 20.0,
		},
		"alpha-lattice": {
			Model: engine.ModelRing, Algorithm: engine.AlgoAlphaID, Dt: DefaultDt, Duration: 20.0,
		},
		"safe-lattice": {
			Model: engine.ModelRing, Algorithm: engine.AlgoSafeID, Dt: DefaultDt, Duration: 20.0,
		},
	},
	engine.ModelLattice: {
		"settle": {
			Model: engine.ModelLattice, Algorithm: engine.AlgoFlockingID, Dt: DefaultDt, Duration: 15.0,
		},
		"disperse": {
			Model: engine.ModelLattice, Algorithm: engine.AlgoAlphaID, Dt: DefaultDt, Duration: 25.0,
		},
	},
	engine.ModelQuadrotor: {
		"diamond-weave": {
			Model: engine.ModelQuadrotor, Algorithm: engine.AlgoFormationID, Dt: DefaultDt, Duration: 40.0,
		},
	},
	engine.ModelFromState: {
		"sphere-cluster": {
			Model: engine.ModelFromState, Algorithm: engine.AlgoAlphaID, Dt: DefaultDt, Duration: 20.0,
			Clusters: []ClusterConfig{
				{Shape: "sphere", Count: 60, Center: [3]float64{0, 0, 0}, Radius: 10, Drag: 0.04},
			},
		},
		"ring-cluster": {
			Model: engine.ModelFromState, Algorithm: engine.AlgoSafeID, Dt: DefaultDt, Duration: 20.0,
			Clusters: []ClusterConfig{
				{Shape: "circle", Count: 24, Center: [3]float64{0, 0, 0}, Radius: 12, Drag: 0.06},
			},
		},
	},
}

// GetPreset looks up a named preset for a model, or nil if either is
// unknown.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names registered for a model.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
