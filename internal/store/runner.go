package store

import (
	"github.com/san-kum/swarmeng/internal/config"
	"github.com/san-kum/swarmeng/internal/engine"
	"github.com/san-kum/swarmeng/internal/trajectory"
)

// Run drives a freshly built engine for cfg.Duration seconds, recording
// every `stride`-th frame (stride < 1 is treated as 1), and returns the
// resulting trajectory ready for Save.
func Run(cfg *config.Config, stride int) (trajectory.Recording, error) {
	if stride < 1 {
		stride = 1
	}

	eng, err := engine.NewFromConfig(cfg.ToEngineConfig())
	if err != nil {
		return trajectory.Recording{}, err
	}

	fields := trajectory.FieldsFor(cfg.Algorithm)
	n := eng.Len()
	steps := int(cfg.Duration / cfg.Dt)

	rec := trajectory.Recording{
		Meta: trajectory.Meta{
			Version:         trajectory.FormatVersion,
			Dt:              cfg.Dt,
			Stride:          stride,
			MaxFrames:       steps/stride + 1,
			ModelID:         cfg.Model,
			AlgorithmID:     cfg.Algorithm,
			Plane2D:         cfg.Plane2D,
			AgentCount:      n,
			Fields:          fields,
			Groups:          groupsOf(eng.Groups()),
			AlgorithmParams: cfg.Params,
		},
	}

	appendFrame := func() {
		rec.States = append(rec.States, frameOf(eng, fields)...)
		rec.FrameCount++
	}

	appendFrame()
	for step := 1; step <= steps; step++ {
		eng.Tick()
		if step%stride == 0 {
			appendFrame()
		}
	}

	return rec, nil
}

func groupsOf(g []uint32) []int {
	out := make([]int, len(g))
	for i, v := range g {
		out[i] = int(v)
	}
	return out
}

func frameOf(eng *engine.Engine, fields []string) []float32 {
	base := eng.States()
	if len(fields) == 6 {
		return base
	}
	debug := eng.DebugStates()
	return debug
}
