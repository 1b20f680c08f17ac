package engine

// Positions returns a freshly flattened [x,y,z, x,y,z, ...] view, the
// cheap per-frame read path for rendering.
func (e *Engine) Positions() []float32 {
	out := make([]float32, 0, e.store.N()*3)
	for _, p := range e.store.Positions {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

// States returns the flattened [x,y,z,vx,vy,vz, ...] view.
func (e *Engine) States() []float32 {
	out := make([]float32, 0, e.store.N()*6)
	for i := range e.store.Positions {
		p := e.store.Positions[i]
		v := e.store.Velocities[i]
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z), float32(v.X), float32(v.Y), float32(v.Z))
	}
	return out
}

// Groups returns the per-agent group tags.
func (e *Engine) Groups() []uint32 {
	out := make([]uint32, len(e.store.Groups))
	copy(out, e.store.Groups)
	return out
}

// Attitudes returns a flattened [roll,pitch,yaw,thrust, ...] view, or nil
// if the active algorithm does not maintain attitude state.
func (e *Engine) Attitudes() []float32 {
	if !e.store.HasAttitude() {
		return nil
	}
	out := make([]float32, 0, len(e.store.Attitudes)*4)
	for _, a := range e.store.Attitudes {
		out = append(out, float32(a.Roll), float32(a.Pitch), float32(a.Yaw), float32(a.Thrust))
	}
	return out
}

// DebugStates returns the per-agent diagnostic field layout described by
// §4's resolved debug-state format: for safe-flocking-alpha, 14 packed
// floats per agent (position[3], velocity[3], nominal control[3],
// filtered control[3], slack, active-constraint count); for every other
// algorithm, the 6-field base [x,y,z,vx,vy,vz] state doubles as the
// debug view since there is no per-agent safety-filter diagnostic to
// report.
func (e *Engine) DebugStates() []float32 {
	if e.algoKind != kindSafe {
		return e.States()
	}
	n := e.store.N()
	out := make([]float32, 0, n*14)
	for i := 0; i < n; i++ {
		p := e.store.Positions[i]
		v := e.store.Velocities[i]
		d := e.safeAlgo.Debug[i]
		out = append(out,
			float32(p.X), float32(p.Y), float32(p.Z),
			float32(v.X), float32(v.Y), float32(v.Z),
			float32(d.UNom.X), float32(d.UNom.Y), float32(d.UNom.Z),
			float32(d.U.X), float32(d.U.Y), float32(d.U.Z),
			float32(d.Slack), float32(d.ActiveConstraints),
		)
	}
	return out
}
