package engine

// SetFlockParams applies Reynolds-flocking tuning by name. It fails with
// ErrIncompatibleAlgorithm unless the "flocking" algorithm is active.
func (e *Engine) SetFlockParams(values map[string]float64) error {
	if e.algoKind != kindFlocking {
		return &OpError{Op: "set_flock_params", Wrapped: ErrIncompatibleAlgorithm}
	}
	next := e.reynoldsAlgo.Params
	for name, v := range values {
		if err := next.SetParam(name, v); err != nil {
			return &OpError{Op: "set_flock_params", ID: name, Wrapped: ErrInvalidParameter}
		}
	}
	if err := next.Validate(); err != nil {
		return &OpError{Op: "set_flock_params", Wrapped: ErrInvalidParameter}
	}
	e.reynoldsAlgo.Params = next
	return nil
}

// SetFlockAlphaParams applies α-lattice tuning by name. It fails with
// ErrIncompatibleAlgorithm unless the "flocking-alpha" algorithm is
// active.
func (e *Engine) SetFlockAlphaParams(values map[string]float64) error {
	if e.algoKind != kindAlpha {
		return &OpError{Op: "set_flock_alpha_params", Wrapped: ErrIncompatibleAlgorithm}
	}
	next := e.alphaAlgo.Params
	for name, v := range values {
		if err := next.SetParam(name, v); err != nil {
			return &OpError{Op: "set_flock_alpha_params", ID: name, Wrapped: ErrInvalidParameter}
		}
	}
	if err := next.Validate(); err != nil {
		return &OpError{Op: "set_flock_alpha_params", Wrapped: ErrInvalidParameter}
	}
	e.alphaAlgo.Params = next
	return nil
}

// SetFormationEcbfParams applies formation/ECBF tuning by name. It fails
// with ErrIncompatibleAlgorithm unless the "formation-ecbf" algorithm is
// active.
func (e *Engine) SetFormationEcbfParams(values map[string]float64) error {
	if e.algoKind != kindFormation {
		return &OpError{Op: "set_formation_ecbf_params", Wrapped: ErrIncompatibleAlgorithm}
	}
	next := e.formationAlgo.Params
	for name, v := range values {
		if err := next.SetParam(name, v); err != nil {
			return &OpError{Op: "set_formation_ecbf_params", ID: name, Wrapped: ErrInvalidParameter}
		}
	}
	if err := next.Validate(); err != nil {
		return &OpError{Op: "set_formation_ecbf_params", Wrapped: ErrInvalidParameter}
	}
	e.formationAlgo.Params = next
	return nil
}

// SetSafeFlockingAlphaParams applies the safety-filter and nominal
// α-lattice tuning by name. It fails with ErrIncompatibleAlgorithm unless
// the "safe-flocking-alpha" algorithm is active.
func (e *Engine) SetSafeFlockingAlphaParams(values map[string]float64) error {
	if e.algoKind != kindSafe {
		return &OpError{Op: "set_safe_flocking_alpha_params", Wrapped: ErrIncompatibleAlgorithm}
	}
	next := e.safeAlgo.Params
	for name, v := range values {
		if err := next.SetParam(name, v); err != nil {
			return &OpError{Op: "set_safe_flocking_alpha_params", ID: name, Wrapped: ErrInvalidParameter}
		}
	}
	if err := next.Validate(); err != nil {
		return &OpError{Op: "set_safe_flocking_alpha_params", Wrapped: ErrInvalidParameter}
	}
	e.safeAlgo.Params = next
	return nil
}
