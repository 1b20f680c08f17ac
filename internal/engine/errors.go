package engine

import "errors"

// Sentinel errors for the engine's control-plane failures, checked with
// errors.Is. Internal, non-fatal conditions (a sanitized non-finite value,
// a QP that could not be made feasible) are not errors at all — they
// surface as counters, matching the "no error is raised from tick()"
// contract.
var (
	// ErrUnknownID indicates a model or algorithm id absent from the
	// catalog.
	ErrUnknownID = errors.New("engine: unknown id")

	// ErrIncompatibleAlgorithm indicates the requested algorithm is not
	// listed as compatible with the current model.
	ErrIncompatibleAlgorithm = errors.New("engine: algorithm incompatible with model")

	// ErrInvalidParameter indicates a setter value violated a range or
	// shape invariant; the engine's prior state is left unchanged.
	ErrInvalidParameter = errors.New("engine: invalid parameter")

	// ErrInvalidConfig indicates a malformed cluster spec.
	ErrInvalidConfig = errors.New("engine: invalid config")
)

// OpError wraps a sentinel error with the operation and id that triggered
// it, mirroring the wrapped-context-error idiom used elsewhere in this
// codebase.
type OpError struct {
	Op      string
	ID      string
	Wrapped error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return e.Op + ": " + e.Wrapped.Error()
	}
	return e.Op + " " + e.ID + ": " + e.Wrapped.Error()
}

func (e *OpError) Unwrap() error { return e.Wrapped }
