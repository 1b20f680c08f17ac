// Package swarm holds the structure-of-arrays state store shared by every
// steering algorithm and the integrator: positions, velocities, groups,
// per-agent drag, and the optional second-order auxiliary state
// (attitude, filtered derivatives) that only the formation/ECBF
// algorithm populates.
package swarm

import "github.com/san-kum/swarmeng/internal/vecmath"

// Attitude holds the second-order auxiliary state a quadrotor-like model
// carries on top of position/velocity: commanded roll/pitch/yaw, thrust
// trim, and the low-pass-filtered derivatives the ECBF constraints need.
type Attitude struct {
	Roll, Pitch, Yaw float64
	Thrust           float64
	MuDot            vecmath.Vec3
	AlphaDot         vecmath.Vec3
	LastAccel        vecmath.Vec3
}

// Store is the fixed-size, structure-of-arrays state for N agents. Indices
// are stable for the lifetime of a run; N changes only through Reset.
type Store struct {
	Positions  []vecmath.Vec3
	Velocities []vecmath.Vec3
	Groups     []uint32
	Drag       []float64

	// Attitudes is nil unless an algorithm that needs second-order
	// auxiliary state (formation+ECBF) is active.
	Attitudes []Attitude
}

// N returns the agent count.
func (s *Store) N() int { return len(s.Positions) }

// Reset replaces the store's contents with N fresh agents, all zeroed
// except for drag which defaults to 0. Existing attitude auxiliary state
// is dropped; callers that need it call EnableAttitude afterward.
func (s *Store) Reset(n int) {
	s.Positions = make([]vecmath.Vec3, n)
	s.Velocities = make([]vecmath.Vec3, n)
	s.Groups = make([]uint32, n)
	s.Drag = make([]float64, n)
	s.Attitudes = nil
}

// EnableAttitude allocates per-agent attitude auxiliary state if it is not
// already present. Existing state is preserved while its length matches
// the agent count; when the count changed underneath it, the state is
// reallocated zeroed.
func (s *Store) EnableAttitude() {
	if s.Attitudes != nil && len(s.Attitudes) == s.N() {
		return
	}
	s.Attitudes = make([]Attitude, s.N())
}

// DisableAttitude drops attitude auxiliary state, freeing it for
// algorithms that don't need it.
func (s *Store) DisableAttitude() {
	s.Attitudes = nil
}

// HasAttitude reports whether attitude auxiliary state is currently
// tracked.
func (s *Store) HasAttitude() bool { return s.Attitudes != nil }

// Sanitize clamps any non-finite position/velocity to zero, returning the
// number of vectors it zeroed (an agent with both bad counts twice) so the
// engine can bump its NumericalFault counter.
func (s *Store) Sanitize() int {
	faults := 0
	for i := range s.Positions {
		if !s.Positions[i].IsFinite() {
			s.Positions[i] = vecmath.Vec3{}
			faults++
		}
		if !s.Velocities[i].IsFinite() {
			s.Velocities[i] = vecmath.Vec3{}
			faults++
		}
	}
	return faults
}

// ProjectPlane2D forces every agent's z position and velocity to 0, the
// invariant plane_2d mode requires after each tick.
func (s *Store) ProjectPlane2D() {
	for i := range s.Positions {
		s.Positions[i].Z = 0
		s.Velocities[i].Z = 0
	}
}

// Centroid returns the mean position across all agents, or the zero
// vector for an empty store.
func (s *Store) Centroid() vecmath.Vec3 {
	if len(s.Positions) == 0 {
		return vecmath.Vec3{}
	}
	sum := vecmath.Vec3{}
	for _, p := range s.Positions {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(s.Positions)))
}
