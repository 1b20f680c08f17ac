package swarm

import (
	"math"
	"testing"

	"github.com/san-kum/swarmeng/internal/vecmath"
)

func TestResetSizesAllSlices(t *testing.T) {
	var s Store
	s.Reset(5)
	if s.N() != 5 {
		t.Fatalf("N: got %d want 5", s.N())
	}
	if len(s.Velocities) != 5 || len(s.Groups) != 5 || len(s.Drag) != 5 {
		t.Fatalf("slice lengths not all 5: %+v", s)
	}
	if s.HasAttitude() {
		t.Error("expected no attitude state right after Reset")
	}
}

func TestEnableDisableAttitude(t *testing.T) {
	var s Store
	s.Reset(3)
	s.EnableAttitude()
	if !s.HasAttitude() || len(s.Attitudes) != 3 {
		t.Fatalf("expected 3 attitudes after EnableAttitude, got %+v", s.Attitudes)
	}

	s.Attitudes[1].Roll = 0.5
	s.EnableAttitude() // same size, must preserve existing state
	if s.Attitudes[1].Roll != 0.5 {
		t.Error("EnableAttitude re-allocated state it should have preserved")
	}

	s.DisableAttitude()
	if s.HasAttitude() {
		t.Error("expected no attitude state after DisableAttitude")
	}
}

func TestEnableAttitudeResizes(t *testing.T) {
	var s Store
	s.Reset(2)
	s.EnableAttitude()
	s.Reset(4) // Reset drops attitude state and changes N underneath it
	s.EnableAttitude()
	if len(s.Attitudes) != 4 {
		t.Fatalf("expected attitude state resized to 4, got %d", len(s.Attitudes))
	}
}

func TestSanitizeClampsNonFinite(t *testing.T) {
	var s Store
	s.Reset(2)
	s.Positions[0] = vecmath.New(math.NaN(), 0, 0)
	s.Velocities[1] = vecmath.New(math.Inf(1), 0, 0)

	faults := s.Sanitize()
	if faults != 2 {
		t.Errorf("faults: got %d want 2", faults)
	}
	if s.Positions[0] != (vecmath.Vec3{}) {
		t.Errorf("expected position 0 zeroed, got %+v", s.Positions[0])
	}
	if s.Velocities[1] != (vecmath.Vec3{}) {
		t.Errorf("expected velocity 1 zeroed, got %+v", s.Velocities[1])
	}
}

func TestProjectPlane2D(t *testing.T) {
	var s Store
	s.Reset(1)
	s.Positions[0] = vecmath.New(1, 2, 3)
	s.Velocities[0] = vecmath.New(4, 5, 6)

	s.ProjectPlane2D()
	if s.Positions[0].Z != 0 || s.Velocities[0].Z != 0 {
		t.Errorf("expected z components zeroed, got pos=%+v vel=%+v", s.Positions[0], s.Velocities[0])
	}
	if s.Positions[0].X != 1 || s.Velocities[0].X != 4 {
		t.Error("ProjectPlane2D should not touch x/y components")
	}
}

func TestCentroid(t *testing.T) {
	var s Store
	s.Reset(0)
	if s.Centroid() != (vecmath.Vec3{}) {
		t.Error("expected zero centroid for empty store")
	}

	s.Reset(2)
	s.Positions[0] = vecmath.New(0, 0, 0)
	s.Positions[1] = vecmath.New(2, 4, 6)
	c := s.Centroid()
	if c != (vecmath.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("centroid: got %+v want {1 2 3}", c)
	}
}
