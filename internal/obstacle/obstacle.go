// Package obstacle defines the quadratic-motion obstacles and the leader
// trajectory variants the ECBF and safe-flocking algorithms read from.
// Obstacles are global and immutable across a run; the leader trajectory
// is mutable only through its parameters, never its kind mid-run.
package obstacle

import (
	"math"

	"github.com/san-kum/swarmeng/internal/vecmath"
)

// Quadratic is a position that moves as p(t) = a2*t^2 + a1*t + a0. Static
// obstacles simply leave a2 and a1 zero.
type Quadratic struct {
	A0, A1, A2 vecmath.Vec3
	SafeRadius float64
}

func (q Quadratic) Position(t float64) vecmath.Vec3 {
	return q.A2.Scale(t * t).Add(q.A1.Scale(t)).Add(q.A0)
}

func (q Quadratic) Velocity(t float64) vecmath.Vec3 {
	return q.A2.Scale(2 * t).Add(q.A1)
}

// Acceleration is constant for quadratic motion: 2*a2.
func (q Quadratic) Acceleration() vecmath.Vec3 {
	return q.A2.Scale(2)
}

// PaperObstacles returns the six-obstacle field used by the reference
// scenarios: four static pillars, one moving obstacle, one static sphere.
// The exact coefficients are kept for numerical parity with recorded runs.
func PaperObstacles() []Quadratic {
	return []Quadratic{
		{A0: vecmath.New(47, 86, 10), SafeRadius: 5.0},
		{A0: vecmath.New(52, 78, 9), SafeRadius: 4.0},
		{A0: vecmath.New(43, 82, 61.5), SafeRadius: 5.0},
		{A0: vecmath.New(49, 75, 60.5), SafeRadius: 5.5},
		{
			A0:         vecmath.New(95, 15, 100),
			A1:         vecmath.New(-0.06, 0, -0.089),
			A2:         vecmath.New(0, 0.001, 0),
			SafeRadius: 3.0,
		},
		{A0: vecmath.New(69, 83, 124.5), SafeRadius: 6.0},
	}
}

// LeaderKind tags the variant a Leader trajectory holds.
type LeaderKind int

const (
	LeaderStatic LeaderKind = iota
	LeaderCircle
	LeaderPoly
	LeaderPaper
	LeaderCustom
)

// Leader is a tagged-union trajectory producing (position, velocity,
// acceleration) for the formation controller's reference agent.
type Leader struct {
	Kind LeaderKind

	// Static
	Position vecmath.Vec3

	// Circle
	Center vecmath.Vec3
	Radius float64
	Omega  float64

	// Poly (also reused to express Circle's derivatives via State)
	A0, A1, A2 vecmath.Vec3

	// Paused freezes the trajectory at its t=0 state. Otherwise elapsed
	// time is multiplied by TimeScale, with 0 treated as 1.
	Paused    bool
	TimeScale float64
}

// DefaultLeader matches the reference implementation's default: a circle
// centered at the origin, radius 6, angular rate 0.2 rad/s.
func DefaultLeader() Leader {
	return Leader{
		Kind:      LeaderCircle,
		Center:    vecmath.Vec3{},
		Radius:    6.0,
		Omega:     0.2,
		TimeScale: 1.0,
	}
}

// paperOmega, paperPhase and the rest are the constants the "paper" leader
// keeps verbatim for parity with recorded reference trajectories.
const (
	paperOmega = -0.06
	paperPhase = math.Pi
)

// customRadius/customOmega anchor the "custom" leader variant's fixed
// reference curve: a climbing helix of radius 15 at 0.04 rad/s.
const (
	customRadius = 15.0
	customOmega  = 0.04
)

// State evaluates the leader trajectory at time t, returning position,
// velocity and acceleration.
func (l Leader) State(t float64) (pos, vel, acc vecmath.Vec3) {
	scale := l.TimeScale
	if scale == 0 {
		scale = 1
	}
	if l.Paused {
		t = 0
	} else {
		t *= scale
	}

	switch l.Kind {
	case LeaderStatic:
		return l.Position, vecmath.Vec3{}, vecmath.Vec3{}

	case LeaderPoly:
		q := Quadratic{A0: l.A0, A1: l.A1, A2: l.A2}
		return q.Position(t), q.Velocity(t), q.Acceleration()

	case LeaderCircle:
		c, r, w := l.Center, l.Radius, l.Omega
		cosv, sinv := math.Cos(w*t), math.Sin(w*t)
		pos = vecmath.New(c.X+r*cosv, c.Y+r*sinv, c.Z)
		vel = vecmath.New(-r*w*sinv, r*w*cosv, 0)
		acc = vecmath.New(-r*w*w*cosv, -r*w*w*sinv, 0)
		return pos, vel, acc

	case LeaderPaper:
		angle := paperOmega*t + paperPhase
		cosv, sinv := math.Cos(angle), math.Sin(angle)
		pos = vecmath.New(60+25*cosv, 60+25*sinv, 0.5*t)
		vel = vecmath.New(1.5*sinv, -1.5*cosv, 0.5)
		acc = vecmath.New(-0.09*cosv, -0.09*sinv, 0)
		return pos, vel, acc

	case LeaderCustom:
		angle := customOmega * t
		cosv, sinv := math.Cos(angle), math.Sin(angle)
		pos = vecmath.New(customRadius*cosv, customRadius*sinv, 0.2*t)
		vel = vecmath.New(-customRadius*customOmega*sinv, customRadius*customOmega*cosv, 0.2)
		acc = vecmath.New(-customRadius*customOmega*customOmega*cosv, -customRadius*customOmega*customOmega*sinv, 0)
		return pos, vel, acc

	default:
		return vecmath.Vec3{}, vecmath.Vec3{}, vecmath.Vec3{}
	}
}
