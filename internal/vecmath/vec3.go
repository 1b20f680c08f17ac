// Package vecmath provides the small fixed-size vector algebra the swarm
// engine is built on: a 3-component vector with the handful of operations
// the flocking and barrier-function math needs.
package vecmath

import "math"

// Vec3 is a 3-vector. Fields are public; this is data, not internal state.
type Vec3 struct {
	X, Y, Z float64
}

func New(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) NormSq() float64 { return v.Dot(v) }
func (v Vec3) Norm() float64   { return math.Sqrt(v.NormSq()) }

// Normalize returns v/‖v‖, or the zero vector when ‖v‖ is within eps of 0.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Norm() }
func (v Vec3) DistanceSq(o Vec3) float64 { return v.Sub(o).NormSq() }

// ClampNorm returns v scaled down so that ‖v‖ ≤ maxNorm. maxNorm ≤ 0
// disables the clamp.
func (v Vec3) ClampNorm(maxNorm float64) Vec3 {
	if maxNorm <= 0 {
		return v
	}
	n := v.Norm()
	if n <= maxNorm || n < 1e-12 {
		return v
	}
	return v.Scale(maxNorm / n)
}

// ClampBox clamps each component independently into [min, max].
func (v Vec3) ClampBox(min, max Vec3) Vec3 {
	return Vec3{
		clampScalar(v.X, min.X, max.X),
		clampScalar(v.Y, min.Y, max.Y),
		clampScalar(v.Z, min.Z, max.Z),
	}
}

func clampScalar(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// IsFinite reports whether every component is neither NaN nor ±Inf.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// WithZ returns v with the Z component replaced, used to project onto the
// 2D plane (z forced to 0) without reallocating a slice.
func (v Vec3) WithZ(z float64) Vec3 { return Vec3{v.X, v.Y, z} }

// Zero2D reports whether the z-components of a position/velocity pair are
// within tolerance of 0, the invariant required by plane_2d mode.
func Zero2D(pos, vel Vec3, tol float64) bool {
	return math.Abs(pos.Z)+math.Abs(vel.Z) <= tol
}
