// Package qp solves the small per-agent quadratic programs the ECBF
// filters need by fixed-iteration Dykstra alternating projection rather
// than a general-purpose QP solver: a static iteration budget buys
// deterministic, bounded-latency per-tick cost at the expense of exact
// optimality.
package qp

// Halfspace3 represents the linear constraint a·x ≤ b over R^3.
type Halfspace3 struct {
	A [3]float64
	B float64
}

// Halfspace4 represents the linear constraint a·x ≤ b over R^4, the 4th
// component carrying a slack variable's contribution.
type Halfspace4 struct {
	A [4]float64
	B float64
}

func dot3(a, x [3]float64) float64 { return a[0]*x[0] + a[1]*x[1] + a[2]*x[2] }
func dot4(a, x [4]float64) float64 { return a[0]*x[0] + a[1]*x[1] + a[2]*x[2] + a[3]*x[3] }

func clampBox3(x, lo, hi [3]float64) [3]float64 {
	var out [3]float64
	for i := range x {
		out[i] = clampScalar(x[i], lo[i], hi[i])
	}
	return out
}

func clampBox4(x, lo, hi [4]float64) [4]float64 {
	var out [4]float64
	for i := range x {
		out[i] = clampScalar(x[i], lo[i], hi[i])
	}
	return out
}

func clampScalar(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func projectHalfspace3(y [3]float64, h Halfspace3) [3]float64 {
	aa := dot3(h.A, h.A)
	if aa <= 1e-12 {
		return y
	}
	ay := dot3(h.A, y)
	if ay <= h.B {
		return y
	}
	scale := (h.B - ay) / aa
	return [3]float64{y[0] + h.A[0]*scale, y[1] + h.A[1]*scale, y[2] + h.A[2]*scale}
}

func projectHalfspace4(y [4]float64, h Halfspace4) [4]float64 {
	aa := dot4(h.A, h.A)
	if aa <= 1e-12 {
		return y
	}
	ay := dot4(h.A, y)
	if ay <= h.B {
		return y
	}
	scale := (h.B - ay) / aa
	var out [4]float64
	for i := range out {
		out[i] = y[i] + h.A[i]*scale
	}
	return out
}

// Project3 finds a point near xNom satisfying box bounds and every
// halfspace constraint, via `iters` Dykstra sweeps (iters < 1 is treated
// as 1). The box and each constraint get one correction slot; every call,
// including Workspace3.Solve, starts from zero correction (no warm start).
// The last step of each sweep is a halfspace projection, so the result can
// sit outside the box when the sweeps have not converged.
func Project3(xNom, boxMin, boxMax [3]float64, constraints []Halfspace3, iters int) [3]float64 {
	var ws Workspace3
	return ws.Solve(xNom, boxMin, boxMax, constraints, iters)
}

// Workspace3 holds the Dykstra correction buffer across calls so a caller
// solving one QP per agent per tick (the common case) does not allocate
// in steady state; it grows to the largest constraint count seen and is
// reused from then on.
type Workspace3 struct {
	corr [][3]float64
}

// Solve is Project3 but reuses ws's backing buffer across calls.
func (ws *Workspace3) Solve(xNom, boxMin, boxMax [3]float64, constraints []Halfspace3, iters int) [3]float64 {
	if iters < 1 {
		iters = 1
	}
	need := 1 + len(constraints)
	if cap(ws.corr) < need {
		ws.corr = make([][3]float64, need)
	}
	corr := ws.corr[:need]
	for i := range corr {
		corr[i] = [3]float64{}
	}

	x := xNom
	for iter := 0; iter < iters; iter++ {
		y := add3(x, corr[0])
		xNew := clampBox3(y, boxMin, boxMax)
		corr[0] = sub3(y, xNew)
		x = xNew

		for ci, c := range constraints {
			y := add3(x, corr[ci+1])
			xNew := projectHalfspace3(y, c)
			corr[ci+1] = sub3(y, xNew)
			x = xNew
		}
	}
	return x
}

// Project4 is Project3's 4-dimensional counterpart, used when a slack
// variable occupies the 4th component.
func Project4(xNom, boxMin, boxMax [4]float64, constraints []Halfspace4, iters int) [4]float64 {
	var ws Workspace4
	return ws.Solve(xNom, boxMin, boxMax, constraints, iters)
}

// Workspace4 is Workspace3's 4-dimensional counterpart.
type Workspace4 struct {
	corr [][4]float64
}

func (ws *Workspace4) Solve(xNom, boxMin, boxMax [4]float64, constraints []Halfspace4, iters int) [4]float64 {
	if iters < 1 {
		iters = 1
	}
	need := 1 + len(constraints)
	if cap(ws.corr) < need {
		ws.corr = make([][4]float64, need)
	}
	corr := ws.corr[:need]
	for i := range corr {
		corr[i] = [4]float64{}
	}

	x := xNom
	for iter := 0; iter < iters; iter++ {
		y := add4(x, corr[0])
		xNew := clampBox4(y, boxMin, boxMax)
		corr[0] = sub4(y, xNew)
		x = xNew

		for ci, c := range constraints {
			y := add4(x, corr[ci+1])
			xNew := projectHalfspace4(y, c)
			corr[ci+1] = sub4(y, xNew)
			x = xNew
		}
	}
	return x
}

func add3(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub3(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func add4(a, b [4]float64) [4]float64 {
	return [4]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}
func sub4(a, b [4]float64) [4]float64 {
	return [4]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

// ActiveCount3 reports how many constraints are within tol of binding at x,
// the "active constraints" diagnostic the engine surfaces per agent.
func ActiveCount3(x [3]float64, constraints []Halfspace3, tol float64) int {
	n := 0
	for _, c := range constraints {
		if c.B-dot3(c.A, x) <= tol {
			n++
		}
	}
	return n
}

func ActiveCount4(x [4]float64, constraints []Halfspace4, tol float64) int {
	n := 0
	for _, c := range constraints {
		if c.B-dot4(c.A, x) <= tol {
			n++
		}
	}
	return n
}

// Feasible3 reports whether x satisfies every halfspace constraint within
// tol. A fixed-iteration Dykstra sweep has no convergence guarantee against
// conflicting constraints, so callers use this to detect a QP that could
// not be driven feasible within its iteration budget.
func Feasible3(x [3]float64, constraints []Halfspace3, tol float64) bool {
	for _, c := range constraints {
		if dot3(c.A, x)-c.B > tol {
			return false
		}
	}
	return true
}

func Feasible4(x [4]float64, constraints []Halfspace4, tol float64) bool {
	for _, c := range constraints {
		if dot4(c.A, x)-c.B > tol {
			return false
		}
	}
	return true
}
