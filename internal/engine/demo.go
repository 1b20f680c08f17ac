package engine

import (
	"math"

	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

// Demo constants, kept exact for parity with recorded reference runs.
const (
	demoCount = 20
	demoDt    = 1.0 / 60.0
	demoDrag  = 0.08
)

// ringDemo seeds demoCount agents on a wobbling ring in the XY plane with
// a small z-oscillation and tangential velocity.
func ringDemo() *swarm.Store {
	st := &swarm.Store{}
	st.Reset(demoCount)
	for i := range st.Positions {
		fi := float64(i)
		wobble := 0.6 + 0.4*math.Sin(fi*0.7)
		r := 14.5 * wobble
		angle := fi / demoCount * 2 * math.Pi
		speed := 1.0 + 0.4*math.Sin(fi*1.3)

		z := float64(i%8)*0.35 - 1.225
		pos := vecmath.New(r*math.Cos(angle), r*math.Sin(angle), z)
		tangent := vecmath.New(-math.Sin(angle), math.Cos(angle), 0).Scale(speed)
		vel := tangent.Add(vecmath.New(0, 0, 0.3*math.Cos(fi*0.9)))

		st.Positions[i] = pos
		st.Velocities[i] = vel
		st.Drag[i] = demoDrag
		st.Groups[i] = 0
	}
	return st
}

// latticeDemo seeds agents on a cubic lattice of the given side length,
// centered at the origin.
func latticeDemo(side int) *swarm.Store {
	n := side * side * side
	st := &swarm.Store{}
	st.Reset(n)
	const spacing = 1.4
	offset := float64(side-1) * spacing / 2

	idx := 0
	for x := 0; x < side; x++ {
		for y := 0; y < side; y++ {
			for z := 0; z < side; z++ {
				st.Positions[idx] = vecmath.New(
					float64(x)*spacing-offset,
					float64(y)*spacing-offset,
					float64(z)*spacing-offset,
				)
				st.Drag[idx] = 0.02
				idx++
			}
		}
	}
	return st
}

const latticeDemoSide = 3 // 27 agents, closest cube to demoCount
