// Package integrate advances the shared agent state store by one fixed
// timestep given the acceleration each steering algorithm computed.
package integrate

import (
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

// SemiImplicitEuler steps velocity then position: v ← clamp((v+u·dt)·(1-c·dt)⁺, maxSpeed),
// x ← x + v·dt. u is interpreted as acceleration (m/s²); c is each agent's
// drag coefficient. maxSpeed ≤ 0 disables the speed clamp. When plane2D is
// set, z is forced to 0 on both x and v after the step.
func SemiImplicitEuler(st *swarm.Store, accel []vecmath.Vec3, dt, maxSpeed float64, plane2D bool) {
	for i := range st.Positions {
		v := st.Velocities[i].Add(accel[i].Scale(dt))

		drag := 1 - st.Drag[i]*dt
		if drag < 0 {
			drag = 0
		}
		v = v.Scale(drag)

		if maxSpeed > 0 {
			v = v.ClampNorm(maxSpeed)
		}

		st.Velocities[i] = v
		st.Positions[i] = st.Positions[i].Add(v.Scale(dt))
	}
	if plane2D {
		st.ProjectPlane2D()
	}
}
