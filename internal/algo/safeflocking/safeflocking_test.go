package safeflocking_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmeng/internal/algo/safeflocking"
	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/obstacle"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

func TestSafeFlocking(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "safe-flocking composite suite")
}

var _ = Describe("Params.Validate", func() {
	It("rejects a non-positive slack weight", func() {
		p := safeflocking.DefaultParams()
		p.SlackWeight = 0
		Expect(p.Validate()).To(HaveOccurred())
	})

	It("rejects qp_iters below 1", func() {
		p := safeflocking.DefaultParams()
		p.QPIters = 0
		Expect(p.Validate()).To(HaveOccurred())
	})

	It("propagates a nominal α-lattice validation error", func() {
		p := safeflocking.DefaultParams()
		p.Nominal.DesiredDistance = p.Nominal.NeighborRadius + 1
		Expect(p.Validate()).To(HaveOccurred())
	})

	It("accepts the default parameter set", func() {
		Expect(safeflocking.DefaultParams().Validate()).To(Succeed())
	})
})

var _ = Describe("Params.SetParam", func() {
	It("falls through to the nominal α-lattice params for unrecognized names", func() {
		p := safeflocking.DefaultParams()
		Expect(p.SetParam("phi_a", 9)).To(Succeed())
		Expect(p.Nominal.PhiA).To(Equal(9.0))
	})

	It("errors when neither the safety layer nor the nominal layer knows the name", func() {
		p := safeflocking.DefaultParams()
		Expect(p.SetParam("not_a_param", 1)).To(HaveOccurred())
	})
})

var _ = Describe("Algorithm.Accelerate", func() {
	It("steers an agent away from an obstacle it is about to overlap", func() {
		p := safeflocking.DefaultParams()
		p.UseAgentCBF = false
		p.Obstacles = []obstacle.Quadratic{{A0: vecmath.New(2, 0, 0), SafeRadius: 3}}

		var st swarm.Store
		st.Reset(1)
		st.Positions[0] = vecmath.New(0, 0, 0)
		g := grid.New(10)
		g.Rebuild(st.Positions)
		out := make([]vecmath.Vec3, 1)

		algo := safeflocking.New(p, 1)
		algo.Accelerate(&st, g, 0, out)

		Expect(out[0].X).To(BeNumerically("<=", 0))
		Expect(out[0].IsFinite()).To(BeTrue())
	})

	It("keeps two agents from being pushed into collision when agent CBF is enabled", func() {
		p := safeflocking.DefaultParams()
		p.Obstacles = nil
		p.UseAgentCBF = true
		p.AgentSafeDistance = 1.0
		p.CBFNeighborRadius = 5.0

		var st swarm.Store
		st.Reset(2)
		st.Positions[0] = vecmath.New(-0.4, 0, 0)
		st.Positions[1] = vecmath.New(0.4, 0, 0)
		g := grid.New(10)
		g.Rebuild(st.Positions)
		out := make([]vecmath.Vec3, 2)

		algo := safeflocking.New(p, 2)
		algo.Accelerate(&st, g, 0, out)

		Expect(out[0].X).To(BeNumerically("<=", out[1].X))
	})

	It("reports debug diagnostics with a non-negative slack value per agent", func() {
		p := safeflocking.DefaultParams()
		var st swarm.Store
		st.Reset(2)
		g := grid.New(10)
		g.Rebuild(st.Positions)
		out := make([]vecmath.Vec3, 2)

		algo := safeflocking.New(p, 2)
		algo.Accelerate(&st, g, 0, out)

		Expect(algo.Debug).To(HaveLen(2))
		for _, d := range algo.Debug {
			Expect(d.Slack).To(BeNumerically(">=", 0))
		}
	})

	It("reports an infeasible agent when actuation and slack bounds can't satisfy a constraint", func() {
		p := safeflocking.DefaultParams()
		p.UseAgentCBF = false
		p.UMin = vecmath.Vec3{}
		p.UMax = vecmath.Vec3{}
		p.SlackMax = 0
		p.Obstacles = []obstacle.Quadratic{{A0: vecmath.New(1, 0, 0), SafeRadius: 0.5}}

		var st swarm.Store
		st.Reset(1)
		st.Velocities[0] = vecmath.New(5, 0, 0)
		g := grid.New(10)
		g.Rebuild(st.Positions)
		out := make([]vecmath.Vec3, 1)

		algo := safeflocking.New(p, 1)
		infeasible := algo.Accelerate(&st, g, 0, out)

		Expect(infeasible).To(Equal(1))
	})

	It("reports zero infeasible agents for an unconstrained scenario", func() {
		p := safeflocking.DefaultParams()
		p.Obstacles = nil
		p.UseAgentCBF = false

		var st swarm.Store
		st.Reset(1)
		g := grid.New(10)
		g.Rebuild(st.Positions)
		out := make([]vecmath.Vec3, 1)

		algo := safeflocking.New(p, 1)
		infeasible := algo.Accelerate(&st, g, 0, out)

		Expect(infeasible).To(Equal(0))
	})

	It("resizes its internal buffers when the agent count changes underneath it", func() {
		p := safeflocking.DefaultParams()
		algo := safeflocking.New(p, 2)

		var st swarm.Store
		st.Reset(5)
		g := grid.New(10)
		g.Rebuild(st.Positions)
		out := make([]vecmath.Vec3, 5)

		Expect(func() { algo.Accelerate(&st, g, 0, out) }).NotTo(Panic())
		Expect(algo.Debug).To(HaveLen(5))
	})
})
