package alphalattice_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmeng/internal/algo/alphalattice"
	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

func TestAlphaLattice(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "alpha-lattice flocking suite")
}

var _ = Describe("Params", func() {
	It("rejects desired_distance greater than neighbor_radius", func() {
		p := alphalattice.DefaultParams()
		p.DesiredDistance = p.NeighborRadius + 1
		Expect(p.Validate()).To(HaveOccurred())
	})

	It("round-trips through GetParams/SetParam", func() {
		p := alphalattice.DefaultParams()
		Expect(p.SetParam("phi_a", 9)).To(Succeed())
		Expect(p.PhiA).To(Equal(9.0))
		Expect(p.GetParams()["phi_a"]).To(Equal(9.0))
	})

	It("errors on an unknown parameter name", func() {
		p := alphalattice.DefaultParams()
		Expect(p.SetParam("bogus", 1)).To(HaveOccurred())
	})
})

var _ = Describe("Algorithm.Accelerate", func() {
	var (
		st  swarm.Store
		g   *grid.Grid
		out []vecmath.Vec3
	)

	BeforeEach(func() {
		st.Reset(2)
		g = grid.New(10)
	})

	It("produces zero force for a single isolated agent", func() {
		st.Reset(1)
		out = make([]vecmath.Vec3, 1)
		g.Rebuild(st.Positions)

		algo := alphalattice.New(alphalattice.DefaultParams())
		algo.Accelerate(&st, g, out)

		Expect(out[0]).To(Equal(vecmath.Vec3{}))
	})

	It("produces equal and opposite action-function forces for a symmetric pair", func() {
		p := alphalattice.DefaultParams()
		st.Positions[0] = vecmath.New(-1, 0, 0)
		st.Positions[1] = vecmath.New(1, 0, 0)
		out = make([]vecmath.Vec3, 2)
		g.Rebuild(st.Positions)

		algo := alphalattice.New(p)
		algo.Accelerate(&st, g, out)

		Expect(out[0].X).To(BeNumerically("~", -out[1].X, 1e-9))
	})

	It("never produces NaN even with a pathological parameter set", func() {
		p := alphalattice.Params{NeighborRadius: -1, DesiredDistance: 5, SigmaEps: 0, BumpH: -1, PhiA: -1, PhiB: 0}
		st.Positions[0] = vecmath.New(-1, 0, 0)
		st.Positions[1] = vecmath.New(1, 0, 0)
		out = make([]vecmath.Vec3, 2)
		g.Rebuild(st.Positions)

		algo := alphalattice.New(p)
		algo.Accelerate(&st, g, out)

		Expect(out[0].IsFinite()).To(BeTrue())
		Expect(out[1].IsFinite()).To(BeTrue())
	})

	It("clamps the resulting force to MaxForce", func() {
		p := alphalattice.DefaultParams()
		p.Weight = 1000
		st.Positions[0] = vecmath.New(-0.01, 0, 0)
		st.Positions[1] = vecmath.New(0.01, 0, 0)
		out = make([]vecmath.Vec3, 2)
		g.Rebuild(st.Positions)

		algo := alphalattice.New(p)
		algo.Accelerate(&st, g, out)

		Expect(out[0].Norm()).To(BeNumerically("<=", p.MaxForce+1e-9))
	})
})
