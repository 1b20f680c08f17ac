package reynolds_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmeng/internal/algo/reynolds"
	"github.com/san-kum/swarmeng/internal/grid"
	"github.com/san-kum/swarmeng/internal/swarm"
	"github.com/san-kum/swarmeng/internal/vecmath"
)

func TestReynolds(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "reynolds flocking suite")
}

var _ = Describe("Params", func() {
	It("rejects negative radii", func() {
		p := reynolds.DefaultParams()
		p.NeighborRadius = -1
		Expect(p.Validate()).To(HaveOccurred())
	})

	It("round-trips through GetParams/SetParam", func() {
		p := reynolds.DefaultParams()
		values := p.GetParams()
		values["cohesion_weight"] = 9.5
		Expect(p.SetParam("cohesion_weight", values["cohesion_weight"])).To(Succeed())
		Expect(p.CohesionWeight).To(Equal(9.5))
	})

	It("errors on an unknown parameter name", func() {
		p := reynolds.DefaultParams()
		Expect(p.SetParam("not_a_real_param", 1)).To(HaveOccurred())
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

	It("produces zero force for a single isolated agent inside the boundary", func() {
		st.Reset(1)
		out = make([]vecmath.Vec3, 1)
		g.Rebuild(st.Positions)

		algo := reynolds.New(reynolds.DefaultParams())
		algo.Accelerate(&st, g, out)

		Expect(out[0]).To(Equal(vecmath.Vec3{}))
	})

	It("pulls two distant agents toward each other via cohesion", func() {
		st.Positions[0] = vecmath.New(-1, 0, 0)
		st.Positions[1] = vecmath.New(1, 0, 0)
		out = make([]vecmath.Vec3, 2)
		g.Rebuild(st.Positions)

		algo := reynolds.New(reynolds.DefaultParams())
		algo.Accelerate(&st, g, out)

		Expect(out[0].X).To(BeNumerically(">", 0))
		Expect(out[1].X).To(BeNumerically("<", 0))
	})

	It("pushes agents apart when inside the separation radius", func() {
		p := reynolds.DefaultParams()
		st.Positions[0] = vecmath.New(-0.1, 0, 0)
		st.Positions[1] = vecmath.New(0.1, 0, 0)
		out = make([]vecmath.Vec3, 2)
		g.Rebuild(st.Positions)

		algo := reynolds.New(p)
		algo.Accelerate(&st, g, out)

		Expect(out[0].X).To(BeNumerically("<", 0))
		Expect(out[1].X).To(BeNumerically(">", 0))
	})

	It("pulls an agent back once it exits the boundary radius", func() {
		p := reynolds.DefaultParams()
		st.Reset(1)
		st.Positions[0] = vecmath.New(p.BoundaryRadius+5, 0, 0)
		out = make([]vecmath.Vec3, 1)
		g.Rebuild(st.Positions)

		algo := reynolds.New(p)
		algo.Accelerate(&st, g, out)

		Expect(out[0].X).To(BeNumerically("<", 0))
	})

	It("clamps the resulting force to MaxForce", func() {
		p := reynolds.DefaultParams()
		p.SeparationWeight = 1000
		st.Positions[0] = vecmath.New(-0.01, 0, 0)
		st.Positions[1] = vecmath.New(0.01, 0, 0)
		out = make([]vecmath.Vec3, 2)
		g.Rebuild(st.Positions)

		algo := reynolds.New(p)
		algo.Accelerate(&st, g, out)

		Expect(out[0].Norm()).To(BeNumerically("<=", p.MaxForce+1e-9))
	})
})
