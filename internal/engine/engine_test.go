package engine_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmeng/internal/engine"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "engine dispatch suite")
}

var _ = Describe("NewDemo", func() {
	It("builds a ring swarm running Reynolds flocking", func() {
		eng := engine.NewDemo()
		Expect(eng.Len()).To(BeNumerically(">", 0))
		Expect(eng.ModelID()).To(Equal(engine.ModelRing))
		Expect(eng.AlgorithmID()).To(Equal(engine.AlgoFlockingID))
	})
})

var _ = Describe("NewWithIDs", func() {
	It("rejects an unknown model id", func() {
		_, err := engine.NewWithIDs("not-a-model", engine.AlgoFlockingID)
		Expect(err).To(MatchError(engine.ErrUnknownID))
	})

	It("rejects an incompatible model/algorithm pairing", func() {
		_, err := engine.NewWithIDs(engine.ModelQuadrotor, engine.AlgoFlockingID)
		Expect(err).To(MatchError(engine.ErrIncompatibleAlgorithm))
	})

	It("builds a quadrotor swarm defaulting to formation+ECBF", func() {
		eng, err := engine.NewWithIDs(engine.ModelQuadrotor, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.AlgorithmID()).To(Equal(engine.AlgoFormationID))
	})

	It("builds an empty from-states swarm", func() {
		eng, err := engine.NewWithIDs(engine.ModelFromState, engine.AlgoNoneID)
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.Len()).To(Equal(0))
	})
})

var _ = Describe("Tick", func() {
	It("advances time by dt each call", func() {
		eng := engine.NewDemo()
		t0 := eng.Time()
		eng.Tick()
		Expect(eng.Time()).To(BeNumerically("~", t0+eng.Dt(), 1e-12))
	})

	It("keeps agent positions finite across many ticks", func() {
		eng := engine.NewDemo()
		for i := 0; i < 120; i++ {
			eng.Tick()
		}
		positions := eng.Positions()
		for _, v := range positions {
			Expect(v).To(BeNumerically("<", 1e6))
		}
	})

	It("projects onto the z=0 plane every tick once plane2D is enabled", func() {
		eng := engine.NewDemo()
		eng.SetPlaneTwoD(true)
		eng.Tick()
		positions := eng.Positions()
		for i := 2; i < len(positions); i += 3 {
			Expect(positions[i]).To(BeNumerically("~", 0, 1e-9))
		}
	})
})

var _ = Describe("SetAlgorithm", func() {
	It("is a no-op when switching to the already-active algorithm", func() {
		eng := engine.NewDemo()
		before := eng.AlgorithmID()
		Expect(eng.SetAlgorithm(before)).To(Succeed())
		Expect(eng.AlgorithmID()).To(Equal(before))
	})

	It("rejects an algorithm incompatible with the current model", func() {
		eng, err := engine.NewWithIDs(engine.ModelQuadrotor, engine.AlgoFormationID)
		Expect(err).NotTo(HaveOccurred())
		err = eng.SetAlgorithm(engine.AlgoFlockingID)
		Expect(err).To(MatchError(engine.ErrIncompatibleAlgorithm))
	})

	It("rejects a completely unknown algorithm id", func() {
		eng := engine.NewDemo()
		err := eng.SetAlgorithm("not-a-real-algorithm")
		Expect(err).To(HaveOccurred())
	})

	It("switches cleanly between compatible algorithms on the same model", func() {
		eng, err := engine.NewWithIDs(engine.ModelLattice, engine.AlgoFlockingID)
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.SetAlgorithm(engine.AlgoAlphaID)).To(Succeed())
		Expect(eng.AlgorithmID()).To(Equal(engine.AlgoAlphaID))
		eng.Tick() // must not panic after switching
	})
})

var _ = Describe("parameter setters", func() {
	It("rejects flocking params when a different algorithm is active", func() {
		eng, err := engine.NewWithIDs(engine.ModelLattice, engine.AlgoAlphaID)
		Expect(err).NotTo(HaveOccurred())
		err = eng.SetFlockParams(map[string]float64{"max_speed": 3})
		Expect(err).To(HaveOccurred())
	})

	It("applies flocking params when flocking is active", func() {
		eng, err := engine.NewWithIDs(engine.ModelLattice, engine.AlgoFlockingID)
		Expect(err).NotTo(HaveOccurred())
		Expect(eng.SetFlockParams(map[string]float64{"max_speed": 3})).To(Succeed())
	})

	It("rejects an invalid parameter value without mutating prior state", func() {
		eng, err := engine.NewWithIDs(engine.ModelLattice, engine.AlgoFlockingID)
		Expect(err).NotTo(HaveOccurred())
		err = eng.SetFlockParams(map[string]float64{"neighbor_radius": -1})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("readers", func() {
	It("returns a flat positions slice sized 3*N", func() {
		eng := engine.NewDemo()
		Expect(eng.Positions()).To(HaveLen(eng.Len() * 3))
	})

	It("returns a flat states slice sized 6*N", func() {
		eng := engine.NewDemo()
		Expect(eng.States()).To(HaveLen(eng.Len() * 6))
	})

	It("returns nil attitudes when no attitude-bearing algorithm is active", func() {
		eng := engine.NewDemo()
		Expect(eng.Attitudes()).To(BeNil())
	})

	It("returns per-agent attitude floats once formation+ECBF is active", func() {
		eng, err := engine.NewWithIDs(engine.ModelQuadrotor, engine.AlgoFormationID)
		Expect(err).NotTo(HaveOccurred())
		eng.Tick()
		Expect(eng.Attitudes()).To(HaveLen(eng.Len() * 4))
	})

	It("returns the extended 14-field debug layout for safe-flocking-alpha", func() {
		eng, err := engine.NewWithIDs(engine.ModelLattice, engine.AlgoSafeID)
		Expect(err).NotTo(HaveOccurred())
		eng.Tick()
		Expect(eng.DebugStates()).To(HaveLen(eng.Len() * 14))
	})
})
