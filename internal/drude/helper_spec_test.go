package drude_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/drudesim/internal/drude"
	"github.com/san-kum/drudesim/internal/engine"
)

const (
	prefactor = 1389.0
	k         = 4184.0
	massDrude = 0.8
)

var _ = Describe("Helper", func() {
	var (
		sys         *engine.System
		h           *drude.Helper
		harmonic    engine.BondID
		thermalized engine.BondID
		cores       []int
	)

	BeforeEach(func() {
		var err error
		sys = engine.New(r3.Vec{X: 30, Y: 30, Z: 30})
		dsf, err := engine.NewDSF(prefactor, 1e-3, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(sys.SetElectrostatics(dsf)).To(Succeed())

		harmonic, err = sys.AddBond(engine.HarmonicBond{K: k, RCut: 1})
		Expect(err).NotTo(HaveOccurred())
		thermalized, err = sys.AddBond(engine.ThermalizedBond{TempCOM: 2.9, GammaCOM: 1, TempDistance: 0.008, GammaDistance: 0.3})
		Expect(err).NotTo(HaveOccurred())

		h = drude.NewHelper()
		cores = nil
		for i, q := range []float64{0.4, 0.2, 0.15} {
			p, err := sys.AddParticle(engine.ParticleSpec{
				Type: i + 1,
				Pos:  r3.Vec{X: 10 + 1.5*float64(i), Y: 10, Z: 10},
				Q:    q,
				Mass: 20,
			})
			Expect(err).NotTo(HaveOccurred())
			cores = append(cores, p.ID)
		}
	})

	addAll := func() []int {
		var ds []int
		for i, c := range cores {
			d, err := h.AddDrudeToCore(sys, harmonic, thermalized, c, i+6, float64(i+2), massDrude, prefactor)
			Expect(err).NotTo(HaveOccurred())
			ds = append(ds, d)
		}
		return ds
	}

	Describe("AddDrudeToCore", func() {
		It("moves charge and mass from the core to the new Drude", func() {
			d, err := h.AddDrudeToCore(sys, harmonic, thermalized, cores[0], 6, 5.0, massDrude, prefactor)
			Expect(err).NotTo(HaveOccurred())

			pd, _ := sys.Particle(d)
			pc, _ := sys.Particle(cores[0])
			qd := -math.Sqrt(k * 5.0 / prefactor)
			Expect(pd.Q).To(BeNumerically("~", qd, 1e-12))
			Expect(pd.Mass).To(Equal(massDrude))
			Expect(pd.Pos).To(Equal(pc.Pos))
			Expect(pc.Q + pd.Q).To(BeNumerically("~", 0.4, 1e-12))
			Expect(pc.Mass + pd.Mass).To(BeNumerically("~", 20, 1e-12))

			ids, partners := pc.Bonds()
			Expect(ids).To(Equal([]engine.BondID{harmonic, thermalized}))
			Expect(partners).To(Equal([]int{d, d}))

			core, ok := h.CoreOf(d)
			Expect(ok).To(BeTrue())
			Expect(core).To(Equal(cores[0]))
			Expect(h.Validate(sys)).To(Succeed())
		})

		It("refuses a second Drude on the same core", func() {
			_, err := h.AddDrudeToCore(sys, harmonic, thermalized, cores[0], 6, 5.0, massDrude, prefactor)
			Expect(err).NotTo(HaveOccurred())
			_, err = h.AddDrudeToCore(sys, harmonic, thermalized, cores[0], 6, 5.0, massDrude, prefactor)
			Expect(err).To(MatchError(drude.ErrCoreTaken))
		})

		It("refuses a harmonic bond with a rest length", func() {
			stretched, err := sys.AddBond(engine.HarmonicBond{K: k, R0: 0.1})
			Expect(err).NotTo(HaveOccurred())
			_, err = h.AddDrudeToCore(sys, stretched, thermalized, cores[0], 6, 5.0, massDrude, prefactor)
			Expect(err).To(MatchError(drude.ErrNonZeroRestLength))
		})
	})

	Describe("exclusion bonds", func() {
		It("leaves only the spring between a core and its displaced Drude", func() {
			d, err := h.AddDrudeToCore(sys, harmonic, thermalized, cores[0], 6, 5.0, massDrude, prefactor)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.SetupAndAddDrudeExclusionBonds(sys)).To(Succeed())

			// keep only core 0 and its Drude charged
			for _, c := range cores[1:] {
				p, _ := sys.Particle(c)
				p.Q = 0
			}
			pd, _ := sys.Particle(d)
			pd.Pos = r3.Add(pd.Pos, r3.Vec{X: 0.1})

			e, err := sys.Energy()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Coulomb + e.Bonded).To(BeNumerically("~", 0.5*k*0.01, 1e-6))
		})
	})

	Describe("AddAllThole", func() {
		It("screens every oscillator type pair with the combined damping", func() {
			addAll()
			Expect(h.AddAllThole(sys)).To(Succeed())

			for _, pair := range [][2]int{{6, 6}, {6, 8}, {1, 3}, {7, 2}} {
				th := sys.TholeParams(pair[0], pair[1])
				Expect(th.ScalingCoeff).To(BeNumerically(">", 0), "pair %v", pair)
			}

			q6, _ := h.DrudeCharge(6)
			q7, _ := h.DrudeCharge(7)
			th := sys.TholeParams(6, 7)
			Expect(th.Q1Q2).To(BeNumerically("~", q6*q7, 1e-12))
			Expect(th.ScalingCoeff).To(BeNumerically("~", 2.6/math.Pow(2*3, 1.0/6), 1e-12))

			cross := sys.TholeParams(6, 2)
			Expect(cross.Q1Q2).To(BeNumerically("~", -q6*q7, 1e-12))
			coreCore := sys.TholeParams(1, 2)
			Expect(coreCore.Q1Q2).To(BeNumerically("~", q6*q7, 1e-12))
		})
	})

	Describe("intramolecular exclusions", func() {
		It("binds every Drude to the other cores only", func() {
			ds := addAll()
			Expect(h.SetupAndAddDrudeExclusionBonds(sys)).To(Succeed())
			before := sys.NumBonds()
			Expect(h.SetupIntramolExclusionBonds(sys, []int{6, 7, 8}, []int{1, 2, 3}, []float64{0.4, 0.2, 0.15})).To(Succeed())
			Expect(h.AddIntramolExclusionBonds(sys, ds, cores)).To(Succeed())
			Expect(sys.NumBonds() - before).To(Equal(3 * 2))

			pd, _ := sys.Particle(ds[0])
			ids, partners := pd.Bonds()
			Expect(partners).To(Equal([]int{cores[1], cores[2]}))
			b, err := sys.BondType(ids[0])
			Expect(err).NotTo(HaveOccurred())
			q6, _ := h.DrudeCharge(6)
			Expect(b.(engine.BondedCoulombSR).Q1Q2).To(BeNumerically("~", -q6*0.2, 1e-12))
			Expect(h.Validate(sys)).To(Succeed())
		})

		It("leaves the Drude pairs of a molecule to the screened Coulomb interaction", func() {
			ds := addAll()
			Expect(h.SetupAndAddDrudeExclusionBonds(sys)).To(Succeed())
			partial := []float64{0.4, 0.2, 0.15}
			Expect(h.SetupIntramolExclusionBonds(sys, []int{6, 7, 8}, []int{1, 2, 3}, partial)).To(Succeed())
			Expect(h.AddIntramolExclusionBonds(sys, ds, cores)).To(Succeed())

			dsf, err := engine.NewDSF(prefactor, 1e-3, 10)
			Expect(err).NotTo(HaveOccurred())
			var want float64
			for i, d := range ds {
				pd, _ := sys.Particle(d)
				for j, c := range cores {
					if i == j {
						continue
					}
					pc, _ := sys.Particle(c)
					e, _, ok := dsf.Pair(r3.Norm(r3.Sub(pd.Pos, pc.Pos)))
					Expect(ok).To(BeTrue())
					want -= pd.Q * partial[j] * e
				}
			}

			e, err := sys.Energy()
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Bonded).To(BeNumerically("~", want, 1e-9))
		})

		It("needs the setup step first", func() {
			ds := addAll()
			err := h.AddIntramolExclusionBonds(sys, ds, cores)
			Expect(err).To(MatchError(drude.ErrNotSetUp))
		})
	})
})
