package experiment_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ratenet/internal/catalog"
	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/experiment"
	"github.com/san-kum/ratenet/internal/network"
)

func newSIR(reg *experiment.Registry, method string, rates map[string]float64) (*experiment.Experiment, *network.Network) {
	net, err := reg.GetModel("sir")
	Expect(err).NotTo(HaveOccurred())
	stepper, err := reg.GetIntegrator(method)
	Expect(err).NotTo(HaveOccurred())

	x0, err := catalog.InitialState("sir")
	Expect(err).NotTo(HaveOccurred())

	exp := experiment.New(experiment.Config{
		Model:     "sir",
		Method:    method,
		InitState: x0,
		T0:        0,
		T1:        365,
		Dt:        0.1,
		Options:   dynamo.DefaultOptions(),
		Rates:     rates,
	})
	Expect(exp.Setup(net, stepper, reg.DefaultMetrics(net))).To(Succeed())
	return exp, net
}

var _ = Describe("SIR pipeline", func() {
	var reg *experiment.Registry

	BeforeEach(func() {
		reg = experiment.NewRegistry()
	})

	Describe("compiled rate laws", func() {
		It("evaluates the mass-action derivatives", func() {
			exp, _ := newSIR(reg, "rk45", nil)
			for _, x := range []dynamo.State{{0.9, 0.1, 0}, {0.5, 0.3, 0.2}, {1, 0, 0}} {
				dx := exp.System().Derive(x, 0)
				S, I := x[0], x[1]
				Expect(dx[0]).To(BeNumerically("~", -0.6*S*I, 1e-15))
				Expect(dx[1]).To(BeNumerically("~", 0.6*S*I-0.2*I, 1e-15))
				Expect(dx[2]).To(BeNumerically("~", 0.2*I, 1e-15))
			}
		})
	})

	Describe("an adaptive run over a year", func() {
		var result *dynamo.Result

		BeforeEach(func() {
			exp, _ := newSIR(reg, "rk45", nil)
			var err error
			result, err = exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})

		It("spans the requested interval", func() {
			Expect(result.Times[0]).To(Equal(0.0))
			Expect(result.Times[len(result.Times)-1]).To(Equal(365.0))
		})

		It("never increases the susceptible population", func() {
			for i := 1; i < len(result.States); i++ {
				Expect(result.States[i][0]).To(BeNumerically("<=", result.States[i-1][0]),
					"S rose at t=%g", result.Times[i])
			}
		})

		It("ends with more recovered than it started with", func() {
			Expect(result.Final()[2]).To(BeNumerically(">", result.States[0][2]))
		})

		It("conserves S+I+R at every sample", func() {
			total := result.States[0].Sum()
			for _, x := range result.States {
				Expect(math.Abs(x.Sum() - total)).To(BeNumerically("<", 1e-12))
			}
			Expect(result.Metrics["conservation_drift"]).To(BeNumerically("<", 1e-12))
		})

		It("records the epidemic peak", func() {
			Expect(result.Metrics["peak_I"]).To(BeNumerically(">", 0.1))
			Expect(result.Metrics["final_R"]).To(Equal(result.Final()[2]))
		})
	})

	Describe("rate overrides", func() {
		It("applies overrides to a clone only", func() {
			exp, source := newSIR(reg, "rk45", map[string]float64{"infect": 0.1})

			node, _ := source.Node("infect")
			rate, _ := node.Rate()
			Expect(rate).To(Equal(0.6))

			node, _ = exp.Network().Node("infect")
			rate, _ = node.Rate()
			Expect(rate).To(Equal(0.1))

			// R0 = 0.5 < 1: the infection dies out
			result, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Final()[1]).To(BeNumerically("<", 3e-8))
		})

		It("rejects unknown transactions", func() {
			net, _ := reg.GetModel("sir")
			exp := experiment.New(experiment.Config{
				InitState: []float64{1, 0, 0},
				T1:        1,
				Options:   dynamo.DefaultOptions(),
				Rates:     map[string]float64{"vaccinate": 0.1},
			})
			Expect(exp.Setup(net, nil, nil)).To(MatchError(network.ErrUnknownNode))
		})
	})

	Describe("fixed-step methods", func() {
		It("agree with the adaptive solution", func() {
			adaptive, _ := newSIR(reg, "rk45", nil)
			fixed, _ := newSIR(reg, "rk4", nil)

			ra, err := adaptive.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			rf, err := fixed.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(rf.Times[len(rf.Times)-1]).To(Equal(365.0))
			for i := range ra.Final() {
				Expect(rf.Final()[i]).To(BeNumerically("~", ra.Final()[i], 1e-6))
			}
		})
	})

	Describe("failures", func() {
		It("requires setup", func() {
			_, err := experiment.New(experiment.Config{}).Run(context.Background())
			Expect(err).To(MatchError(experiment.ErrNotSetup))
		})

		It("validates the initial state length", func() {
			net, _ := reg.GetModel("sir")
			exp := experiment.New(experiment.Config{InitState: []float64{1, 0}, T1: 1, Options: dynamo.DefaultOptions()})
			Expect(exp.Setup(net, nil, nil)).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("honours a cancelled context", func() {
			exp, _ := newSIR(reg, "rk45", nil)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := exp.Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("reports unknown models and integrators", func() {
			_, err := reg.GetModel("seir")
			Expect(err).To(MatchError(catalog.ErrUnknownModel))
			_, err = reg.GetIntegrator("verlet")
			Expect(err).To(HaveOccurred())
		})
	})

	It("lists every model and method", func() {
		Expect(reg.ListModels()).To(Equal([]string{"sir", "sird", "sirds", "sirds2"}))
		Expect(reg.ListIntegrators()).To(Equal([]string{"euler", "rk4", "rk45"}))
	})
})
