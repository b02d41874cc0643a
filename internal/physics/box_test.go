package physics_test

import (
	"math"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/physics"
)

func newBox(w, h float64) *physics.Box {
	b, err := physics.NewBox(w, h)
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("Particle collisions", func() {
	It("swaps velocities in an equal-mass head-on collision", func() {
		a := &physics.Particle{Pos: dynamo.Vec2{X: 0.40, Y: 0.50}, Vel: dynamo.Vec2{X: 1, Y: 0}, Radius: 0.05, Mass: 1}
		b := &physics.Particle{Pos: dynamo.Vec2{X: 0.50, Y: 0.50}, Vel: dynamo.Vec2{X: -1, Y: 0}, Radius: 0.05, Mass: 1}

		a.ResolveCollision(b)

		Expect(a.Vel.X).To(BeNumerically("~", -1, 1e-12))
		Expect(b.Vel.X).To(BeNumerically("~", 1, 1e-12))
		Expect(a.Vel.Y).To(BeNumerically("==", 0))
		Expect(b.Vel.Y).To(BeNumerically("==", 0))
		Expect(a.Pos.Sub(b.Pos).Norm()).To(BeNumerically("~", 0.10, 1e-12))
	})

	It("conserves momentum and energy for an oblique equal-mass collision", func() {
		a := &physics.Particle{Pos: dynamo.Vec2{X: 0.30, Y: 0.30}, Vel: dynamo.Vec2{X: 0.7, Y: -0.2}, Radius: 0.05, Mass: 1}
		b := &physics.Particle{Pos: dynamo.Vec2{X: 0.37, Y: 0.34}, Vel: dynamo.Vec2{X: -0.1, Y: 0.5}, Radius: 0.05, Mass: 1}
		Expect(a.Overlaps(b)).To(BeTrue())

		before := a.Vel.Add(b.Vel)
		energy := a.KineticEnergy() + b.KineticEnergy()

		a.ResolveCollision(b)

		after := a.Vel.Add(b.Vel)
		Expect(after.X).To(BeNumerically("~", before.X, 1e-12))
		Expect(after.Y).To(BeNumerically("~", before.Y, 1e-12))
		Expect(a.KineticEnergy() + b.KineticEnergy()).To(BeNumerically("~", energy, 1e-12))
		Expect(a.Pos.Sub(b.Pos).Norm()).To(BeNumerically(">=", 0.1-1e-12))
	})

	It("treats exact tangency as non-overlapping", func() {
		a := &physics.Particle{Pos: dynamo.Vec2{X: 0.25, Y: 0.5}, Radius: 0.25, Mass: 1}
		b := &physics.Particle{Pos: dynamo.Vec2{X: 0.75, Y: 0.5}, Radius: 0.25, Mass: 1}
		Expect(a.Overlaps(b)).To(BeFalse())
	})

	It("ignores coincident centres", func() {
		a := &physics.Particle{Pos: dynamo.Vec2{X: 0.5, Y: 0.5}, Vel: dynamo.Vec2{X: 1, Y: 0}, Radius: 0.05, Mass: 1}
		b := &physics.Particle{Pos: dynamo.Vec2{X: 0.5, Y: 0.5}, Vel: dynamo.Vec2{X: -1, Y: 0}, Radius: 0.05, Mass: 1}

		a.ResolveCollision(b)

		Expect(a.Vel).To(Equal(dynamo.Vec2{X: 1, Y: 0}))
		Expect(b.Vel).To(Equal(dynamo.Vec2{X: -1, Y: 0}))
		Expect(a.Pos).To(Equal(b.Pos))
	})
})

var _ = Describe("Wall reflection", func() {
	It("clamps, flips and reports 2m|v| impulse", func() {
		p := &physics.Particle{Pos: dynamo.Vec2{X: 0.0009, Y: 0.5}, Vel: dynamo.Vec2{X: -0.3, Y: 0.1}, Radius: 0.001, Mass: 1}

		bounced, impulse := p.WallBounce(1, 1)

		Expect(bounced).To(BeTrue())
		Expect(p.Pos.X).To(Equal(0.001))
		Expect(p.Vel.X).To(BeNumerically("~", 0.3, 1e-15))
		Expect(p.Vel.Y).To(BeNumerically("~", 0.1, 1e-15))
		Expect(impulse).To(BeNumerically("~", 0.6, 1e-15))
	})

	It("counts a corner hit as one bounce with summed impulse", func() {
		p := &physics.Particle{Pos: dynamo.Vec2{X: 0.9995, Y: 0.9995}, Vel: dynamo.Vec2{X: 0.2, Y: 0.4}, Radius: 0.001, Mass: 2}

		bounced, impulse := p.WallBounce(1, 1)

		Expect(bounced).To(BeTrue())
		Expect(p.Pos.X).To(BeNumerically("~", 0.999, 1e-15))
		Expect(p.Pos.Y).To(BeNumerically("~", 0.999, 1e-15))
		Expect(p.Vel.X).To(BeNumerically("<", 0))
		Expect(p.Vel.Y).To(BeNumerically("<", 0))
		Expect(impulse).To(BeNumerically("~", 2*2*0.2+2*2*0.4, 1e-12))
	})
})

var _ = Describe("Box", func() {
	It("rejects non-positive extents", func() {
		_, err := physics.NewBox(0, 1)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		_, err = physics.NewBox(1, -2)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	Describe("InitializeRandom", func() {
		It("places N non-overlapping particles inside the walls", func() {
			b := newBox(1, 1)
			Expect(b.InitializeRandom(200, 0.01, 0.4, 45)).To(Succeed())
			Expect(b.Len()).To(Equal(200))

			ps := b.Particles()
			for i := range ps {
				Expect(ps[i].ID).To(Equal(i))
				Expect(ps[i].Mass).To(Equal(1.0))
				Expect(ps[i].Inside(1, 1)).To(BeTrue())
				Expect(ps[i].Vel.X).To(BeNumerically("<=", 0.4))
				Expect(ps[i].Vel.X).To(BeNumerically(">=", -0.4))
				for j := i + 1; j < len(ps); j++ {
					Expect(ps[i].Pos.Sub(ps[j].Pos).Norm()).To(BeNumerically(">=", ps[i].Radius+ps[j].Radius))
				}
			}
		})

		It("fails fast on invalid arguments", func() {
			b := newBox(1, 1)
			Expect(b.InitializeRandom(0, 0.01, 0.4, 1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.InitializeRandom(10, 0, 0.4, 1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.InitializeRandom(10, 0.6, 0.4, 1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.InitializeRandom(10, 0.01, -1, 1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.InitializeRandom(10, 0.01, math.Inf(1), 1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.InitializeRandom(10, 0.01, math.NaN(), 1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.Len()).To(BeZero())

			b.Mass = math.Inf(1)
			Expect(b.InitializeRandom(10, 0.01, 0.4, 1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.InitializeRandom(1000, 0.1, 0.4, 1)).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("gives up with a placement error when the box is too crowded", func() {
			b := newBox(1, 1)
			b.MaxAttempts = 200

			err := b.InitializeRandom(30, 0.1, 0.4, 3)

			Expect(err).To(MatchError(dynamo.ErrPlacementFailed))
			Expect(b.Len()).To(Equal(0))
		})
	})

	It("is deterministic for a fixed seed", func() {
		run := func(seed int64) dynamo.State {
			b := newBox(1, 1)
			Expect(b.InitializeRandom(150, 0.01, 0.4, seed)).To(Succeed())
			for i := 0; i < 300; i++ {
				b.Step(0.002)
			}
			return b.FillState(nil)
		}

		first := run(7)
		Expect(run(7)).To(Equal(first))
		Expect(run(8)).NotTo(Equal(first))
	})

	It("steps large populations identically on one or several threads", func() {
		run := func(procs int) dynamo.State {
			prev := runtime.GOMAXPROCS(procs)
			defer runtime.GOMAXPROCS(prev)

			b := newBox(1, 1)
			Expect(b.InitializeRandom(1200, 0.004, 0.4, 21)).To(Succeed())
			for i := 0; i < 200; i++ {
				b.Step(0.002)
			}
			return b.FillState(nil)
		}

		serial := run(1)
		Expect(serial.IsValid()).To(BeTrue())
		Expect(run(4)).To(Equal(serial))
	})

	It("keeps a disc pushed into a wall on the wall, even if the pair stays overlapped", func() {
		b := newBox(1, 1)
		Expect(b.AddParticle(physics.Particle{Pos: dynamo.Vec2{X: 0.052, Y: 0.5}, Radius: 0.05, Mass: 1})).To(Succeed())
		Expect(b.AddParticle(physics.Particle{Pos: dynamo.Vec2{X: 0.162, Y: 0.5}, Vel: dynamo.Vec2{X: -1, Y: 0}, Radius: 0.05, Mass: 1})).To(Succeed())

		stats := b.Step(0.02)

		Expect(stats.Collisions).To(Equal(1))
		Expect(stats.Bounces).To(BeZero())
		Expect(b.Contained()).To(BeTrue())

		a, c := b.Particle(0), b.Particle(1)
		Expect(a.Pos.X).To(Equal(0.05))
		Expect(c.Pos.X).To(BeNumerically("~", 0.147, 1e-12))
		Expect(a.Vel.X).To(BeNumerically("~", -1, 1e-12))
		Expect(c.Vel.X).To(BeNumerically("~", 0, 1e-12))

		dist := a.Pos.Sub(c.Pos).Norm()
		Expect(dist).To(BeNumerically("<", a.Radius+c.Radius))
		Expect(dist).To(BeNumerically("~", 0.097, 1e-12))
	})

	It("conserves kinetic energy exactly in free flight", func() {
		b := newBox(10, 10)
		Expect(b.AddParticle(physics.Particle{Pos: dynamo.Vec2{X: 3, Y: 3}, Vel: dynamo.Vec2{X: 0.3, Y: -0.2}, Radius: 0.1, Mass: 1})).To(Succeed())
		Expect(b.AddParticle(physics.Particle{Pos: dynamo.Vec2{X: 7, Y: 7}, Vel: dynamo.Vec2{X: -0.1, Y: 0.4}, Radius: 0.1, Mass: 1})).To(Succeed())

		e0 := b.TotalKineticEnergy()
		start := b.Particle(0).Pos
		for i := 0; i < 100; i++ {
			stats := b.Step(0.01)
			Expect(stats.Bounces).To(BeZero())
			Expect(stats.Collisions).To(BeZero())
		}

		Expect(b.TotalKineticEnergy()).To(Equal(e0))
		Expect(b.Particle(0).Pos).NotTo(Equal(start))
		Expect(b.BounceCount()).To(BeZero())
	})

	It("keeps particles inside the walls after every step", func() {
		b := newBox(1, 1)
		Expect(b.InitializeRandom(120, 0.02, 0.5, 11)).To(Succeed())
		for i := 0; i < 500; i++ {
			b.Step(0.002)
			Expect(b.Contained()).To(BeTrue(), "step %d", i)
		}
	})

	It("accumulates wall hits until reset", func() {
		b := newBox(1, 1)
		Expect(b.InitializeRandom(50, 0.01, 0.4, 45)).To(Succeed())

		bounces := 0
		impulse := 0.0
		for i := 0; i < 1000; i++ {
			stats := b.Step(0.002)
			bounces += stats.Bounces
			impulse += stats.Impulse
		}

		Expect(bounces).To(BeNumerically(">", 0))
		Expect(b.BounceCount()).To(Equal(bounces))
		Expect(b.ImpulseTotal()).To(BeNumerically("~", impulse, 1e-9))

		b.ResetAccumulators()
		Expect(b.BounceCount()).To(BeZero())
		Expect(b.ImpulseTotal()).To(BeZero())
	})

	It("freezes the population once stepping starts", func() {
		b := newBox(1, 1)
		Expect(b.AddParticle(physics.Particle{Pos: dynamo.Vec2{X: 0.5, Y: 0.5}, Radius: 0.01, Mass: 1})).To(Succeed())
		b.Step(0.01)

		err := b.AddParticle(physics.Particle{Pos: dynamo.Vec2{X: 0.2, Y: 0.2}, Radius: 0.01, Mass: 1})
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		Expect(b.Len()).To(Equal(1))
	})
})
