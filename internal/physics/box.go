package physics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/hardgas/internal/dynamo"
)

const (
	DefaultMass = 1.0

	// DefaultMaxAttempts bounds consecutive rejected draws for one particle
	// during random placement.
	DefaultMaxAttempts = 10000

	// Populations at or below this size are advanced on the calling goroutine.
	parallelMinChunk = 512
)

// StepStats summarises one call to Step.
type StepStats struct {
	Bounces    int
	Impulse    float64
	Collisions int
}

// Box is a W×H container holding a fixed particle population.
type Box struct {
	W, H float64

	// Mass given to every particle drawn by InitializeRandom.
	Mass float64

	// MaxAttempts caps consecutive rejections while placing one particle.
	MaxAttempts int

	particles    []Particle
	field        dynamo.Vec2
	bounceCount  int
	impulseTotal float64
	stepped      bool

	bounced  []bool
	impulses []float64
}

// NewBox creates an empty box with extents w×h.
func NewBox(w, h float64) (*Box, error) {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return nil, fmt.Errorf("%w: box extents must be positive and finite, got %gx%g", dynamo.ErrParameterBounds, w, h)
	}
	return &Box{
		W:           w,
		H:           h,
		Mass:        DefaultMass,
		MaxAttempts: DefaultMaxAttempts,
	}, nil
}

// InitializeRandom replaces the population with n non-overlapping particles
// drawn by rejection sampling from a generator seeded with seed. Positions
// are uniform in [radius, W-radius]×[radius, H-radius], velocity components
// uniform in [-vmax, vmax].
func (b *Box) InitializeRandom(n int, radius, vmax float64, seed int64) error {
	if err := b.checkPopulation(n, radius, vmax); err != nil {
		return err
	}

	maxAttempts := b.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	rng := rand.New(rand.NewSource(seed))
	b.particles = make([]Particle, 0, n)
	b.stepped = false
	b.ResetAccumulators()

	rejected := 0
	for len(b.particles) < n {
		cand := Particle{
			ID: len(b.particles),
			Pos: dynamo.Vec2{
				X: uniform(rng, radius, b.W-radius),
				Y: uniform(rng, radius, b.H-radius),
			},
			Vel: dynamo.Vec2{
				X: uniform(rng, -vmax, vmax),
				Y: uniform(rng, -vmax, vmax),
			},
			Radius: radius,
			Mass:   b.Mass,
		}

		if !b.overlapsAny(&cand) {
			b.particles = append(b.particles, cand)
			rejected = 0
			continue
		}

		rejected++
		if rejected >= maxAttempts {
			placed := len(b.particles)
			b.particles = nil
			return fmt.Errorf("%w: placed %d of %d particles, %d consecutive rejections",
				dynamo.ErrPlacementFailed, placed, n, rejected)
		}
	}

	return nil
}

func (b *Box) checkPopulation(n int, radius, vmax float64) error {
	switch {
	case n <= 0:
		return fmt.Errorf("%w: particle count must be positive, got %d", dynamo.ErrParameterBounds, n)
	case !(radius > 0):
		return fmt.Errorf("%w: radius must be positive, got %g", dynamo.ErrParameterBounds, radius)
	case !(vmax >= 0) || math.IsInf(vmax, 0):
		return fmt.Errorf("%w: vmax must be non-negative and finite, got %g", dynamo.ErrParameterBounds, vmax)
	case !(b.Mass > 0) || math.IsInf(b.Mass, 0):
		return fmt.Errorf("%w: mass must be positive and finite, got %g", dynamo.ErrParameterBounds, b.Mass)
	case 2*radius > b.W || 2*radius > b.H:
		return fmt.Errorf("%w: radius %g does not fit a %gx%g box", dynamo.ErrParameterBounds, radius, b.W, b.H)
	case float64(n)*math.Pi*radius*radius > b.W*b.H:
		return fmt.Errorf("%w: %d discs of radius %g cover more than the box area", dynamo.ErrParameterBounds, n, radius)
	}
	return nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func (b *Box) overlapsAny(p *Particle) bool {
	for i := range b.particles {
		if p.Overlaps(&b.particles[i]) {
			return true
		}
	}
	return false
}

// AddParticle appends a hand-placed particle and assigns it the next id.
// The particle must lie inside the walls and overlap nobody. The population
// is frozen once the box has been stepped.
func (b *Box) AddParticle(p Particle) error {
	if b.stepped {
		return fmt.Errorf("%w: population is fixed once stepping starts", dynamo.ErrParameterBounds)
	}
	if !(p.Radius > 0) || !(p.Mass > 0) {
		return fmt.Errorf("%w: radius and mass must be positive, got r=%g m=%g", dynamo.ErrParameterBounds, p.Radius, p.Mass)
	}
	if !p.Pos.IsFinite() || !p.Vel.IsFinite() || !p.Inside(b.W, b.H) {
		return fmt.Errorf("%w: particle at %v is not inside the walls", dynamo.ErrParameterBounds, p.Pos)
	}
	if b.overlapsAny(&p) {
		return fmt.Errorf("%w: particle at %v overlaps an existing particle", dynamo.ErrParameterBounds, p.Pos)
	}
	p.ID = len(b.particles)
	b.particles = append(b.particles, p)
	return nil
}

// Step advances the gas by dt: half kick, drift, wall bounce, pairwise
// collisions, half kick. Wall hits are added to the box accumulators and
// also returned for this step alone.
func (b *Box) Step(dt float64) StepStats {
	b.stepped = true
	n := len(b.particles)
	b.ensureScratch(n)

	// Kick, drift and wall reflection touch one particle each, so they can
	// run per particle in any grouping.
	dynamo.ParallelFor(n, parallelMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := &b.particles[i]
			p.HalfKick(b.field, dt)
			p.Drift(dt)
			b.bounced[i], b.impulses[i] = p.WallBounce(b.W, b.H)
		}
	})

	var stats StepStats
	for i := 0; i < n; i++ {
		if b.bounced[i] {
			b.bounceCount++
			b.impulseTotal += b.impulses[i]
			stats.Bounces++
			stats.Impulse += b.impulses[i]
		}
	}

	stats.Collisions = b.resolvePairwiseCollisions()

	dynamo.ParallelFor(n, parallelMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			b.particles[i].HalfKick(b.field, dt)
		}
	})

	return stats
}

// resolvePairwiseCollisions makes one pass over every pair i<j in sequence
// order. Clusters are not iterated to a fixed point. A push-back that would
// move a disc through a wall is clamped so containment holds after Step.
func (b *Box) resolvePairwiseCollisions() int {
	n := len(b.particles)
	contacts := 0
	for i := 0; i < n; i++ {
		pi := &b.particles[i]
		for j := i + 1; j < n; j++ {
			pj := &b.particles[j]
			if pi.Overlaps(pj) {
				pi.ResolveCollision(pj)
				pi.Confine(b.W, b.H)
				pj.Confine(b.W, b.H)
				contacts++
			}
		}
	}
	return contacts
}

func (b *Box) ensureScratch(n int) {
	if len(b.bounced) != n {
		b.bounced = make([]bool, n)
		b.impulses = make([]float64, n)
	}
}

func (b *Box) TotalKineticEnergy() float64 {
	e := 0.0
	for i := range b.particles {
		e += b.particles[i].KineticEnergy()
	}
	return e
}

// MeanSpeedSquared is ⟨|v|²⟩ over the population, 0 for an empty box.
func (b *Box) MeanSpeedSquared() float64 {
	if len(b.particles) == 0 {
		return 0
	}
	sum := 0.0
	for i := range b.particles {
		sum += b.particles[i].Vel.Norm2()
	}
	return sum / float64(len(b.particles))
}

// Momentum is the total linear momentum of the population.
func (b *Box) Momentum() dynamo.Vec2 {
	var p dynamo.Vec2
	for i := range b.particles {
		p = p.Add(b.particles[i].Vel.Scale(b.particles[i].Mass))
	}
	return p
}

func (b *Box) BounceCount() int      { return b.bounceCount }
func (b *Box) ImpulseTotal() float64 { return b.impulseTotal }

// ResetAccumulators zeroes the bounce count and wall impulse. Callers do
// this between sampling windows.
func (b *Box) ResetAccumulators() {
	b.bounceCount = 0
	b.impulseTotal = 0
}

func (b *Box) Len() int { return len(b.particles) }

// Particle returns a copy of the i-th particle in sequence order.
func (b *Box) Particle(i int) Particle { return b.particles[i] }

// Particles returns a copy of the population in sequence order.
func (b *Box) Particles() []Particle {
	out := make([]Particle, len(b.particles))
	copy(out, b.particles)
	return out
}

// Contained reports whether every particle lies inside the walls.
func (b *Box) Contained() bool {
	for i := range b.particles {
		if !b.particles[i].Inside(b.W, b.H) {
			return false
		}
	}
	return true
}

// FillState writes x, y, vx, vy for every particle into dst, growing it if
// needed, and returns the filled slice.
func (b *Box) FillState(dst dynamo.State) dynamo.State {
	size := len(b.particles) * dynamo.FieldsPerParticle
	if cap(dst) < size {
		dst = make(dynamo.State, size)
	}
	dst = dst[:size]
	for i := range b.particles {
		p := &b.particles[i]
		k := i * dynamo.FieldsPerParticle
		dst[k] = p.Pos.X
		dst[k+1] = p.Pos.Y
		dst[k+2] = p.Vel.X
		dst[k+3] = p.Vel.Y
	}
	return dst
}

// Snapshot copies the current phase-space state stamped with time t.
func (b *Box) Snapshot(t float64) dynamo.Snapshot {
	return dynamo.Snapshot{Time: t, State: b.FillState(nil)}
}
