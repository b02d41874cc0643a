package physics

import (
	"math"

	"github.com/san-kum/hardgas/internal/dynamo"
)

// Particle is a rigid disc.
type Particle struct {
	ID     int
	Pos    dynamo.Vec2
	Vel    dynamo.Vec2
	Radius float64
	Mass   float64
}

// HalfKick applies half of a velocity update under acceleration acc.
func (p *Particle) HalfKick(acc dynamo.Vec2, dt float64) {
	p.Vel = p.Vel.Add(acc.Scale(0.5 * dt))
}

func (p *Particle) Drift(dt float64) {
	p.Pos = p.Pos.Add(p.Vel.Scale(dt))
}

// WallBounce reflects the particle off the walls of a w×h box. Each axis is
// tested independently (low wall first, else high wall). The returned
// impulse is the sum over the axes that fired, 2·m·|v_axis| each; a corner
// hit still reports a single bounce.
func (p *Particle) WallBounce(w, h float64) (bool, float64) {
	bounced := false
	impulse := 0.0

	if p.Pos.X-p.Radius < 0 {
		p.Pos.X = p.Radius
		impulse += 2 * p.Mass * math.Abs(p.Vel.X)
		p.Vel.X = -p.Vel.X
		bounced = true
	} else if p.Pos.X+p.Radius > w {
		p.Pos.X = w - p.Radius
		impulse += 2 * p.Mass * math.Abs(p.Vel.X)
		p.Vel.X = -p.Vel.X
		bounced = true
	}

	if p.Pos.Y-p.Radius < 0 {
		p.Pos.Y = p.Radius
		impulse += 2 * p.Mass * math.Abs(p.Vel.Y)
		p.Vel.Y = -p.Vel.Y
		bounced = true
	} else if p.Pos.Y+p.Radius > h {
		p.Pos.Y = h - p.Radius
		impulse += 2 * p.Mass * math.Abs(p.Vel.Y)
		p.Vel.Y = -p.Vel.Y
		bounced = true
	}

	return bounced, impulse
}

// Overlaps reports whether the discs interpenetrate. Exact tangency is not
// an overlap.
func (p *Particle) Overlaps(other *Particle) bool {
	return p.Pos.Sub(other.Pos).Norm() < p.Radius+other.Radius
}

// ResolveCollision exchanges the normal velocity components of two
// approaching discs and pushes them apart along the contact normal until
// they no longer overlap. The exchange is the elastic solution for equal
// masses only; tangential components are untouched.
func (p *Particle) ResolveCollision(other *Particle) {
	d := p.Pos.Sub(other.Pos)
	dist := d.Norm()
	if dist == 0 {
		return
	}

	n := d.Div(dist)

	vn := p.Vel.Sub(other.Vel).Dot(n)
	if vn >= 0 {
		return
	}

	pn := p.Vel.Dot(n)
	on := other.Vel.Dot(n)
	p.Vel = p.Vel.Add(n.Scale(on - pn))
	other.Vel = other.Vel.Add(n.Scale(pn - on))

	overlap := (p.Radius + other.Radius) - dist
	if overlap > 0 {
		shift := n.Scale(overlap / 2)
		p.Pos = p.Pos.Add(shift)
		other.Pos = other.Pos.Sub(shift)
	}
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Vel.Norm2()
}

// Inside reports whether the disc lies fully within a w×h box.
func (p *Particle) Inside(w, h float64) bool {
	return p.Pos.X >= p.Radius && p.Pos.X <= w-p.Radius &&
		p.Pos.Y >= p.Radius && p.Pos.Y <= h-p.Radius
}

// Confine clamps the position back inside a w×h box without touching the
// velocity. It reports whether a clamp happened.
func (p *Particle) Confine(w, h float64) bool {
	x := math.Min(math.Max(p.Pos.X, p.Radius), w-p.Radius)
	y := math.Min(math.Max(p.Pos.Y, p.Radius), h-p.Radius)
	moved := x != p.Pos.X || y != p.Pos.Y
	p.Pos = dynamo.Vec2{X: x, Y: y}
	return moved
}
