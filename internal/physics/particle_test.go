package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/hardgas/internal/dynamo"
)

func TestWallBounce_Axes(t *testing.T) {
	tests := []struct {
		name    string
		pos     dynamo.Vec2
		vel     dynamo.Vec2
		bounced bool
		impulse float64
		wantPos dynamo.Vec2
	}{
		{"interior", dynamo.Vec2{X: 0.5, Y: 0.5}, dynamo.Vec2{X: 1, Y: 1}, false, 0, dynamo.Vec2{X: 0.5, Y: 0.5}},
		{"left", dynamo.Vec2{X: 0.05, Y: 0.5}, dynamo.Vec2{X: -1, Y: 0}, true, 2, dynamo.Vec2{X: 0.1, Y: 0.5}},
		{"right", dynamo.Vec2{X: 0.95, Y: 0.5}, dynamo.Vec2{X: 0.5, Y: 0}, true, 1, dynamo.Vec2{X: 0.9, Y: 0.5}},
		{"bottom", dynamo.Vec2{X: 0.5, Y: 0.05}, dynamo.Vec2{X: 0, Y: -0.25}, true, 0.5, dynamo.Vec2{X: 0.5, Y: 0.1}},
		{"top", dynamo.Vec2{X: 0.5, Y: 0.95}, dynamo.Vec2{X: 0, Y: 2}, true, 4, dynamo.Vec2{X: 0.5, Y: 0.9}},
		{"touching", dynamo.Vec2{X: 0.1, Y: 0.5}, dynamo.Vec2{X: -1, Y: 0}, false, 0, dynamo.Vec2{X: 0.1, Y: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Particle{Pos: tt.pos, Vel: tt.vel, Radius: 0.1, Mass: 1}

			bounced, impulse := p.WallBounce(1, 1)

			assert.Equal(t, tt.bounced, bounced)
			assert.InDelta(t, tt.impulse, impulse, 1e-12)
			assert.InDelta(t, tt.wantPos.X, p.Pos.X, 1e-12)
			assert.InDelta(t, tt.wantPos.Y, p.Pos.Y, 1e-12)
			if tt.bounced {
				assert.NotEqual(t, tt.vel, p.Vel)
				assert.InDelta(t, tt.vel.Norm(), p.Vel.Norm(), 1e-12)
			} else {
				assert.Equal(t, tt.vel, p.Vel)
			}
		})
	}
}

func TestResolveCollision_SeparatingIsNoop(t *testing.T) {
	a := Particle{Pos: dynamo.Vec2{X: 0.45, Y: 0.5}, Vel: dynamo.Vec2{X: -1, Y: 0}, Radius: 0.05, Mass: 1}
	b := Particle{Pos: dynamo.Vec2{X: 0.5, Y: 0.5}, Vel: dynamo.Vec2{X: 1, Y: 0}, Radius: 0.05, Mass: 1}

	a.ResolveCollision(&b)

	assert.Equal(t, dynamo.Vec2{X: -1, Y: 0}, a.Vel)
	assert.Equal(t, dynamo.Vec2{X: 1, Y: 0}, b.Vel)
	assert.Equal(t, 0.45, a.Pos.X, "separating pair must not be pushed")
}

func TestResolveCollision_KeepsTangentialComponent(t *testing.T) {
	a := Particle{Pos: dynamo.Vec2{X: 0.45, Y: 0.5}, Vel: dynamo.Vec2{X: 1, Y: 0.3}, Radius: 0.05, Mass: 1}
	b := Particle{Pos: dynamo.Vec2{X: 0.53, Y: 0.5}, Vel: dynamo.Vec2{X: 0, Y: -0.2}, Radius: 0.05, Mass: 1}

	a.ResolveCollision(&b)

	assert.InDelta(t, 0.0, a.Vel.X, 1e-12)
	assert.InDelta(t, 1.0, b.Vel.X, 1e-12)
	assert.InDelta(t, 0.3, a.Vel.Y, 1e-12)
	assert.InDelta(t, -0.2, b.Vel.Y, 1e-12)
	assert.InDelta(t, 0.1, b.Pos.X-a.Pos.X, 1e-12)
}

func TestKineticEnergy(t *testing.T) {
	p := Particle{Vel: dynamo.Vec2{X: 3, Y: 4}, Mass: 2}
	assert.Equal(t, 25.0, p.KineticEnergy())
}

func TestConfine(t *testing.T) {
	p := Particle{Pos: dynamo.Vec2{X: -0.2, Y: 1.3}, Vel: dynamo.Vec2{X: 1, Y: 1}, Radius: 0.1}

	assert.True(t, p.Confine(1, 1))
	assert.Equal(t, dynamo.Vec2{X: 0.1, Y: 0.9}, p.Pos)
	assert.Equal(t, dynamo.Vec2{X: 1, Y: 1}, p.Vel)
	assert.False(t, p.Confine(1, 1))
}

func TestBox_MomentumAndMeanSpeed(t *testing.T) {
	b, err := NewBox(1, 1)
	assert.NoError(t, err)
	assert.NoError(t, b.AddParticle(Particle{Pos: dynamo.Vec2{X: 0.2, Y: 0.2}, Vel: dynamo.Vec2{X: 1, Y: 0}, Radius: 0.01, Mass: 1}))
	assert.NoError(t, b.AddParticle(Particle{Pos: dynamo.Vec2{X: 0.8, Y: 0.8}, Vel: dynamo.Vec2{X: 0, Y: -3}, Radius: 0.01, Mass: 1}))

	assert.Equal(t, dynamo.Vec2{X: 1, Y: -3}, b.Momentum())
	assert.InDelta(t, 5.0, b.MeanSpeedSquared(), 1e-12)
	assert.Equal(t, 1, b.Particle(1).ID)

	st := b.Snapshot(0.5)
	assert.Equal(t, 0.5, st.Time)
	assert.Equal(t, dynamo.State{0.2, 0.2, 1, 0, 0.8, 0.8, 0, -3}, st.State)
}

func TestBox_AddParticleRejectsOverlapAndWalls(t *testing.T) {
	b, err := NewBox(1, 1)
	assert.NoError(t, err)
	assert.NoError(t, b.AddParticle(Particle{Pos: dynamo.Vec2{X: 0.5, Y: 0.5}, Radius: 0.1, Mass: 1}))

	assert.ErrorIs(t, b.AddParticle(Particle{Pos: dynamo.Vec2{X: 0.55, Y: 0.5}, Radius: 0.1, Mass: 1}), dynamo.ErrParameterBounds)
	assert.ErrorIs(t, b.AddParticle(Particle{Pos: dynamo.Vec2{X: 0.05, Y: 0.5}, Radius: 0.1, Mass: 1}), dynamo.ErrParameterBounds)
	assert.ErrorIs(t, b.AddParticle(Particle{Pos: dynamo.Vec2{X: 0.2, Y: 0.2}, Radius: 0.1, Mass: 0}), dynamo.ErrParameterBounds)
	assert.Equal(t, 1, b.Len())
}
