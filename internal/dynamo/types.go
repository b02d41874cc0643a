package dynamo

import "math"

// FieldsPerParticle is the stride of a State: x, y, vx, vy.
const FieldsPerParticle = 4

// State is the flattened phase-space vector of a particle population in
// sequence order.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Len is the number of particles encoded in s.
func (s State) Len() int { return len(s) / FieldsPerParticle }

func (s State) Position(i int) Vec2 {
	return Vec2{s[i*FieldsPerParticle], s[i*FieldsPerParticle+1]}
}

func (s State) Velocity(i int) Vec2 {
	return Vec2{s[i*FieldsPerParticle+2], s[i*FieldsPerParticle+3]}
}

// Snapshot is the per-step record handed to reporting collaborators.
type Snapshot struct {
	Time  float64
	State State
}
