package dynamo

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{4, 6}

	if got := a.Add(b); got != (Vec2{5, 8}) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != (Vec2{3, 4}) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Scale(2); got != (Vec2{2, 4}) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := b.Div(2); got != (Vec2{2, 3}) {
		t.Errorf("Div failed: got %v", got)
	}
	if got := a.Dot(b); got != 16 {
		t.Errorf("Dot failed: got %v", got)
	}
	if a != (Vec2{1, 2}) {
		t.Errorf("operations mutated receiver: %v", a)
	}
}

func TestVec2_Norm(t *testing.T) {
	tests := []struct {
		v        Vec2
		expected float64
	}{
		{Vec2{3, 4}, 5.0},
		{Vec2{1, 0}, 1.0},
		{Vec2{0, 0}, 0.0},
		{Vec2{-3, -4}, 5.0},
	}

	for _, tt := range tests {
		if got := tt.v.Norm(); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Norm(%v) = %v, want %v", tt.v, got, tt.expected)
		}
		if got := tt.v.Norm2(); math.Abs(got-tt.expected*tt.expected) > 1e-12 {
			t.Errorf("Norm2(%v) = %v, want %v", tt.v, got, tt.expected*tt.expected)
		}
	}
}

func TestVec2_DivByZeroIsNotFinite(t *testing.T) {
	v := Vec2{1, 0}.Div(0)
	if v.IsFinite() {
		t.Errorf("expected non-finite result, got %v", v)
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{0.1, 0.2, 0.3, 0.4}, true},
		{"with NaN", State{1.0, math.NaN(), 0, 0}, false},
		{"with +Inf", State{1.0, math.Inf(1), 0, 0}, false},
		{"with -Inf", State{1.0, 0, math.Inf(-1), 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Accessors(t *testing.T) {
	s := State{1, 2, 3, 4, 5, 6, 7, 8}

	if s.Len() != 2 {
		t.Fatalf("expected 2 particles, got %d", s.Len())
	}
	if p := s.Position(1); p != (Vec2{5, 6}) {
		t.Errorf("Position(1) = %v", p)
	}
	if v := s.Velocity(0); v != (Vec2{3, 4}) {
		t.Errorf("Velocity(0) = %v", v)
	}

	c := s.Clone()
	c[0] = 99
	if s[0] == 99 {
		t.Error("Clone did not create independent copy")
	}
}

func TestSimulationError_Unwrap(t *testing.T) {
	err := &SimulationError{Step: 12, Time: 0.024, Wrapped: ErrInvalidState}

	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected errors.Is to match ErrInvalidState")
	}
	wrapped := fmt.Errorf("run: %w", err)
	var simErr *SimulationError
	if !errors.As(wrapped, &simErr) || simErr.Step != 12 {
		t.Errorf("errors.As failed: %v", wrapped)
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1000, 1001} {
		hits := make([]int32, n)
		ParallelFor(n, 16, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}
