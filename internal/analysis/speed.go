package analysis

import (
	"math"

	"github.com/san-kum/hardgas/internal/dynamo"
)

// Speeds returns |v| for every particle in state.
func Speeds(state dynamo.State) []float64 {
	speeds := make([]float64, state.Len())
	for i := range speeds {
		speeds[i] = state.Velocity(i).Norm()
	}
	return speeds
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Hist is a fixed-width histogram over [Min, Max]. Density integrates to one.
type Hist struct {
	Min, Max float64
	Width    float64
	Counts   []int
	Density  []float64
}

// Histogram bins values into n equal-width bins spanning their range. The
// maximum lands in the last bin.
func Histogram(values []float64, n int) *Hist {
	if n <= 0 || len(values) == 0 {
		return &Hist{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	h := &Hist{
		Min:     lo,
		Max:     hi,
		Width:   (hi - lo) / float64(n),
		Counts:  make([]int, n),
		Density: make([]float64, n),
	}

	for _, v := range values {
		k := int((v - lo) / h.Width)
		if k >= n {
			k = n - 1
		}
		h.Counts[k]++
	}

	norm := float64(len(values)) * h.Width
	for k, c := range h.Counts {
		h.Density[k] = float64(c) / norm
	}
	return h
}

// Centers returns the midpoint of each bin.
func (h *Hist) Centers() []float64 {
	c := make([]float64, len(h.Counts))
	for k := range c {
		c[k] = h.Min + (float64(k)+0.5)*h.Width
	}
	return c
}

// MaxwellBoltzmann2D is the equilibrium speed density of a 2D ideal gas
// whose mean speed is meanSpeed: f(v) = v/a² · exp(−v²/2a²), a = ⟨v⟩/√(π/2).
func MaxwellBoltzmann2D(v, meanSpeed float64) float64 {
	if meanSpeed <= 0 || v < 0 {
		return 0
	}
	a := meanSpeed / math.Sqrt(math.Pi/2)
	return v / (a * a) * math.Exp(-v*v/(2*a*a))
}
