package metrics

import (
	"math"

	"github.com/san-kum/hardgas/internal/physics"
)

// PressureSample is one sampling window of wall-impulse pressure next to the
// equipartition estimate taken at the end of the window.
type PressureSample struct {
	Time    float64 `json:"time"`
	Exp     float64 `json:"p_exp"`
	Teo     float64 `json:"p_teo"`
	Bounces int     `json:"bounces"`
	Energy  float64 `json:"energy"`
}

// ExperimentalPressure is the wall impulse rate per unit perimeter over a
// window of windowSteps steps of size dt.
func ExperimentalPressure(impulse float64, windowSteps int, dt, w, h float64) float64 {
	if windowSteps <= 0 || dt <= 0 {
		return 0
	}
	return impulse / (float64(windowSteps) * dt * 2 * (w + h))
}

// TheoreticalPressure is N·⟨|v|²⟩/(W·H).
func TheoreticalPressure(n int, meanV2, w, h float64) float64 {
	return float64(n) * meanV2 / (w * h)
}

// SamplePressure reads the box accumulators for a window that ended at time
// t. It does not reset them.
func SamplePressure(box *physics.Box, windowSteps int, dt, t float64) PressureSample {
	return PressureSample{
		Time:    t,
		Exp:     ExperimentalPressure(box.ImpulseTotal(), windowSteps, dt, box.W, box.H),
		Teo:     TheoreticalPressure(box.Len(), box.MeanSpeedSquared(), box.W, box.H),
		Bounces: box.BounceCount(),
		Energy:  box.TotalKineticEnergy(),
	}
}

// PressureAverager keeps running means over pressure samples.
type PressureAverager struct {
	sumExp float64
	sumTeo float64
	count  int
}

func (a *PressureAverager) Add(s PressureSample) {
	a.sumExp += s.Exp
	a.sumTeo += s.Teo
	a.count++
}

func (a *PressureAverager) Count() int { return a.count }

func (a *PressureAverager) MeanExp() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sumExp / float64(a.count)
}

func (a *PressureAverager) MeanTeo() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sumTeo / float64(a.count)
}

// RelativeError is 100·|P̄exp − P̄teo|/P̄teo, or 0 without a theoretical mean.
func (a *PressureAverager) RelativeError() float64 {
	teo := a.MeanTeo()
	if teo == 0 {
		return 0
	}
	return 100 * math.Abs(a.MeanExp()-teo) / teo
}
