package sim

import (
	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/metrics"
	"github.com/san-kum/hardgas/internal/physics"
)

// Metric observes the box after every completed step.
type Metric interface {
	Name() string
	Observe(box *physics.Box, stats physics.StepStats, t float64)
	Value() float64
	Reset()
}

// Observer receives the state after every completed step. The snapshot's
// State is reused once OnStep returns; observers that keep it must Clone.
type Observer interface {
	OnStep(snap dynamo.Snapshot)
}

type Config struct {
	Dt    float64
	Steps int

	// SampleEvery is the pressure sampling window, in steps.
	SampleEvery int

	// SnapshotEvery records the initial state and every n-th step in
	// Result.Snapshots. 0 disables in-memory recording; stream through an
	// Observer instead.
	SnapshotEvery int

	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.002,
		Steps:         50000,
		SampleEvery:   1000,
		SnapshotEvery: 0,
		ValidateState: true,
	}
}

type Result struct {
	Snapshots []dynamo.Snapshot
	Pressure  []metrics.PressureSample
	Metrics   map[string]float64

	InitialEnergy float64
	FinalEnergy   float64
	EnergyDrift   float64

	TotalBounces    int
	TotalCollisions int
	StepsTaken      int

	MeanPressureExp float64
	MeanPressureTeo float64
	PressureError   float64
}

// Duration is the simulated time covered by the steps taken.
func (r *Result) Duration(dt float64) float64 {
	return float64(r.StepsTaken) * dt
}
