package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/metrics"
	"github.com/san-kum/hardgas/internal/physics"
)

// Simulator drives a Box for a fixed number of steps, sampling pressure on a
// configurable cadence.
type Simulator struct {
	box       *physics.Box
	metrics   []Metric
	observers []Observer
}

func New(box *physics.Box) *Simulator {
	return &Simulator{
		box:       box,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Box() *physics.Box { return s.box }

// Run steps the box cfg.Steps times. On cancellation or an invalid state the
// partial result is returned together with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Pressure: make([]metrics.PressureSample, 0, cfg.Steps/cfg.SampleEvery),
		Metrics:  make(map[string]float64),
	}
	if cfg.SnapshotEvery > 0 {
		result.Snapshots = make([]dynamo.Snapshot, 0, cfg.Steps/cfg.SnapshotEvery+1)
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	s.box.ResetAccumulators()

	t := 0.0
	if cfg.SnapshotEvery > 0 {
		result.Snapshots = append(result.Snapshots, s.box.Snapshot(t))
	}
	result.InitialEnergy = s.box.TotalKineticEnergy()

	pool := NewStatePool(s.box.Len() * dynamo.FieldsPerParticle)
	var avg metrics.PressureAverager
	window := 0

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, &avg)
			return result, ctx.Err()
		default:
		}

		stats := s.box.Step(cfg.Dt)
		t += cfg.Dt
		window++
		result.StepsTaken++
		result.TotalBounces += stats.Bounces
		result.TotalCollisions += stats.Collisions

		for _, m := range s.metrics {
			m.Observe(s.box, stats, t)
		}

		if cfg.ValidateState || len(s.observers) > 0 {
			buf := s.box.FillState(pool.Get())
			if cfg.ValidateState && !buf.IsValid() {
				pool.Put(buf)
				s.finish(result, &avg)
				return result, &dynamo.SimulationError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
			}
			for _, obs := range s.observers {
				obs.OnStep(dynamo.Snapshot{Time: t, State: buf})
			}
			pool.Put(buf)
		}

		if cfg.SnapshotEvery > 0 && (i+1)%cfg.SnapshotEvery == 0 {
			result.Snapshots = append(result.Snapshots, s.box.Snapshot(t))
		}

		if window == cfg.SampleEvery {
			sample := metrics.SamplePressure(s.box, window, cfg.Dt, t)
			result.Pressure = append(result.Pressure, sample)
			avg.Add(sample)
			slog.Debug("pressure window",
				"step", i+1,
				"t", t,
				"p_exp", sample.Exp,
				"p_teo", sample.Teo,
				"bounces", sample.Bounces,
				"energy", sample.Energy,
			)
			s.box.ResetAccumulators()
			window = 0
		}
	}

	s.finish(result, &avg)
	return result, nil
}

func (s *Simulator) finish(result *Result, avg *metrics.PressureAverager) {
	result.FinalEnergy = s.box.TotalKineticEnergy()
	if result.InitialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy-result.InitialEnergy) / math.Abs(result.InitialEnergy)
	}

	result.MeanPressureExp = avg.MeanExp()
	result.MeanPressureTeo = avg.MeanTeo()
	result.PressureError = avg.RelativeError()

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.box == nil || s.box.Len() == 0 {
		return dynamo.ErrEmptyBox
	}
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, cfg.Steps)
	}
	if cfg.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample window must be positive, got %d", dynamo.ErrParameterBounds, cfg.SampleEvery)
	}
	if cfg.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot cadence must not be negative, got %d", dynamo.ErrParameterBounds, cfg.SnapshotEvery)
	}
	return nil
}
