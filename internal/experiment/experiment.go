package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/hardgas/internal/config"
	"github.com/san-kum/hardgas/internal/physics"
	"github.com/san-kum/hardgas/internal/sim"
)

// Experiment is one configured run: a populated box plus the simulator
// driving it.
type Experiment struct {
	cfg       *config.Config
	box       *physics.Box
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup validates the configuration, draws the initial population from the
// configured seed and attaches metrics.
func (e *Experiment) Setup(metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	box, err := e.cfg.Populate(e.cfg.Seed)
	if err != nil {
		return fmt.Errorf("initialize box: %w", err)
	}

	e.box = box
	e.simulator = sim.New(box)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := e.cfg.SimConfig()
	slog.Info("run started",
		"particles", e.box.Len(),
		"steps", simCfg.Steps,
		"dt", simCfg.Dt,
		"seed", e.cfg.Seed,
	)

	start := time.Now()
	result, err := e.simulator.Run(ctx, simCfg)
	if err != nil {
		return result, err
	}

	slog.Info("run finished",
		"steps", result.StepsTaken,
		"bounces", result.TotalBounces,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Box() *physics.Box { return e.box }

func (e *Experiment) Config() *config.Config { return e.cfg }
