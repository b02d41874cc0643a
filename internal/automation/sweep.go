package automation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/hardgas/internal/config"
	"github.com/san-kum/hardgas/internal/dynamo"
	"github.com/san-kum/hardgas/internal/experiment"
)

// SweepParams lists the parameters a sweep can vary.
var SweepParams = []string{"height", "mass", "particles", "radius", "vmax", "width"}

// SetParam sets a numeric gas parameter by its config key.
func SetParam(cfg *config.Config, name string, val float64) error {
	switch name {
	case "particles":
		cfg.Particles = int(val)
	case "radius":
		cfg.Radius = val
	case "vmax":
		cfg.VMax = val
	case "mass":
		cfg.Mass = val
	case "width":
		cfg.Width = val
	case "height":
		cfg.Height = val
	default:
		return fmt.Errorf("%w: cannot sweep %q (one of %v)", dynamo.ErrParameterBounds, name, SweepParams)
	}
	return nil
}

// ParameterSweep runs the base configuration across evenly spaced values of
// one parameter.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	NumSteps int
}

// SweepResult holds the pressure summary of one sweep point.
type SweepResult struct {
	ParamValue    float64
	MeanExp       float64
	MeanTeo       float64
	PressureError float64
	Bounces       int
	EnergyDrift   float64
}

// Values returns the parameter values the sweep visits.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	vals := make([]float64, s.NumSteps)
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("%w: sweep has no base configuration", dynamo.ErrParameterBounds)
	}
	if err := SetParam(sweep.Base.Clone(), sweep.Param, sweep.Min); err != nil {
		return nil, err
	}

	vals := sweep.Values()
	results := make([]SweepResult, 0, len(vals))
	for i, val := range vals {
		cfg := sweep.Base.Clone()
		cfg.SnapshotEvery = 0
		if err := SetParam(cfg, sweep.Param, val); err != nil {
			return results, err
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, val, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, val, err)
		}

		results = append(results, SweepResult{
			ParamValue:    val,
			MeanExp:       result.MeanPressureExp,
			MeanTeo:       result.MeanPressureTeo,
			PressureError: result.PressureError,
			Bounces:       result.TotalBounces,
			EnergyDrift:   result.EnergyDrift,
		})

		slog.Debug("sweep point", "index", i+1, "of", len(vals), sweep.Param, val, "p_exp", result.MeanPressureExp)
	}

	return results, nil
}
