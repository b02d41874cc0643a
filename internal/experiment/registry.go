package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/hardgas/internal/metrics"
	"github.com/san-kum/hardgas/internal/sim"
)

// Registry maps metric names to constructors so runs can select metrics by
// name.
type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["kinetic_energy"] = func() sim.Metric { return metrics.NewKineticEnergy() }
	r.metrics["energy_drift"] = func() sim.Metric { return metrics.NewEnergyDrift() }
	r.metrics["containment"] = func() sim.Metric { return metrics.NewContainment() }
	r.metrics["wall_bounces"] = func() sim.Metric { return metrics.NewWallBounces() }
	r.metrics["pair_contacts"] = func() sim.Metric { return metrics.NewPairContacts() }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// Metrics builds the named metrics in order.
func (r *Registry) Metrics(names []string) ([]sim.Metric, error) {
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewContainment(),
		metrics.NewWallBounces(),
	}
}
