package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/hardgas/internal/physics"
)

// BoxFactory builds an initialised box for one seed.
type BoxFactory func(seed int64) (*physics.Box, error)

// Ensemble runs the same configuration over consecutive seeds, one
// goroutine and one Box per run.
type Ensemble struct {
	factory   BoxFactory
	numRuns   int
	seedStart int64

	// NewMetrics, when set, supplies a fresh metric set for each run.
	NewMetrics func() []Metric
}

func NewEnsemble(factory BoxFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

// Seed returns the seed used by run idx.
func (e *Ensemble) Seed(idx int) int64 {
	return e.seedStart + int64(idx)
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.Seed(idx)
			box, err := e.factory(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
				return
			}

			s := New(box)
			if e.NewMetrics != nil {
				for _, m := range e.NewMetrics() {
					s.AddMetric(m)
				}
			}

			results[idx], err = s.Run(ctx, cfg)
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
			}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
