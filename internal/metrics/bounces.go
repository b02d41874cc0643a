package metrics

import "github.com/san-kum/hardgas/internal/physics"

// WallBounces counts bounce events over the whole run, independent of the
// box accumulators that are reset every sampling window.
type WallBounces struct {
	name  string
	total int
}

func NewWallBounces() *WallBounces {
	return &WallBounces{name: "wall_bounces"}
}

func (w *WallBounces) Name() string { return w.name }

func (w *WallBounces) Observe(_ *physics.Box, stats physics.StepStats, _ float64) {
	w.total += stats.Bounces
}

func (w *WallBounces) Value() float64 { return float64(w.total) }

func (w *WallBounces) Reset() { w.total = 0 }

// PairContacts is the mean number of overlapping pairs resolved per step.
type PairContacts struct {
	name    string
	total   int
	samples int
}

func NewPairContacts() *PairContacts {
	return &PairContacts{name: "pair_contacts"}
}

func (p *PairContacts) Name() string { return p.name }

func (p *PairContacts) Observe(_ *physics.Box, stats physics.StepStats, _ float64) {
	p.total += stats.Collisions
	p.samples++
}

func (p *PairContacts) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return float64(p.total) / float64(p.samples)
}

func (p *PairContacts) Reset() {
	p.total = 0
	p.samples = 0
}
