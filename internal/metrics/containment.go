package metrics

import "github.com/san-kum/hardgas/internal/physics"

// Containment is the fraction of observed steps after which every particle
// was inside the walls.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(box *physics.Box, _ physics.StepStats, _ float64) {
	c.samples++
	if !box.Contained() {
		c.violations++
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
