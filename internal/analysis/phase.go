package analysis

import (
	"strings"

	"github.com/san-kum/hardgas/internal/dynamo"
)

// Phase-space axes of one particle.
const (
	AxisX = iota
	AxisY
	AxisVX
	AxisVY
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []struct{ X, Y float64 }
}

// PhasePortrait plots axis xAxis against axis yAxis of particle idx over the
// recorded snapshots, for example AxisX against AxisVX.
func PhasePortrait(states []dynamo.Snapshot, idx, xAxis, yAxis int) *PhasePortrait2D {
	if len(states) == 0 || idx < 0 || idx >= states[0].State.Len() {
		return nil
	}
	if xAxis < 0 || xAxis >= dynamo.FieldsPerParticle || yAxis < 0 || yAxis >= dynamo.FieldsPerParticle {
		return nil
	}

	base := idx * dynamo.FieldsPerParticle
	portrait := &PhasePortrait2D{
		XIndex: base + xAxis,
		YIndex: base + yAxis,
		Points: make([]struct{ X, Y float64 }, 0, len(states)),
	}

	for _, s := range states {
		if portrait.YIndex >= len(s.State) || portrait.XIndex >= len(s.State) {
			break
		}
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: s.State[portrait.XIndex],
			Y: s.State[portrait.YIndex],
		})
	}

	return portrait
}

// PhasePortraitToASCII draws the portrait on a width×height character grid
// scaled to the data with 10% padding. Zero axes are drawn when they fall
// inside the plot.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	minX, maxX := paddedRange(xs)
	minY, maxY := paddedRange(ys)

	col := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/(maxY-minY)*float64(height-1)) }

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range grid[r] {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func paddedRange(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.1*span, hi + 0.1*span
}
