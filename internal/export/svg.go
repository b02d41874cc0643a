package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/hardgas/internal/analysis"
	"github.com/san-kum/hardgas/internal/dynamo"
)

// Stroke colours cycled over tracks.
var palette = []string{
	"#00ff00", "#ff6b6b", "#4dabf7", "#ffd43b", "#cc5de8",
	"#20c997", "#ff922b", "#f06595", "#94d82d", "#74c0fc",
}

// frame returns the pixel size of a w×h box whose longer side is size
// pixels, and the pixels-per-unit scale.
func frame(w, h float64, size int) (int, int, float64) {
	scale := float64(size) / math.Max(w, h)
	return int(math.Round(w * scale)), int(math.Round(h * scale)), scale
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="0" y="0" width="%d" height="%d" fill="none" stroke="#555555" stroke-width="1"/>
`, width, height, width, height, width, height)
}

// TrajectoriesToSVG draws each track as a polyline inside the walls of a
// w×h box. The view is the box itself, so tracks from different runs line
// up. Tracks with fewer than two points are skipped.
func TrajectoriesToSVG(tracks []*analysis.Track, w, h float64, size int) string {
	width, height, scale := frame(w, h, size)

	var sb strings.Builder
	header(&sb, width, height)

	for i, tr := range tracks {
		if tr == nil || len(tr.Points) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, palette[i%len(palette)])
		for j, p := range tr.Points {
			x := p.X * scale
			y := float64(height) - p.Y*scale
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// SnapshotToSVG draws every particle of state as a disc. Discs smaller than
// a pixel are drawn with a one pixel radius.
func SnapshotToSVG(state dynamo.State, w, h, radius float64, size int) string {
	width, height, scale := frame(w, h, size)
	r := math.Max(radius*scale, 1)

	var sb strings.Builder
	header(&sb, width, height)

	sb.WriteString("<g fill=\"#00ff00\">\n")
	for i := 0; i < state.Len(); i++ {
		p := state.Position(i)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", p.X*scale, float64(height)-p.Y*scale, r)
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
