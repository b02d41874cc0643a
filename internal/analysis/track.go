package analysis

import "github.com/san-kum/hardgas/internal/dynamo"

// Track is the recorded path of one particle.
type Track struct {
	Particle int
	Times    []float64
	Points   []dynamo.Vec2
}

// TrackOf extracts particle idx from every snapshot. It returns nil when idx
// is out of range for the first snapshot.
func TrackOf(states []dynamo.Snapshot, idx int) *Track {
	if len(states) == 0 || idx < 0 || idx >= states[0].State.Len() {
		return nil
	}

	tr := &Track{
		Particle: idx,
		Times:    make([]float64, 0, len(states)),
		Points:   make([]dynamo.Vec2, 0, len(states)),
	}
	for _, s := range states {
		if idx >= s.State.Len() {
			break
		}
		tr.Times = append(tr.Times, s.Time)
		tr.Points = append(tr.Points, s.State.Position(idx))
	}
	return tr
}

// Tracks returns the tracks of the first k particles.
func Tracks(states []dynamo.Snapshot, k int) []*Track {
	if len(states) == 0 {
		return nil
	}
	k = min(k, states[0].State.Len())
	out := make([]*Track, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, TrackOf(states, i))
	}
	return out
}

// XSeries is the x coordinate of particle idx over time.
func XSeries(states []dynamo.Snapshot, idx int) (times, xs []float64) {
	tr := TrackOf(states, idx)
	if tr == nil {
		return nil, nil
	}
	xs = make([]float64, len(tr.Points))
	for i, p := range tr.Points {
		xs[i] = p.X
	}
	return tr.Times, xs
}
