// Package analysis turns recorded gas states into distributions and
// trajectories.
//
//   - [Speeds] and [Histogram]: the speed distribution of one snapshot
//   - [MaxwellBoltzmann2D]: the 2D equilibrium speed density to compare against
//   - [Track] and [XSeries]: the path of a single particle over time
//   - [PhasePortrait]: one particle's coordinate against its velocity
//
// # Equilibrium check
//
// After many collisions the speed histogram of a hard-disc gas relaxes to
// the 2D Maxwell–Boltzmann density whose scale follows from the mean speed:
//
//	speeds := analysis.Speeds(final.State)
//	hist := analysis.Histogram(speeds, 30)
//	mean := analysis.Mean(speeds)
//	for i, c := range hist.Centers() {
//	    fmt.Println(c, hist.Density[i], analysis.MaxwellBoltzmann2D(c, mean))
//	}
package analysis
