// Package physics implements the hard-sphere gas engine.
//
// A [Box] owns a fixed population of equal-mass [Particle] discs inside a
// W×H rectangle. Each call to [Box.Step] advances the gas by one leapfrog
// step:
//
//  1. half kick with the (zero) external field
//  2. drift
//  3. wall reflection, accumulating bounce count and wall impulse
//  4. one sequential i<j pass of elastic pair collisions
//  5. second half kick
//
// The wall accumulators are read and reset by the caller between sampling
// windows; see [Box.BounceCount], [Box.ImpulseTotal] and
// [Box.ResetAccumulators].
//
// # Determinism
//
// Given the same seed and parameters, [Box.InitializeRandom] followed by any
// number of steps produces bit-identical trajectories. Per-particle phases
// may be split across goroutines for large populations, but the pairwise
// pass is always sequential in index order.
//
// # Thread Safety
//
// A Box is owned by a single goroutine. Nothing may read or mutate it while
// Step is running.
package physics
