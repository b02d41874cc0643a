// Package dynamo provides the value types shared by the gas simulator.
//
// The package defines the primitives every other layer builds on:
//
//   - [Vec2]: immutable 2D vector with arithmetic, dot product and norm
//   - [State]: flat per-particle vector (x, y, vx, vy repeated)
//   - [Snapshot]: a [State] stamped with simulation time
//   - [SimulationError]: wraps a sentinel error with step/time context
//
// # Example
//
//	box, _ := physics.NewBox(1, 1)
//	_ = box.InitializeRandom(100, 0.001, 0.4, 45)
//	s := sim.New(box)
//	result, _ := s.Run(ctx, sim.DefaultConfig())
//
// # Thread Safety
//
// Vec2 and Snapshot values are safe to share. A [State] slice is not: callers
// that retain a snapshot handed to an observer must Clone it.
package dynamo
