package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a particle position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrPlacementFailed indicates random placement gave up before N
	// non-overlapping particles were accepted.
	ErrPlacementFailed = errors.New("dynamo: particle placement failed (box too dense)")

	// ErrEmptyBox indicates an operation that needs particles ran on an empty box.
	ErrEmptyBox = errors.New("dynamo: box has no particles")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
