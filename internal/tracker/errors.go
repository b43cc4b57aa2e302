package tracker

import "errors"

// Domain errors for tracker configuration. Configuration problems fail fast
// at initialization; they are never silently defaulted.
var (
	// ErrUnknownRole indicates a role name the tracker does not recognize.
	ErrUnknownRole = errors.New("tracker: unknown role")

	// ErrInvalidRate indicates a negative or non-finite maximum rate.
	ErrInvalidRate = errors.New("tracker: max rate must be finite and non-negative")

	// ErrInvalidBounds indicates an inverted or non-finite slider range.
	ErrInvalidBounds = errors.New("tracker: slider bounds invalid (min must be below max)")

	// ErrInvalidResolution indicates a non-positive slider resolution.
	ErrInvalidResolution = errors.New("tracker: slider resolution must be positive")

	// ErrInvalidTimeStep indicates a non-positive model time step.
	ErrInvalidTimeStep = errors.New("tracker: time step must be positive")
)
