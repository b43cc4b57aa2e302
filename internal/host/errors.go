package host

import "errors"

// Domain errors for the host boundary.
var (
	// ErrUserAbort indicates the operator requested termination at the
	// control surface. It is an intentional hard stop of the whole run,
	// never retried and never reported as a fault.
	ErrUserAbort = errors.New("host: run aborted by operator")

	// ErrOrderViolation indicates the host invoked a consumer role before
	// the surface-owning role within the same time step.
	ErrOrderViolation = errors.New("host: role invoked out of declared order")

	// ErrNotInitialized indicates OnStep or OnFinalize for a role that never
	// saw OnInitialize.
	ErrNotInitialized = errors.New("host: role not initialized")
)
