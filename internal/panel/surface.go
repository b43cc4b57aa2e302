// Package panel defines the operator control surface boundary: one
// adjustable scalar per role, emitting an event whenever the operator moves
// it, otherwise silent.
package panel

import (
	"errors"
	"time"

	"github.com/san-kum/offsetctl/internal/tracker"
)

// ErrAborted indicates the operator closed the control surface or issued an
// exit command. It terminates the whole run immediately and is an
// intentional stop, not a fault.
var ErrAborted = errors.New("panel: operator aborted the run")

// Event is one operator input: a new slider value for a role, in slider
// engineering units.
type Event struct {
	Role  tracker.Role
	Value float64
}

// Surface is the operator-facing control panel.
//
// Poll returns the next pending event, or (nil, nil) when no input arrived
// within the timeout. It always returns within the timeout, so a simulation
// step polling it completes in bounded time. simTime is the current
// simulated time; interactive surfaces ignore it.
//
// Close releases the surface. It is idempotent and safe to call on an
// already closed surface.
type Surface interface {
	Poll(simTime float64, timeout time.Duration) (*Event, error)
	Close() error
}
