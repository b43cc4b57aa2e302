// Package channel provides the shared workspace used to pass operator
// targets between the two role callbacks.
package channel

import (
	"sync"

	"github.com/san-kum/offsetctl/internal/tracker"
)

// ControlChannel holds the latest operator target per role. It replaces the
// host-provided cross-role workspace with an explicit object handed to both
// role instances at construction.
//
// Ordering contract: within one simulation step the producer role (the one
// polling the control surface) writes before any consumer role reads. Each
// role has a single writer. The mutex exists only because the control surface
// feeds targets from its own goroutine; the step loop itself is sequential.
type ControlChannel struct {
	mu      sync.Mutex
	targets map[tracker.Role]float64
}

// New creates a ControlChannel with every role target at its initial value.
func New(initial map[tracker.Role]float64) *ControlChannel {
	targets := make(map[tracker.Role]float64, len(initial))
	for role, v := range initial {
		targets[role] = v
	}
	return &ControlChannel{targets: targets}
}

// SetTarget records a new operator target for role, in slider units.
func (c *ControlChannel) SetTarget(role tracker.Role, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets[role] = value
}

// Target returns the last recorded target for role. Absent any operator
// input it keeps returning the initial value.
func (c *ControlChannel) Target(role tracker.Role) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targets[role]
}

// Snapshot returns a copy of all current targets.
func (c *ControlChannel) Snapshot() map[tracker.Role]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[tracker.Role]float64, len(c.targets))
	for role, v := range c.targets {
		out[role] = v
	}
	return out
}
