// Package metrics provides run metrics for harness runs, in the
// Observe/Value/Reset style.
package metrics

import (
	"fmt"

	"github.com/san-kum/offsetctl/internal/tracker"
	"gonum.org/v1/gonum/floats"
)

// MaxStepDelta records the largest per-step movement of one role. A value
// above the role's step budget means the rate limit was violated.
type MaxStepDelta struct {
	role   tracker.Role
	prev   float64
	first  bool
	deltas []float64
}

func NewMaxStepDelta(role tracker.Role) *MaxStepDelta {
	return &MaxStepDelta{role: role, first: true}
}

func (m *MaxStepDelta) Name() string {
	return fmt.Sprintf("max_step_%s", m.role)
}

func (m *MaxStepDelta) Observe(role tracker.Role, position, target, t float64) {
	if role != m.role {
		return
	}
	if m.first {
		m.prev = position
		m.first = false
		return
	}
	delta := position - m.prev
	if delta < 0 {
		delta = -delta
	}
	m.deltas = append(m.deltas, delta)
	m.prev = position
}

func (m *MaxStepDelta) Value() float64 {
	if len(m.deltas) == 0 {
		return 0
	}
	return floats.Max(m.deltas)
}

func (m *MaxStepDelta) Reset() {
	m.first = true
	m.deltas = m.deltas[:0]
}
