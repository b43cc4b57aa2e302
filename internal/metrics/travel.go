package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/offsetctl/internal/tracker"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Travel accumulates the total distance one role moved over a run.
type Travel struct {
	role  tracker.Role
	prev  float64
	first bool
	steps []float64
}

func NewTravel(role tracker.Role) *Travel {
	return &Travel{role: role, first: true}
}

func (m *Travel) Name() string {
	return fmt.Sprintf("travel_%s", m.role)
}

func (m *Travel) Observe(role tracker.Role, position, target, t float64) {
	if role != m.role {
		return
	}
	if m.first {
		m.prev = position
		m.first = false
		return
	}
	m.steps = append(m.steps, math.Abs(position-m.prev))
	m.prev = position
}

func (m *Travel) Value() float64 {
	return floats.Sum(m.steps)
}

// MeanStep returns the average per-step movement, moving steps only.
func (m *Travel) MeanStep() float64 {
	moving := make([]float64, 0, len(m.steps))
	for _, s := range m.steps {
		if s > 0 {
			moving = append(moving, s)
		}
	}
	if len(moving) == 0 {
		return 0
	}
	return stat.Mean(moving, nil)
}

func (m *Travel) Reset() {
	m.first = true
	m.steps = m.steps[:0]
}
