package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/offsetctl/internal/tracker"
)

// SettleTime reports the first time one role came within tolerance of its
// target and stayed there for the rest of the run. A later excursion resets
// the metric; if the role was still outside tolerance at the last
// observation the run end time is reported.
type SettleTime struct {
	role      tracker.Role
	tolerance float64
	settled   float64
	inBand    bool
	lastT     float64
}

func NewSettleTime(role tracker.Role, tolerance float64) *SettleTime {
	return &SettleTime{role: role, tolerance: tolerance}
}

func (s *SettleTime) Name() string {
	return fmt.Sprintf("settle_time_%s", s.role)
}

func (s *SettleTime) Observe(role tracker.Role, position, target, t float64) {
	if role != s.role {
		return
	}
	s.lastT = t
	if math.Abs(position-target) > s.tolerance {
		s.inBand = false
		return
	}
	if !s.inBand {
		s.inBand = true
		s.settled = t
	}
}

func (s *SettleTime) Value() float64 {
	if !s.inBand {
		return s.lastT
	}
	return s.settled
}

func (s *SettleTime) Reset() {
	s.settled = 0
	s.inBand = false
	s.lastT = 0
}
