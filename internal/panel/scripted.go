package panel

import (
	"sort"
	"time"

	"github.com/san-kum/offsetctl/internal/tracker"
)

// Move is one scheduled slider change for a Scripted surface.
type Move struct {
	At    float64 `yaml:"at"`
	Role  string  `yaml:"role"`
	Value float64 `yaml:"value"`
}

// Scripted replays a fixed schedule of slider moves against simulated time.
// It is the surface used by headless runs and tests: deterministic, no
// operator in the loop.
type Scripted struct {
	moves   []scriptedMove
	next    int
	abortAt float64
	closed  bool
}

type scriptedMove struct {
	at    float64
	event Event
}

// NewScripted builds a scripted surface from a schedule. Moves are replayed
// in time order regardless of schedule order.
func NewScripted(moves []Move) (*Scripted, error) {
	parsed := make([]scriptedMove, 0, len(moves))
	for _, m := range moves {
		role, err := tracker.ParseRole(m.Role)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, scriptedMove{
			at:    m.At,
			event: Event{Role: role, Value: m.Value},
		})
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].at < parsed[j].at })
	return &Scripted{moves: parsed, abortAt: -1}, nil
}

// AbortAt schedules an operator abort at the given simulated time,
// exercising the same hard-stop path an interactive close takes.
func (s *Scripted) AbortAt(simTime float64) {
	s.abortAt = simTime
}

// Poll returns the next due move, (nil, nil) when nothing is due, or
// ErrAborted once the scheduled abort time passes. The timeout is accepted
// for interface compatibility; a scripted surface never waits.
func (s *Scripted) Poll(simTime float64, timeout time.Duration) (*Event, error) {
	if s.closed {
		return nil, ErrAborted
	}
	if s.abortAt >= 0 && simTime >= s.abortAt {
		return nil, ErrAborted
	}
	if s.next < len(s.moves) && s.moves[s.next].at <= simTime {
		ev := s.moves[s.next].event
		s.next++
		return &ev, nil
	}
	return nil, nil
}

// Close marks the surface closed. Subsequent polls report an abort.
func (s *Scripted) Close() error {
	s.closed = true
	return nil
}
