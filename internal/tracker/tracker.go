package tracker

import (
	"fmt"
	"math"
)

// arrivalSlack is the relative rounding tolerance of the arrival check.
// Repeated capped steps accumulate float error, so a position can sit a few
// ULP more than maxStep from the target on the step where it should arrive;
// without slack that position takes one extra capped step and, under the
// snap policy, never lands exactly on the target.
const arrivalSlack = 1e-12

// Step advances current one rate-limited step toward target. The result never
// moves more than maxStep from current (up to rounding slack) and never
// overshoots the target.
//
// Once current is within maxStep of target the behavior depends on snap:
// with snap the result is exactly target, without it current is returned
// unchanged and the position holds short of the target. The hold policy
// avoids residual micro-jitter on roles where landing exactly on the target
// is not required.
func Step(current, target, maxStep float64, snap bool) float64 {
	err := current - target
	slack := arrivalSlack * math.Max(math.Abs(current), math.Abs(target))
	if math.Abs(err) > maxStep+slack {
		return current - math.Copysign(maxStep, err)
	}
	if snap {
		return target
	}
	return current
}

// Tracker is the per-role rate limiter. The step budget is derived once from
// the configured maximum rate and the model time step and stays constant for
// the lifetime of a run.
type Tracker struct {
	role    Role
	maxStep float64
	snap    bool
}

// New builds a Tracker for one role, failing fast on invalid configuration.
func New(role Role, cfg RoleConfig, dt float64) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("role %s: %w", role, err)
	}
	if isBad(dt) || dt <= 0 {
		return nil, fmt.Errorf("role %s: %w: got %v", role, ErrInvalidTimeStep, dt)
	}
	return &Tracker{
		role:    role,
		maxStep: cfg.MaxRate * dt,
		snap:    cfg.SnapOnArrival,
	}, nil
}

// Next returns the position for the next step.
func (t *Tracker) Next(current, target float64) float64 {
	return Step(current, target, t.maxStep, t.snap)
}

// MaxStep returns the per-step movement budget in position units.
func (t *Tracker) MaxStep() float64 { return t.maxStep }

// Role returns the role this tracker was built for.
func (t *Tracker) Role() Role { return t.role }

// Snaps reports whether the tracker lands exactly on the target once within
// one step of it.
func (t *Tracker) Snaps() bool { return t.snap }

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
