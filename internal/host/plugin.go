package host

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/offsetctl/internal/channel"
	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/tracker"
)

// StepInfo mirrors the per-step callback payload supplied by the host.
type StepInfo struct {
	Role     tracker.Role
	NewStep  bool // false when the solver re-invokes within the same step
	Time     float64
	Position float64
}

// Options is the static configuration for one run.
type Options struct {
	StartTime   float64
	PollTimeout time.Duration
	Order       []tracker.Role // per-step invocation order; first role owns the surface
	Roles       map[tracker.Role]tracker.RoleConfig
}

// Plugin is the callback object the host drives. One instance serves both
// roles; the host dispatches into it with the role of the model object being
// stepped.
type Plugin struct {
	opts     Options
	surface  panel.Surface
	targets  *channel.ControlChannel
	trackers map[tracker.Role]*tracker.Tracker

	surfaceOpen bool
	stepTime    float64
	stepSeen    map[tracker.Role]bool
	started     bool
}

// New builds a Plugin around a control surface. The control channel is
// created here and shared by both role callbacks; targets start at each
// role's slider minimum, matching the slider's initial position.
func New(opts Options, surface panel.Surface) (*Plugin, error) {
	if len(opts.Order) == 0 {
		return nil, fmt.Errorf("host: role order must name at least the surface owner")
	}
	if opts.PollTimeout <= 0 {
		return nil, fmt.Errorf("host: poll timeout must be positive, got %v", opts.PollTimeout)
	}
	if math.IsNaN(opts.StartTime) || opts.StartTime < 0 {
		return nil, fmt.Errorf("host: start time must be finite and non-negative, got %v", opts.StartTime)
	}

	initial := make(map[tracker.Role]float64, len(opts.Roles))
	for role, rc := range opts.Roles {
		initial[role] = rc.Min
	}

	return &Plugin{
		opts:     opts,
		surface:  surface,
		targets:  channel.New(initial),
		trackers: make(map[tracker.Role]*tracker.Tracker),
		stepSeen: make(map[tracker.Role]bool),
	}, nil
}

// Owner returns the role that polls the control surface.
func (p *Plugin) Owner() tracker.Role { return p.opts.Order[0] }

// Targets exposes the shared control channel, letting interactive front
// ends push slider values directly.
func (p *Plugin) Targets() *channel.ControlChannel { return p.targets }

// OnInitialize prepares the per-role tracker from the configured rate limit
// and the host's model time step. Invalid configuration fails here, before
// the first step. The surface is considered open once the owning role has
// initialized.
func (p *Plugin) OnInitialize(role tracker.Role, modelDt float64) error {
	rc, ok := p.opts.Roles[role]
	if !ok {
		return fmt.Errorf("%w: %s", tracker.ErrUnknownRole, role)
	}

	trk, err := tracker.New(role, rc, modelDt)
	if err != nil {
		return err
	}
	p.trackers[role] = trk

	if role == p.Owner() {
		p.surfaceOpen = true
	}
	return nil
}

// OnStep advances one role by one time step and returns the new position.
//
// Re-invocations within the same step (NewStep false) and steps before the
// activation time return the position unchanged. The surface-owning role
// polls the control surface with the bounded timeout and publishes any new
// target to the shared channel before tracking.
func (p *Plugin) OnStep(info StepInfo) (float64, error) {
	trk, ok := p.trackers[info.Role]
	if !ok {
		return info.Position, fmt.Errorf("%w: %s", ErrNotInitialized, info.Role)
	}

	if !info.NewStep {
		return info.Position, nil
	}

	if err := p.checkOrder(info); err != nil {
		return info.Position, err
	}

	if info.Role == p.Owner() {
		if err := p.pollSurface(info.Time); err != nil {
			return info.Position, err
		}
	}

	if info.Time < p.opts.StartTime {
		return info.Position, nil
	}

	rc := p.opts.Roles[info.Role]
	target := rc.ToPosition(p.targets.Target(info.Role))
	return trk.Next(info.Position, target), nil
}

// checkOrder enforces the declared invocation order within a step. A new
// step begins when the owner role arrives with a step time the plugin has
// not seen yet.
func (p *Plugin) checkOrder(info StepInfo) error {
	if !p.started || info.Time != p.stepTime {
		if info.Role != p.Owner() {
			return fmt.Errorf("%w: %s stepped at t=%v before %s",
				ErrOrderViolation, info.Role, info.Time, p.Owner())
		}
		p.started = true
		p.stepTime = info.Time
		for role := range p.stepSeen {
			delete(p.stepSeen, role)
		}
	}

	for _, role := range p.opts.Order {
		if role == info.Role {
			break
		}
		if !p.stepSeen[role] {
			return fmt.Errorf("%w: %s stepped at t=%v before %s",
				ErrOrderViolation, info.Role, info.Time, role)
		}
	}
	p.stepSeen[info.Role] = true
	return nil
}

// pollSurface performs the bounded wait for operator input. A quiet timeout
// is normal control flow; an abort terminates the run.
func (p *Plugin) pollSurface(simTime float64) error {
	ev, err := p.surface.Poll(simTime, p.opts.PollTimeout)
	if err != nil {
		if errors.Is(err, panel.ErrAborted) {
			return fmt.Errorf("%w: control surface closed", ErrUserAbort)
		}
		return err
	}
	if ev != nil {
		p.targets.SetTarget(ev.Role, ev.Value)
	}
	return nil
}

// OnFinalize releases the control surface. Safe to call for every role and
// more than once; only the first call by any role closes the surface.
func (p *Plugin) OnFinalize(role tracker.Role) error {
	if _, ok := p.trackers[role]; !ok {
		return fmt.Errorf("%w: %s", ErrNotInitialized, role)
	}
	if !p.surfaceOpen {
		return nil
	}
	p.surfaceOpen = false
	return p.surface.Close()
}
