// Package harness drives the host plugin without the real simulation host.
// It reproduces the host's per-step callback cadence (one invocation per
// role per step, declared order, optional solver re-invocations) so runs can
// be scripted, observed and regression-tested standalone.
package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/offsetctl/internal/config"
	"github.com/san-kum/offsetctl/internal/host"
	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/tracker"
)

// Metric accumulates a scalar over a run, in the Observe/Value/Reset style.
type Metric interface {
	Name() string
	Observe(role tracker.Role, position, target, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every role advance.
type Observer interface {
	OnStep(role tracker.Role, position, target, t float64)
}

// Result is the recorded time series of one standalone run.
type Result struct {
	Times      []float64
	Positions  map[tracker.Role][]float64
	Targets    map[tracker.Role][]float64
	Metrics    map[string]float64
	StepsTaken int
	Aborted    bool
}

// Harness owns the plugin, the per-role positions, and the step clock.
type Harness struct {
	cfg       *config.Config
	plugin    *host.Plugin
	order     []tracker.Role
	roleCfg   map[tracker.Role]tracker.RoleConfig
	positions map[tracker.Role]float64
	metrics   []Metric
	observers []Observer

	// InnerIterations re-invokes each role with NewStep=false after the real
	// step, mimicking a host solver iterating within one time step.
	InnerIterations int

	t      float64
	result *Result
}

// New validates the configuration, builds the plugin, and initializes every
// role in declared order.
func New(cfg *config.Config, surface panel.Surface) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}
	order, err := cfg.ParsedOrder()
	if err != nil {
		return nil, err
	}
	roleCfg, err := cfg.RoleConfigs()
	if err != nil {
		return nil, err
	}

	plugin, err := host.New(host.Options{
		StartTime:   cfg.StartTime,
		PollTimeout: cfg.PollTimeout(),
		Order:       order,
		Roles:       roleCfg,
	}, surface)
	if err != nil {
		return nil, err
	}

	positions := make(map[tracker.Role]float64, len(order))
	for _, role := range order {
		if err := plugin.OnInitialize(role, cfg.Dt); err != nil {
			return nil, err
		}
		rc := roleCfg[role]
		positions[role] = rc.ToPosition(rc.Min)
	}

	h := &Harness{
		cfg:       cfg,
		plugin:    plugin,
		order:     order,
		roleCfg:   roleCfg,
		positions: positions,
	}
	h.resetResult()
	return h, nil
}

func (h *Harness) AddMetric(m Metric)     { h.metrics = append(h.metrics, m) }
func (h *Harness) AddObserver(o Observer) { h.observers = append(h.observers, o) }

// Plugin exposes the underlying boundary object, e.g. for pushing targets
// from an interactive front end.
func (h *Harness) Plugin() *host.Plugin { return h.plugin }

// Time returns the current simulated time.
func (h *Harness) Time() float64 { return h.t }

// Position returns the current position of a role in position units.
func (h *Harness) Position(role tracker.Role) float64 { return h.positions[role] }

// Target returns the current target of a role in position units.
func (h *Harness) Target(role tracker.Role) float64 {
	return h.roleCfg[role].ToPosition(h.plugin.Targets().Target(role))
}

// Roles returns the declared invocation order.
func (h *Harness) Roles() []tracker.Role { return h.order }

func (h *Harness) resetResult() {
	h.result = &Result{
		Positions: make(map[tracker.Role][]float64, len(h.order)),
		Targets:   make(map[tracker.Role][]float64, len(h.order)),
		Metrics:   make(map[string]float64),
	}
}

// StepOnce advances the whole model by one time step: every role in declared
// order, then any configured solver re-invocations. The recorded sample
// carries the post-step positions.
func (h *Harness) StepOnce() error {
	h.t += h.cfg.Dt

	for _, role := range h.order {
		pos, err := h.plugin.OnStep(host.StepInfo{
			Role:     role,
			NewStep:  true,
			Time:     h.t,
			Position: h.positions[role],
		})
		if err != nil {
			return err
		}
		h.positions[role] = pos

		target := h.Target(role)
		for _, m := range h.metrics {
			m.Observe(role, pos, target, h.t)
		}
		for _, o := range h.observers {
			o.OnStep(role, pos, target, h.t)
		}
	}

	for i := 0; i < h.InnerIterations; i++ {
		for _, role := range h.order {
			pos, err := h.plugin.OnStep(host.StepInfo{
				Role:     role,
				NewStep:  false,
				Time:     h.t,
				Position: h.positions[role],
			})
			if err != nil {
				return err
			}
			h.positions[role] = pos
		}
	}

	h.record()
	return nil
}

func (h *Harness) record() {
	h.result.Times = append(h.result.Times, h.t)
	for _, role := range h.order {
		h.result.Positions[role] = append(h.result.Positions[role], h.positions[role])
		h.result.Targets[role] = append(h.result.Targets[role], h.Target(role))
	}
	h.result.StepsTaken++
}

// Run drives the configured duration to completion. An operator abort stops
// the run and is reported on the result, not as a failure; the returned
// error still satisfies errors.Is(err, host.ErrUserAbort) so callers can
// distinguish it from a fault.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	for _, m := range h.metrics {
		m.Reset()
	}

	steps := int(h.cfg.Duration / h.cfg.Dt)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			h.finish()
			return h.result, ctx.Err()
		default:
		}

		if err := h.StepOnce(); err != nil {
			h.finish()
			if errors.Is(err, host.ErrUserAbort) {
				h.result.Aborted = true
			}
			return h.result, err
		}
	}

	return h.result, h.finish()
}

// Finish finalizes the plugin and returns the recorded result. Interactive
// front ends drive StepOnce themselves and call Finish when the operator is
// done; calling it after Run is harmless.
func (h *Harness) Finish() (*Result, error) {
	return h.result, h.finish()
}

// finish flushes the metric values and finalizes every role, returning the
// first finalize error.
func (h *Harness) finish() error {
	for _, m := range h.metrics {
		h.result.Metrics[m.Name()] = m.Value()
	}
	var first error
	for _, role := range h.order {
		if err := h.plugin.OnFinalize(role); err != nil && first == nil {
			first = err
		}
	}
	return first
}
