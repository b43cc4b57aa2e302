package host

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/tracker"
)

func testOptions() Options {
	return Options{
		StartTime:   1.0,
		PollTimeout: 10 * time.Millisecond,
		Order:       []tracker.Role{tracker.RoleCam, tracker.RoleSupport},
		Roles: map[tracker.Role]tracker.RoleConfig{
			tracker.RoleCam: {
				Label: "cam offset (mm)", Min: 0, Max: 150, Resolution: 1,
				Scale: 0.001, MaxRate: 0.02, SnapOnArrival: true,
			},
			tracker.RoleSupport: {
				Label: "support offset (m)", Min: 0, Max: 3, Resolution: 0.01,
				Scale: 1, MaxRate: 0.30, SnapOnArrival: false,
			},
		},
	}
}

func newTestPlugin(t *testing.T, moves []panel.Move) (*Plugin, *panel.Scripted) {
	t.Helper()
	surface, err := panel.NewScripted(moves)
	if err != nil {
		t.Fatalf("surface: %v", err)
	}
	p, err := New(testOptions(), surface)
	if err != nil {
		t.Fatalf("plugin: %v", err)
	}
	for _, role := range []tracker.Role{tracker.RoleCam, tracker.RoleSupport} {
		if err := p.OnInitialize(role, 0.02); err != nil {
			t.Fatalf("initialize %s: %v", role, err)
		}
	}
	return p, surface
}

// step advances both roles through one new time step in declared order.
func step(t *testing.T, p *Plugin, simTime, camPos, supPos float64) (float64, float64) {
	t.Helper()
	newCam, err := p.OnStep(StepInfo{Role: tracker.RoleCam, NewStep: true, Time: simTime, Position: camPos})
	if err != nil {
		t.Fatalf("cam step at t=%v: %v", simTime, err)
	}
	newSup, err := p.OnStep(StepInfo{Role: tracker.RoleSupport, NewStep: true, Time: simTime, Position: supPos})
	if err != nil {
		t.Fatalf("support step at t=%v: %v", simTime, err)
	}
	return newCam, newSup
}

func TestOnStepBeforeActivation(t *testing.T) {
	p, _ := newTestPlugin(t, []panel.Move{{At: 0, Role: "cam", Value: 100}})

	cam, sup := step(t, p, 0.02, 0.0, 0.0)
	if cam != 0.0 || sup != 0.0 {
		t.Errorf("positions must be untouched before start time, got cam=%v sup=%v", cam, sup)
	}
}

func TestOnStepTracksTarget(t *testing.T) {
	p, _ := newTestPlugin(t, []panel.Move{{At: 0, Role: "cam", Value: 50}})

	// deliver the slider event and pass the activation gate
	step(t, p, 0.5, 0.0, 0.0)

	cam, _ := step(t, p, 1.0, 0.0, 0.0)
	if math.Abs(cam-0.0004) > 1e-15 {
		t.Errorf("expected one rate-limited step of 0.0004, got %v", cam)
	}
}

func TestOnStepScalesSliderUnits(t *testing.T) {
	p, _ := newTestPlugin(t, []panel.Move{{At: 0, Role: "cam", Value: 50}})
	step(t, p, 0.5, 0.0, 0.0)

	// run cam to convergence: 50 mm -> 0.050 m
	want := testOptions().Roles[tracker.RoleCam].ToPosition(50)
	pos := 0.0
	for i := 0; i < 130; i++ {
		pos, _ = step(t, p, 1.0+float64(i)*0.02, pos, 0.0)
	}
	if pos != want {
		t.Errorf("expected cam to arrive at %v m, got %v", want, pos)
	}
}

func TestSupportHoldsShortOfTarget(t *testing.T) {
	p, _ := newTestPlugin(t, []panel.Move{{At: 0, Role: "support", Value: 1.5005}})
	step(t, p, 0.5, 0.0, 0.0)

	_, sup := step(t, p, 1.0, 0.0, 1.5)
	if sup != 1.5 {
		t.Errorf("support within one step of target must hold at 1.5, got %v", sup)
	}
}

func TestSolverReinvocationIsNoop(t *testing.T) {
	p, _ := newTestPlugin(t, []panel.Move{{At: 0, Role: "cam", Value: 50}})
	step(t, p, 0.5, 0.0, 0.0)
	step(t, p, 1.0, 0.0, 0.0)

	pos, err := p.OnStep(StepInfo{Role: tracker.RoleCam, NewStep: false, Time: 1.0, Position: 0.0004})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != 0.0004 {
		t.Errorf("re-invocation must return position unchanged, got %v", pos)
	}
}

func TestOrderViolation(t *testing.T) {
	p, _ := newTestPlugin(t, nil)

	_, err := p.OnStep(StepInfo{Role: tracker.RoleSupport, NewStep: true, Time: 0.02, Position: 0})
	if !errors.Is(err, ErrOrderViolation) {
		t.Errorf("expected ErrOrderViolation, got %v", err)
	}
}

func TestUserAbort(t *testing.T) {
	surface, _ := panel.NewScripted(nil)
	surface.AbortAt(2.0)

	p, err := New(testOptions(), surface)
	if err != nil {
		t.Fatalf("plugin: %v", err)
	}
	for _, role := range []tracker.Role{tracker.RoleCam, tracker.RoleSupport} {
		if err := p.OnInitialize(role, 0.02); err != nil {
			t.Fatalf("initialize: %v", err)
		}
	}

	if _, err := p.OnStep(StepInfo{Role: tracker.RoleCam, NewStep: true, Time: 1.0, Position: 0}); err != nil {
		t.Fatalf("step before abort: %v", err)
	}

	_, err = p.OnStep(StepInfo{Role: tracker.RoleCam, NewStep: true, Time: 2.0, Position: 0})
	if !errors.Is(err, ErrUserAbort) {
		t.Errorf("expected ErrUserAbort, got %v", err)
	}
}

func TestUninitializedRole(t *testing.T) {
	surface, _ := panel.NewScripted(nil)
	p, err := New(testOptions(), surface)
	if err != nil {
		t.Fatalf("plugin: %v", err)
	}

	_, err = p.OnStep(StepInfo{Role: tracker.RoleCam, NewStep: true, Time: 0.02})
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestInitializeUnknownRole(t *testing.T) {
	opts := testOptions()
	delete(opts.Roles, tracker.RoleSupport)
	surface, _ := panel.NewScripted(nil)
	p, err := New(opts, surface)
	if err != nil {
		t.Fatalf("plugin: %v", err)
	}

	if err := p.OnInitialize(tracker.RoleSupport, 0.02); !errors.Is(err, tracker.ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestInitializeInvalidRate(t *testing.T) {
	opts := testOptions()
	rc := opts.Roles[tracker.RoleCam]
	rc.MaxRate = math.NaN()
	opts.Roles[tracker.RoleCam] = rc

	surface, _ := panel.NewScripted(nil)
	p, err := New(opts, surface)
	if err != nil {
		t.Fatalf("plugin: %v", err)
	}

	if err := p.OnInitialize(tracker.RoleCam, 0.02); !errors.Is(err, tracker.ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	p, _ := newTestPlugin(t, nil)

	if err := p.OnFinalize(tracker.RoleCam); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if err := p.OnFinalize(tracker.RoleCam); err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}
	if err := p.OnFinalize(tracker.RoleSupport); err != nil {
		t.Fatalf("finalize other role failed: %v", err)
	}
}

func TestTargetHeldWithoutNewInput(t *testing.T) {
	p, _ := newTestPlugin(t, []panel.Move{{At: 0, Role: "cam", Value: 10}})
	step(t, p, 0.5, 0.0, 0.0)

	// no further events: target must hold at 10 mm = 0.010 m
	want := testOptions().Roles[tracker.RoleCam].ToPosition(10)
	pos := 0.0
	for i := 0; i < 30; i++ {
		pos, _ = step(t, p, 1.0+float64(i)*0.02, pos, 0.0)
	}
	if pos != want {
		t.Errorf("expected cam to settle at held target %v, got %v", want, pos)
	}
}
