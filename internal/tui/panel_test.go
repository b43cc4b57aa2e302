package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/tracker"
)

func TestPanelPollDeliversEvent(t *testing.T) {
	p := NewPanel()
	p.Push(panel.Event{Role: tracker.RoleCam, Value: 42})

	ev, err := p.Poll(0, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev == nil || ev.Role != tracker.RoleCam || ev.Value != 42 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestPanelPollTimeoutIsBounded(t *testing.T) {
	p := NewPanel()

	start := time.Now()
	ev, err := p.Poll(0, 5*time.Millisecond)
	elapsed := time.Since(start)

	if err != nil || ev != nil {
		t.Fatalf("expected quiet timeout, got ev=%v err=%v", ev, err)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("poll did not return in bounded time: %v", elapsed)
	}
}

func TestPanelAbort(t *testing.T) {
	p := NewPanel()
	p.Abort()

	_, err := p.Poll(0, time.Millisecond)
	if !errors.Is(err, panel.ErrAborted) {
		t.Errorf("expected ErrAborted, got %v", err)
	}
}

func TestPanelCloseIdempotent(t *testing.T) {
	p := NewPanel()

	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if _, err := p.Poll(0, time.Millisecond); !errors.Is(err, panel.ErrAborted) {
		t.Errorf("expected ErrAborted after close, got %v", err)
	}
}

func TestPanelDropsWhenFull(t *testing.T) {
	p := NewPanel()

	for i := 0; i < 200; i++ {
		p.Push(panel.Event{Role: tracker.RoleSupport, Value: float64(i)})
	}

	// must not have blocked; first queued event is still the oldest
	ev, err := p.Poll(0, time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev == nil || ev.Value != 0 {
		t.Fatalf("expected oldest event, got %+v", ev)
	}
}
