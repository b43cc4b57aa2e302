// Package tui is the interactive control surface: a terminal slider panel
// driving the harness in real time.
package tui

import (
	"sync"
	"time"

	"github.com/san-kum/offsetctl/internal/panel"
)

// Panel bridges the bubbletea event loop and the plugin's bounded poll. Key
// handlers push slider events into a buffered channel; the plugin drains one
// event per step through Poll.
type Panel struct {
	events    chan panel.Event
	abort     chan struct{}
	abortOnce sync.Once
}

func NewPanel() *Panel {
	return &Panel{
		events: make(chan panel.Event, 64),
		abort:  make(chan struct{}),
	}
}

// Push queues an operator slider change. Drops the event if the queue is
// full; the slider's latest position is pushed again on the next change.
func (p *Panel) Push(ev panel.Event) {
	select {
	case p.events <- ev:
	default:
	}
}

// Abort signals an operator-requested hard stop.
func (p *Panel) Abort() {
	p.abortOnce.Do(func() { close(p.abort) })
}

// Poll returns one pending event, or (nil, nil) after a quiet timeout. The
// wait is always bounded by timeout so the simulation step completes in
// bounded time.
func (p *Panel) Poll(simTime float64, timeout time.Duration) (*panel.Event, error) {
	select {
	case <-p.abort:
		return nil, panel.ErrAborted
	default:
	}

	select {
	case ev := <-p.events:
		return &ev, nil
	case <-p.abort:
		return nil, panel.ErrAborted
	case <-time.After(timeout):
		return nil, nil
	}
}

// Close is idempotent; a closed panel reports an abort on further polls.
func (p *Panel) Close() error {
	p.Abort()
	return nil
}
