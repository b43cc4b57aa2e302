package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/offsetctl/internal/harness"
	"github.com/san-kum/offsetctl/internal/host"
	"github.com/san-kum/offsetctl/internal/panel"
	"github.com/san-kum/offsetctl/internal/tracker"
)

const (
	sliderWidth     = 30
	historyCapacity = 600
	frameRate       = 30
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	filledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	trackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	abortedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

type TickMsg time.Time

// Model drives the harness from the terminal: one slider per role, live
// position readout, and a history graph for the selected role.
type Model struct {
	h            *harness.Harness
	surface      *Panel
	roles        []tracker.Role
	cfgs         map[tracker.Role]tracker.RoleConfig
	sliders      map[tracker.Role]float64
	selected     int
	running      bool
	done         bool
	aborted      bool
	err          error
	history      map[tracker.Role][]float64
	duration     float64
	stepsPerTick int
	width        int
}

// NewModel wires a harness and its interactive surface into a bubbletea
// model. Slider values start at each role's minimum, matching the plugin's
// initial targets.
func NewModel(h *harness.Harness, surface *Panel, cfgs map[tracker.Role]tracker.RoleConfig, dt, duration float64) Model {
	sliders := make(map[tracker.Role]float64, len(h.Roles()))
	history := make(map[tracker.Role][]float64, len(h.Roles()))
	for _, role := range h.Roles() {
		sliders[role] = cfgs[role].Min
		history[role] = make([]float64, 0, historyCapacity)
	}

	stepsPerTick := int(1.0 / (dt * frameRate))
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}

	return Model{
		h:            h,
		surface:      surface,
		roles:        h.Roles(),
		cfgs:         cfgs,
		sliders:      sliders,
		running:      true,
		history:      history,
		duration:     duration,
		stepsPerTick: stepsPerTick,
		width:        80,
	}
}

// Aborted reports whether the operator hard-stopped the run.
func (m Model) Aborted() bool { return m.aborted }

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case TickMsg:
		return m.advance()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.surface.Abort()
		m.aborted = true
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "tab":
		m.selected = (m.selected + 1) % len(m.roles)
	case "up", "k", "right", "l":
		m.nudge(1)
	case "down", "j", "left", "h":
		m.nudge(-1)
	case "pgup":
		m.nudge(10)
	case "pgdown":
		m.nudge(-10)
	}
	return m, nil
}

// nudge moves the selected slider by n resolution units, clamped to the
// role's bounds, and pushes the new value to the plugin.
func (m *Model) nudge(n int) {
	role := m.roles[m.selected]
	rc := m.cfgs[role]

	v := m.sliders[role] + float64(n)*rc.Resolution
	if v < rc.Min {
		v = rc.Min
	}
	if v > rc.Max {
		v = rc.Max
	}
	m.sliders[role] = v
	m.surface.Push(panel.Event{Role: role, Value: v})
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	if !m.running {
		return m, tick()
	}

	for i := 0; i < m.stepsPerTick; i++ {
		if m.h.Time() >= m.duration {
			m.done = true
			break
		}
		if err := m.h.StepOnce(); err != nil {
			m.done = true
			if errors.Is(err, host.ErrUserAbort) {
				m.aborted = true
			} else {
				m.err = err
			}
			return m, tea.Quit
		}
	}

	for _, role := range m.roles {
		h := append(m.history[role], m.h.Position(role))
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[role] = h
	}

	if m.done {
		return m, tea.Quit
	}
	return m, tick()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("offsetctl live"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("sim time"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%8.2f s / %.0f s", m.h.Time(), m.duration)))
	b.WriteString("\n\n")

	for i, role := range m.roles {
		b.WriteString(m.renderSlider(role, i == m.selected))
		b.WriteString("\n")
	}

	sel := m.roles[m.selected]
	if len(m.history[sel]) > 1 {
		graph := asciigraph.Plot(m.history[sel],
			asciigraph.Height(8),
			asciigraph.Width(min(m.width-10, 70)),
			asciigraph.Caption(fmt.Sprintf("%s position", sel)),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.aborted {
		b.WriteString(abortedStyle.Render("aborted by operator"))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(abortedStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("tab: switch slider  ↑/↓: adjust  pgup/pgdn: coarse  space: pause  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderSlider(role tracker.Role, active bool) string {
	rc := m.cfgs[role]
	v := m.sliders[role]

	frac := (v - rc.Min) / (rc.Max - rc.Min)
	filled := int(frac * sliderWidth)
	if filled > sliderWidth {
		filled = sliderWidth
	}

	bar := filledStyle.Render(strings.Repeat("█", filled)) +
		trackStyle.Render(strings.Repeat("░", sliderWidth-filled))

	label := rc.Label
	style := labelStyle
	if active {
		style = activeStyle.Width(20)
	}

	pos := m.h.Position(role)
	tgt := m.h.Target(role)

	return fmt.Sprintf("%s %s %s",
		style.Render(label),
		bar,
		valueStyle.Render(fmt.Sprintf("%8.3f   pos %8.4f  tgt %8.4f", v, pos, tgt)))
}
