// Package viz renders a live terminal view of a running articulation:
// joint position against its staged target, with batch statistics.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/artsim/internal/artic"
	"github.com/san-kum/artsim/internal/bridge"
	"github.com/san-kum/artsim/internal/config"
	"github.com/san-kum/artsim/internal/view"
)

const historyCapacity = 240

type TickMsg time.Time

// Model steps the articulation on every tick and plots joint 0 of
// instance 0.
type Model struct {
	cfg     *config.Config
	view    *view.View
	backend *bridge.Native

	t       float64
	running bool
	err     error

	posHistory []float64
	tgtHistory []float64
}

func NewModel(cfg *config.Config, v *view.View, nb *bridge.Native) *Model {
	return &Model{cfg: cfg, view: v, backend: nb, running: true}
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.err = m.resetBatch()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.err = m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() error {
	tgt := m.cfg.Run.Trajectory.Value(m.t)
	if err := StageAll(m.view, m.cfg, tgt); err != nil {
		return err
	}
	if err := m.view.WriteDataToSim(); err != nil {
		return err
	}
	m.backend.Step(m.cfg.Run.Dt)
	if err := m.view.Update(m.cfg.Run.Dt); err != nil {
		return err
	}
	m.t += m.cfg.Run.Dt

	s := m.view.GetState()
	m.posHistory = append(m.posHistory, s.Joint.Position[0])
	m.tgtHistory = append(m.tgtHistory, tgt)
	if len(m.posHistory) > historyCapacity {
		m.posHistory = m.posHistory[1:]
		m.tgtHistory = m.tgtHistory[1:]
	}
	return nil
}

func (m *Model) resetBatch() error {
	if err := m.view.Reset(nil); err != nil {
		return err
	}
	n, j := m.view.Counts()
	zeros := make([]float64, n*j)
	if err := m.view.WriteJointState(zeros, make([]float64, n*j), nil); err != nil {
		return err
	}
	m.t = 0
	m.posHistory = m.posHistory[:0]
	m.tgtHistory = m.tgtHistory[:0]
	return nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("artsim live"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(fmt.Sprintf("error: %v\n", m.err))
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	if len(m.posHistory) > 1 {
		graph := asciigraph.PlotMany(
			[][]float64{m.tgtHistory, m.posHistory},
			asciigraph.Height(12),
			asciigraph.Width(70),
			asciigraph.Caption("target vs q0[0]"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	b.WriteString(m.stats())
	b.WriteString("\n")

	status := "running"
	if !m.running {
		status = pausedStyle.Render("paused")
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s · space pause · r reset · q quit", status)))
	return b.String()
}

func (m *Model) stats() string {
	n, j := m.view.Counts()
	s := m.view.GetState()

	spread := 0.0
	for jj := 0; jj < j; jj++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < n; i++ {
			p := artic.At(s.Joint.Position, j, i, jj)
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
		spread = math.Max(spread, hi-lo)
	}

	rows := []string{
		labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)),
		labelStyle.Render("instances") + valueStyle.Render(fmt.Sprintf("%d", n)),
		labelStyle.Render("joints") + valueStyle.Render(fmt.Sprintf("%d", j)),
		labelStyle.Render("q0[0]") + valueStyle.Render(fmt.Sprintf("%+.4f", s.Joint.Position[0])),
		labelStyle.Render("tau0[0]") + valueStyle.Render(fmt.Sprintf("%+.4f", s.Joint.Effort[0])),
		labelStyle.Render("spread") + valueStyle.Render(fmt.Sprintf("%.2e", spread)),
	}
	return statsStyle.Render(strings.Join(rows, "\n"))
}

// StageAll stages the trajectory target on every group: effort groups
// get effort targets, drive-backed groups get position targets.
func StageAll(v *view.View, cfg *config.Config, tgt float64) error {
	for _, g := range v.Groups() {
		vals := make([]float64, len(g.Joints()))
		for i := range vals {
			vals[i] = tgt
		}
		var err error
		if g.Model().Name() == "effort" {
			err = v.SetJointEffortTarget(vals, g.Joints(), nil)
		} else {
			err = v.SetJointPositionTarget(vals, g.Joints(), nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
