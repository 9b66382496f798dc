// Package viz renders a live terminal view of the oscillator network:
// per-leg phase dials, amplitude traces, and the current steering drive.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cpgsim/internal/cpg"
	"github.com/san-kum/cpgsim/internal/gait"
	"github.com/san-kum/cpgsim/internal/sim"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(4)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dialStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

type TickMsg time.Time

// Model steps the network between frames and keeps the display buffers.
type Model struct {
	net       *cpg.Network
	modulator sim.Modulator
	policy    sim.Policy

	stepsPerFrame int
	fps           int

	ampHistory  []float64 // mean amplitude trace
	lastControl sim.Control
	running     bool
	err         error
	gaitName    string
}

func NewModel(net *cpg.Network, modulator sim.Modulator, policy sim.Policy, gaitName string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	// Keep wall-clock and simulated time roughly aligned.
	steps := int(1.0 / (float64(fps) * net.Dt()))
	if steps < 1 {
		steps = 1
	}
	return Model{
		net:           net,
		modulator:     modulator,
		policy:        policy,
		stepsPerFrame: steps,
		fps:           fps,
		ampHistory:    make([]float64, 0, historyCapacity),
		running:       true,
		gaitName:      gaitName,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.net.ResetRandom()
			m.ampHistory = m.ampHistory[:0]
			m.err = nil
		case "+", "=":
			m.net.SetParam("rate", m.net.GetParams()["rate"]+2)
		case "-":
			m.net.SetParam("rate", m.net.GetParams()["rate"]-2)
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		u := m.policy.Steer(m.net.State(), m.net.Time())
		freqs, amps, err := m.modulator.Intrinsic(u)
		if err != nil {
			m.err = err
			return
		}
		if err := m.net.Apply(freqs, amps); err != nil {
			m.err = err
			return
		}
		if err := m.net.Step(); err != nil {
			m.err = err
			return
		}
		m.lastControl = u
	}

	mean := 0.0
	for _, r := range m.net.Amplitudes() {
		mean += r
	}
	mean /= float64(m.net.Size())
	m.ampHistory = append(m.ampHistory, mean)
	if len(m.ampHistory) > historyCapacity {
		m.ampHistory = m.ampHistory[1:]
	}
}

// phaseDial renders one leg's phase as a marker on a fixed-width strip.
func phaseDial(theta float64, width int) string {
	pos := int(theta / (2 * math.Pi) * float64(width-1))
	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i == pos {
			sb.WriteRune('●')
		} else {
			sb.WriteRune('·')
		}
	}
	return sb.String()
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(fmt.Sprintf("cpgsim live — %s gait  t=%.3fs  α=%.0f",
		m.gaitName, m.net.Time(), m.net.GetParams()["rate"])))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("stopped: %v", m.err)))
		sb.WriteString("\n")
	}

	phases := m.net.Phases()
	amps := m.net.Amplitudes()
	for i := 0; i < m.net.Size(); i++ {
		sb.WriteString(labelStyle.Render(gait.LegName(i)))
		sb.WriteString(" ")
		sb.WriteString(dialStyle.Render(phaseDial(phases[i], 32)))
		sb.WriteString(valueStyle.Render(fmt.Sprintf("  θ=%5.2f  r=%.3f", phases[i], amps[i])))
		sb.WriteString("\n")
	}

	if len(m.lastControl) == 2 {
		sb.WriteString(valueStyle.Render(
			fmt.Sprintf("\nsteering  L=%+.2f  R=%+.2f", m.lastControl[0], m.lastControl[1])))
		sb.WriteString("\n")
	}

	if len(m.ampHistory) > 1 {
		graph := asciigraph.Plot(m.ampHistory,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("mean amplitude"))
		sb.WriteString(graphStyle.Render(graph))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("space pause · r reset · +/- convergence rate · q quit"))
	return sb.String()
}

// Run starts the live view and blocks until the user quits.
func Run(net *cpg.Network, modulator sim.Modulator, policy sim.Policy, gaitName string, fps int) error {
	p := tea.NewProgram(NewModel(net, modulator, policy, gaitName, fps))
	_, err := p.Run()
	return err
}
