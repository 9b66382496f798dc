package metrics

import (
	"math"

	"github.com/san-kum/cpgsim/internal/sim"
)

// SteerEffort averages the absolute steering drive across the run.
type SteerEffort struct {
	name    string
	sum     float64
	samples int
}

func NewSteerEffort() *SteerEffort {
	return &SteerEffort{name: "steer_effort"}
}

func (s *SteerEffort) Name() string { return s.name }

func (s *SteerEffort) Observe(x sim.State, u sim.Control, t float64) {
	for _, val := range u {
		s.sum += math.Abs(val)
	}
	s.samples++
}

func (s *SteerEffort) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SteerEffort) Reset() {
	s.sum = 0
	s.samples = 0
}

// MeanAmplitude averages oscillator amplitudes over the run; near zero
// it flags a quiescent network.
type MeanAmplitude struct {
	name    string
	n       int
	sum     float64
	samples int
}

func NewMeanAmplitude(n int) *MeanAmplitude {
	return &MeanAmplitude{name: "mean_amplitude", n: n}
}

func (m *MeanAmplitude) Name() string { return m.name }

func (m *MeanAmplitude) Observe(x sim.State, u sim.Control, t float64) {
	if len(x) < 2*m.n {
		return
	}
	for i := 0; i < m.n; i++ {
		m.sum += x[m.n+i]
	}
	m.samples++
}

func (m *MeanAmplitude) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples*m.n)
}

func (m *MeanAmplitude) Reset() {
	m.sum = 0
	m.samples = 0
}
