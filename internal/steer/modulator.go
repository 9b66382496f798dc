// Package steer maps the two-sided descending signal onto per-oscillator
// intrinsic parameters, and provides the steering policies that generate
// that signal during runs.
package steer

import (
	"fmt"
	"math"

	"github.com/san-kum/cpgsim/internal/gait"
	"github.com/san-kum/cpgsim/internal/sim"
)

// Command is the descending steering signal, one drive value per side.
type Command struct {
	Left  float64
	Right float64
}

func (c Command) Control() sim.Control {
	return sim.Control{c.Left, c.Right}
}

// Override adjusts the modulator output in place. Implemented by the
// recovery policy; kept as an interface so correction schemes stay
// pluggable without touching the core mapping.
type Override interface {
	Override(freqs, amps []float64)
}

// Modulator translates a steering command into the intrinsic frequency
// and amplitude vectors consumed by the oscillator network:
//
//   - amplitude: |δ| scales the side's baseline amplitudes
//   - frequency: δ > 0 keeps the baseline sign, otherwise it is negated,
//     reversing the stepping direction on that side
//
// δ = 0 therefore quiesces the side while keeping the forward frequency.
type Modulator struct {
	sides     []gait.Side
	baseFreqs []float64
	baseAmps  []float64
	override  Override
}

func NewModulator(sides []gait.Side, baseFreqs, baseAmps []float64) (*Modulator, error) {
	n := len(sides)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty side table", sim.ErrConfiguration)
	}
	if len(baseFreqs) != n || len(baseAmps) != n {
		return nil, fmt.Errorf("%w: side table has %d entries, baselines %d/%d",
			sim.ErrConfiguration, n, len(baseFreqs), len(baseAmps))
	}
	for i, a := range baseAmps {
		if a < 0 {
			return nil, fmt.Errorf("%w: baseline amplitude[%d] negative: %g",
				sim.ErrConfiguration, i, a)
		}
	}
	return &Modulator{
		sides:     append([]gait.Side(nil), sides...),
		baseFreqs: append([]float64(nil), baseFreqs...),
		baseAmps:  append([]float64(nil), baseAmps...),
	}, nil
}

// WithOverride layers a correction policy over the core mapping.
func (m *Modulator) WithOverride(o Override) *Modulator {
	m.override = o
	return m
}

// Intrinsic implements sim.Modulator. Pure with respect to the steering
// command and the fixed baselines; the optional override runs last.
func (m *Modulator) Intrinsic(u sim.Control) (freqs, amps []float64, err error) {
	if len(u) != 2 {
		return nil, nil, fmt.Errorf("%w: steering command has %d entries, want 2",
			sim.ErrDimensionMismatch, len(u))
	}

	n := len(m.sides)
	freqs = make([]float64, n)
	amps = make([]float64, n)
	for i := 0; i < n; i++ {
		delta := u[0]
		if m.sides[i] == gait.Right {
			delta = u[1]
		}
		amps[i] = math.Abs(delta) * m.baseAmps[i]
		if delta > 0 {
			freqs[i] = m.baseFreqs[i]
		} else if delta < 0 {
			freqs[i] = -m.baseFreqs[i]
		} else {
			freqs[i] = m.baseFreqs[i]
		}
	}

	if m.override != nil {
		m.override.Override(freqs, amps)
	}
	return freqs, amps, nil
}
