// Package metrics provides run-level measurements over the oscillator
// state [phases..., amplitudes...] recorded by the driver loop.
package metrics

import (
	"math"

	"github.com/san-kum/cpgsim/internal/sim"
)

// Coherence averages the Kuramoto order parameter R = |Σ e^{iθ}|/N over
// the run. R near 1 means the oscillators move in phase; a locked tripod
// gait sits in between; R near 0 is incoherent.
type Coherence struct {
	name    string
	n       int
	sum     float64
	samples int
}

func NewCoherence(n int) *Coherence {
	return &Coherence{name: "coherence", n: n}
}

func (c *Coherence) Name() string { return c.name }

func (c *Coherence) Observe(x sim.State, u sim.Control, t float64) {
	if len(x) < c.n {
		return
	}
	var re, im float64
	for i := 0; i < c.n; i++ {
		re += math.Cos(x[i])
		im += math.Sin(x[i])
	}
	c.sum += math.Hypot(re, im) / float64(c.n)
	c.samples++
}

func (c *Coherence) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Coherence) Reset() {
	c.sum = 0
	c.samples = 0
}
