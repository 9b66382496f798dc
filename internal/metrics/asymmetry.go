package metrics

import (
	"math"

	"github.com/san-kum/cpgsim/internal/gait"
	"github.com/san-kum/cpgsim/internal/sim"
)

// Asymmetry averages the absolute difference between the two sides' mean
// oscillator amplitudes. Zero for symmetric drive; grows during turns.
type Asymmetry struct {
	name    string
	sides   []gait.Side
	sum     float64
	samples int
}

func NewAsymmetry(sides []gait.Side) *Asymmetry {
	return &Asymmetry{name: "asymmetry", sides: sides}
}

func (a *Asymmetry) Name() string { return a.name }

func (a *Asymmetry) Observe(x sim.State, u sim.Control, t float64) {
	n := len(a.sides)
	if len(x) < 2*n {
		return
	}
	var left, right float64
	var nl, nr int
	for i, side := range a.sides {
		r := x[n+i]
		if side == gait.Left {
			left += r
			nl++
		} else {
			right += r
			nr++
		}
	}
	if nl == 0 || nr == 0 {
		return
	}
	a.sum += math.Abs(left/float64(nl) - right/float64(nr))
	a.samples++
}

func (a *Asymmetry) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Asymmetry) Reset() {
	a.sum = 0
	a.samples = 0
}
