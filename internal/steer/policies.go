package steer

import (
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/san-kum/cpgsim/internal/sim"
)

// Constant holds a fixed steering command for the whole run.
type Constant struct {
	Cmd Command
}

func NewConstant(left, right float64) *Constant {
	return &Constant{Cmd: Command{Left: left, Right: right}}
}

func (c *Constant) Steer(_ sim.State, _ float64) sim.Control {
	return c.Cmd.Control()
}

// Segment is one piece of a scripted steering sequence, active until the
// given time.
type Segment struct {
	Until float64
	Cmd   Command
}

// Sequence replays a script of steering segments; past the last segment
// the final command is held.
type Sequence struct {
	segments []Segment
}

func NewSequence(segments []Segment) *Sequence {
	ordered := append([]Segment(nil), segments...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Until < ordered[j].Until })
	return &Sequence{segments: ordered}
}

func (s *Sequence) Steer(_ sim.State, t float64) sim.Control {
	if len(s.segments) == 0 {
		return Command{}.Control()
	}
	for _, seg := range s.segments {
		if t < seg.Until {
			return seg.Cmd.Control()
		}
	}
	return s.segments[len(s.segments)-1].Cmd.Control()
}

// Wander produces exploratory steering from smooth noise: both sides
// keep a forward base drive with independent slow fluctuations, so the
// fly meanders without the jitter a white-noise policy would inject into
// the amplitude targets.
type Wander struct {
	noise opensimplex.Noise
	base  float64 // forward drive both sides share
	span  float64 // fluctuation around the base
	rate  float64 // noise traversal speed (Hz-ish)
}

func NewWander(seed int64, base, span, rate float64) *Wander {
	return &Wander{
		noise: opensimplex.NewNormalized(seed),
		base:  base,
		span:  span,
		rate:  rate,
	}
}

func (w *Wander) Steer(_ sim.State, t float64) sim.Control {
	// Distant noise rows keep the two sides uncorrelated.
	left := w.base + w.span*(2*w.noise.Eval2(w.rate*t, 0)-1)
	right := w.base + w.span*(2*w.noise.Eval2(w.rate*t, 1000)-1)
	return Command{Left: left, Right: right}.Control()
}
