package steer

import "github.com/san-kum/cpgsim/internal/gait"

// LegState tags the condition of one leg as seen by the recovery policy.
type LegState int

const (
	Normal LegState = iota
	Stuck
	Stumbling
)

func (s LegState) String() string {
	switch s {
	case Stuck:
		return "stuck"
	case Stumbling:
		return "stumbling"
	default:
		return "normal"
	}
}

// ContactSample is one leg's contact reading for the current step,
// supplied by the host simulation.
type ContactSample struct {
	Leg       int
	InContact bool
	Slipping  bool
}

// Recovery watches per-leg contact input and temporarily boosts a
// misbehaving leg's intrinsic frequency and amplitude so it swings free.
// It is a bolt-on over the modulator output and never touches the
// oscillator ODE.
type Recovery struct {
	dt           float64
	stuckAfter   float64 // continuous loss of contact before a leg counts as stuck
	stumbleAfter float64 // continuous slipping before a leg counts as stumbling
	recoverFor   float64 // duration of the recovery profile once tripped
	freqScale    float64
	ampScale     float64

	legs []legMonitor
}

type legMonitor struct {
	state      LegState
	offContact float64
	slipping   float64
	recovering float64
}

// NewRecovery builds the policy with the default thresholds: a leg out
// of contact for 0.25 s counts as stuck, slipping for 0.1 s counts as
// stumbling, and either trips a 0.2 s profile of 1.25x frequency and
// 1.5x amplitude.
func NewRecovery(dt float64) *Recovery {
	return &Recovery{
		dt:           dt,
		stuckAfter:   0.25,
		stumbleAfter: 0.1,
		recoverFor:   0.2,
		freqScale:    1.25,
		ampScale:     1.5,
		legs:         make([]legMonitor, gait.Legs),
	}
}

// Observe feeds the current contact readings into the per-leg state
// machines. Call once per control step, before Intrinsic.
func (r *Recovery) Observe(samples []ContactSample) {
	for _, s := range samples {
		if s.Leg < 0 || s.Leg >= len(r.legs) {
			continue
		}
		m := &r.legs[s.Leg]

		if m.state != Normal {
			m.recovering += r.dt
			if m.recovering >= r.recoverFor {
				*m = legMonitor{}
			}
			continue
		}

		if s.InContact {
			m.offContact = 0
		} else {
			m.offContact += r.dt
		}
		if s.Slipping {
			m.slipping += r.dt
		} else {
			m.slipping = 0
		}

		if m.offContact >= r.stuckAfter {
			m.state = Stuck
			m.recovering = 0
		} else if m.slipping >= r.stumbleAfter {
			m.state = Stumbling
			m.recovering = 0
		}
	}
}

// Override implements the modulator override contract: legs in recovery
// get the boosted profile, all others pass through untouched.
func (r *Recovery) Override(freqs, amps []float64) {
	for i := range r.legs {
		if i >= len(freqs) || r.legs[i].state == Normal {
			continue
		}
		freqs[i] *= r.freqScale
		amps[i] *= r.ampScale
	}
}

// States returns the current per-leg tags.
func (r *Recovery) States() []LegState {
	out := make([]LegState, len(r.legs))
	for i := range r.legs {
		out[i] = r.legs[i].state
	}
	return out
}
