// Package cpg implements a network of coupled phase/amplitude oscillators
// generating the stepping rhythm for a hexapod. Each oscillator carries a
// phase in [0, 2π) and a non-negative amplitude:
//
//	dθ_i/dt = 2π·ν_i + Σ_j r_j·w_ij·sin(θ_j − θ_i − φ_ij)
//	dr_i/dt = α_i·(R_i − r_i)
//
// Intrinsic frequencies ν and target amplitudes R are overridden each
// control step by the turning modulator; coupling weights w and phase
// biases φ are fixed at construction.
package cpg

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/cpgsim/internal/sim"
)

type Network struct {
	params Params
	n      int
	integ  sim.Integrator

	// intrinsic parameters read by the ODE, overwritten via setters
	freqs []float64
	amps  []float64

	// oscillator state, mutated only by Reset and Step
	phases     []float64
	amplitudes []float64

	rng *rand.Rand
	t   float64
}

// New validates params and builds a network with all oscillators at
// phase 0, amplitude 0. The integrator must be a fixed-step scheme.
func New(params Params, integ sim.Integrator) (*Network, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if integ == nil {
		return nil, fmt.Errorf("%w: integrator required", sim.ErrConfiguration)
	}
	n := params.N()
	net := &Network{
		params:     params,
		n:          n,
		integ:      integ,
		freqs:      append([]float64(nil), params.Freqs...),
		amps:       append([]float64(nil), params.Amps...),
		phases:     make([]float64, n),
		amplitudes: make([]float64, n),
		rng:        rand.New(rand.NewSource(params.Seed)),
	}
	return net, nil
}

func (net *Network) Size() int      { return net.n }
func (net *Network) Dt() float64    { return net.params.Dt }
func (net *Network) Time() float64  { return net.t }
func (net *Network) Params() Params { return net.params }

// Reset sets the oscillator state explicitly. On error the prior state is
// left untouched.
func (net *Network) Reset(phases, amplitudes []float64) error {
	if len(phases) != net.n || len(amplitudes) != net.n {
		return fmt.Errorf("%w: got %d phases, %d amplitudes, want %d",
			sim.ErrInvalidState, len(phases), len(amplitudes), net.n)
	}
	for i, a := range amplitudes {
		if a < 0 {
			return fmt.Errorf("%w: amplitude[%d] negative: %g", sim.ErrInvalidState, i, a)
		}
	}
	for i := 0; i < net.n; i++ {
		net.phases[i] = wrapPhase(phases[i])
		net.amplitudes[i] = amplitudes[i]
	}
	net.t = 0
	return nil
}

// ResetRandom draws phases uniformly from [0, 2π) using the configured
// seed and zeroes all amplitudes. The seed never affects stepping.
func (net *Network) ResetRandom() {
	for i := 0; i < net.n; i++ {
		net.phases[i] = net.rng.Float64() * 2 * math.Pi
		net.amplitudes[i] = 0
	}
	net.t = 0
}

// SetFrequencies overrides the intrinsic frequency vector read by the
// next Step.
func (net *Network) SetFrequencies(freqs []float64) error {
	if len(freqs) != net.n {
		return fmt.Errorf("%w: got %d frequencies, want %d", sim.ErrInvalidState, len(freqs), net.n)
	}
	copy(net.freqs, freqs)
	return nil
}

// SetAmplitudes overrides the intrinsic target amplitude vector read by
// the next Step. Targets must be non-negative.
func (net *Network) SetAmplitudes(amps []float64) error {
	if len(amps) != net.n {
		return fmt.Errorf("%w: got %d amplitudes, want %d", sim.ErrInvalidState, len(amps), net.n)
	}
	for i, a := range amps {
		if a < 0 {
			return fmt.Errorf("%w: amplitude target[%d] negative: %g", sim.ErrInvalidState, i, a)
		}
	}
	copy(net.amps, amps)
	return nil
}

// Apply implements sim.Plant: both intrinsic vectors in one call.
func (net *Network) Apply(freqs, amps []float64) error {
	if err := net.SetFrequencies(freqs); err != nil {
		return err
	}
	return net.SetAmplitudes(amps)
}

// Phases returns a copy of the current phase vector, each in [0, 2π).
func (net *Network) Phases() []float64 {
	return append([]float64(nil), net.phases...)
}

// Amplitudes returns a copy of the current amplitude vector.
func (net *Network) Amplitudes() []float64 {
	return append([]float64(nil), net.amplitudes...)
}

// State implements sim.Plant: phases followed by amplitudes.
func (net *Network) State() sim.State {
	x := make(sim.State, 2*net.n)
	copy(x, net.phases)
	copy(x[net.n:], net.amplitudes)
	return x
}

// Derive implements sim.System over the concatenated [phases, amplitudes]
// vector. The steering command enters through the intrinsic parameters,
// not through u.
func (net *Network) Derive(x sim.State, _ sim.Control, _ float64) sim.State {
	n := net.n
	dx := make(sim.State, 2*n)
	for i := 0; i < n; i++ {
		dtheta := 2 * math.Pi * net.freqs[i]
		for j := 0; j < n; j++ {
			w := net.params.Weights[i][j]
			if w == 0 {
				continue
			}
			dtheta += x[n+j] * w * math.Sin(x[j]-x[i]-net.params.Biases[i][j])
		}
		dx[i] = dtheta
		dx[n+i] = net.params.Rates[i] * (net.amps[i] - x[n+i])
	}
	return dx
}

func (net *Network) StateDim() int   { return 2 * net.n }
func (net *Network) ControlDim() int { return 2 }

// Step advances the oscillator state by one timestep. Phases are wrapped
// into [0, 2π) and amplitudes clamped at zero after integration. A NaN or
// Inf result aborts the step, leaving the previous state in place.
func (net *Network) Step() error {
	x := net.State()
	next := net.integ.Step(net, x, nil, net.t, net.params.Dt)
	if !next.IsValid() {
		return fmt.Errorf("%w at t=%.6f", sim.ErrUnstable, net.t)
	}
	for i := 0; i < net.n; i++ {
		net.phases[i] = wrapPhase(next[i])
		net.amplitudes[i] = math.Max(next[net.n+i], 0)
	}
	net.t += net.params.Dt
	return nil
}

// GetParams implements sim.Configurable with uniform scalars for live
// tuning; per-oscillator values remain construction-time configuration.
func (net *Network) GetParams() map[string]float64 {
	return map[string]float64{
		"freq_hz": net.params.Freqs[0],
		"rate":    net.params.Rates[0],
	}
}

// SetParam implements sim.Configurable.
func (net *Network) SetParam(name string, value float64) {
	switch name {
	case "freq_hz":
		for i := range net.params.Freqs {
			net.params.Freqs[i] = value
			net.freqs[i] = value
		}
	case "rate":
		if value <= 0 {
			return
		}
		for i := range net.params.Rates {
			net.params.Rates[i] = value
		}
	}
}

func wrapPhase(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}
