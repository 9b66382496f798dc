package integrators

import "github.com/san-kum/cpgsim/internal/sim"

// Euler is the default integrator for the oscillator network: at the
// timesteps used here (dt ~ 1e-4 s) forward Euler is accurate enough and
// costs a single derivative evaluation per step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn sim.System, x sim.State, u sim.Control, t float64, dt float64) sim.State {
	dx := dyn.Derive(x, u, t)
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
