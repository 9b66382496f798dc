package cpg

import (
	"fmt"
	"math"

	"github.com/san-kum/cpgsim/internal/sim"
)

// Params holds the fixed configuration of an oscillator network. The
// coupling weights and phase biases are set here once and never change
// over the life of the network; only the intrinsic frequency and
// amplitude vectors are overridden between steps.
type Params struct {
	Dt      float64     // integration timestep (s)
	Freqs   []float64   // baseline intrinsic frequencies (Hz, signed)
	Amps    []float64   // baseline intrinsic amplitudes
	Rates   []float64   // amplitude convergence rates (1/s)
	Weights [][]float64 // coupling weights, zero diagonal
	Biases  [][]float64 // phase biases, antisymmetric
	Seed    int64       // randomized initialization only
}

// N returns the number of oscillators.
func (p Params) N() int { return len(p.Freqs) }

func (p Params) Validate() error {
	n := len(p.Freqs)
	if n == 0 {
		return fmt.Errorf("%w: at least one oscillator required", sim.ErrConfiguration)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", sim.ErrConfiguration, p.Dt)
	}
	if len(p.Amps) != n || len(p.Rates) != n {
		return fmt.Errorf("%w: freqs/amps/rates lengths %d/%d/%d",
			sim.ErrConfiguration, n, len(p.Amps), len(p.Rates))
	}
	for i, a := range p.Amps {
		if a < 0 {
			return fmt.Errorf("%w: amplitude[%d] negative: %g", sim.ErrConfiguration, i, a)
		}
	}
	for i, r := range p.Rates {
		if r <= 0 {
			return fmt.Errorf("%w: convergence rate[%d] must be positive, got %g",
				sim.ErrConfiguration, i, r)
		}
	}
	if err := validateMatrix("weights", p.Weights, n); err != nil {
		return err
	}
	if err := validateMatrix("biases", p.Biases, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if p.Weights[i][i] != 0 {
			return fmt.Errorf("%w: weights[%d][%d] self-coupling must be zero",
				sim.ErrConfiguration, i, i)
		}
		for j := 0; j < n; j++ {
			if math.Abs(p.Biases[i][j]+p.Biases[j][i]) > 1e-9 {
				return fmt.Errorf("%w: biases[%d][%d] not antisymmetric",
					sim.ErrConfiguration, i, j)
			}
		}
	}
	return nil
}

func validateMatrix(name string, m [][]float64, n int) error {
	if len(m) != n {
		return fmt.Errorf("%w: %s has %d rows, want %d", sim.ErrConfiguration, name, len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: %s row %d has %d columns, want %d",
				sim.ErrConfiguration, name, i, len(row), n)
		}
	}
	return nil
}

// Uniform builds Params with identical per-oscillator baselines and the
// given coupling structure.
func Uniform(n int, dt, freq, amp, rate float64, weights, biases [][]float64) Params {
	p := Params{
		Dt:      dt,
		Freqs:   make([]float64, n),
		Amps:    make([]float64, n),
		Rates:   make([]float64, n),
		Weights: weights,
		Biases:  biases,
	}
	for i := 0; i < n; i++ {
		p.Freqs[i] = freq
		p.Amps[i] = amp
		p.Rates[i] = rate
	}
	return p
}
