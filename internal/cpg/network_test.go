package cpg

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cpgsim/internal/integrators"
	"github.com/san-kum/cpgsim/internal/sim"
)

func pairParams() Params {
	// Two oscillators coupled in antiphase.
	return Params{
		Dt:    1e-4,
		Freqs: []float64{12.0, 12.0},
		Amps:  []float64{1.0, 1.0},
		Rates: []float64{20.0, 20.0},
		Weights: [][]float64{
			{0, 10},
			{10, 0},
		},
		Biases: [][]float64{
			{0, math.Pi},
			{-math.Pi, 0},
		},
	}
}

func newPair(t *testing.T) *Network {
	t.Helper()
	net, err := New(pairParams(), integrators.NewEuler())
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	return net
}

func TestValidateRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero dt", func(p *Params) { p.Dt = 0 }},
		{"negative dt", func(p *Params) { p.Dt = -1e-4 }},
		{"negative amplitude", func(p *Params) { p.Amps[0] = -1 }},
		{"zero rate", func(p *Params) { p.Rates[1] = 0 }},
		{"short rates", func(p *Params) { p.Rates = p.Rates[:1] }},
		{"self coupling", func(p *Params) { p.Weights[0][0] = 1 }},
		{"ragged weights", func(p *Params) { p.Weights[1] = p.Weights[1][:1] }},
		{"asymmetric bias", func(p *Params) { p.Biases[1][0] = math.Pi }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pairParams()
			tt.mutate(&p)
			if _, err := New(p, integrators.NewEuler()); !errors.Is(err, sim.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestParamsAccessors(t *testing.T) {
	net := newPair(t)
	if got := net.Params().Dt; got != 1e-4 {
		t.Errorf("dt %g, want 1e-4", got)
	}
	if got := net.GetParams()["freq_hz"]; got != 12.0 {
		t.Errorf("freq_hz %g, want 12", got)
	}

	net.SetParam("rate", 40)
	if got := net.Params().Rates[0]; got != 40 {
		t.Errorf("rate after SetParam %g, want 40", got)
	}
	net.SetParam("rate", -1) // ignored
	if got := net.GetParams()["rate"]; got != 40 {
		t.Errorf("rate after invalid SetParam %g, want 40", got)
	}
}

func TestResetRejectsWrongLength(t *testing.T) {
	net := newPair(t)
	if err := net.Reset([]float64{0, 1}, []float64{0.5, 0.5}); err != nil {
		t.Fatalf("valid reset failed: %v", err)
	}

	before := net.State()

	if err := net.Reset([]float64{0}, []float64{0.5, 0.5}); !errors.Is(err, sim.ErrInvalidState) {
		t.Errorf("short phases: expected ErrInvalidState, got %v", err)
	}
	if err := net.Reset([]float64{0, 1}, []float64{-0.5, 0.5}); !errors.Is(err, sim.ErrInvalidState) {
		t.Errorf("negative amplitude: expected ErrInvalidState, got %v", err)
	}

	after := net.State()
	if diff := before.Sub(after).Norm(); diff != 0 {
		t.Errorf("failed reset mutated state, diff %g", diff)
	}
}

func TestSetterRejectsWrongLength(t *testing.T) {
	net := newPair(t)

	if err := net.SetFrequencies([]float64{1, 2, 3}); !errors.Is(err, sim.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if err := net.SetAmplitudes([]float64{1}); !errors.Is(err, sim.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if err := net.SetAmplitudes([]float64{1, -1}); !errors.Is(err, sim.ErrInvalidState) {
		t.Errorf("negative target: expected ErrInvalidState, got %v", err)
	}
}

func TestPhaseWrapAndAmplitudeClamp(t *testing.T) {
	net := newPair(t)
	if err := net.Reset([]float64{0.1, 3.0}, []float64{0.2, 0.9}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for i := 0; i < 5000; i++ {
		if err := net.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		for j, theta := range net.Phases() {
			if theta < 0 || theta >= 2*math.Pi {
				t.Fatalf("step %d: phase[%d] = %g outside [0, 2π)", i, j, theta)
			}
		}
		for j, r := range net.Amplitudes() {
			if r < 0 {
				t.Fatalf("step %d: amplitude[%d] = %g negative", i, j, r)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	run := func() sim.State {
		net := newPair(t)
		if err := net.Reset([]float64{0.3, 2.1}, []float64{0.1, 0.1}); err != nil {
			t.Fatalf("reset: %v", err)
		}
		for i := 0; i < 2000; i++ {
			if i%100 == 0 {
				// Alternating overrides mid-run must replay identically.
				if err := net.SetAmplitudes([]float64{1.0, 0.5}); err != nil {
					t.Fatalf("set amplitudes: %v", err)
				}
			}
			if err := net.Step(); err != nil {
				t.Fatalf("step: %v", err)
			}
		}
		return net.State()
	}

	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("trajectories differ at index %d: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestAmplitudeConvergence(t *testing.T) {
	// α·t = 20/s · 0.5s = 10 time constants: amplitudes must be within
	// 5% of target.
	net := newPair(t)
	if err := net.Reset([]float64{0, math.Pi}, []float64{0, 0}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for i := 0; i < 5000; i++ {
		if err := net.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	for i, r := range net.Amplitudes() {
		if r < 0.95 {
			t.Errorf("amplitude[%d] = %g, want >= 0.95 after 10 time constants", i, r)
		}
	}
}

func TestQuiescenceAtZeroTarget(t *testing.T) {
	net := newPair(t)
	if err := net.Reset([]float64{0, math.Pi}, []float64{1, 1}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := net.SetAmplitudes([]float64{0, 0}); err != nil {
		t.Fatalf("set amplitudes: %v", err)
	}

	for i := 0; i < 5000; i++ {
		if err := net.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	for i, r := range net.Amplitudes() {
		if r > 0.05 {
			t.Errorf("amplitude[%d] = %g, want ~0 with zero target", i, r)
		}
	}
}

func TestStepSurfacesInstability(t *testing.T) {
	net := newPair(t)
	if err := net.Reset([]float64{0, 1}, []float64{1, 1}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := net.SetFrequencies([]float64{math.NaN(), 12}); err != nil {
		t.Fatalf("set frequencies: %v", err)
	}

	err := net.Step()
	if !errors.Is(err, sim.ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}
	// State must not be corrupted by the failed step.
	if !net.State().IsValid() {
		t.Error("state contains NaN after failed step")
	}
}

func TestResetRandomSeeded(t *testing.T) {
	p := pairParams()
	p.Seed = 42

	a, err := New(p, integrators.NewEuler())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, err := New(p, integrators.NewEuler())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	a.ResetRandom()
	b.ResetRandom()

	pa, pb := a.Phases(), b.Phases()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Errorf("seeded init differs at %d: %g vs %g", i, pa[i], pb[i])
		}
		if pa[i] < 0 || pa[i] >= 2*math.Pi {
			t.Errorf("random phase[%d] = %g outside [0, 2π)", i, pa[i])
		}
	}
	for i, r := range a.Amplitudes() {
		if r != 0 {
			t.Errorf("random init amplitude[%d] = %g, want 0", i, r)
		}
	}
}

func TestAntiphaseLocking(t *testing.T) {
	// Two oscillators with π bias should settle close to antiphase.
	net, err := New(pairParams(), integrators.NewRK4())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := net.Reset([]float64{0.1, 0.2}, []float64{1, 1}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for i := 0; i < 20000; i++ {
		if err := net.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	phases := net.Phases()
	diff := math.Abs(math.Remainder(phases[0]-phases[1], 2*math.Pi))
	if math.Abs(diff-math.Pi) > 0.2 {
		t.Errorf("phase difference %g, want ~π", diff)
	}
}
