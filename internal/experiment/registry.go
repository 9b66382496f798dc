package experiment

import (
	"fmt"

	"github.com/san-kum/cpgsim/internal/config"
	"github.com/san-kum/cpgsim/internal/cpg"
	"github.com/san-kum/cpgsim/internal/gait"
	"github.com/san-kum/cpgsim/internal/integrators"
	"github.com/san-kum/cpgsim/internal/metrics"
	"github.com/san-kum/cpgsim/internal/sim"
	"github.com/san-kum/cpgsim/internal/steer"
)

type Registry struct {
	integrators map[string]func() sim.Integrator
	policies    map[string]func(*config.Config) sim.Policy
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() sim.Integrator),
		policies:    make(map[string]func(*config.Config) sim.Policy),
	}

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }

	r.policies["constant"] = func(cfg *config.Config) sim.Policy {
		return steer.NewConstant(cfg.Steering.Left, cfg.Steering.Right)
	}
	r.policies["wander"] = func(cfg *config.Config) sim.Policy {
		return steer.NewWander(cfg.Seed, cfg.Steering.Base, cfg.Steering.Span, cfg.Steering.Rate)
	}
	r.policies["pivot"] = func(cfg *config.Config) sim.Policy {
		// Walk straight, pivot in the middle third, then straighten out.
		third := cfg.Duration / 3
		return steer.NewSequence([]steer.Segment{
			{Until: third, Cmd: steer.Command{Left: cfg.Steering.Left, Right: cfg.Steering.Right}},
			{Until: 2 * third, Cmd: steer.Command{Left: cfg.Steering.Left, Right: -cfg.Steering.Right}},
			{Until: cfg.Duration, Cmd: steer.Command{Left: cfg.Steering.Left, Right: cfg.Steering.Right}},
		})
	}

	return r
}

// BuildNetwork assembles the oscillator network for the configured gait.
func (r *Registry) BuildNetwork(cfg *config.Config) (*cpg.Network, error) {
	g, err := gait.ByName(cfg.Gait)
	if err != nil {
		return nil, err
	}
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	weights, biases := g.Matrices(cfg.Oscillator.Weight)
	params := cpg.Uniform(gait.Legs, cfg.Dt,
		cfg.Oscillator.Freq, cfg.Oscillator.Amp, cfg.Oscillator.Rate,
		weights, biases)
	params.Seed = cfg.Seed

	net, err := cpg.New(params, integ)
	if err != nil {
		return nil, err
	}

	if cfg.Init.Random {
		net.ResetRandom()
	} else {
		amps := make([]float64, gait.Legs)
		if err := net.Reset(g.InitialPhases(), amps); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// BuildModulator assembles the turning modulator over the same baselines
// the network was built with.
func (r *Registry) BuildModulator(cfg *config.Config) (*steer.Modulator, error) {
	freqs := make([]float64, gait.Legs)
	amps := make([]float64, gait.Legs)
	for i := range freqs {
		freqs[i] = cfg.Oscillator.Freq
		amps[i] = cfg.Oscillator.Amp
	}
	return steer.NewModulator(gait.Sides(), freqs, amps)
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetPolicy(name string, cfg *config.Config) (sim.Policy, error) {
	fn, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListPolicies() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewCoherence(gait.Legs),
		metrics.NewAsymmetry(gait.Sides()),
		metrics.NewMeanAmplitude(gait.Legs),
		metrics.NewSteerEffort(),
	}
}
