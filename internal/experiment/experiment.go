package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/cpgsim/internal/config"
	"github.com/san-kum/cpgsim/internal/sim"
)

// Experiment wires one configured run: network, modulator, policy and
// metrics behind a single Run call.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(plant sim.Plant, modulator sim.Modulator, policy sim.Policy, metrics []sim.Metric) error {
	e.simulator = sim.New(plant, modulator, policy)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		ValidateState: true,
	}

	return e.simulator.Run(ctx, simCfg)
}

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
