package sim

import (
	"context"
	"fmt"
)

// Simulator runs the control loop: each step it asks the policy for a
// steering command, maps it through the modulator, writes the intrinsic
// overrides into the plant, and only then advances the plant by one
// timestep. The override-before-step ordering is load-bearing: the
// oscillator ODE reads the intrinsic parameters set this step.
type Simulator struct {
	plant     Plant
	modulator Modulator
	policy    Policy
	metrics   []Metric
	observers []Observer
}

func New(plant Plant, modulator Modulator, policy Policy) *Simulator {
	return &Simulator{
		plant:     plant,
		modulator: modulator,
		policy:    policy,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.plant.State()
	t := 0.0

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := s.policy.Steer(x, t)

		freqs, amps, err := s.modulator.Intrinsic(u)
		if err != nil {
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}
		if err := s.plant.Apply(freqs, amps); err != nil {
			return result, &StepError{Step: i, Time: t, Wrapped: err}
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		if err := s.plant.Step(); err != nil {
			result.Errors = append(result.Errors, &StepError{Step: i, Time: t, Wrapped: err})
			break
		}

		x = s.plant.State()
		t += cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !x.IsValid() {
			result.Errors = append(result.Errors, &StepError{Step: i, Time: t, Wrapped: ErrUnstable})
			break
		}

		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrConfiguration, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrConfiguration, cfg.Duration)
	}
	return nil
}

// RunWithCallback steps the loop without recording, handing each state to
// the callback. Returning false from the callback stops the run.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(State, Control, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	x := s.plant.State()
	t := 0.0

	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u := s.policy.Steer(x, t)

		freqs, amps, err := s.modulator.Intrinsic(u)
		if err != nil {
			return err
		}
		if err := s.plant.Apply(freqs, amps); err != nil {
			return err
		}

		if !callback(x, u, t) {
			return nil
		}

		if err := s.plant.Step(); err != nil {
			return err
		}
		x = s.plant.State()
		t += cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("%w at t=%.4f", ErrUnstable, t)
		}
	}

	return nil
}
