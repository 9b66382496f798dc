package sim

import (
	"context"
	"errors"
	"math"
	"testing"
)

// fakePlant decays toward the applied amplitude target, one state entry.
type fakePlant struct {
	state   float64
	target  float64
	dt      float64
	applied int
	stepped int
	failAt  int
}

func (p *fakePlant) Apply(freqs, amps []float64) error {
	p.applied++
	p.target = amps[0]
	return nil
}

func (p *fakePlant) Step() error {
	if p.failAt > 0 && p.stepped >= p.failAt {
		return ErrUnstable
	}
	// Apply must have run first within the step.
	if p.applied != p.stepped+1 {
		return errors.New("step before apply")
	}
	p.state += p.dt * 20 * (p.target - p.state)
	p.stepped++
	return nil
}

func (p *fakePlant) State() State { return State{p.state} }

type fakeModulator struct{}

func (fakeModulator) Intrinsic(u Control) ([]float64, []float64, error) {
	return []float64{12}, []float64{math.Abs(u[0])}, nil
}

type fakePolicy struct{ drive float64 }

func (p fakePolicy) Steer(x State, t float64) Control {
	return Control{p.drive, p.drive}
}

func TestSimulatorRun(t *testing.T) {
	plant := &fakePlant{dt: 0.01}
	s := New(plant, fakeModulator{}, fakePolicy{drive: 1.0})

	cfg := Config{Dt: 0.01, Duration: 1.0}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 101 {
		t.Errorf("expected 101 states, got %d", len(result.States))
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}

	// 20/s convergence over 1s should bring the state near the target.
	final := result.States[len(result.States)-1][0]
	if math.Abs(final-1.0) > 0.05 {
		t.Errorf("final state %g, want ~1.0", final)
	}
}

func TestSimulatorOrdering(t *testing.T) {
	// fakePlant.Step errors if Apply did not precede it; a clean run
	// proves the override-before-step contract.
	plant := &fakePlant{dt: 0.01}
	s := New(plant, fakeModulator{}, fakePolicy{drive: 0.5})

	if _, err := s.Run(context.Background(), Config{Dt: 0.01, Duration: 0.1}); err != nil {
		t.Fatalf("ordering violated: %v", err)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&fakePlant{dt: 0.01}, fakeModulator{}, fakePolicy{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestSimulatorStepErrorStops(t *testing.T) {
	plant := &fakePlant{dt: 0.01, failAt: 10}
	s := New(plant, fakeModulator{}, fakePolicy{drive: 1.0})

	result, err := s.Run(context.Background(), Config{Dt: 0.01, Duration: 1.0})
	if err != nil {
		t.Fatalf("run returned driver error: %v", err)
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps before failure, got %d", result.StepsTaken)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 recorded error, got %d", len(result.Errors))
	}
	var stepErr *StepError
	if !errors.As(result.Errors[0], &stepErr) {
		t.Fatalf("expected StepError, got %T", result.Errors[0])
	}
	if !errors.Is(result.Errors[0], ErrUnstable) {
		t.Errorf("expected wrapped ErrUnstable, got %v", stepErr.Wrapped)
	}
}

func TestSimulatorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(&fakePlant{dt: 0.01}, fakeModulator{}, fakePolicy{})
	_, err := s.Run(ctx, Config{Dt: 0.01, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type countingMetric struct {
	count int
}

func (m *countingMetric) Name() string                          { return "count" }
func (m *countingMetric) Observe(x State, u Control, t float64) { m.count++ }
func (m *countingMetric) Value() float64                        { return float64(m.count) }
func (m *countingMetric) Reset()                                { m.count = 0 }

func TestSimulatorMetrics(t *testing.T) {
	s := New(&fakePlant{dt: 0.01}, fakeModulator{}, fakePolicy{drive: 1})

	metric := &countingMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), Config{Dt: 0.01, Duration: 0.1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if v, ok := result.Metrics["count"]; !ok || v != 10 {
		t.Errorf("expected 10 observations, got %v", result.Metrics)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	s := New(&fakePlant{dt: 0.01}, fakeModulator{}, fakePolicy{drive: 1})

	calls := 0
	err := s.RunWithCallback(context.Background(), Config{Dt: 0.01, Duration: 1.0},
		func(x State, u Control, t float64) bool {
			calls++
			return calls < 5
		})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 callback invocations, got %d", calls)
	}
}
