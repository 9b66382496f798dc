package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cpgsim/internal/gait"
)

const (
	DefaultDt       = gait.DefaultDt
	DefaultDuration = 1.0
	DefaultFreq     = gait.DefaultFreq
	DefaultAmp      = gait.DefaultAmp
	DefaultRate     = gait.DefaultRate
	DefaultWeight   = gait.DefaultWeight
)

type Config struct {
	Gait       string           `yaml:"gait"`
	Integrator string           `yaml:"integrator"`
	Policy     string           `yaml:"policy"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	Seed       int64            `yaml:"seed"`
	Oscillator OscillatorConfig `yaml:"oscillator"`
	Steering   SteeringConfig   `yaml:"steering"`
	Init       InitConfig       `yaml:"init"`
}

type OscillatorConfig struct {
	Freq   float64 `yaml:"freq"`   // baseline intrinsic frequency (Hz)
	Amp    float64 `yaml:"amp"`    // baseline intrinsic amplitude
	Rate   float64 `yaml:"rate"`   // amplitude convergence rate (1/s)
	Weight float64 `yaml:"weight"` // coupling weight between coupled legs
}

type SteeringConfig struct {
	Left  float64 `yaml:"left"`  // constant policy drive
	Right float64 `yaml:"right"` //
	Base  float64 `yaml:"base"`  // wander policy base drive
	Span  float64 `yaml:"span"`  // wander fluctuation
	Rate  float64 `yaml:"rate"`  // wander noise speed
}

type InitConfig struct {
	Random bool `yaml:"random"` // seeded random phases instead of gait offsets
}

func DefaultConfig() *Config {
	return &Config{
		Gait:       "tripod",
		Integrator: "euler",
		Policy:     "constant",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Oscillator: OscillatorConfig{
			Freq:   DefaultFreq,
			Amp:    DefaultAmp,
			Rate:   DefaultRate,
			Weight: DefaultWeight,
		},
		Steering: SteeringConfig{
			Left:  1.0,
			Right: 1.0,
			Base:  1.0,
			Span:  0.4,
			Rate:  0.5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
