package config

var Presets = map[string]map[string]*Config{
	"tripod": {
		"walk": {
			Gait: "tripod", Integrator: "euler", Policy: "constant", Dt: 1e-4, Duration: 1.0,
			Oscillator: OscillatorConfig{Freq: 12, Amp: 1, Rate: 20, Weight: 10},
			Steering:   SteeringConfig{Left: 1.0, Right: 1.0},
		},
		"turn": {
			Gait: "tripod", Integrator: "euler", Policy: "constant", Dt: 1e-4, Duration: 1.5,
			Oscillator: OscillatorConfig{Freq: 12, Amp: 1, Rate: 20, Weight: 10},
			Steering:   SteeringConfig{Left: 1.2, Right: 0.4},
		},
		"spin": {
			Gait: "tripod", Integrator: "euler", Policy: "constant", Dt: 1e-4, Duration: 1.5,
			Oscillator: OscillatorConfig{Freq: 12, Amp: 1, Rate: 20, Weight: 10},
			Steering:   SteeringConfig{Left: 1.0, Right: -1.0},
		},
		"wander": {
			Gait: "tripod", Integrator: "euler", Policy: "wander", Dt: 1e-4, Duration: 5.0,
			Oscillator: OscillatorConfig{Freq: 12, Amp: 1, Rate: 20, Weight: 10},
			Steering:   SteeringConfig{Base: 1.0, Span: 0.5, Rate: 0.5},
		},
	},
	"tetrapod": {
		"walk": {
			Gait: "tetrapod", Integrator: "euler", Policy: "constant", Dt: 1e-4, Duration: 1.5,
			Oscillator: OscillatorConfig{Freq: 9, Amp: 1, Rate: 20, Weight: 10},
			Steering:   SteeringConfig{Left: 1.0, Right: 1.0},
		},
	},
	"wave": {
		"walk": {
			Gait: "wave", Integrator: "rk4", Policy: "constant", Dt: 1e-4, Duration: 2.0,
			Oscillator: OscillatorConfig{Freq: 6, Amp: 1, Rate: 20, Weight: 10},
			Steering:   SteeringConfig{Left: 1.0, Right: 1.0},
		},
	},
}

func GetPreset(gait, preset string) *Config {
	gaitPresets, ok := Presets[gait]
	if !ok {
		return nil
	}
	cfg, ok := gaitPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(gait string) []string {
	gaitPresets, ok := Presets[gait]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(gaitPresets))
	for name := range gaitPresets {
		names = append(names, name)
	}
	return names
}
