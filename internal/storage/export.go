package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/cpgsim/internal/sim"
)

type ExportData struct {
	Gait       string             `json:"gait"`
	Integrator string             `json:"integrator"`
	Policy     string             `json:"policy"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Controls   [][]float64        `json:"controls,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// FromResult packages a fresh result for export before it is saved.
func FromResult(gait, integrator, policy string, dt, duration float64, result *sim.Result) ExportData {
	data := ExportData{
		Gait:       gait,
		Integrator: integrator,
		Policy:     policy,
		Dt:         dt,
		Duration:   duration,
		Steps:      len(result.Times),
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Controls:   make([][]float64, len(result.Controls)),
		Metrics:    result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
