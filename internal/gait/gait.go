// Package gait defines the hexapod leg layout and builds the coupling
// structure (weights and phase biases) for the standard insect gaits.
package gait

import (
	"fmt"
	"math"

	"github.com/san-kum/cpgsim/internal/sim"
)

// Legs is the fixed oscillator ordering: left side front-to-hind, then
// right side front-to-hind.
const Legs = 6

const (
	LF = iota
	LM
	LH
	RF
	RM
	RH
)

var legNames = [Legs]string{"LF", "LM", "LH", "RF", "RM", "RH"}

func LegName(i int) string {
	if i < 0 || i >= Legs {
		return fmt.Sprintf("leg%d", i)
	}
	return legNames[i]
}

type Side int

const (
	Left Side = iota
	Right
)

// Sides returns the oscillator-to-side assignment as an explicit table,
// so nothing else hardcodes the three-legs-per-side slicing.
func Sides() []Side {
	return []Side{Left, Left, Left, Right, Right, Right}
}

// Baseline oscillator parameters for all built-in gaits.
const (
	DefaultDt     = 1e-4 // s
	DefaultFreq   = 12.0 // Hz
	DefaultAmp    = 1.0
	DefaultRate   = 20.0 // 1/s
	DefaultWeight = 10.0
)

// Gait fixes a preferred phase offset per leg. Two legs with equal
// offsets step together; the coupling matrices lock neighbors to the
// offset differences.
type Gait struct {
	Name    string
	Offsets [Legs]float64
}

// Tripod alternates two groups of three legs in antiphase.
func Tripod() Gait {
	return Gait{
		Name:    "tripod",
		Offsets: [Legs]float64{0, math.Pi, 0, math.Pi, 0, math.Pi},
	}
}

// Tetrapod cycles three groups of two legs, a third of a cycle apart.
func Tetrapod() Gait {
	third := 2 * math.Pi / 3
	return Gait{
		Name:    "tetrapod",
		Offsets: [Legs]float64{0, third, 2 * third, 2 * third, 0, third},
	}
}

// Wave ripples each side hind-to-front with the sides in antiphase.
func Wave() Gait {
	sixth := math.Pi / 3
	return Gait{
		Name:    "wave",
		Offsets: [Legs]float64{0, sixth, 2 * sixth, math.Pi, math.Pi + sixth, math.Pi + 2*sixth},
	}
}

// couplingEdges lists the coupled leg pairs: ipsilateral neighbors plus
// contralateral mirrors.
var couplingEdges = [][2]int{
	{LF, LM}, {LM, LH},
	{RF, RM}, {RM, RH},
	{LF, RF}, {LM, RM}, {LH, RH},
}

// Matrices builds the weight and phase-bias matrices for the gait. The
// bias between coupled legs i and j is the offset difference, normalized
// to (-π, π], which makes the bias matrix antisymmetric by construction.
func (g Gait) Matrices(weight float64) (weights, biases [][]float64) {
	weights = make([][]float64, Legs)
	biases = make([][]float64, Legs)
	for i := 0; i < Legs; i++ {
		weights[i] = make([]float64, Legs)
		biases[i] = make([]float64, Legs)
	}
	for _, e := range couplingEdges {
		i, j := e[0], e[1]
		weights[i][j] = weight
		weights[j][i] = weight
		d := math.Remainder(g.Offsets[j]-g.Offsets[i], 2*math.Pi)
		biases[i][j] = d
		biases[j][i] = -d
	}
	return weights, biases
}

// InitialPhases returns the gait's offsets as a starting phase vector.
func (g Gait) InitialPhases() []float64 {
	phases := make([]float64, Legs)
	for i, off := range g.Offsets {
		phases[i] = math.Mod(off+2*math.Pi, 2*math.Pi)
	}
	return phases
}

// ByName looks up a built-in gait.
func ByName(name string) (Gait, error) {
	switch name {
	case "tripod":
		return Tripod(), nil
	case "tetrapod":
		return Tetrapod(), nil
	case "wave":
		return Wave(), nil
	default:
		return Gait{}, fmt.Errorf("%w: unknown gait %q", sim.ErrConfiguration, name)
	}
}

func Names() []string {
	return []string{"tripod", "tetrapod", "wave"}
}
