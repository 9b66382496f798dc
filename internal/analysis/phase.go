package analysis

import (
	"math"
	"strings"
)

// PhaseDifferences extracts the wrapped phase difference θ_a − θ_b over
// a recorded trajectory. States are [phases..., amplitudes...] rows; n
// is the oscillator count.
func PhaseDifferences(states [][]float64, n, a, b int) []float64 {
	if a < 0 || b < 0 || a >= n || b >= n {
		return nil
	}
	out := make([]float64, 0, len(states))
	for _, x := range states {
		if len(x) < n {
			continue
		}
		out = append(out, math.Remainder(x[a]-x[b], 2*math.Pi))
	}
	return out
}

// OrderParameter computes the Kuramoto order parameter per recorded
// state: R = |Σ e^{iθ}| / n.
func OrderParameter(states [][]float64, n int) []float64 {
	out := make([]float64, 0, len(states))
	for _, x := range states {
		if len(x) < n {
			continue
		}
		var re, im float64
		for i := 0; i < n; i++ {
			re += math.Cos(x[i])
			im += math.Sin(x[i])
		}
		out = append(out, math.Hypot(re, im)/float64(n))
	}
	return out
}

// PolarPortrait holds the (r·cosθ, r·sinθ) trajectory of one oscillator.
// A locked rhythm traces a circle of the intrinsic amplitude's radius;
// spirals show amplitude transients.
type PolarPortrait struct {
	Leg    int
	Points []struct{ X, Y float64 }
}

func GeneratePolarPortrait(states [][]float64, n, leg int) *PolarPortrait {
	if leg < 0 || leg >= n {
		return nil
	}
	portrait := &PolarPortrait{
		Leg:    leg,
		Points: make([]struct{ X, Y float64 }, 0, len(states)),
	}
	for _, x := range states {
		if len(x) < 2*n {
			continue
		}
		theta, r := x[leg], x[n+leg]
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: r * math.Cos(theta),
			Y: r * math.Sin(theta),
		})
	}
	return portrait
}

// PortraitToASCII renders the portrait on a character canvas with axes.
func PortraitToASCII(portrait *PolarPortrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
