package analysis

import (
	"math"
	"math/cmplx"
)

func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency returns the peak of the power spectrum in Hz,
// skipping the DC bin. Useful for reading the realized stepping rate off
// a phase oscillation trace. Input is truncated to the largest power of
// two the radix-2 transform accepts.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 2 || dt <= 0 {
		return 0
	}
	n := 1
	for n*2 <= len(data) {
		n *= 2
	}
	ps := PowerSpectrum(data[:n])
	if len(ps) < 2 {
		return 0
	}
	best, bestVal := 1, ps[1]
	for i := 2; i < len(ps); i++ {
		if ps[i] > bestVal {
			best, bestVal = i, ps[i]
		}
	}
	return float64(best) / (float64(n) * dt)
}
