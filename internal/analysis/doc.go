// Package analysis provides post-run tools for oscillator trajectories.
//
//   - [PhaseDifferences]: pairwise phase-difference series between legs
//   - [OrderParameter]: Kuramoto order parameter series
//   - [GeneratePolarPortrait]: (r·cosθ, r·sinθ) trajectory of one leg
//   - [PowerSpectrum]: spectrum of an amplitude trace for estimating the
//     realized stepping frequency
package analysis
