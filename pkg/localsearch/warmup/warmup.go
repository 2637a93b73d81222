// Package warmup implements the warmup-based temperature tuning shared by
// Metropolis, simulated annealing, adaptive annealing, and the
// parallel-tempering ladder tuner (spec component C10): sample energy
// differences from a random walk, then invert to the beta that yields a
// target acceptance probability.
package warmup

import (
	"math"
	"math/rand"
)

// Sampler is the minimal surface warmup tuning needs from a Problem,
// expressed as plain functions rather than model.Problem's generic
// interface to avoid importing the model package here.
type Sampler[S, SC any] struct {
	RandomSolution func(rng *rand.Rand) (S, SC, error)
	TrialSolution  func(current S, currentScore SC, rng *rand.Rand) (S, SC)
	ToFloat        func(SC) float64
}

// EnergyDiffs runs n warmup trials from a random initial solution and
// returns the positive score differences observed (delta = trial-current,
// kept only when delta > 0), mirroring the random-walk warmup shared by
// every scheduler that needs an initial temperature guess.
func (s Sampler[S, SC]) EnergyDiffs(rng *rand.Rand, n int) ([]float64, error) {
	current, currentScore, err := s.RandomSolution(rng)
	if err != nil {
		return nil, err
	}
	diffs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		trial, trialScore := s.TrialSolution(current, currentScore, rng)
		d := s.ToFloat(trialScore) - s.ToFloat(currentScore)
		if d > 0 {
			diffs = append(diffs, d)
		}
		current, currentScore = trial, trialScore
	}
	return diffs, nil
}

// TuneBeta picks beta>0 such that mean(exp(-beta*delta)) approximates
// target, by bisection over a wide bracket (spec.md §4.4 calls for
// bisection rather than the closed-form estimate some reference
// implementations use). Returns 1 when diffs is empty (no uphill move was
// observed during warmup, so there is nothing to invert).
func TuneBeta(diffs []float64, target float64) float64 {
	if len(diffs) == 0 {
		return 1
	}
	meanAcceptance := func(beta float64) float64 {
		sum := 0.0
		for _, d := range diffs {
			sum += saturatingExp(-beta * d)
		}
		return sum / float64(len(diffs))
	}
	lo, hi := 1e-9, 1e9
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if meanAcceptance(mid) > target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func saturatingExp(x float64) float64 {
	switch {
	case x >= 0:
		return 1
	case x < -745:
		return 0
	default:
		return math.Exp(x)
	}
}
