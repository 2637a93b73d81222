package model

import "math/rand"

// Problem is the contract a caller implements to describe a solution
// space: random initialization, neighbor (trial) generation, scoring, and
// optional pre/postprocessing. S is the solution type, T the transition
// (move descriptor, consumed only by the tabu engine), SC the score type.
type Problem[S, T any, SC Score] interface {
	// GenerateRandomSolution must be a deterministic function of rng; it
	// may fail (e.g. the problem cannot construct a feasible solution).
	GenerateRandomSolution(rng *rand.Rand) (S, SC, error)

	// GenerateTrialSolution must produce a scored neighbor of current. It
	// is infallible by contract: an implementation that cannot produce a
	// genuine neighbor returns current unchanged with its score, which the
	// driver always accepts.
	GenerateTrialSolution(current S, currentScore SC, rng *rand.Rand) (S, T, SC)

	// PreprocessSolution runs once before optimization begins.
	PreprocessSolution(s S, sc SC) (S, SC, error)

	// PostprocessSolution runs once after optimization ends and is
	// infallible.
	PostprocessSolution(s S, sc SC) (S, SC)
}

// DefaultHooks implements identity PreprocessSolution/PostprocessSolution.
// Embed it in a Problem implementation that needs neither step.
type DefaultHooks[S any, SC Score] struct{}

func (DefaultHooks[S, SC]) PreprocessSolution(s S, sc SC) (S, SC, error) {
	return s, sc, nil
}

func (DefaultHooks[S, SC]) PostprocessSolution(s S, sc SC) (S, SC) {
	return s, sc
}
