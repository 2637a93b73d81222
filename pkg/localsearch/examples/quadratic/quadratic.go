// Package quadratic implements the separable quadratic-bowl example
// problem used throughout this library's tests and the CLI's demo
// command: minimize f(x) = sum((x_i - c_i)^2) over a hyperrectangle.
package quadratic

import (
	"math/rand"

	"github.com/gowalker/localsearch/pkg/localsearch/model"
)

// Model is a k-dimensional quadratic bowl centered at Centers, with each
// coordinate constrained to [Low, High].
type Model struct {
	model.DefaultHooks[[]float64, float64]
	K       int
	Centers []float64
	Low     float64
	High    float64
}

// New constructs a Model. k must equal len(centers).
func New(k int, centers []float64, low, high float64) *Model {
	return &Model{K: k, Centers: centers, Low: low, High: high}
}

// GenerateRandomSolution draws k independent uniform samples.
func (m *Model) GenerateRandomSolution(rng *rand.Rand) ([]float64, float64, error) {
	x := make([]float64, m.K)
	for i := range x {
		x[i] = m.Low + rng.Float64()*(m.High-m.Low)
	}
	return x, m.Evaluate(x), nil
}

// GenerateTrialSolution replaces one coordinate with a fresh uniform
// sample and re-evaluates from scratch — cheap enough that an incremental
// update isn't worth the complexity.
func (m *Model) GenerateTrialSolution(current []float64, currentScore float64, rng *rand.Rand) ([]float64, struct{}, float64) {
	next := make([]float64, len(current))
	copy(next, current)
	k := rng.Intn(m.K)
	next[k] = m.Low + rng.Float64()*(m.High-m.Low)
	return next, struct{}{}, m.Evaluate(next)
}

// Evaluate computes the quadratic score of x.
func (m *Model) Evaluate(x []float64) float64 {
	score := 0.0
	for i := 0; i < m.K; i++ {
		d := x[i] - m.Centers[i]
		score += d * d
	}
	return score
}

// ToFloat is the identity real projection, since Score is already
// float64 for this problem.
func ToFloat(sc float64) float64 { return sc }
