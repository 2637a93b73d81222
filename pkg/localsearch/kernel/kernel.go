// Package kernel implements the acceptance-probability functions of
// spec component C4: pure functions mapping (current, trial) to an
// acceptance probability. The driver only ever calls a Func when the
// trial is worse than current (best_trial_score > current_score); the
// better-or-equal case is always accepted upstream and never reaches a
// kernel. Every Func is therefore written against spec.md §4.2's
// "formula for worse trial (Δ>0)" column only.
package kernel

import "math"

// Func is an acceptance kernel.
type Func[SC any] func(current, trial SC) float64

// ToFloat projects a Score to a finite real number for kernels that need
// arithmetic. Supplied by the caller rather than demanded by the Score
// constraint itself: Greedy, EpsilonGreedy, and Random never call it.
type ToFloat[SC any] func(SC) float64

// saturatingExp clamps math.Exp's argument before evaluating it so a very
// negative exponent underflows to 0 instead of relying on IEEE 754
// underflow behavior, and a non-negative exponent (which should not occur
// for a well-formed worse-trial delta, but can under an unusual score
// projection) saturates to 1 rather than overflowing.
func saturatingExp(x float64) float64 {
	switch {
	case x >= 0:
		return 1
	case x < -745: // math.Exp(x) underflows to 0 below this
		return 0
	default:
		return math.Exp(x)
	}
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
