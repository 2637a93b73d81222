package kernel

// Greedy never accepts a worse trial (p=0). Composed with the generic
// driver this realizes hill-climbing.
func Greedy[SC any]() Func[SC] {
	return func(_, _ SC) float64 { return 0 }
}

// EpsilonGreedy accepts any worse trial with fixed probability eps.
// eps=0 degenerates to Greedy; eps=1 degenerates to Random.
func EpsilonGreedy[SC any](eps float64) Func[SC] {
	eps = clamp01(eps)
	return func(_, _ SC) float64 { return eps }
}

// Random always accepts a worse trial, degrading the driver to an
// unbiased random walk over trials.
func Random[SC any]() Func[SC] {
	return func(_, _ SC) float64 { return 1 }
}
