// Package schedule implements the time-varying temperature/weight updates
// of spec component C5: geometric cooling and adaptive-to-target
// acceptance scheduling. Every scheduler here is applied from the
// driver's post-iteration hook (§4.1 step 5), never from inside an
// acceptance kernel.
package schedule

import "math"

// Geometric cools beta every Freq attempted iterations: beta <- beta/gamma.
// gamma<1 raises beta (lowers temperature).
type Geometric struct {
	Beta  *float64
	Gamma float64
	Freq  int
	count int
}

// NewGeometric constructs a Geometric scheduler over beta, defaulting
// Freq to 1 (update every iteration) when non-positive.
func NewGeometric(beta *float64, gamma float64, freq int) *Geometric {
	if freq < 1 {
		freq = 1
	}
	return &Geometric{Beta: beta, Gamma: gamma, Freq: freq}
}

// Step is the post-iteration hook.
func (g *Geometric) Step() {
	g.count++
	if g.count >= g.Freq {
		g.count = 0
		*g.Beta = *g.Beta / g.Gamma
	}
}

// TuneCoolingRate returns gamma such that repeatedly applying beta <-
// beta/gamma carries beta0 to betaFinal over n steps:
// (beta0/betaFinal)^(1/n).
func TuneCoolingRate(beta0, betaFinal float64, n int) float64 {
	if n <= 0 {
		return 1
	}
	return math.Pow(beta0/betaFinal, 1/float64(n))
}
