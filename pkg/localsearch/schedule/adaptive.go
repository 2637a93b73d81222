package schedule

import "math"

// TargetAccMode selects the target-acceptance curve an Adaptive scheduler
// follows over the course of a run.
type TargetAccMode int

const (
	// Constant holds the target acceptance fixed at A0.
	Constant TargetAccMode = iota
	// Linear interpolates linearly from A0 to A1.
	Linear
	// Exponential interpolates geometrically from A0 to A1.
	Exponential
	// Cosine eases from A0 to A1 along a cosine curve.
	Cosine
)

// Adaptive drives beta toward a time-varying target acceptance rate:
// beta <- beta * exp(-gamma * (target-observed)/target), observed measured
// since the last update via the supplied acceptance-ratio source.
type Adaptive struct {
	Beta  *float64
	Mode  TargetAccMode
	A0    float64 // target acceptance at iter=0
	A1    float64 // target acceptance at iter=NIter (unused for Constant)
	Gamma float64 // update speed
	NIter int     // total planned iterations, for fraction = iter/NIter
}

// NewAdaptive constructs an Adaptive scheduler.
func NewAdaptive(beta *float64, mode TargetAccMode, a0, a1, gamma float64, nIter int) *Adaptive {
	return &Adaptive{Beta: beta, Mode: mode, A0: a0, A1: a1, Gamma: gamma, NIter: nIter}
}

// TargetAcceptance returns the target acceptance rate at the given
// iteration, per the scheduler's curve.
func (a *Adaptive) TargetAcceptance(iter int) float64 {
	if a.Mode == Constant || a.NIter <= 0 {
		return a.A0
	}
	fraction := float64(iter) / float64(a.NIter)
	switch a.Mode {
	case Linear:
		return a.A0 + fraction*(a.A1-a.A0)
	case Exponential:
		if a.A0 == 0 {
			return a.A0
		}
		return a.A0 * math.Pow(a.A1/a.A0, fraction)
	case Cosine:
		return a.A1 + 0.5*(a.A0-a.A1)*(1+math.Cos(math.Pi*fraction))
	default:
		return a.A0
	}
}

// Step is the post-iteration hook: given the observed acceptance ratio
// since the last call and the current iteration, update beta toward the
// target acceptance curve.
func (a *Adaptive) Step(iter int, observedAcceptance float64) {
	target := a.TargetAcceptance(iter)
	if observedAcceptance <= 0 || target == 0 {
		return
	}
	*a.Beta = *a.Beta * math.Exp(-a.Gamma*(target-observedAcceptance)/target)
}
