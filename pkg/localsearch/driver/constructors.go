package driver

import (
	"math/rand"

	"github.com/gowalker/localsearch/pkg/localsearch/callback"
	"github.com/gowalker/localsearch/pkg/localsearch/kernel"
	"github.com/gowalker/localsearch/pkg/localsearch/model"
	"github.com/gowalker/localsearch/pkg/localsearch/schedule"
)

// validateBeta rejects a non-positive inverse-temperature, per spec.md
// §7's beta>0 constructor-time check.
func validateBeta(beta float64) error {
	if beta <= 0 {
		return model.ErrInvalidInput
	}
	return nil
}

// NewHillClimbing builds a Generic driver with the greedy kernel
// (epsilon=0): never accept a worse trial.
func NewHillClimbing[S, T any, SC model.Score](problem model.Problem[S, T, SC], nTrials, patience, returnIter int, rng *rand.Rand) *Generic[S, T, SC] {
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.Greedy[SC]()),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
	}
}

// NewEpsilonGreedy builds a Generic driver that accepts worse trials with
// fixed probability eps. Returns model.ErrInvalidInput if eps is outside
// [0,1].
func NewEpsilonGreedy[S, T any, SC model.Score](problem model.Problem[S, T, SC], eps float64, nTrials, patience, returnIter int, rng *rand.Rand) (*Generic[S, T, SC], error) {
	if eps < 0 || eps > 1 {
		return nil, model.ErrInvalidInput
	}
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.EpsilonGreedy[SC](eps)),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
	}, nil
}

// NewRandom builds a Generic driver that always accepts the best trial of
// the batch (an unbiased random walk over best-of-batch candidates).
func NewRandom[S, T any, SC model.Score](problem model.Problem[S, T, SC], nTrials, patience, returnIter int, rng *rand.Rand) *Generic[S, T, SC] {
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.Random[SC]()),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
	}
}

// NewMetropolis builds a Generic driver with the Metropolis kernel at a
// fixed beta (no scheduler attached). Returns model.ErrInvalidInput if
// beta is not strictly positive.
func NewMetropolis[S, T any, SC model.Score](problem model.Problem[S, T, SC], toFloat kernel.ToFloat[SC], beta float64, nTrials, patience, returnIter int, rng *rand.Rand) (*Generic[S, T, SC], error) {
	if err := validateBeta(beta); err != nil {
		return nil, err
	}
	betaVal := beta
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.Metropolis(toFloat, &betaVal)),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
	}, nil
}

// NewSimulatedAnnealing builds a Generic driver with the Metropolis
// kernel driven by a geometric cooling schedule, updated every
// updateFrequency iterations from the post-iteration hook. Returns
// model.ErrInvalidInput if beta0 is not strictly positive or gamma is
// outside (0,1].
func NewSimulatedAnnealing[S, T any, SC model.Score](problem model.Problem[S, T, SC], toFloat kernel.ToFloat[SC], beta0, gamma float64, updateFrequency, nTrials, patience, returnIter int, rng *rand.Rand) (*Generic[S, T, SC], error) {
	if err := validateBeta(beta0); err != nil {
		return nil, err
	}
	if gamma <= 0 || gamma > 1 {
		return nil, model.ErrInvalidInput
	}
	betaVal := beta0
	sched := schedule.NewGeometric(&betaVal, gamma, updateFrequency)
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.Metropolis(toFloat, &betaVal)),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		PostHook:   func(best, current SC, accepted bool) { sched.Step() },
		Rng:        rng,
	}, nil
}

// NewAdaptiveAnnealing builds a Generic driver with the Metropolis kernel
// driven by a target-acceptance scheduler. The scheduler's "observed
// acceptance" input is a rolling window over the last 50 iterations
// (callback.SlidingWindow), not the driver's own since-the-start
// AcceptanceCounter, so beta reacts to recent behavior rather than the
// whole run's history. Returns model.ErrInvalidInput if beta0 is not
// strictly positive. gamma here is the scheduler's update speed, not a
// geometric cooling rate, so it is not constrained to (0,1].
func NewAdaptiveAnnealing[S, T any, SC model.Score](problem model.Problem[S, T, SC], toFloat kernel.ToFloat[SC], beta0 float64, mode schedule.TargetAccMode, a0, a1, gamma float64, nIterHint, nTrials, patience, returnIter int, rng *rand.Rand) (*Generic[S, T, SC], error) {
	if err := validateBeta(beta0); err != nil {
		return nil, err
	}
	betaVal := beta0
	sched := schedule.NewAdaptive(&betaVal, mode, a0, a1, gamma, nIterHint)
	window := callback.NewSlidingWindow(50)
	iter := 0
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.Metropolis(toFloat, &betaVal)),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
		PostHook: func(best, current SC, wasAccepted bool) {
			iter++
			window.Enqueue(wasAccepted)
			sched.Step(iter, window.Ratio())
		},
	}, nil
}

// NewRelativeAnnealing builds a Generic driver with the relative-delta
// kernel at a fixed beta. Returns model.ErrInvalidInput if beta is not
// strictly positive.
func NewRelativeAnnealing[S, T any, SC model.Score](problem model.Problem[S, T, SC], toFloat kernel.ToFloat[SC], beta float64, nTrials, patience, returnIter int, rng *rand.Rand) (*Generic[S, T, SC], error) {
	if err := validateBeta(beta); err != nil {
		return nil, err
	}
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.Relative(toFloat, beta)),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
	}, nil
}

// NewLogisticAnnealing builds a Generic driver with the logistic kernel
// at a fixed weight w.
func NewLogisticAnnealing[S, T any, SC model.Score](problem model.Problem[S, T, SC], toFloat kernel.ToFloat[SC], w float64, nTrials, patience, returnIter int, rng *rand.Rand) *Generic[S, T, SC] {
	return &Generic[S, T, SC]{
		Problem:    problem,
		Kernel:     Kernel[SC](kernel.Logistic(toFloat, w)),
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
	}
}

// NewTsallis builds a Generic driver with the Tsallis relative kernel.
// The offset cell is owned by the returned driver, updated from the
// post-iteration hook to track best-so-far, as spec.md §4.2 requires
// ("offset tracking best-so-far... updated in the post-hook") while
// keeping the kernel itself a pure function of its explicit inputs.
// Returns model.ErrInvalidInput if q is not strictly greater than 1 or
// beta is not strictly positive.
func NewTsallis[S, T any, SC model.Score](problem model.Problem[S, T, SC], toFloat kernel.ToFloat[SC], q, beta, xi, pMin float64, nTrials, patience, returnIter int, rng *rand.Rand) (*Generic[S, T, SC], error) {
	if q <= 1 {
		return nil, model.ErrInvalidInput
	}
	if err := validateBeta(beta); err != nil {
		return nil, err
	}
	offset := new(float64)
	d := &Generic[S, T, SC]{
		Problem:    problem,
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
		PostHook:   func(best, current SC, accepted bool) { *offset = toFloat(best) },
	}
	d.Kernel = Kernel[SC](kernel.Tsallis(toFloat, q, beta, xi, pMin, offset))
	return d, nil
}

// NewGreatDeluge builds a Generic driver with the Great Deluge kernel.
// level starts at initialLevel and decays toward best in the
// post-iteration hook: level <- level - decay*(level-best).
func NewGreatDeluge[S, T any, SC model.Score](problem model.Problem[S, T, SC], toFloat kernel.ToFloat[SC], initialLevel, decay float64, nTrials, patience, returnIter int, rng *rand.Rand) *Generic[S, T, SC] {
	level := new(float64)
	*level = initialLevel
	d := &Generic[S, T, SC]{
		Problem:    problem,
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		Rng:        rng,
		PostHook: func(best, current SC, accepted bool) {
			*level = *level - decay*(*level-toFloat(best))
		},
	}
	d.Kernel = Kernel[SC](kernel.GreatDeluge(toFloat, level))
	return d
}
