// Package driver implements the generic local-search step loop (spec
// component C6): parallel trial sampling, best-of-batch selection,
// acceptance, and the canonical state-update order that every concrete
// algorithm in this library specializes by choice of acceptance kernel
// and post-iteration hook.
package driver

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gowalker/localsearch/pkg/localsearch/budget"
	"github.com/gowalker/localsearch/pkg/localsearch/callback"
	"github.com/gowalker/localsearch/pkg/localsearch/model"
)

// Kernel is an acceptance kernel, consulted only when the best trial of a
// batch is strictly worse than current (the better-or-equal case is
// always accepted and never reaches a kernel).
type Kernel[SC any] func(current, trial SC) float64

// PostHook runs once per iteration, after bookkeeping and before the
// patience/time-limit checks (the canonical order's step 5). It receives
// the iteration's best and current score, plus whether this iteration's
// trial was accepted, so schedule-state updates (beta, Tsallis offset,
// Great Deluge water level, or a target-acceptance tracker) can react to
// them.
type PostHook[SC any] func(best, current SC, accepted bool)

// State holds one driver's current/best solution, score, and bookkeeping.
// Exposing it lets composite drivers (tabu, population, tempering) drive
// a single canonical iteration via Step instead of the full Optimize
// loop.
type State[S any, SC any] struct {
	Current      S
	CurrentScore SC
	Best         S
	BestScore    SC
	Snapshot     *callback.Snapshot[S, SC]
	Counter      callback.AcceptanceCounter
	Stagnation   int
}

// NewState constructs a State seeded at the given initial solution.
func NewState[S any, SC any](initial S, initialScore SC) *State[S, SC] {
	return &State[S, SC]{
		Current:      initial,
		CurrentScore: initialScore,
		Best:         initial,
		BestScore:    initialScore,
		Snapshot:     &callback.Snapshot[S, SC]{Solution: initial, Score: initialScore},
	}
}

// Generic is the canonical step/driver loop (§4.1). S is the solution
// type, T the transition type (sampled but discarded here — only the tabu
// engine consumes it), SC the score type.
type Generic[S, T any, SC model.Score] struct {
	Problem    model.Problem[S, T, SC]
	Kernel     Kernel[SC] // nil means "never accept a worse trial" (greedy)
	NTrials    int
	Patience   int
	ReturnIter int
	PostHook   PostHook[SC] // optional
	Rng        *rand.Rand
}

func (d *Generic[S, T, SC]) patience() int {
	if d.Patience < 1 {
		return 1
	}
	return d.Patience
}

func (d *Generic[S, T, SC]) nTrials() int {
	if d.NTrials < 1 {
		return 1
	}
	return d.NTrials
}

func (d *Generic[S, T, SC]) returnIter() int {
	if d.ReturnIter < 1 {
		return 1 << 30
	}
	return d.ReturnIter
}

type candidate[S any, SC any] struct {
	solution S
	score    SC
}

// sampleBatch generates NTrials independent candidates in parallel, each
// with an independent PRNG stream seeded from the driver's root PRNG
// before the fan-out (the root PRNG itself is only ever touched from the
// single-threaded bookkeeping phase). It returns the best-of-batch
// candidate, ties broken by lowest index.
func (d *Generic[S, T, SC]) sampleBatch(current S, currentScore SC) (S, SC) {
	n := d.nTrials()
	candidates := make([]candidate[S, SC], n)
	seeds := make([]int64, n)
	for i := 0; i < n; i++ {
		seeds[i] = d.Rng.Int63()
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			workerRng := rand.New(rand.NewSource(seeds[i]))
			s, _, sc := d.Problem.GenerateTrialSolution(current, currentScore, workerRng)
			candidates[i] = candidate[S, SC]{solution: s, score: sc}
			return nil
		})
	}
	_ = g.Wait() // GenerateTrialSolution is infallible by contract (§6.1)

	bestIdx := 0
	for i := 1; i < n; i++ {
		if candidates[i].score < candidates[bestIdx].score {
			bestIdx = i
		}
	}
	return candidates[bestIdx].solution, candidates[bestIdx].score
}

func (d *Generic[S, T, SC]) decide(currentScore, trialScore SC) bool {
	if trialScore <= currentScore {
		return true
	}
	if d.Kernel == nil {
		return false
	}
	p := d.Kernel(currentScore, trialScore)
	return d.Rng.Float64() < p
}

// Step runs exactly one canonical iteration: sample, decide, then the
// canonical state-update order (§4.1 step 4, sub-steps 1-5 — the
// patience/time-limit/callback sub-steps 6-8 are the caller's
// responsibility, since composite drivers like population annealing and
// parallel tempering run Step once per member/replica per outer
// iteration and apply those checks at the outer level instead).
func (d *Generic[S, T, SC]) Step(st *State[S, SC]) (accepted bool) {
	trial, trialScore := d.sampleBatch(st.Current, st.CurrentScore)
	accepted = d.decide(st.CurrentScore, trialScore)

	if accepted {
		st.Current = trial
		st.CurrentScore = trialScore
		st.Counter.Accepted++
	}
	if st.CurrentScore < st.BestScore {
		st.Best = st.Current
		st.BestScore = st.CurrentScore
		st.Snapshot = &callback.Snapshot[S, SC]{Solution: st.Best, Score: st.BestScore}
		st.Stagnation = 0
	} else {
		st.Stagnation++
	}
	st.Counter.Total++
	if st.Stagnation >= d.returnIter() {
		st.Current = st.Best
		st.CurrentScore = st.BestScore
	}
	if d.PostHook != nil {
		d.PostHook(st.BestScore, st.CurrentScore, accepted)
	}
	return accepted
}

// Optimize runs at most nIter iterations or until timeLimit elapses,
// whichever comes first, and returns the best-scored solution observed.
// It never fails; problem-layer failures are surfaced only by the façade
// during initialization (§4.1).
func (d *Generic[S, T, SC]) Optimize(ctx context.Context, initial S, initialScore SC, nIter int, timeLimit time.Duration, progress callback.ProgressFn[S, SC]) (S, SC) {
	d.Patience = d.patience()
	st := NewState[S, SC](initial, initialScore)
	deadline := budget.New(timeLimit)
	deadline.Start(time.Now())

	for iter := 0; iter < nIter; iter++ {
		d.Step(st)

		if st.Stagnation >= d.Patience {
			break
		}
		if deadline.Expired(time.Now()) {
			break
		}
		if ctx != nil && ctx.Err() != nil {
			break
		}
		if progress != nil {
			progress(callback.OptProgress[S, SC]{
				Iter:            iter + 1,
				AcceptanceRatio: st.Counter.Ratio(),
				Best:            st.Snapshot,
			})
		}
	}
	return st.Best, st.BestScore
}
