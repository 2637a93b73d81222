// Package tabu implements the tabu search engine (spec component C7): a
// driver whose contract is identical to the generic driver (§4.1) except
// for candidate selection, which sorts the trial batch by score and picks
// the first candidate that is either not tabu or satisfies aspiration
// (strictly better than best-so-far), rather than a single best-of-batch
// candidate run through an acceptance kernel.
package tabu

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gowalker/localsearch/pkg/localsearch/budget"
	"github.com/gowalker/localsearch/pkg/localsearch/callback"
	"github.com/gowalker/localsearch/pkg/localsearch/model"
)

// List is the move-memory contract a caller supplies (§6.4): set-like
// membership over transitions, FIFO eviction policy is the
// implementation's choice.
type List[T any] interface {
	Contains(t T) bool
	Append(t T)
	SetSize(k int)
}

// PostHook runs once per iteration after bookkeeping, mirroring
// driver.PostHook's shape.
type PostHook[SC any] func(best, current SC, accepted bool)

// State holds one tabu run's current/best solution, score, and bookkeeping.
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

// Driver is the tabu engine. S is the solution type, T the transition type
// (consulted against Memory), SC the score type.
type Driver[S, T any, SC model.Score] struct {
	Problem    model.Problem[S, T, SC]
	Memory     List[T]
	NTrials    int
	Patience   int
	ReturnIter int
	PostHook   PostHook[SC] // optional
	Rng        *rand.Rand
}

func (d *Driver[S, T, SC]) patience() int {
	if d.Patience < 1 {
		return 1
	}
	return d.Patience
}

func (d *Driver[S, T, SC]) nTrials() int {
	if d.NTrials < 1 {
		return 1
	}
	return d.NTrials
}

func (d *Driver[S, T, SC]) returnIter() int {
	if d.ReturnIter < 1 {
		return 1 << 30
	}
	return d.ReturnIter
}

type candidate[S, T any, SC any] struct {
	solution   S
	transition T
	score      SC
}

// sampleBatch generates NTrials independent candidates in parallel, each
// with an independent PRNG stream seeded from the driver's root PRNG
// before the fan-out, identical in discipline to driver.Generic's
// sampleBatch.
func (d *Driver[S, T, SC]) sampleBatch(current S, currentScore SC) []candidate[S, T, SC] {
	n := d.nTrials()
	candidates := make([]candidate[S, T, SC], n)
	seeds := make([]int64, n)
	for i := 0; i < n; i++ {
		seeds[i] = d.Rng.Int63()
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			workerRng := rand.New(rand.NewSource(seeds[i]))
			s, tr, sc := d.Problem.GenerateTrialSolution(current, currentScore, workerRng)
			candidates[i] = candidate[S, T, SC]{solution: s, transition: tr, score: sc}
			return nil
		})
	}
	_ = g.Wait()
	return candidates
}

// Step runs exactly one canonical tabu iteration: sort the batch by score
// ascending, pick the first admissible candidate (aspiration or
// non-tabu), then apply the same bookkeeping order as the generic driver.
// If no candidate is admissible the iteration is rejected: stagnation and
// total are updated, accepted is not, and the tabu memory is untouched
// (this repo's resolution of the "no fallback" case, rather than the
// original's fallback to the best candidate regardless of tabu status).
func (d *Driver[S, T, SC]) Step(st *State[S, SC]) (accepted bool) {
	candidates := d.sampleBatch(st.Current, st.CurrentScore)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	chosen := -1
	for i, c := range candidates {
		if c.score < st.BestScore || !d.Memory.Contains(c.transition) {
			chosen = i
			break
		}
	}

	if chosen >= 0 {
		accepted = true
		st.Current = candidates[chosen].solution
		st.CurrentScore = candidates[chosen].score
		st.Counter.Accepted++
		d.Memory.Append(candidates[chosen].transition)
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
func (d *Driver[S, T, SC]) Optimize(ctx context.Context, initial S, initialScore SC, nIter int, timeLimit time.Duration, progress callback.ProgressFn[S, SC]) (S, SC) {
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
