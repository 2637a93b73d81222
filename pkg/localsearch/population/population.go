// Package population implements population annealing (spec component
// C8): a population of independent SA chains cooled in lockstep, with
// Boltzmann-weighted resampling applied once per outer iteration.
package population

import (
	"context"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gowalker/localsearch/pkg/localsearch/budget"
	"github.com/gowalker/localsearch/pkg/localsearch/callback"
	"github.com/gowalker/localsearch/pkg/localsearch/driver"
	"github.com/gowalker/localsearch/pkg/localsearch/kernel"
	"github.com/gowalker/localsearch/pkg/localsearch/model"
)

// Driver runs an outer population-annealing loop on top of per-member
// driver.State/driver.Generic SA chains. Members never mutate a Solution
// in place (every problem in this repo returns freshly allocated trial
// solutions, per §6.1's contract), so resampled members can safely alias
// a source member's Current/Best values without cloning them.
type Driver[S, T any, SC model.Score] struct {
	Problem    model.Problem[S, T, SC]
	Members    []*driver.State[S, SC]
	Beta       float64
	Gamma      float64 // cooling rate: beta <- beta/gamma each outer iteration
	NTrials    int     // internal candidates per member per outer iteration
	Patience   int     // outer iterations without global-best improvement before Optimize stops
	ReturnIter int     // per-member return-to-best threshold
	ToFloat    kernel.ToFloat[SC]
	Rng        *rand.Rand

	stagnation int
}

// New constructs a population-annealing Driver seeded from initial
// (solution, score) pairs. Returns model.ErrEmptyPopulation if members is
// empty.
func New[S, T any, SC model.Score](problem model.Problem[S, T, SC], initial []struct {
	Solution S
	Score    SC
}, beta0, gamma float64, nTrials, patience, returnIter int, toFloat kernel.ToFloat[SC], rng *rand.Rand) (*Driver[S, T, SC], error) {
	if len(initial) == 0 {
		return nil, model.ErrEmptyPopulation
	}
	members := make([]*driver.State[S, SC], len(initial))
	for i, m := range initial {
		members[i] = driver.NewState[S, SC](m.Solution, m.Score)
	}
	return &Driver[S, T, SC]{
		Problem:    problem,
		Members:    members,
		Beta:       beta0,
		Gamma:      gamma,
		NTrials:    nTrials,
		Patience:   patience,
		ReturnIter: returnIter,
		ToFloat:    toFloat,
		Rng:        rng,
	}, nil
}

func (d *Driver[S, T, SC]) patience() int {
	if d.Patience < 1 {
		return 1
	}
	return d.Patience
}

func (d *Driver[S, T, SC]) returnIter() int {
	if d.ReturnIter < 1 {
		return 1 << 30
	}
	return d.ReturnIter
}

// stepMembers runs one SA iteration per member in parallel, each seeded
// from the population's root PRNG before the fan-out, mirroring the
// generic driver's PRNG discipline.
func (d *Driver[S, T, SC]) stepMembers() {
	seeds := make([]int64, len(d.Members))
	for i := range d.Members {
		seeds[i] = d.Rng.Int63()
	}

	betaVal := d.Beta
	var g errgroup.Group
	for i := range d.Members {
		i := i
		g.Go(func() error {
			memberRng := rand.New(rand.NewSource(seeds[i]))
			member := &driver.Generic[S, T, SC]{
				Problem:    d.Problem,
				Kernel:     driver.Kernel[SC](kernel.Metropolis(d.ToFloat, &betaVal)),
				NTrials:    d.NTrials,
				Patience:   1 << 30,
				ReturnIter: d.returnIter(),
				Rng:        memberRng,
			}
			member.Step(d.Members[i])
			return nil
		})
	}
	_ = g.Wait()
}

// resample replaces the population with M draws, with replacement, from
// a Boltzmann distribution over current scores (min-subtracted for
// numerical stability), per spec.md §4.6 step 3-4.
func (d *Driver[S, T, SC]) resample() {
	n := len(d.Members)
	scores := make([]float64, n)
	minSc := math.Inf(1)
	for i, m := range d.Members {
		scores[i] = d.ToFloat(m.CurrentScore)
		if scores[i] < minSc {
			minSc = scores[i]
		}
	}

	weights := make([]float64, n)
	total := 0.0
	for i, sc := range scores {
		w := math.Exp(-d.Beta * (sc - minSc))
		weights[i] = w
		total += w
	}
	if total <= 0 {
		// Degenerate: every weight underflowed to zero. Fall back to a
		// uniform distribution rather than dividing by zero.
		for i := range weights {
			weights[i] = 1
		}
		total = float64(n)
	}

	cumulative := make([]float64, n)
	running := 0.0
	for i, w := range weights {
		running += w / total
		cumulative[i] = running
	}

	resampled := make([]*driver.State[S, SC], n)
	for i := 0; i < n; i++ {
		u := d.Rng.Float64()
		idx := n - 1
		for j, c := range cumulative {
			if u < c {
				idx = j
				break
			}
		}
		src := d.Members[idx]
		resampled[i] = &driver.State[S, SC]{
			Current:      src.Current,
			CurrentScore: src.CurrentScore,
			Best:         src.Best,
			BestScore:    src.BestScore,
			Snapshot:     src.Snapshot,
			Counter:      src.Counter,
			Stagnation:   src.Stagnation,
		}
	}
	d.Members = resampled
}

func (d *Driver[S, T, SC]) globalBest() (S, SC) {
	best := d.Members[0].Best
	bestScore := d.Members[0].BestScore
	for _, m := range d.Members[1:] {
		if m.BestScore < bestScore {
			best = m.Best
			bestScore = m.BestScore
		}
	}
	return best, bestScore
}

func (d *Driver[S, T, SC]) aggregateRatio() float64 {
	accepted, total := 0, 0
	for _, m := range d.Members {
		accepted += m.Counter.Accepted
		total += m.Counter.Total
	}
	if total < 1 {
		total = 1
	}
	return float64(accepted) / float64(total)
}

// Step runs exactly one outer population-annealing iteration (§4.6 steps
// 1-5): per-member SA step, cool, reweight, resample, update global best.
func (d *Driver[S, T, SC]) Step() (S, SC) {
	d.stepMembers()
	d.Beta = d.Beta / d.Gamma
	d.resample()
	return d.globalBest()
}

// Optimize runs at most nIter outer iterations or until timeLimit
// elapses, returning the best-scored solution observed across the
// population's history.
func (d *Driver[S, T, SC]) Optimize(ctx context.Context, nIter int, timeLimit time.Duration, progress callback.ProgressFn[S, SC]) (S, SC) {
	deadline := budget.New(timeLimit)
	deadline.Start(time.Now())

	globalBest, globalBestScore := d.globalBest()
	d.stagnation = 0
	for iter := 0; iter < nIter; iter++ {
		best, bestScore := d.Step()
		if bestScore < globalBestScore {
			globalBest, globalBestScore = best, bestScore
			d.stagnation = 0
		} else {
			d.stagnation++
		}

		if d.stagnation >= d.patience() {
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
				AcceptanceRatio: d.aggregateRatio(),
				Best:            &callback.Snapshot[S, SC]{Solution: globalBest, Score: globalBestScore},
			})
		}
	}
	return globalBest, globalBestScore
}
