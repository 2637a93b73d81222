// Package tempering implements parallel tempering (spec component C9):
// independent Metropolis chains running at a fixed ladder of betas, with
// periodic adjacent-pair swap attempts that let low-temperature replicas
// borrow exploration from high-temperature ones.
package tempering

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

// WithGeometricBetas builds an increasing beta ladder of size r spaced
// geometrically between beta0 and betaMax (inclusive), per §4.7's
// with_geometric_betas.
func WithGeometricBetas(beta0, betaMax float64, r int) []float64 {
	if r < 1 {
		r = 1
	}
	if r == 1 {
		return []float64{beta0}
	}
	ladder := make([]float64, r)
	ratio := math.Pow(betaMax/beta0, 1/float64(r-1))
	beta := beta0
	for i := 0; i < r; i++ {
		ladder[i] = beta
		beta *= ratio
	}
	return ladder
}

// Driver runs R independent Metropolis replicas at a fixed beta ladder,
// attempting adjacent-pair swaps every SwapFrequency outer iterations.
type Driver[S, T any, SC model.Score] struct {
	Problem       model.Problem[S, T, SC]
	Replicas      []*driver.State[S, SC]
	Betas         []float64
	NTrials       int
	SwapFrequency int
	Patience      int // outer iterations without global-best improvement before Optimize stops
	ReturnIter    int
	ToFloat       kernel.ToFloat[SC]
	Rng           *rand.Rand

	swapRound  int
	stagnation int
}

// New constructs a Driver over the given beta ladder, seeding every
// replica from the problem's random-solution routine. Returns
// model.ErrEmptyLadder if betas is empty.
func New[S, T any, SC model.Score](problem model.Problem[S, T, SC], betas []float64, nTrials, swapFrequency, patience, returnIter int, toFloat kernel.ToFloat[SC], rng *rand.Rand) (*Driver[S, T, SC], error) {
	if len(betas) == 0 {
		return nil, model.ErrEmptyLadder
	}
	replicas := make([]*driver.State[S, SC], len(betas))
	for i := range betas {
		sol, sc, err := problem.GenerateRandomSolution(rng)
		if err != nil {
			return nil, &model.ModelError{Cause: err}
		}
		replicas[i] = driver.NewState[S, SC](sol, sc)
	}
	if swapFrequency < 1 {
		swapFrequency = 1
	}
	return &Driver[S, T, SC]{
		Problem:       problem,
		Replicas:      replicas,
		Betas:         betas,
		NTrials:       nTrials,
		SwapFrequency: swapFrequency,
		Patience:      patience,
		ReturnIter:    returnIter,
		ToFloat:       toFloat,
		Rng:           rng,
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

func (d *Driver[S, T, SC]) stepReplicas() {
	seeds := make([]int64, len(d.Replicas))
	for i := range d.Replicas {
		seeds[i] = d.Rng.Int63()
	}

	var g errgroup.Group
	for i := range d.Replicas {
		i := i
		beta := d.Betas[i]
		g.Go(func() error {
			replicaRng := rand.New(rand.NewSource(seeds[i]))
			member := &driver.Generic[S, T, SC]{
				Problem:    d.Problem,
				Kernel:     driver.Kernel[SC](kernel.Metropolis(d.ToFloat, &beta)),
				NTrials:    d.NTrials,
				Patience:   1 << 30,
				ReturnIter: d.returnIter(),
				Rng:        replicaRng,
			}
			member.Step(d.Replicas[i])
			return nil
		})
	}
	_ = g.Wait()
}

// attemptSwaps runs one round of adjacent-pair swap attempts, alternating
// even/odd pairs across successive calls per spec.md's resolution of the
// swap ordering.
func (d *Driver[S, T, SC]) attemptSwaps() {
	start := d.swapRound % 2
	d.swapRound++

	for i := start; i+1 < len(d.Replicas); i += 2 {
		j := i + 1
		ei := d.ToFloat(d.Replicas[i].CurrentScore)
		ej := d.ToFloat(d.Replicas[j].CurrentScore)
		delta := (d.Betas[i] - d.Betas[j]) * (ej - ei)
		pSwap := math.Min(1, math.Exp(delta))
		if d.Rng.Float64() < pSwap {
			d.Replicas[i].Current, d.Replicas[j].Current = d.Replicas[j].Current, d.Replicas[i].Current
			d.Replicas[i].CurrentScore, d.Replicas[j].CurrentScore = d.Replicas[j].CurrentScore, d.Replicas[i].CurrentScore
		}
	}
}

func (d *Driver[S, T, SC]) globalBest() (S, SC) {
	best := d.Replicas[0].Best
	bestScore := d.Replicas[0].BestScore
	for _, r := range d.Replicas[1:] {
		if r.BestScore < bestScore {
			best = r.Best
			bestScore = r.BestScore
		}
	}
	return best, bestScore
}

func (d *Driver[S, T, SC]) aggregateRatio() float64 {
	accepted, total := 0, 0
	for _, r := range d.Replicas {
		accepted += r.Counter.Accepted
		total += r.Counter.Total
	}
	if total < 1 {
		total = 1
	}
	return float64(accepted) / float64(total)
}

// Step runs exactly one outer iteration: a Metropolis step per replica,
// and — every SwapFrequency calls — one round of adjacent-pair swaps.
func (d *Driver[S, T, SC]) Step(iter int) (S, SC) {
	d.stepReplicas()
	if iter%d.SwapFrequency == 0 {
		d.attemptSwaps()
	}
	return d.globalBest()
}

// Optimize runs at most nIter outer iterations or until timeLimit
// elapses, returning the best-scored solution observed across every
// replica's history.
func (d *Driver[S, T, SC]) Optimize(ctx context.Context, nIter int, timeLimit time.Duration, progress callback.ProgressFn[S, SC]) (S, SC) {
	deadline := budget.New(timeLimit)
	deadline.Start(time.Now())

	globalBest, globalBestScore := d.globalBest()
	d.stagnation = 0
	for iter := 0; iter < nIter; iter++ {
		best, bestScore := d.Step(iter)
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
