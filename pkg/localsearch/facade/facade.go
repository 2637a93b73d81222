// Package facade implements the run façade (spec component C11): the
// thin seam between a caller and any driver that satisfies the Optimizer
// contract, handling initial-solution acquisition, pre/postprocessing,
// and result packaging.
package facade

import (
	"context"
	"math/rand"
	"time"

	"github.com/gowalker/localsearch/pkg/localsearch/callback"
	"github.com/gowalker/localsearch/pkg/localsearch/model"
)

// Optimizer is the contract every single-chain driver (driver.Generic,
// tabu.Driver) satisfies: run to budget, return the best solution found.
type Optimizer[S any, SC model.Score] interface {
	Optimize(ctx context.Context, initial S, initialScore SC, nIter int, timeLimit time.Duration, progress callback.ProgressFn[S, SC]) (S, SC)
}

// Result packages a completed run's best-found solution and score.
type Result[S any, SC model.Score] struct {
	Solution S
	Score    SC
}

// Run acquires an initial solution (generating one at random if initial
// is nil), preprocesses it, drives the optimizer, postprocesses the
// result, and returns it — with a no-op progress callback (§4.8).
func Run[S, T any, SC model.Score](ctx context.Context, problem model.Problem[S, T, SC], opt Optimizer[S, SC], initial *Result[S, SC], nIter int, timeLimit time.Duration, rng *rand.Rand) (Result[S, SC], error) {
	return RunWithCallback(ctx, problem, opt, initial, nIter, timeLimit, rng, nil)
}

// RunWithCallback is Run, but the caller supplies the progress callback
// invoked once per completed iteration.
func RunWithCallback[S, T any, SC model.Score](ctx context.Context, problem model.Problem[S, T, SC], opt Optimizer[S, SC], initial *Result[S, SC], nIter int, timeLimit time.Duration, rng *rand.Rand, progress callback.ProgressFn[S, SC]) (Result[S, SC], error) {
	var solution S
	var score SC

	if initial != nil {
		solution, score = initial.Solution, initial.Score
	} else {
		sol, sc, err := problem.GenerateRandomSolution(rng)
		if err != nil {
			return Result[S, SC]{}, &model.ModelError{Cause: err}
		}
		solution, score = sol, sc
	}

	pre, preScore, err := problem.PreprocessSolution(solution, score)
	if err != nil {
		return Result[S, SC]{}, &model.ModelError{Cause: err}
	}

	best, bestScore := opt.Optimize(ctx, pre, preScore, nIter, timeLimit, progress)
	post, postScore := problem.PostprocessSolution(best, bestScore)

	return Result[S, SC]{Solution: post, Score: postScore}, nil
}
