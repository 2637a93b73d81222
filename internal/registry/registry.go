// Package registry is the seam between the ambient CLI/server layer and
// pkg/localsearch: it turns a store.JobConfig into a runnable optimization
// closure, resolving the generic Problem/Driver type pair the caller never
// needs to see. Mirrors the teacher's internal/opt.Optimizer adapter shape
// (objective in, best result out) generalized to this library's own driver
// types instead of an external optimizer.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gowalker/localsearch/internal/store"
	"github.com/gowalker/localsearch/pkg/localsearch/callback"
	"github.com/gowalker/localsearch/pkg/localsearch/driver"
	"github.com/gowalker/localsearch/pkg/localsearch/examples/quadratic"
	"github.com/gowalker/localsearch/pkg/localsearch/examples/tsp"
	"github.com/gowalker/localsearch/pkg/localsearch/facade"
	"github.com/gowalker/localsearch/pkg/localsearch/population"
	"github.com/gowalker/localsearch/pkg/localsearch/schedule"
	"github.com/gowalker/localsearch/pkg/localsearch/tabu"
	"github.com/gowalker/localsearch/pkg/localsearch/tempering"
)

// Problems and Algorithms list the built-in demo problems and algorithms
// a JobConfig may name.
var (
	Problems   = []string{"quadratic", "tsp"}
	Algorithms = []string{
		"hillclimbing", "epsilongreedy", "random", "metropolis", "sa",
		"adaptivesa", "relative", "logistic", "tsallis", "greatdeluge",
		"tabu", "population", "tempering",
	}
)

// ProgressFunc reports one completed iteration of a run, type-erased over
// whatever Solution type the underlying problem uses.
type ProgressFunc func(iteration int, score float64, solution json.RawMessage)

// Result packages the best solution and score a run found, with the
// solution JSON-encoded the same way store.Checkpoint.Solution is.
type Result struct {
	Solution json.RawMessage
	Score    float64
}

// Run builds the problem and driver named by config, runs it to budget,
// and returns the best solution found. If initial is non-nil it is decoded
// as the starting solution (resume); otherwise a random one is generated.
func Run(ctx context.Context, config store.JobConfig, initial json.RawMessage, timeLimit time.Duration, progress ProgressFunc) (Result, error) {
	switch config.Problem {
	case "quadratic":
		return runQuadratic(ctx, config, initial, timeLimit, progress)
	case "tsp":
		return runTSP(ctx, config, initial, timeLimit, progress)
	default:
		return Result{}, fmt.Errorf("unknown problem %q", config.Problem)
	}
}

const quadraticDim = 6

func quadraticProblem(seed int64) *quadratic.Model {
	rng := rand.New(rand.NewSource(seed))
	centers := make([]float64, quadraticDim)
	for i := range centers {
		centers[i] = -5 + rng.Float64()*10
	}
	return quadratic.New(quadraticDim, centers, -10, 10)
}

func runQuadratic(ctx context.Context, config store.JobConfig, initial json.RawMessage, timeLimit time.Duration, progress ProgressFunc) (Result, error) {
	problem := quadraticProblem(config.Seed)
	rng := rand.New(rand.NewSource(config.Seed + 1))

	var initialResult *facade.Result[[]float64, float64]
	if initial != nil {
		var sol []float64
		if err := json.Unmarshal(initial, &sol); err != nil {
			return Result{}, fmt.Errorf("decode initial solution: %w", err)
		}
		initialResult = &facade.Result[[]float64, float64]{Solution: sol, Score: problem.Evaluate(sol)}
	}

	wrap := func(p callback.OptProgress[[]float64, float64]) {
		if progress == nil {
			return
		}
		encoded, _ := json.Marshal(p.Best.Solution)
		progress(p.Iter, p.Best.Score, encoded)
	}

	nTrials, patience, returnIter := tuning(config)

	switch config.Algorithm {
	case "hillclimbing", "epsilongreedy", "random", "metropolis", "sa", "adaptivesa", "relative", "logistic", "tsallis", "greatdeluge":
		opt, err := buildSingleChain[[]float64, struct{}](problem, quadratic.ToFloat, config.Algorithm, nTrials, patience, returnIter, rng)
		if err != nil {
			return Result{}, err
		}
		res, err := facade.RunWithCallback[[]float64, struct{}, float64](ctx, problem, opt, initialResult, config.NIter, timeLimit, rng, wrap)
		if err != nil {
			return Result{}, err
		}
		return packResult(res.Solution, res.Score)
	case "population":
		members := buildQuadraticMembers(problem, config, rng)
		d, err := population.New[[]float64, struct{}, float64](problem, members, 1.0, 0.98, nTrials, patience, returnIter, quadratic.ToFloat, rng)
		if err != nil {
			return Result{}, err
		}
		sol, score := d.Optimize(ctx, config.NIter, timeLimit, wrap)
		return packResult(sol, score)
	case "tempering":
		betas := tempering.WithGeometricBetas(0.1, 10, 6)
		d, err := tempering.New[[]float64, struct{}, float64](problem, betas, nTrials, 5, patience, returnIter, quadratic.ToFloat, rng)
		if err != nil {
			return Result{}, err
		}
		sol, score := d.Optimize(ctx, config.NIter, timeLimit, wrap)
		return packResult(sol, score)
	case "tabu":
		return Result{}, fmt.Errorf("algorithm %q requires a problem with a comparable transition type; use tsp", config.Algorithm)
	default:
		return Result{}, fmt.Errorf("unknown algorithm %q", config.Algorithm)
	}
}

func buildQuadraticMembers(problem *quadratic.Model, config store.JobConfig, rng *rand.Rand) []struct {
	Solution []float64
	Score    float64
} {
	size := 20
	members := make([]struct {
		Solution []float64
		Score    float64
	}, size)
	for i := range members {
		sol, score, _ := problem.GenerateRandomSolution(rng)
		members[i].Solution, members[i].Score = sol, score
	}
	return members
}

const tspCities = 14

func tspProblem(seed int64) *tsp.Model {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, tspCities)
	ys := make([]float64, tspCities)
	cities := make([]int, tspCities)
	for i := range cities {
		cities[i] = i
		xs[i] = rng.Float64() * 100
		ys[i] = rng.Float64() * 100
	}
	distance := make(map[tsp.Edge]float64)
	for i := 0; i < tspCities; i++ {
		for j := i + 1; j < tspCities; j++ {
			dx, dy := xs[i]-xs[j], ys[i]-ys[j]
			distance[tsp.Edge{A: i, B: j}] = dx*dx + dy*dy
		}
	}
	for k, v := range distance {
		distance[k] = math.Sqrt(v)
	}
	return tsp.New(0, cities, distance)
}

func runTSP(ctx context.Context, config store.JobConfig, initial json.RawMessage, timeLimit time.Duration, progress ProgressFunc) (Result, error) {
	problem := tspProblem(config.Seed)
	rng := rand.New(rand.NewSource(config.Seed + 1))

	var initialResult *facade.Result[[]int, float64]
	if initial != nil {
		var sol []int
		if err := json.Unmarshal(initial, &sol); err != nil {
			return Result{}, fmt.Errorf("decode initial solution: %w", err)
		}
		initialResult = &facade.Result[[]int, float64]{Solution: sol, Score: problem.Evaluate(sol)}
	}

	wrap := func(p callback.OptProgress[[]int, float64]) {
		if progress == nil {
			return
		}
		encoded, _ := json.Marshal(p.Best.Solution)
		progress(p.Iter, p.Best.Score, encoded)
	}

	nTrials, patience, returnIter := tuning(config)

	switch config.Algorithm {
	case "hillclimbing", "epsilongreedy", "random", "metropolis", "sa", "adaptivesa", "relative", "logistic", "tsallis", "greatdeluge":
		opt, err := buildSingleChain[[]int, tsp.Transition](problem, tsp.ToFloat, config.Algorithm, nTrials, patience, returnIter, rng)
		if err != nil {
			return Result{}, err
		}
		res, err := facade.RunWithCallback[[]int, tsp.Transition, float64](ctx, problem, opt, initialResult, config.NIter, timeLimit, rng, wrap)
		if err != nil {
			return Result{}, err
		}
		return packResult(res.Solution, res.Score)
	case "tabu":
		td := &tabu.Driver[[]int, tsp.Transition, float64]{
			Problem:    problem,
			Memory:     tsp.NewEdgeTabuList(2 * tspCities),
			NTrials:    nTrials,
			Patience:   patience,
			ReturnIter: returnIter,
			Rng:        rng,
		}
		res, err := facade.RunWithCallback[[]int, tsp.Transition, float64](ctx, problem, td, initialResult, config.NIter, timeLimit, rng, wrap)
		if err != nil {
			return Result{}, err
		}
		return packResult(res.Solution, res.Score)
	case "population":
		members := buildTSPMembers(problem, rng)
		d, err := population.New[[]int, tsp.Transition, float64](problem, members, 1.0, 0.98, nTrials, patience, returnIter, tsp.ToFloat, rng)
		if err != nil {
			return Result{}, err
		}
		sol, score := d.Optimize(ctx, config.NIter, timeLimit, wrap)
		return packResult(sol, score)
	case "tempering":
		betas := tempering.WithGeometricBetas(0.01, 1, 6)
		d, err := tempering.New[[]int, tsp.Transition, float64](problem, betas, nTrials, 5, patience, returnIter, tsp.ToFloat, rng)
		if err != nil {
			return Result{}, err
		}
		sol, score := d.Optimize(ctx, config.NIter, timeLimit, wrap)
		return packResult(sol, score)
	default:
		return Result{}, fmt.Errorf("unknown algorithm %q", config.Algorithm)
	}
}

func buildTSPMembers(problem *tsp.Model, rng *rand.Rand) []struct {
	Solution []int
	Score    float64
} {
	size := 20
	members := make([]struct {
		Solution []int
		Score    float64
	}, size)
	for i := range members {
		sol, score, _ := problem.GenerateRandomSolution(rng)
		members[i].Solution, members[i].Score = sol, score
	}
	return members
}

// tuning derives NTrials/Patience/ReturnIter from a JobConfig. NTrials
// defaults to 5 when left zero. Patience defaults to NIter (never stop
// early) unless the caller set an explicit positive value. ReturnIter is
// always equal to Patience.
func tuning(config store.JobConfig) (nTrials, patience, returnIter int) {
	nTrials = config.NTrials
	if nTrials < 1 {
		nTrials = 5
	}
	patience = config.NIter
	if patience < 1 {
		patience = 1 << 30
	}
	if config.Patience > 0 {
		patience = config.Patience
	}
	returnIter = patience
	return nTrials, patience, returnIter
}

// buildSingleChain constructs the driver.Generic named by algorithm. S/T
// are inferred from problem, so one function serves both example problems.
// The only errors a well-formed built-in algorithm name can produce are
// model.ErrInvalidInput from a validated constructor; every literal
// passed below is a fixed, in-range constant, so an error here would
// indicate a bug in this function rather than bad caller input.
func buildSingleChain[S, T any](problem interface {
	GenerateRandomSolution(rng *rand.Rand) (S, float64, error)
	GenerateTrialSolution(current S, currentScore float64, rng *rand.Rand) (S, T, float64)
	PreprocessSolution(s S, sc float64) (S, float64, error)
	PostprocessSolution(s S, sc float64) (S, float64)
}, toFloat func(float64) float64, algorithm string, nTrials, patience, returnIter int, rng *rand.Rand) (*driver.Generic[S, T, float64], error) {
	switch algorithm {
	case "epsilongreedy":
		return driver.NewEpsilonGreedy[S, T, float64](problem, 0.1, nTrials, patience, returnIter, rng)
	case "random":
		return driver.NewRandom[S, T, float64](problem, nTrials, patience, returnIter, rng), nil
	case "metropolis":
		return driver.NewMetropolis[S, T, float64](problem, toFloat, 1.0, nTrials, patience, returnIter, rng)
	case "sa":
		return driver.NewSimulatedAnnealing[S, T, float64](problem, toFloat, 0.1, 0.99, 10, nTrials, patience, returnIter, rng)
	case "adaptivesa":
		return driver.NewAdaptiveAnnealing[S, T, float64](problem, toFloat, 0.1, schedule.Linear, 0.4, 0.01, 1.05, patience, nTrials, patience, returnIter, rng)
	case "relative":
		return driver.NewRelativeAnnealing[S, T, float64](problem, toFloat, 1.0, nTrials, patience, returnIter, rng)
	case "logistic":
		return driver.NewLogisticAnnealing[S, T, float64](problem, toFloat, 1.0, nTrials, patience, returnIter, rng), nil
	case "tsallis":
		return driver.NewTsallis[S, T, float64](problem, toFloat, 1.5, 1.0, 1e-9, 0, nTrials, patience, returnIter, rng)
	case "greatdeluge":
		return driver.NewGreatDeluge[S, T, float64](problem, toFloat, 1e6, 0.01, nTrials, patience, returnIter, rng), nil
	default: // "hillclimbing" and any unrecognized name default to greedy
		return driver.NewHillClimbing[S, T, float64](problem, nTrials, patience, returnIter, rng), nil
	}
}

func packResult(sol any, score float64) (Result, error) {
	data, err := json.Marshal(sol)
	if err != nil {
		return Result{}, fmt.Errorf("encode solution: %w", err)
	}
	return Result{Solution: data, Score: score}, nil
}
