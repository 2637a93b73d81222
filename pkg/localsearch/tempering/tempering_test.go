package tempering

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/gowalker/localsearch/pkg/localsearch/callback"
	"github.com/gowalker/localsearch/pkg/localsearch/examples/quadratic"
	"github.com/gowalker/localsearch/pkg/localsearch/model"
)

func TestWithGeometricBetasIsIncreasingAndBounded(t *testing.T) {
	ladder := WithGeometricBetas(0.1, 10, 5)
	if len(ladder) != 5 {
		t.Fatalf("len(ladder) = %d, want 5", len(ladder))
	}
	if ladder[0] != 0.1 {
		t.Errorf("ladder[0] = %v, want 0.1", ladder[0])
	}
	for i := 1; i < len(ladder); i++ {
		if ladder[i] <= ladder[i-1] {
			t.Errorf("ladder not strictly increasing at %d: %v <= %v", i, ladder[i], ladder[i-1])
		}
	}
	if last := ladder[len(ladder)-1]; last < 9.9 || last > 10.1 {
		t.Errorf("ladder[last] = %v, want ~10", last)
	}
}

func TestNewEmptyLadderReturnsError(t *testing.T) {
	m := quadratic.New(2, []float64{0, 0}, -5, 5)
	rng := rand.New(rand.NewSource(1))
	_, err := New[[]float64, struct{}, float64](m, nil, 10, 5, 1000, 1000, quadratic.ToFloat, rng)
	if err != model.ErrEmptyLadder {
		t.Fatalf("err = %v, want ErrEmptyLadder", err)
	}
}

func TestStepPreservesReplicaCount(t *testing.T) {
	m := quadratic.New(2, []float64{1, -1}, -5, 5)
	rng := rand.New(rand.NewSource(2))
	betas := WithGeometricBetas(0.1, 5, 4)
	d, err := New[[]float64, struct{}, float64](m, betas, 5, 3, 1000, 1000, quadratic.ToFloat, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		d.Step(i)
		if len(d.Replicas) != 4 {
			t.Fatalf("replica count = %d after step %d, want 4", len(d.Replicas), i)
		}
	}
}

func TestSwapAlternatesEvenOddPairs(t *testing.T) {
	m := quadratic.New(1, []float64{0}, -5, 5)
	rng := rand.New(rand.NewSource(3))
	betas := []float64{1, 2, 3, 4}
	d, err := New[[]float64, struct{}, float64](m, betas, 1, 1, 1000, 1000, quadratic.ToFloat, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.swapRound != 0 {
		t.Fatalf("swapRound = %d, want 0 initially", d.swapRound)
	}
	d.attemptSwaps() // round 0: pairs (0,1),(2,3)
	if d.swapRound != 1 {
		t.Errorf("swapRound = %d, want 1 after one round", d.swapRound)
	}
	d.attemptSwaps() // round 1: pair (1,2) only
	if d.swapRound != 2 {
		t.Errorf("swapRound = %d, want 2 after two rounds", d.swapRound)
	}
}

func TestOptimizeGlobalBestNeverWorsens(t *testing.T) {
	m := quadratic.New(2, []float64{1, -1}, -5, 5)
	rng := rand.New(rand.NewSource(4))
	betas := WithGeometricBetas(0.05, 5, 4)
	d, err := New[[]float64, struct{}, float64](m, betas, 5, 2, 1000, 1000, quadratic.ToFloat, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, initialBest := d.globalBest()
	prevBest := initialBest
	_, finalBest := d.Optimize(context.Background(), 40, time.Second, func(p callback.OptProgress[[]float64, float64]) {
		if p.Best.Score > prevBest {
			t.Fatalf("global best regressed at iter %d: %v -> %v", p.Iter, prevBest, p.Best.Score)
		}
		prevBest = p.Best.Score
	})
	if finalBest > initialBest {
		t.Errorf("global best regressed: %v -> %v", initialBest, finalBest)
	}
}

func TestPatienceOneExitsAfterFirstNonImprovingOuterIteration(t *testing.T) {
	m := quadratic.New(1, []float64{0}, -0.0001, 0.0001) // tiny range, easy to stall
	rng := rand.New(rand.NewSource(6))
	betas := WithGeometricBetas(0.1, 1, 3)
	d, err := New[[]float64, struct{}, float64](m, betas, 1, 5, 1, 1000, quadratic.ToFloat, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	iters := 0
	_, _ = d.Optimize(context.Background(), 10000, time.Second, func(p callback.OptProgress[[]float64, float64]) {
		iters = p.Iter
	})
	if iters > 20 {
		t.Errorf("patience=1 should exit quickly, ran %d outer iterations", iters)
	}
}
