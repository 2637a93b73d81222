package warmup

import (
	"math"
	"math/rand"
	"testing"
)

func TestEnergyDiffsKeepsOnlyPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := Sampler[float64, float64]{
		RandomSolution: func(rng *rand.Rand) (float64, float64, error) {
			return 0, 0, nil
		},
		TrialSolution: func(current, currentScore float64, rng *rand.Rand) (float64, float64) {
			next := currentScore + rng.Float64() - 0.5
			return next, next
		},
		ToFloat: func(v float64) float64 { return v },
	}
	diffs, err := s.EnergyDiffs(rng, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range diffs {
		if d <= 0 {
			t.Fatalf("EnergyDiffs kept a non-positive delta: %v", d)
		}
	}
	if len(diffs) == 0 {
		t.Fatal("expected some positive deltas from a random walk")
	}
}

func TestTuneBetaAchievesTargetAcceptance(t *testing.T) {
	diffs := make([]float64, 0, 1000)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		diffs = append(diffs, rng.Float64()*5+0.01)
	}
	target := 0.3
	beta := TuneBeta(diffs, target)

	sum := 0.0
	for _, d := range diffs {
		sum += math.Exp(-beta * d)
	}
	achieved := sum / float64(len(diffs))
	if math.Abs(achieved-target) > 0.02 {
		t.Errorf("achieved acceptance %v, want within 0.02 of target %v", achieved, target)
	}
}

func TestTuneBetaEmptyDiffsReturnsOne(t *testing.T) {
	if got := TuneBeta(nil, 0.5); got != 1 {
		t.Errorf("TuneBeta(nil, ...) = %v, want 1", got)
	}
}
