package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gowalker/localsearch/internal/registry"
	"github.com/gowalker/localsearch/internal/store"
	"github.com/spf13/cobra"
)

// unboundedTimeLimit stands in for "no wall-clock limit" when a run is
// meant to stop on iteration count or interruption alone.
const unboundedTimeLimit = 1000 * 24 * time.Hour

var (
	runProblem   string
	runAlgorithm string
	runNIter     int
	runNTrials   int
	runPatience  int
	runSeed      int64
	runTimeLimit time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single-shot optimization",
	Long:  `Runs an optimizer to completion and prints the best solution found.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&runProblem, "problem", "quadratic", fmt.Sprintf("Problem to optimize, one of %v", registry.Problems))
	runCmd.Flags().StringVar(&runAlgorithm, "algorithm", "hillclimbing", fmt.Sprintf("Algorithm to run, one of %v", registry.Algorithms))
	runCmd.Flags().IntVar(&runNIter, "niter", 1000, "Number of iterations")
	runCmd.Flags().IntVar(&runNTrials, "ntrials", 5, "Trial solutions sampled per iteration")
	runCmd.Flags().IntVar(&runPatience, "patience", 0, "Stop after this many iterations without a best-score improvement; 0 defers to --niter")
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "Random seed")
	runCmd.Flags().DurationVar(&runTimeLimit, "time-limit", 0, "Wall-clock budget; 0 means unbounded (niter and ctrl-C are the only stop conditions)")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	config := store.JobConfig{
		Problem:   runProblem,
		Algorithm: runAlgorithm,
		NIter:     runNIter,
		NTrials:   runNTrials,
		Patience:  runPatience,
		Seed:      runSeed,
	}

	slog.Info("Starting optimization", "problem", config.Problem, "algorithm", config.Algorithm, "niter", config.NIter)

	timeLimit := runTimeLimit
	if timeLimit <= 0 {
		timeLimit = unboundedTimeLimit
	}

	var lastIter int
	progress := func(iteration int, score float64, solution json.RawMessage) {
		lastIter = iteration
		slog.Debug("progress", "iteration", iteration, "score", score)
	}

	start := time.Now()
	result, err := registry.Run(cmd.Context(), config, nil, timeLimit, progress)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	elapsed := time.Since(start)

	ips := float64(lastIter) / elapsed.Seconds()

	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"best_score", result.Score,
		"iterations_per_second", fmt.Sprintf("%.0f", ips),
	)

	fmt.Printf("best score: %g\nsolution: %s\n", result.Score, string(result.Solution))

	return nil
}
