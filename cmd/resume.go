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

var (
	resumeDataDir   string
	resumeNIter     int
	resumeTimeLimit time.Duration
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from its last saved checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeNIter, "niter", 0, "Additional iterations to run; 0 keeps the checkpointed config's NIter")
	resumeCmd.Flags().DurationVar(&resumeTimeLimit, "time-limit", 0, "Wall-clock budget; 0 means unbounded")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	config := checkpoint.Config
	if resumeNIter > 0 {
		config.NIter = resumeNIter
	}

	timeLimit := resumeTimeLimit
	if timeLimit <= 0 {
		timeLimit = unboundedTimeLimit
	}

	slog.Info("Resuming job", "job_id", jobID, "problem", config.Problem, "algorithm", config.Algorithm, "from_iteration", checkpoint.Iteration)

	var lastIter int
	progress := func(iteration int, score float64, solution json.RawMessage) {
		lastIter = iteration
	}

	result, err := registry.Run(cmd.Context(), config, checkpoint.Solution, timeLimit, progress)
	if err != nil {
		return fmt.Errorf("resume failed: %w", err)
	}

	slog.Info("Resume complete", "job_id", jobID, "iterations", lastIter, "best_score", result.Score)
	fmt.Printf("best score: %g\nsolution: %s\n", result.Score, string(result.Solution))

	return nil
}
