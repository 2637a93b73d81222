package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gowalker/localsearch/internal/registry"
	"github.com/gowalker/localsearch/internal/store"
)

// unboundedTimeLimit stands in for "no wall-clock limit" when a run is
// meant to stop on iteration count or cancellation alone.
const unboundedTimeLimit = 1000 * 24 * time.Hour

// runJob executes an optimization job in the background.
// If checkpointStore is not nil and job has checkpointInterval > 0, periodic checkpoints are saved.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem, "algorithm", job.Config.Algorithm)

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	start := time.Now()

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	checkpointDone := make(chan struct{})
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	}

	progress := func(iteration int, score float64, solution json.RawMessage) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = iteration
			j.BestScore = score
			j.BestSolution = solution
		})
	}

	// No wall-clock cap on a server-driven job: NIter and ctx cancellation
	// bound the run instead.
	result, runErr := registry.Run(ctx, job.Config, nil, unboundedTimeLimit, progress)

	close(progressDone)
	close(checkpointDone)
	elapsed := time.Since(start)

	if runErr != nil {
		markJobFailed(jm, jobID, runErr)
		recordJobOutcome(string(StateFailed), job.Config.Algorithm, 0)
		return runErr
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		recordJobOutcome(string(StateCancelled), job.Config.Algorithm, 0)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	var finalIterations int
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestSolution = result.Solution
		j.BestScore = result.Score
		j.EndTime = &endTime
		finalIterations = j.Iterations
	})
	if err != nil {
		return err
	}

	ips := float64(finalIterations) / elapsed.Seconds()
	recordJobOutcome(string(StateCompleted), job.Config.Algorithm, ips)

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_score", job.InitialScore,
		"best_score", result.Score,
		"iterations_per_second", ips,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:      jobID,
		State:      StateCompleted,
		Iterations: finalIterations,
		BestScore:  result.Score,
		IPS:        ips,
		Timestamp:  time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events during optimization
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()
			var ips float64
			if elapsed > 0 && job.Iterations > 0 {
				ips = float64(job.Iterations) / elapsed
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:      jobID,
				State:      job.State,
				Iterations: job.Iterations,
				BestScore:  job.BestScore,
				IPS:        ips,
				Timestamp:  time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints during optimization
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves a checkpoint for the given job
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if len(job.BestSolution) == 0 {
		slog.Debug("Skipping checkpoint, no best solution yet", "job_id", jobID)
		return nil
	}

	checkpoint, err := store.NewCheckpoint(
		jobID,
		job.BestSolution,
		job.BestScore,
		job.InitialScore,
		job.Iterations,
		job.Config,
	)
	if err != nil {
		return fmt.Errorf("failed to build checkpoint: %w", err)
	}

	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"iteration", job.Iterations,
		"best_score", job.BestScore,
	)

	return nil
}
