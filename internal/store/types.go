package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobConfig holds configuration for an optimization job (checkpoint copy).
// This avoids import cycles with the server package.
type JobConfig struct {
	Problem            string `json:"problem"`   // "quadratic" or "tsp"
	Algorithm          string `json:"algorithm"` // "hillclimbing", "metropolis", "sa", "tabu", ...
	NIter              int    `json:"nIter"`
	NTrials            int    `json:"nTrials"`
	Patience           int    `json:"patience,omitempty"` // iterations without improvement before stopping early; 0 defers to NIter
	Seed               int64  `json:"seed"`
	CheckpointInterval int    `json:"checkpointInterval,omitempty"` // checkpoint every N seconds (0 = disabled)
}

// Checkpoint represents a saved optimization state that can be resumed
// later. All fields are serialized to JSON for persistence.
//
// Optimizer state handling: the checkpoint saves only the best solution
// and score found so far, never the driver's internal state (population,
// replica ladder, tabu memory, PRNG stream). On resume, a fresh driver is
// constructed and seeded with this checkpoint's solution as its initial
// solution — resume is not a perfect continuation, but the best score
// recorded here can never regress, which is the property that matters.
type Checkpoint struct {
	// JobID is the unique identifier for this optimization job.
	JobID string `json:"jobId"`

	// Solution is the best solution found so far, JSON-encoded. The
	// core optimizer's Solution type is opaque to this store; any type
	// that round-trips through encoding/json can be checkpointed.
	Solution json.RawMessage `json:"solution"`

	// Score is the score achieved by Solution.
	Score float64 `json:"score"`

	// InitialScore is the starting score, for tracking improvement.
	InitialScore float64 `json:"initialScore"`

	// Iteration is the current iteration count when this checkpoint was
	// created.
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during
	// resume: we ensure a resumed job uses a compatible problem and
	// algorithm.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// solution payload. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	Score     float64   `json:"score"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Problem   string    `json:"problem"`
	Algorithm string    `json:"algorithm"`
}

// NewCheckpoint creates a checkpoint from job state, JSON-encoding
// solution.
func NewCheckpoint(jobID string, solution any, score, initialScore float64, iteration int, config JobConfig) (*Checkpoint, error) {
	data, err := json.Marshal(solution)
	if err != nil {
		return nil, fmt.Errorf("encode solution: %w", err)
	}
	return &Checkpoint{
		JobID:        jobID,
		Solution:     data,
		Score:        score,
		InitialScore: initialScore,
		Iteration:    iteration,
		Timestamp:    time.Now(),
		Config:       config,
	}, nil
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		Score:     c.Score,
		Iteration: c.Iteration,
		Timestamp: c.Timestamp,
		Problem:   c.Config.Problem,
		Algorithm: c.Config.Algorithm,
	}
}

// Validate checks if the checkpoint has valid data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.Solution) == 0 {
		return &ValidationError{Field: "Solution", Reason: "cannot be empty"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	if c.Config.Algorithm == "" {
		return &ValidationError{Field: "Config.Algorithm", Reason: "cannot be empty"}
	}
	if c.Config.NIter <= 0 {
		return &ValidationError{Field: "Config.NIter", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.Problem != config.Problem {
		return &CompatibilityError{Field: "Problem", Expected: c.Config.Problem, Actual: config.Problem}
	}
	if c.Config.Algorithm != config.Algorithm {
		return &CompatibilityError{Field: "Algorithm", Expected: c.Config.Algorithm, Actual: config.Algorithm}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
