// Package budget implements the wall-clock deadline abstraction shared by
// every driver (spec component C3). Iteration counting itself is left to
// each driver's own loop counter; Budget only answers "has the deadline
// passed".
package budget

import "time"

// Budget gates termination by wall-clock deadline. A TimeLimit of 0
// forces the deadline to be already past after Start, so a driver that
// checks Expired only at iteration boundaries still runs at least one
// iteration (§5 "time_limit == 0 forces at most one iteration").
type Budget struct {
	TimeLimit time.Duration
	deadline  time.Time
}

// New constructs a Budget for the given time limit.
func New(timeLimit time.Duration) *Budget {
	return &Budget{TimeLimit: timeLimit}
}

// Start fixes the deadline relative to now. Call once before the first
// iteration.
func (b *Budget) Start(now time.Time) {
	b.deadline = now.Add(b.TimeLimit)
}

// Expired reports whether now is at or past the deadline.
func (b *Budget) Expired(now time.Time) bool {
	return !b.deadline.IsZero() && !now.Before(b.deadline)
}
