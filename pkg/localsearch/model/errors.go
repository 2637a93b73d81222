package model

import "errors"

// Typed errors surfaced by driver construction. optimize itself never
// fails; ErrInvalidInput comes from the constructors that validate their
// parameters, and ErrEmptyPopulation/ErrEmptyLadder from composite-driver
// construction (empty population, empty ladder).
var (
	ErrInvalidInput    = errors.New("localsearch: invalid input")
	ErrEmptyPopulation = errors.New("localsearch: empty population")
	ErrEmptyLadder     = errors.New("localsearch: empty beta ladder")
)

// ModelError wraps a failure raised by the user's Problem implementation
// (random-solution generation or preprocessing) so callers can
// distinguish "your model failed" from "your config was invalid" while
// still using errors.Is/errors.As against the wrapped cause.
type ModelError struct {
	Cause error
}

func (e *ModelError) Error() string {
	if e.Cause == nil {
		return "localsearch: model error"
	}
	return "localsearch: model error: " + e.Cause.Error()
}

func (e *ModelError) Unwrap() error { return e.Cause }
