package model

import "cmp"

// Score is a totally ordered, cheaply copyable score type. Smaller is
// better throughout this library (minimization convention).
//
// Acceptance kernels that need real arithmetic (exp, division) take a
// separate ToFloat projection supplied by the caller rather than requiring
// every Score to literally be a float64 — see the kernel package.
type Score interface {
	cmp.Ordered
}
