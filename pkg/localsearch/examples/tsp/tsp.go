// Package tsp implements the closed-tour traveling-salesman example
// problem: minimize tour length over a symmetric distance matrix via
// 2-opt segment reversal, with incremental scoring from the four edges a
// reversal changes.
package tsp

import (
	"math/rand"

	"github.com/gowalker/localsearch/pkg/localsearch/model"
	"github.com/gowalker/localsearch/pkg/localsearch/ringbuf"
)

// Edge is an undirected city pair, always stored with the lower id first.
type Edge struct {
	A, B int
}

func edge(a, b int) Edge {
	if a < b {
		return Edge{a, b}
	}
	return Edge{b, a}
}

// Transition records the edges a 2-opt move removes and inserts.
type Transition struct {
	Removed  [2]Edge
	Inserted [2]Edge
}

// Model is a closed tour over a symmetric distance matrix, starting and
// ending at Start.
type Model struct {
	model.DefaultHooks[[]int, float64]
	Start    int
	Cities   []int
	Distance map[Edge]float64
}

// New constructs a Model from a list of city ids and a distance lookup.
func New(start int, cities []int, distance map[Edge]float64) *Model {
	return &Model{Start: start, Cities: cities, Distance: distance}
}

func (m *Model) dist(a, b int) float64 {
	return m.Distance[edge(a, b)]
}

// GenerateRandomSolution returns a random permutation of Cities starting
// and ending at Start (a closed tour).
func (m *Model) GenerateRandomSolution(rng *rand.Rand) ([]int, float64, error) {
	perm := make([]int, len(m.Cities))
	copy(perm, m.Cities)
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })

	startIdx := 0
	for i, c := range perm {
		if c == m.Start {
			startIdx = i
			break
		}
	}
	perm[0], perm[startIdx] = perm[startIdx], perm[0]
	perm = append(perm, m.Start)

	return perm, m.Evaluate(perm), nil
}

// GenerateTrialSolution performs a 2-opt reversal of a random interior
// segment and updates the score incrementally from the four changed
// edges rather than rescoring the whole tour.
func (m *Model) GenerateTrialSolution(current []int, currentScore float64, rng *rand.Rand) ([]int, Transition, float64) {
	n := len(current)
	i1, i2 := selectTwoIndices(1, n-1, rng)

	next := make([]int, n)
	copy(next, current)
	reverse(next, i1, i2)

	removed := [2]Edge{
		edge(current[i1-1], current[i1]),
		edge(current[i2], current[i2+1]),
	}
	inserted := [2]Edge{
		edge(next[i1-1], next[i1]),
		edge(next[i2], next[i2+1]),
	}

	nextScore := currentScore -
		m.Distance[removed[0]] - m.Distance[removed[1]] +
		m.Distance[inserted[0]] + m.Distance[inserted[1]]

	return next, Transition{Removed: removed, Inserted: inserted}, nextScore
}

func reverse(tour []int, i, j int) {
	for i < j {
		tour[i], tour[j] = tour[j], tour[i]
		i++
		j--
	}
}

func selectTwoIndices(lb, ub int, rng *rand.Rand) (int, int) {
	n1 := lb + rng.Intn(ub-lb)
	var n2 int
	for {
		n2 = lb + rng.Intn(ub-lb)
		if n2 != n1 {
			break
		}
	}
	if n1 < n2 {
		return n1, n2
	}
	return n2, n1
}

// Evaluate computes the total length of a closed tour from scratch.
func (m *Model) Evaluate(tour []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(tour); i++ {
		total += m.dist(tour[i], tour[i+1])
	}
	return total
}

// ToFloat is the identity real projection, since Score is already
// float64 for this problem.
func ToFloat(sc float64) float64 { return sc }

// EdgeTabuList is a bounded FIFO memory of recently removed edges,
// satisfying tabu.List: a move is tabu if any edge it would
// insert is currently in memory. Accepting a move remembers the edges it
// removed (the ones that must not be reinserted too soon).
type EdgeTabuList struct {
	buf *ringbuf.RingBuffer[Edge]
}

// NewEdgeTabuList constructs an EdgeTabuList with the given capacity.
func NewEdgeTabuList(size int) *EdgeTabuList {
	return &EdgeTabuList{buf: ringbuf.New[Edge](size)}
}

// Contains reports whether t's inserted edges are tabu.
func (l *EdgeTabuList) Contains(t Transition) bool {
	for _, ins := range t.Inserted {
		found := false
		l.buf.Each(func(e Edge) bool {
			if e == ins {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// Append remembers t's removed edges.
func (l *EdgeTabuList) Append(t Transition) {
	for _, rem := range t.Removed {
		exists := false
		l.buf.Each(func(e Edge) bool {
			if e == rem {
				exists = true
				return false
			}
			return true
		})
		if !exists {
			l.buf.Append(rem)
		}
	}
}

// SetSize changes the tabu memory's capacity.
func (l *EdgeTabuList) SetSize(k int) { l.buf.SetCapacity(k) }
