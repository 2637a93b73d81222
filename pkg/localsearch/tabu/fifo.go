package tabu

import "github.com/gowalker/localsearch/pkg/localsearch/ringbuf"

// FIFOList is the default tabu memory: a bounded FIFO of recent
// transitions compared by equality. Problems whose Transition type is not
// comparable by == (e.g. slice-valued moves) must supply their own List.
type FIFOList[T comparable] struct {
	buf *ringbuf.RingBuffer[T]
}

// NewFIFOList constructs a FIFOList with the given capacity.
func NewFIFOList[T comparable](size int) *FIFOList[T] {
	return &FIFOList[T]{buf: ringbuf.New[T](size)}
}

// Contains reports whether t is in memory.
func (l *FIFOList[T]) Contains(t T) bool {
	found := false
	l.buf.Each(func(v T) bool {
		if v == t {
			found = true
			return false
		}
		return true
	})
	return found
}

// Append remembers t, evicting the oldest entry if memory is full.
func (l *FIFOList[T]) Append(t T) { l.buf.Append(t) }

// SetSize changes the memory's capacity.
func (l *FIFOList[T]) SetSize(k int) { l.buf.SetCapacity(k) }
