package callback

// AcceptanceCounter tracks cumulative accepted/total counts since the
// start of a run. total is incremented exactly once per iteration that
// attempts acceptance, per the driver's canonical bookkeeping order;
// Ratio is always in [0,1].
type AcceptanceCounter struct {
	Accepted int
	Total    int
}

// Ratio returns Accepted/max(1, Total).
func (c AcceptanceCounter) Ratio() float64 {
	total := c.Total
	if total < 1 {
		total = 1
	}
	return float64(c.Accepted) / float64(total)
}

// SlidingWindow is a fixed-window acceptance estimate, distinct from
// AcceptanceCounter's since-the-start ratio. Adaptive schedulers that
// react to "recent" acceptance (rather than the lifetime ratio) use this
// instead. Faithful to the window bookkeeping of the upstream counter this
// was ported from: only the most recently evicted sample's effect is
// reversed, not a full recount over the window.
type SlidingWindow struct {
	windowSize    int
	sampleCount   int
	acceptedCount int
	lastAccepted  bool
}

// NewSlidingWindow constructs a SlidingWindow of the given size, defaulting
// to 100 when size <= 0.
func NewSlidingWindow(windowSize int) *SlidingWindow {
	if windowSize <= 0 {
		windowSize = 100
	}
	return &SlidingWindow{windowSize: windowSize}
}

// Enqueue records one more accepted/rejected outcome.
func (c *SlidingWindow) Enqueue(accepted bool) {
	if c.sampleCount < c.windowSize {
		c.sampleCount++
		if accepted {
			c.acceptedCount++
		}
	} else {
		if c.lastAccepted {
			c.acceptedCount--
		}
		if accepted {
			c.acceptedCount++
		}
	}
	c.lastAccepted = accepted
}

// Ratio returns the windowed acceptance ratio.
func (c *SlidingWindow) Ratio() float64 {
	if c.sampleCount == 0 {
		return 0
	}
	return float64(c.acceptedCount) / float64(c.sampleCount)
}
