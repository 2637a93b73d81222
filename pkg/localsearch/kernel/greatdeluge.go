package kernel

// GreatDeluge accepts a worse trial iff its score is at or below the
// current water level: a deterministic threshold rule rather than a
// probabilistic one. The level itself decays toward best in the driver's
// post-iteration hook (see driver.NewGreatDeluge); this kernel only reads
// *level.
func GreatDeluge[SC any](toFloat ToFloat[SC], level *float64) Func[SC] {
	return func(_, trial SC) float64 {
		if toFloat(trial) <= *level {
			return 1
		}
		return 0
	}
}
