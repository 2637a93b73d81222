package kernel

// Metropolis accepts a worse trial with probability exp(-beta*delta),
// delta = trial-current. beta is read through a pointer so a scheduler
// (schedule.Geometric, schedule.Adaptive) can update it between
// iterations without the kernel changing identity — the post-iteration
// hook mutates *beta, never the closure itself.
func Metropolis[SC any](toFloat ToFloat[SC], beta *float64) Func[SC] {
	return func(current, trial SC) float64 {
		delta := toFloat(trial) - toFloat(current)
		return clamp01(saturatingExp(-*beta * delta))
	}
}
