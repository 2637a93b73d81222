package kernel

import "math"

// Tsallis implements the Tsallis relative acceptance kernel:
//
//	p = max(p_min, [1 - (1-q)*beta*delta / (current - offset + xi)]^(1/(1-q)))
//
// offset tracks the best-so-far score and is owned by the caller (see
// driver.NewTsallis, which updates it from the post-iteration hook) —
// this kernel stays a pure function of its explicit inputs. The base is
// clamped to non-negative before the generalized power per §4.2's note,
// and the denominator falls back to xi if it is non-positive (the chain
// has converged to, or past, the offset) to avoid dividing by ~0.
func Tsallis[SC any](toFloat ToFloat[SC], q, beta, xi, pMin float64, offset *float64) Func[SC] {
	return func(current, trial SC) float64 {
		delta := toFloat(trial) - toFloat(current)
		denom := toFloat(current) - *offset + xi
		if denom <= 0 {
			denom = xi
		}
		base := 1 - (1-q)*beta*delta/denom
		if base < 0 {
			base = 0
		}
		p := math.Pow(base, 1/(1-q))
		if math.IsNaN(p) || math.IsInf(p, 0) {
			p = 0
		}
		return clamp01(math.Max(pMin, p))
	}
}
