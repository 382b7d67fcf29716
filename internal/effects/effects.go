// Package effects holds the nonlinear shaping and delay stages of the voice
// chain. The distortion is a stateless per-sample function; the stereo delay
// owns the only dynamically sized buffers in the engine.
package effects

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
