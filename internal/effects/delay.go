package effects

import (
	"fmt"
	"math"
)

// StereoDelay is a dual circular-buffer delay with independent per-channel
// lengths, saturated feedback, and a dry/wet mix.
//
// Per-frame contract: call ProcessL and ProcessR (read-only taps), then Tick
// exactly once to write and advance. Calling Tick more than once per frame
// shifts the delay timing for that frame.
type StereoDelay struct {
	bufL, bufR []float64
	capacity   int
	writeIndex int

	delayL   int
	delayR   int
	feedback float64
	mix      float64
}

// maxFeedback intentionally allows mild overdrive into the tanh saturation.
const maxFeedback = 1.1

// NewStereoDelay creates a delay with the given maximum capacity in samples.
// Buffers are not allocated until Begin.
func NewStereoDelay(capacity int) *StereoDelay {
	if capacity < 2 {
		capacity = 2
	}
	return &StereoDelay{
		capacity: capacity,
		delayL:   capacity / 4,
		delayR:   capacity / 4,
		feedback: 0.3,
		mix:      0.3,
	}
}

// maxCapacity caps the delay line at 2^24 samples (about six minutes at
// 48 kHz) so a miscomputed tempo length cannot allocate gigabytes.
const maxCapacity = 1 << 24

// Begin allocates both channel buffers. Until it succeeds the delay is a
// pass-through: taps return the dry mix law against silence and Tick is a
// no-op.
func (d *StereoDelay) Begin() error {
	if d.capacity > maxCapacity {
		return fmt.Errorf("delay: capacity %d exceeds maximum %d", d.capacity, maxCapacity)
	}
	d.bufL = make([]float64, d.capacity)
	d.bufR = make([]float64, d.capacity)
	d.writeIndex = 0
	return nil
}

// SetTimeSamplesL sets the left delay length, clamped to [1, capacity-1].
func (d *StereoDelay) SetTimeSamplesL(samples int) {
	d.delayL = clampInt(samples, 1, d.capacity-1)
}

// SetTimeSamplesR sets the right delay length, clamped to [1, capacity-1].
func (d *StereoDelay) SetTimeSamplesR(samples int) {
	d.delayR = clampInt(samples, 1, d.capacity-1)
}

// SetFeedback sets the feedback gain, clamped to [0, 1.1].
func (d *StereoDelay) SetFeedback(fb float64) {
	d.feedback = clamp(fb, 0, maxFeedback)
}

// SetMix sets the dry/wet blend (0 = dry, 1 = wet).
func (d *StereoDelay) SetMix(m float64) {
	d.mix = clamp(m, 0, 1)
}

// ProcessL returns the left output for this frame without mutating state.
func (d *StereoDelay) ProcessL(in float64) float64 {
	if d.bufL == nil {
		return (1 - d.mix) * in
	}
	return (1-d.mix)*in + d.mix*d.bufL[d.readIndex(d.delayL)]
}

// ProcessR returns the right output for this frame without mutating state.
func (d *StereoDelay) ProcessR(in float64) float64 {
	if d.bufR == nil {
		return (1 - d.mix) * in
	}
	return (1-d.mix)*in + d.mix*d.bufR[d.readIndex(d.delayR)]
}

// Tick writes input plus saturated feedback into both buffers and advances
// the shared write index. Call once per frame, after both taps.
func (d *StereoDelay) Tick(inL, inR float64) {
	if d.bufL == nil || d.bufR == nil {
		return
	}
	delayedL := d.bufL[d.readIndex(d.delayL)]
	delayedR := d.bufR[d.readIndex(d.delayR)]

	// tanh bounds the loop energy so feedback at or above unity rings
	// into saturation instead of blowing up.
	nextL := math.Tanh(inL + delayedL*d.feedback)
	nextR := math.Tanh(inR + delayedR*d.feedback)

	d.bufL[d.writeIndex] = nextL
	d.bufR[d.writeIndex] = nextR

	d.writeIndex++
	if d.writeIndex >= d.capacity {
		d.writeIndex = 0
	}
}

// Reset silences both buffers without reallocating.
func (d *StereoDelay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.writeIndex = 0
}

func (d *StereoDelay) readIndex(delay int) int {
	idx := d.writeIndex - delay
	if idx < 0 {
		idx += d.capacity
	}
	return idx
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
