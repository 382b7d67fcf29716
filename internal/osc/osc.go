package osc

import "math"

// Oscillator generates PolyBLEP band-limited saw and square waveforms with a
// square sub-oscillator one octave down. Blend crossfades square to saw; the
// sub is mixed in after the main blend. Frequency changes can either jump
// (SetFrequency, resets phase) or glide exponentially (GlideTo).
type Oscillator struct {
	sampleRate float64

	frequency    float64
	phase        float64
	phaseInc     float64
	subPhase     float64
	subPhaseInc  float64
	blend        float64 // 0 = square, 1 = saw
	subBlend     float64
	pulseWidth   float64
	targetFreq   float64
	glideStep    float64
	glideCounter int
}

// 0.53 approximates the skewed pulse of the modeled hardware; 0.5 is a
// symmetric square.
const (
	pulseWidthSkewed    = 0.53
	pulseWidthSymmetric = 0.5

	// headroom leaves space for resonance peaks further down the chain.
	headroom = 0.707
)

func New(sampleRate int) *Oscillator {
	o := &Oscillator{
		sampleRate: float64(sampleRate),
		pulseWidth: pulseWidthSkewed,
	}
	o.SetFrequency(440)
	return o
}

// SetFrequency sets the frequency immediately and resets both phases.
// Used for hard (non-legato) note starts.
func (o *Oscillator) SetFrequency(hz float64) {
	if hz < 0 {
		hz = 0
	}
	o.frequency = hz
	o.targetFreq = hz
	o.glideCounter = 0
	o.phaseInc = hz / o.sampleRate
	o.subPhaseInc = hz * 0.5 / o.sampleRate
	o.phase = 0
	o.subPhase = 0
}

// GlideTo slews the frequency exponentially to hz over glideTimeMs. Each
// sample multiplies the frequency by a fixed step, so the target is reached
// exactly when the countdown ends, with no overshoot.
func (o *Oscillator) GlideTo(hz, glideTimeMs float64) {
	if hz <= 0 || o.frequency <= 0 {
		o.SetFrequency(hz)
		return
	}
	glideSamples := glideTimeMs / 1000 * o.sampleRate
	if glideSamples < 1 {
		glideSamples = 1
	}
	o.targetFreq = hz
	o.glideStep = math.Pow(hz/o.frequency, 1/glideSamples)
	o.glideCounter = int(glideSamples)
}

// Gliding reports whether a glide is still in progress.
func (o *Oscillator) Gliding() bool { return o.glideCounter > 0 }

// Frequency returns the current (possibly slewing) frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// SetBlend sets the square/saw crossfade (0 = square, 1 = saw).
func (o *Oscillator) SetBlend(b float64) { o.blend = clamp(b, 0, 1) }

// SetSubBlend sets the sub-oscillator mix (0 = none, 1 = sub only).
func (o *Oscillator) SetSubBlend(b float64) { o.subBlend = clamp(b, 0, 1) }

// SetSkewedPulse toggles between the 53% skewed pulse width and a symmetric
// square.
func (o *Oscillator) SetSkewedPulse(skewed bool) {
	if skewed {
		o.pulseWidth = pulseWidthSkewed
	} else {
		o.pulseWidth = pulseWidthSymmetric
	}
}

// ResetPhase zeros both phases without touching frequency or glide state.
func (o *Oscillator) ResetPhase() {
	o.phase = 0
	o.subPhase = 0
}

func (o *Oscillator) tick() {
	if o.glideCounter > 0 {
		o.frequency *= o.glideStep
		o.glideCounter--
		if o.glideCounter == 0 {
			o.frequency = o.targetFreq
		}
		o.phaseInc = o.frequency / o.sampleRate
		o.subPhaseInc = o.frequency * 0.5 / o.sampleRate
	}
}

// Process advances the oscillator by one sample and returns the blended,
// band-limited output scaled by the headroom factor.
func (o *Oscillator) Process() float64 {
	o.tick()

	// Saw with its discontinuity shifted to phase 0.5.
	shifted := wrap(o.phase + 0.5)
	saw := 2*shifted - 1 - o.polyBLEP(shifted)

	// Variable-width pulse: corrections at the rising edge (phase 0) and
	// the falling edge (phase pulseWidth).
	square := -1.0
	if o.phase < o.pulseWidth {
		square = 1.0
	}
	square += o.polyBLEP(o.phase)
	square -= o.polyBLEP(wrap(o.phase + 1 - o.pulseWidth))

	value := (1-o.blend)*square + o.blend*saw

	sub := -1.0
	if o.subPhase < 0.5 {
		sub = 1.0
	}
	o.subPhase = wrap(o.subPhase + o.subPhaseInc)

	value = (1-o.subBlend)*value + o.subBlend*sub
	value *= headroom

	o.phase = wrap(o.phase + o.phaseInc)
	return value
}

// polyBLEP is the polynomial band-limited step correction: a parabolic
// residual applied within one sample on either side of a discontinuity.
func (o *Oscillator) polyBLEP(t float64) float64 {
	dt := o.phaseInc
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}

func wrap(p float64) float64 {
	if p >= 1 {
		p -= math.Floor(p)
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
