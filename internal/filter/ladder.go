package filter

import "math"

// Ladder is a four-stage nonlinear diode-ladder lowpass modeled on the
// TB-303 filter, using the Open303 coefficient fits. Cutoff is modulated at
// audio rate by the filter envelope, an accent level, and an optional FM
// input, so the stage gain and feedback coefficients are recomputed every
// sample rather than cached.
//
// A one-pole high-pass in the resonance feedback path keeps DC out of the
// loop; without it, self-oscillation at high resonance charges the stages
// until the output sticks to a rail.
type Ladder struct {
	sampleRate float64

	cutoff    float64
	resonance float64
	envMod    float64
	accentMod float64
	fmAmount  float64

	y1, y2, y3, y4 float64

	hpState float64
	hpCoeff float64
}

const (
	// Modulated cutoff bounds: a floor well below audibility and a ceiling
	// safely under Nyquist.
	minCutoffHz   = 5.0
	maxCutoffFrac = 0.45
	// Envelope modulation clamp relative to the base cutoff.
	envModFloorFrac = -0.95
	envModCeilFrac  = 4.0
	// Feedback high-pass corner.
	feedbackHPHz = 150.0
	// Normalizer for the resonance skew curve: 1 - exp(-3).
	resonanceSkewNorm = 0.9502129316
)

func New(sampleRate int) *Ladder {
	f := &Ladder{
		sampleRate: float64(sampleRate),
		cutoff:     1000,
	}
	f.hpCoeff = math.Exp(-2 * math.Pi * feedbackHPHz / f.sampleRate)
	return f
}

// SetCutoff sets the base cutoff frequency in Hz.
func (f *Ladder) SetCutoff(hz float64) {
	f.cutoff = hz
}

// Cutoff returns the base (unmodulated) cutoff in Hz.
func (f *Ladder) Cutoff() float64 { return f.cutoff }

// SetResonance sets the resonance amount. Values above 1 are allowed and
// push the filter into self-oscillation.
func (f *Ladder) SetResonance(r float64) {
	f.resonance = math.Max(0, r)
}

// SetEnvMod sets the envelope modulation depth.
func (f *Ladder) SetEnvMod(amount float64) { f.envMod = amount }

// EnvMod returns the current envelope modulation depth.
func (f *Ladder) EnvMod() float64 { return f.envMod }

// SetAccentMod sets the accent modulation depth.
func (f *Ladder) SetAccentMod(amount float64) { f.accentMod = amount }

// SetFMAmount sets the audio-rate FM depth in [0,1].
func (f *Ladder) SetFMAmount(amount float64) { f.fmAmount = amount }

// Reset zeros all filter state.
func (f *Ladder) Reset() {
	f.y1, f.y2, f.y3, f.y4 = 0, 0, 0, 0
	f.hpState = 0
}

// Process filters one sample. env and accentEnv are envelope levels in
// [0,1]; fmInput is a bipolar modulator sample.
func (f *Ladder) Process(input, env, accentEnv, fmInput float64) float64 {
	modAmt := math.Min(math.Max(f.envMod*env, envModFloorFrac*f.cutoff), envModCeilFrac*f.cutoff)
	if f.accentMod != 0 {
		modAmt += f.accentMod * accentEnv * f.cutoff
	}
	if f.fmAmount > 0.001 {
		modAmt += f.fmAmount * fmInput * 0.5 * f.cutoff
	}

	modCutoff := f.cutoff + modAmt
	modCutoff = math.Min(math.Max(modCutoff, minCutoffHz), maxCutoffFrac*f.sampleRate)

	// Open303 coefficient fits, evaluated at the modulated cutoff.
	wc := 2 * math.Pi * modCutoff / f.sampleRate
	fx := wc * 0.70710678 / (2 * math.Pi)

	b0 := (0.00045522346 + 6.1922189*fx) / (1 + 12.358354*fx + 4.4156345*(fx*fx))
	k := fx*(fx*(fx*(fx*(fx*(fx+7198.6997)-5837.7917)-476.47308)+614.95611)+213.87126) + 16.998792
	g := k * (1.0 / 17.0)

	// Resonance skew compensates stage gain loss near self-oscillation and
	// scales the feedback gain with a smooth knee.
	rSkew := (1 - math.Exp(-3*f.resonance)) / resonanceSkewNorm
	g = (g-1)*rSkew + 1
	g = g * (1 + rSkew)
	k = k * rSkew

	feedback := f.feedbackHP(k * f.y4)
	y0 := input - feedback

	f.y1 += 2 * b0 * (y0 - f.y1 + f.y2)
	f.y2 += b0 * (f.y1 - 2*f.y2 + f.y3)
	f.y3 += b0 * (f.y2 - 2*f.y3 + f.y4)
	f.y4 += b0 * (f.y3 - 2*f.y4)

	return 2 * g * f.y4
}

// feedbackHP is a one-pole high-pass (y = x - lpf(x)) on the resonance path.
func (f *Ladder) feedbackHP(input float64) float64 {
	f.hpState += (1 - f.hpCoeff) * (input - f.hpState)
	return input - f.hpState
}
