package effects

import "math"

// DistortionType selects the shaping function.
type DistortionType int

const (
	SoftClip DistortionType = iota
	HardClip
	Wavefolder
	DiodeClipper
	Tube
)

// Distortion is a stateless per-sample waveshaper with five interchangeable
// curves and a dry/wet mix. Disabled or near-zero amounts are a strict
// bypass.
type Distortion struct {
	kind    DistortionType
	amount  float64
	mix     float64
	enabled bool
}

func NewDistortion() *Distortion {
	return &Distortion{mix: 1}
}

func (d *Distortion) SetType(t DistortionType) { d.kind = t }

// SetAmount sets the drive amount in [0,1], mapped internally to a 1..10
// input gain.
func (d *Distortion) SetAmount(amt float64) { d.amount = clamp(amt, 0, 1) }

// SetMix sets the dry/wet blend (0 = dry, 1 = wet).
func (d *Distortion) SetMix(m float64) { d.mix = clamp(m, 0, 1) }

func (d *Distortion) SetEnabled(e bool) { d.enabled = e }

// Process shapes one sample.
func (d *Distortion) Process(in float64) float64 {
	if !d.enabled || d.amount <= 0.01 {
		return in
	}
	drive := 1 + d.amount*9
	var wet float64
	switch d.kind {
	case HardClip:
		wet = clamp(in*drive, -1, 1)
	case Wavefolder:
		wet = fold(in * drive)
	case DiodeClipper:
		wet = diode(in * drive)
	case Tube:
		wet = tube(in * drive)
	default:
		wet = math.Tanh(in * drive)
	}
	return (1-d.mix)*in + d.mix*wet
}

// fold reflects excursions beyond the rails back into range once, then
// clamps so runaway folding cannot escape.
func fold(v float64) float64 {
	if v > 1 {
		v = 2 - v
	} else if v < -1 {
		v = -2 - v
	}
	return clamp(v, -1, 1)
}

// diode clips asymmetrically: positive swings through tanh, negative swings
// through a gentler curve.
func diode(v float64) float64 {
	if v >= 0 {
		return math.Tanh(v)
	}
	return math.Tanh(v*0.5) * 2
}

// tubeMakeupGain restores level lost to the quadratic pre-shaping.
const tubeMakeupGain = 1.2

// tube applies a clamped quadratic asymmetry (even harmonics) followed by a
// tanh soft clip with makeup gain.
func tube(v float64) float64 {
	v = clamp(v, -1, 1)
	out := v - 0.2*v*v
	return math.Tanh(out) * tubeMakeupGain
}
