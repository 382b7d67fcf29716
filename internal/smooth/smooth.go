package smooth

import "math"

// Smoother is a one-pole leaky integrator: y += c*(x - y). It is used to
// de-click control signals (short time constants) and, subtracted from its
// input, as a DC-blocking high-pass.
type Smoother struct {
	sampleRate float64
	tauMs      float64
	c          float64
	y          float64
}

func NewSmoother(sampleRate int, tauMs float64) *Smoother {
	s := &Smoother{sampleRate: float64(sampleRate)}
	s.SetTimeConstant(tauMs)
	return s
}

// SetTimeConstant sets the time constant in milliseconds. A non-positive
// value makes the smoother a pass-through.
func (s *Smoother) SetTimeConstant(tauMs float64) {
	s.tauMs = tauMs
	if tauMs <= 0 {
		s.c = 1
		return
	}
	s.c = 1 - math.Exp(-1/(0.001*tauMs*s.sampleRate))
}

// Process advances the smoother one sample.
func (s *Smoother) Process(in float64) float64 {
	s.y += s.c * (in - s.y)
	return s.y
}

// Reset zeros the smoother state.
func (s *Smoother) Reset() { s.y = 0 }

// DCBlocker removes DC offset ahead of the nonlinear stages, where a bias
// would skew the distortion asymmetry. It carries two forms: the classic
// first-difference blocker and a one-pole high-pass built as x - lpf(x);
// the chain uses the high-pass form.
type DCBlocker struct {
	sampleRate float64
	cutoff     float64

	r        float64
	lastIn   float64
	lastOut  float64

	alpha    float64
	lpfState float64
}

func NewDCBlocker(sampleRate int, cutoffHz float64) *DCBlocker {
	d := &DCBlocker{sampleRate: float64(sampleRate)}
	d.SetCutoff(cutoffHz)
	return d
}

// SetCutoff sets the corner frequency in Hz for both forms.
func (d *DCBlocker) SetCutoff(hz float64) {
	d.cutoff = hz
	d.r = 1 - 2*math.Pi*hz/d.sampleRate
	d.alpha = 1 - math.Exp(-2*math.Pi*hz/d.sampleRate)
}

// Process applies the first-difference blocker: y = x - x1 + r*y1.
func (d *DCBlocker) Process(in float64) float64 {
	out := in - d.lastIn + d.r*d.lastOut
	d.lastIn = in
	d.lastOut = out
	return out
}

// ProcessHPF applies the one-pole high-pass form.
func (d *DCBlocker) ProcessHPF(in float64) float64 {
	d.lpfState += (in - d.lpfState) * d.alpha
	return in - d.lpfState
}

// Reset zeros both filter states.
func (d *DCBlocker) Reset() {
	d.lastIn = 0
	d.lastOut = 0
	d.lpfState = 0
}
