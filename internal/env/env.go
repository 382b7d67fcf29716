package env

import "math"

// idleEpsilon is the level below which a decaying envelope is considered
// finished.
const idleEpsilon = 1e-4

type stage int

const (
	stageIdle stage = iota
	stageAttack
	stageDecay
	stageRelease
)

// Analog is the amplitude envelope: linear attack to full level, then
// exponential decay, with an exponential release on note-off from any stage.
// The gate flag (IsActive) is independent of the decay tail: it is true
// strictly between NoteOn and NoteOff.
type Analog struct {
	sampleRate float64

	stage  stage
	gateOn bool
	level  float64

	attackMs  float64
	decayMs   float64
	releaseMs float64

	attackInc    float64
	decayCoeff   float64
	releaseCoeff float64
}

func NewAnalog(sampleRate int) *Analog {
	a := &Analog{
		sampleRate: float64(sampleRate),
		attackMs:   3,
		decayMs:    1000,
		releaseMs:  10,
	}
	a.recalc()
	return a
}

func (a *Analog) SetAttack(ms float64) {
	a.attackMs = ms
	a.recalc()
}

func (a *Analog) SetDecay(ms float64) {
	a.decayMs = ms
	a.recalc()
}

func (a *Analog) SetRelease(ms float64) {
	a.releaseMs = ms
	a.recalc()
}

// NoteOn opens the gate and restarts the attack from zero.
func (a *Analog) NoteOn() {
	a.gateOn = true
	a.stage = stageAttack
	a.level = 0
}

// NoteOff closes the gate and moves to the release stage.
func (a *Analog) NoteOff() {
	a.gateOn = false
	a.stage = stageRelease
}

// IsActive reports the gate state, not whether the tail is audible.
func (a *Analog) IsActive() bool { return a.gateOn }

// Level returns the current level without advancing the envelope.
func (a *Analog) Level() float64 { return a.level }

// Process advances the envelope one sample and returns the new level.
func (a *Analog) Process() float64 {
	switch a.stage {
	case stageAttack:
		a.level += a.attackInc
		if a.level >= 1 {
			a.level = 1
			a.stage = stageDecay
		}
	case stageDecay:
		a.level *= a.decayCoeff
		if a.level < idleEpsilon {
			a.level = 0
			a.stage = stageIdle
		}
	case stageRelease:
		a.level *= a.releaseCoeff
		if a.level < idleEpsilon {
			a.level = 0
			a.stage = stageIdle
		}
	}
	return a.level
}

func (a *Analog) recalc() {
	a.decayCoeff = decayCoeff(a.decayMs, a.sampleRate)
	a.releaseCoeff = decayCoeff(a.releaseMs, a.sampleRate)
	attackSamples := a.attackMs * 0.001 * a.sampleRate
	if attackSamples < 1 {
		attackSamples = 1
	}
	a.attackInc = 1 / attackSamples
}

// Decay is the filter envelope: Trigger resets the level to 1 and every
// Process multiplies by the decay coefficient. It free-runs toward zero and
// has no terminal state.
type Decay struct {
	sampleRate float64
	decayMs    float64
	coeff      float64
	level      float64
}

func NewDecay(sampleRate int) *Decay {
	d := &Decay{
		sampleRate: float64(sampleRate),
		decayMs:    200,
	}
	d.recalc()
	return d
}

func (d *Decay) SetDecay(ms float64) {
	if ms < 0.1 {
		ms = 0.1
	}
	d.decayMs = ms
	d.recalc()
}

// Trigger resets the level to full. Called on every note-on.
func (d *Decay) Trigger() { d.level = 1 }

// Process advances the decay one sample and returns the new level.
func (d *Decay) Process() float64 {
	d.level *= d.coeff
	return d.level
}

// Level returns the current level without advancing the envelope.
func (d *Decay) Level() float64 { return d.level }

func (d *Decay) recalc() {
	d.coeff = decayCoeff(d.decayMs, d.sampleRate)
}

// decayCoeff gives a true exponential time constant: level reaches 1/e of
// its start after tauMs milliseconds.
func decayCoeff(tauMs, sampleRate float64) float64 {
	return math.Exp(-1 / (0.001 * tauMs * sampleRate))
}
