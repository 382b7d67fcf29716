package lfo

import "math"

// Waveform constants for the modulation oscillator.
const (
	WaveSine     = 0
	WaveTriangle = 1
	WaveSaw      = 2
	WaveSquare   = 3
)

// LFO produces per-sample modulation for the filter FM input. One instance
// is owned by the voice; depth or rate of zero makes Sample a strict zero.
type LFO struct {
	depth    float64
	rateHz   float64
	waveform int
	phase    float64 // [0, 1)
}

// Set configures depth (output is in [-depth, +depth]), rate, and waveform.
func (l *LFO) Set(depth, rateHz float64, waveform int) {
	l.depth = depth
	l.rateHz = rateHz
	if waveform < WaveSine || waveform > WaveSquare {
		waveform = WaveSine
	}
	l.waveform = waveform
}

// Active reports whether the LFO contributes modulation.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

// Sample advances the LFO one sample and returns a value in [-depth, +depth].
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate == 0 {
		return 0
	}
	var v float64
	switch l.waveform {
	case WaveTriangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case WaveSaw:
		v = 1 - 2*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			v = 1
		} else {
			v = -1
		}
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.rateHz / sampleRate
	for l.phase >= 1 {
		l.phase--
	}
	return v * l.depth
}

// Reset zeros the phase.
func (l *LFO) Reset() { l.phase = 0 }
