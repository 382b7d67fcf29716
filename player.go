// Package acid303 is a monophonic analog-modeled bass synthesizer voice: a
// band-limited oscillator into a nonlinear diode-ladder filter, two envelope
// generators with accent handling, multi-mode distortion, and a feedback
// stereo delay, rendered one stereo sample pair at a time.
package acid303

import (
	"errors"
	"math"
	"sync"

	intaudio "github.com/cbegin/acid303-go/internal/audio"
	intfx "github.com/cbegin/acid303-go/internal/effects"
	intlfo "github.com/cbegin/acid303-go/internal/lfo"
	intvoice "github.com/cbegin/acid303-go/internal/voice"
)

// DistortionType selects the waveshaping curve of the distortion stage.
type DistortionType int

const (
	DistortionSoftClip DistortionType = iota
	DistortionHardClip
	DistortionWavefolder
	DistortionDiodeClipper
	DistortionTube
)

// LFO waveforms for the filter FM modulator.
const (
	FMWaveSine     = intlfo.WaveSine
	FMWaveTriangle = intlfo.WaveTriangle
	FMWaveSaw      = intlfo.WaveSaw
	FMWaveSquare   = intlfo.WaveSquare
)

// Normalized control mapping ranges.
const (
	cutoffMinHz = 300.0
	cutoffMaxHz = 3000.0
	decayMinMs  = 200.0
	decayMaxMs  = 2000.0
	envModMaxHz = 4000.0
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	delayCapacity int
	blockTap      func([]float32)
}

// WithDelayCapacity sets the delay buffer size in samples (default: one
// second at the player's sample rate).
func WithDelayCapacity(samples int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.delayCapacity = samples
	}
}

// WithBlockTap installs a callback invoked with each generated stereo block.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithBlockTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.blockTap = tap
	}
}

// Player owns the voice engine and, once Start is called, the audio output
// backend. All methods are safe to call while audio is running; parameter
// changes apply between samples.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	synth      *intvoice.Synth
	audio      *intaudio.Player
	blockTap   func([]float32)
}

// tapSource routes blocks through the synth and then the optional tap.
type tapSource struct {
	synth *intvoice.Synth
	tap   func([]float32)
}

func (t *tapSource) Process(dst []float32) {
	t.synth.Process(dst)
	if t.tap != nil {
		t.tap(dst)
	}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	var cfg playerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	params := intvoice.DefaultParams()
	params.DelayCapacity = cfg.delayCapacity
	synth, err := intvoice.New(sampleRate, params)
	if err != nil {
		return nil, err
	}
	return &Player{
		sampleRate: sampleRate,
		synth:      synth,
		blockTap:   cfg.blockTap,
	}, nil
}

// Start begins streaming to the audio device.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
		return nil
	}
	backend, err := intaudio.NewPlayer(p.sampleRate, &tapSource{synth: p.synth, tap: p.blockTap})
	if err != nil {
		return err
	}
	p.audio = backend
	p.audio.Play()
	return nil
}

// Stop tears down the audio backend. Voice state is kept; Start resumes.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// Render fills dst with interleaved stereo float32 samples without going
// through the audio device. Useful for custom sinks.
func (p *Player) Render(dst []float32) {
	p.synth.Process(dst)
}

// NoteOn plays a note. pitchSemitone 69 is A4 (440 Hz); accent applies the
// accent gain and the fast filter decay; slide glides legato from the
// sounding pitch without retriggering the envelopes.
func (p *Player) NoteOn(pitchSemitone float64, accent, slide bool) {
	p.synth.NoteOn(pitchSemitone, accent, slide)
}

// NoteOff lifts one holder of the given pitch; the release fires when no
// pitch remains held.
func (p *Player) NoteOff(pitchSemitone float64) {
	p.synth.NoteOff(pitchSemitone)
}

// SetVolume sets the master volume scalar (>= 0).
func (p *Player) SetVolume(v float64) { p.synth.SetVolume(v) }

// SetCutoff maps a normalized 0..1 input exponentially onto 300..3000 Hz.
func (p *Player) SetCutoff(norm float64) {
	norm = clampNorm(norm)
	p.synth.SetCutoff(cutoffMinHz * math.Pow(cutoffMaxHz/cutoffMinHz, norm))
}

// SetResonance maps a normalized 0..1 input through a 0.8-power curve. The
// normalized surface tops out at 1; use SetResonanceRaw to push the filter
// into self-oscillation.
func (p *Player) SetResonance(norm float64) {
	p.synth.SetResonance(math.Pow(clampNorm(norm), 0.8))
}

// SetResonanceRaw sets the resonance directly; values above 1 self-oscillate.
func (p *Player) SetResonanceRaw(r float64) { p.synth.SetResonance(r) }

// SetEnvMod maps a normalized 0..1 input linearly onto 0..4000 Hz of filter
// envelope modulation depth.
func (p *Player) SetEnvMod(norm float64) {
	p.synth.SetEnvMod(clampNorm(norm) * envModMaxHz)
}

// SetAccent sets the accent level in 0..1.
func (p *Player) SetAccent(level float64) { p.synth.SetAccentLevel(level) }

// SetDecay maps a normalized 0..1 input exponentially onto 200..2000 ms of
// filter envelope decay for plain (non-accented) notes.
func (p *Player) SetDecay(norm float64) {
	norm = clampNorm(norm)
	p.synth.SetDecayTime(decayMinMs * math.Pow(decayMaxMs/decayMinMs, norm))
}

// SetPitchOffset shifts all notes by the given semitones.
func (p *Player) SetPitchOffset(semitones float64) { p.synth.SetPitchOffset(semitones) }

// SetGlideTimeMs sets the slide time in milliseconds.
func (p *Player) SetGlideTimeMs(ms float64) { p.synth.SetGlideTime(ms) }

// SetWaveformBlend sets the oscillator square/saw blend (0 = square, 1 = saw).
func (p *Player) SetWaveformBlend(b float64) { p.synth.SetWaveformBlend(b) }

// SetSubBlend sets the sub-oscillator mix in 0..1.
func (p *Player) SetSubBlend(b float64) { p.synth.SetSubBlend(b) }

// SetSkewedPulse toggles the 53% skewed pulse width of the modeled hardware.
func (p *Player) SetSkewedPulse(skewed bool) { p.synth.SetSkewedPulse(skewed) }

// SetFilterFM drives the filter cutoff from an internal LFO. Depth 0
// disables it.
func (p *Player) SetFilterFM(depth, rateHz float64, waveform int) {
	p.synth.SetFilterFM(depth, rateHz, waveform)
}

func (p *Player) SetDistortionType(t DistortionType) {
	p.synth.SetDistortionType(intfx.DistortionType(t))
}

func (p *Player) SetDistortionAmount(amt float64) { p.synth.SetDistortionAmount(amt) }
func (p *Player) SetDistortionMix(m float64)      { p.synth.SetDistortionMix(m) }
func (p *Player) SetDistortionEnabled(e bool)     { p.synth.SetDistortionEnabled(e) }

// SetDelayTimeMs sets the per-channel delay lengths in milliseconds.
func (p *Player) SetDelayTimeMs(left, right float64) {
	p.synth.SetDelayTimeSamples(p.msToSamples(left), p.msToSamples(right))
}

// SetDelayTempo sets the per-channel delay lengths from a tempo and musical
// divisions: samples = (60/bpm) * beats * sampleRate.
func (p *Player) SetDelayTempo(bpm, beatsL, beatsR float64) {
	if bpm <= 0 {
		return
	}
	secPerBeat := 60 / bpm
	p.synth.SetDelayTimeSamples(
		int(secPerBeat*beatsL*float64(p.sampleRate)),
		int(secPerBeat*beatsR*float64(p.sampleRate)),
	)
}

func (p *Player) SetDelayFeedback(fb float64) { p.synth.SetDelayFeedback(fb) }
func (p *Player) SetDelayMix(m float64)       { p.synth.SetDelayMix(m) }

// SampleRate returns the player's sample rate in Hz.
func (p *Player) SampleRate() int { return p.sampleRate }

func (p *Player) msToSamples(ms float64) int {
	return int(ms / 1000 * float64(p.sampleRate))
}

func clampNorm(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
