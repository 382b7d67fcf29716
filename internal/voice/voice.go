package voice

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cbegin/acid303-go/internal/effects"
	"github.com/cbegin/acid303-go/internal/env"
	"github.com/cbegin/acid303-go/internal/filter"
	"github.com/cbegin/acid303-go/internal/lfo"
	"github.com/cbegin/acid303-go/internal/osc"
	"github.com/cbegin/acid303-go/internal/smooth"
)

// Empirically tuned mixing constants carried over from the modeled hardware.
// Treat changes as tuning decisions, not fixes.
const (
	// Filter envelope contribution to the VCA while the gate is open.
	vcaFilterEnvMix = 0.45
	// Accent "thump": extra VCA drive on accented notes.
	accentThumpGain = 3.0
	// Env-mod boost factor on accented notes: 1 + accentGain*1.5.
	accentEnvModBoost = 1.5
	// Ceiling on the applied env-mod depth, keeping the filter stable.
	envModCeilingHz = 6000.0
	// Final soft limiter drive.
	limiterDrive = 0.10
	// Nominal full scale of the limited output.
	outputFullScale = 1.0

	// Fixed filter envelope decay for accented notes.
	accentDecayMs = 200.0
	// VCA control-signal smoothing, short enough to keep attacks snappy.
	vcaSmootherMs = 2.0
	// Post-filter DC blocker corner.
	dcBlockHz = 25.0
)

// Params is the initial configuration of a Synth.
type Params struct {
	Volume        float64 // master volume scalar
	PitchOffset   float64 // semitones added to every note
	AccentLevel   float64 // accent gain for accented notes, 0..1
	EnvModHz      float64 // filter envelope modulation depth in Hz
	GlideTimeMs   float64
	DecayTimeMs   float64 // filter envelope decay for plain notes
	DelayCapacity int     // delay buffer size in samples (0 = one second)
}

func DefaultParams() Params {
	return Params{
		Volume:      0.8,
		AccentLevel: 0.7,
		EnvModHz:    2000,
		GlideTimeMs: 60,
		DecayTimeMs: 600,
	}
}

// Synth is the monophonic voice: a fixed per-sample pipeline
// oscillator → ladder filter → DC block → VCA → distortion → delay →
// soft limiter, plus the note-trigger logic that drives it.
//
// Parameter setters and note events lock against block generation; the
// render path itself never blocks or allocates.
type Synth struct {
	sampleRate float64

	mu         sync.Mutex
	masterGain uint64 // atomic float64 bits

	oscillator  *osc.Oscillator
	ampEnv      *env.Analog
	filterEnv   *env.Decay
	ladder      *filter.Ladder
	dcBlock     *smooth.DCBlocker
	vcaSmoother *smooth.Smoother
	distortion  *effects.Distortion
	delay       *effects.StereoDelay
	fmLFO       lfo.LFO

	pitchOffset float64
	accentLevel float64
	envModHz    float64
	glideTimeMs float64
	decayTimeMs float64

	// Held-note bookkeeping: identical pitches stack a count and release
	// only when the last holder lifts; distinct pitches follow last-note
	// priority with glide.
	heldCounts map[int]int
	heldOrder  []int

	accentGain float64
}

func New(sampleRate int, params Params) (*Synth, error) {
	capacity := params.DelayCapacity
	if capacity <= 0 {
		capacity = sampleRate
	}
	s := &Synth{
		sampleRate:  float64(sampleRate),
		oscillator:  osc.New(sampleRate),
		ampEnv:      env.NewAnalog(sampleRate),
		filterEnv:   env.NewDecay(sampleRate),
		ladder:      filter.New(sampleRate),
		dcBlock:     smooth.NewDCBlocker(sampleRate, dcBlockHz),
		vcaSmoother: smooth.NewSmoother(sampleRate, vcaSmootherMs),
		distortion:  effects.NewDistortion(),
		delay:       effects.NewStereoDelay(capacity),
		pitchOffset: params.PitchOffset,
		accentLevel: clamp(params.AccentLevel, 0, 1),
		envModHz:    params.EnvModHz,
		glideTimeMs: params.GlideTimeMs,
		decayTimeMs: params.DecayTimeMs,
		heldCounts:  make(map[int]int),
		heldOrder:   make([]int, 0, 16),
	}
	s.SetVolume(params.Volume)
	if err := s.delay.Begin(); err != nil {
		// The delay degrades to pass-through; the voice still runs dry.
		return s, err
	}
	return s, nil
}

// NoteOn starts or legato-extends a note. pitchSemitone 69 is A4 (440 Hz).
// accent applies the accent gain, the fixed accent decay, and the env-mod
// boost; slide glides from the sounding pitch without retriggering the
// envelopes.
func (s *Synth) NoteOn(pitchSemitone float64, accent, slide bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := noteKey(pitchSemitone)
	legato := len(s.heldOrder) > 0
	s.heldCounts[key]++
	s.heldOrder = append([]int{key}, s.heldOrder...)

	freq := s.noteFreq(pitchSemitone)
	if legato && slide {
		s.oscillator.GlideTo(freq, s.glideTimeMs)
		return
	}

	s.oscillator.SetFrequency(freq)
	s.triggerEnvelopes(accent)
}

// NoteOff lifts one holder of the given pitch. The release fires only when
// no pitch remains held; otherwise the voice glides back to the most recent
// still-held pitch.
func (s *Synth) NoteOff(pitchSemitone float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := noteKey(pitchSemitone)
	if s.heldCounts[key] == 0 {
		return
	}
	s.heldCounts[key]--
	if s.heldCounts[key] == 0 {
		delete(s.heldCounts, key)
	}
	for i, k := range s.heldOrder {
		if k == key {
			s.heldOrder = append(s.heldOrder[:i], s.heldOrder[i+1:]...)
			break
		}
	}

	if len(s.heldOrder) == 0 {
		s.ampEnv.NoteOff()
		return
	}
	s.oscillator.GlideTo(s.noteFreq(float64(s.heldOrder[0])), s.glideTimeMs)
}

func (s *Synth) triggerEnvelopes(accent bool) {
	s.accentGain = 0
	decay := s.decayTimeMs
	if accent {
		s.accentGain = s.accentLevel
		decay = accentDecayMs
	}
	s.filterEnv.SetDecay(decay)
	s.filterEnv.Trigger()

	boost := 1 + s.accentGain*accentEnvModBoost
	s.ladder.SetEnvMod(math.Min(s.envModHz*boost, envModCeilingHz))

	s.ampEnv.NoteOn()
}

// renderFrame produces one stereo pair. Callers hold s.mu.
func (s *Synth) renderFrame() (float32, float32) {
	ampLevel := s.ampEnv.Process()
	filtLevel := s.filterEnv.Process()

	oscOut := s.oscillator.Process()
	fmIn := s.fmLFO.Sample(s.sampleRate)
	filtered := s.ladder.Process(oscOut, filtLevel, s.accentGain*filtLevel, fmIn)

	sig := s.dcBlock.ProcessHPF(filtered)

	// VCA before distortion: accented notes drive the shaper harder.
	vca := ampLevel
	if s.ampEnv.IsActive() {
		vca += vcaFilterEnvMix*filtLevel + s.accentGain*accentThumpGain*filtLevel
	}
	vca = s.vcaSmoother.Process(vca)
	sig *= vca

	sig = s.distortion.Process(sig)
	sig *= s.masterGainValue()

	l := s.delay.ProcessL(sig)
	r := s.delay.ProcessR(sig)
	s.delay.Tick(sig, sig)

	l = math.Tanh(l*limiterDrive) * outputFullScale
	r = math.Tanh(r*limiterDrive) * outputFullScale
	return float32(l), float32(r)
}

// RenderFrame produces one stereo sample pair.
func (s *Synth) RenderFrame() (float32, float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderFrame()
}

// Process fills dst with interleaved stereo samples. Parameter changes are
// excluded for the duration of the block.
func (s *Synth) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i+1 < len(dst); i += 2 {
		dst[i], dst[i+1] = s.renderFrame()
	}
}

// SetVolume sets the master volume scalar (lock-free).
func (s *Synth) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	atomic.StoreUint64(&s.masterGain, math.Float64bits(v))
}

func (s *Synth) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&s.masterGain))
}

// SetPitchOffset shifts all subsequent notes by the given semitones.
func (s *Synth) SetPitchOffset(semitones float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitchOffset = semitones
}

// SetAccentLevel sets the gain applied by accented notes, in [0,1].
func (s *Synth) SetAccentLevel(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accentLevel = clamp(level, 0, 1)
}

// SetEnvMod sets the filter envelope modulation depth in Hz.
func (s *Synth) SetEnvMod(hz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envModHz = clamp(hz, 0, envModCeilingHz)
	s.ladder.SetEnvMod(s.envModHz)
}

// SetGlideTime sets the slide time in milliseconds.
func (s *Synth) SetGlideTime(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.glideTimeMs = math.Max(0, ms)
}

// SetDecayTime sets the filter envelope decay for plain notes.
func (s *Synth) SetDecayTime(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decayTimeMs = math.Max(0.1, ms)
}

// SetCutoff sets the filter base cutoff in Hz.
func (s *Synth) SetCutoff(hz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ladder.SetCutoff(hz)
}

// SetResonance sets the filter resonance; values above 1 self-oscillate.
func (s *Synth) SetResonance(r float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ladder.SetResonance(r)
}

// SetAccentMod sets the filter accent modulation depth.
func (s *Synth) SetAccentMod(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ladder.SetAccentMod(amount)
}

// SetFilterFM configures the LFO driving the filter FM input. Depth 0
// disables it.
func (s *Synth) SetFilterFM(depth, rateHz float64, waveform int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fmLFO.Set(clamp(depth, 0, 1), rateHz, waveform)
	s.ladder.SetFMAmount(clamp(depth, 0, 1))
}

// SetWaveformBlend sets the oscillator square/saw blend.
func (s *Synth) SetWaveformBlend(b float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oscillator.SetBlend(b)
}

// SetSubBlend sets the sub-oscillator mix.
func (s *Synth) SetSubBlend(b float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oscillator.SetSubBlend(b)
}

// SetSkewedPulse toggles the 53% skewed pulse width.
func (s *Synth) SetSkewedPulse(skewed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oscillator.SetSkewedPulse(skewed)
}

// SetAmpDecay sets the amplitude envelope decay in milliseconds.
func (s *Synth) SetAmpDecay(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ampEnv.SetDecay(ms)
}

// SetAmpRelease sets the amplitude envelope release in milliseconds.
func (s *Synth) SetAmpRelease(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ampEnv.SetRelease(ms)
}

// SetDistortionType selects the shaping curve.
func (s *Synth) SetDistortionType(t effects.DistortionType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distortion.SetType(t)
}

// SetDistortionAmount sets the drive amount in [0,1].
func (s *Synth) SetDistortionAmount(amt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distortion.SetAmount(amt)
}

// SetDistortionMix sets the distortion dry/wet blend.
func (s *Synth) SetDistortionMix(m float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distortion.SetMix(m)
}

// SetDistortionEnabled toggles the distortion stage.
func (s *Synth) SetDistortionEnabled(e bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distortion.SetEnabled(e)
}

// SetDelayTimeSamples sets both delay lengths in samples.
func (s *Synth) SetDelayTimeSamples(left, right int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay.SetTimeSamplesL(left)
	s.delay.SetTimeSamplesR(right)
}

// SetDelayFeedback sets the delay feedback gain.
func (s *Synth) SetDelayFeedback(fb float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay.SetFeedback(fb)
}

// SetDelayMix sets the delay dry/wet blend.
func (s *Synth) SetDelayMix(m float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay.SetMix(m)
}

// GateOpen reports whether a note is currently held.
func (s *Synth) GateOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ampEnv.IsActive()
}

func (s *Synth) noteFreq(pitchSemitone float64) float64 {
	return 440 * math.Pow(2, (pitchSemitone+s.pitchOffset-69)/12)
}

func noteKey(pitchSemitone float64) int {
	return int(math.Round(pitchSemitone))
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
