package lfo

import (
	"math"
	"testing"
)

func TestInactiveReturnsZero(t *testing.T) {
	var l LFO
	l.Set(0, 5, WaveSine)
	if l.Active() {
		t.Fatal("zero depth should be inactive")
	}
	if v := l.Sample(44100); v != 0 {
		t.Fatalf("expected 0, got %v", v)
	}
	l.Set(1, 0, WaveSine)
	if v := l.Sample(44100); v != 0 {
		t.Fatalf("expected 0 at zero rate, got %v", v)
	}
}

func TestOutputWithinDepth(t *testing.T) {
	for _, wf := range []int{WaveSine, WaveTriangle, WaveSaw, WaveSquare} {
		var l LFO
		l.Set(0.7, 3, wf)
		for i := 0; i < 44100; i++ {
			if v := l.Sample(44100); math.Abs(v) > 0.7+1e-12 {
				t.Fatalf("waveform %d: |%v| exceeds depth", wf, v)
			}
		}
	}
}

func TestRateMatchesCycleLength(t *testing.T) {
	var l LFO
	l.Set(1, 10, WaveSquare) // 10 Hz at 44100: 4410 samples per cycle
	// Count transitions over one second; a 10 Hz square has 20.
	var transitions int
	prev := l.Sample(44100)
	for i := 1; i < 44100; i++ {
		v := l.Sample(44100)
		if v != prev {
			transitions++
		}
		prev = v
	}
	if transitions < 19 || transitions > 21 {
		t.Fatalf("expected ~20 transitions, got %d", transitions)
	}
}

func TestResetRestartsPhase(t *testing.T) {
	var l LFO
	l.Set(1, 5, WaveSaw)
	first := l.Sample(44100)
	for i := 0; i < 1000; i++ {
		l.Sample(44100)
	}
	l.Reset()
	if v := l.Sample(44100); v != first {
		t.Fatalf("after Reset got %v, want %v", v, first)
	}
}
