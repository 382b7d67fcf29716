package smooth

import (
	"math"
	"testing"
)

func TestSmootherConvergesToInput(t *testing.T) {
	s := NewSmoother(44100, 2)
	var v float64
	for i := 0; i < 44100; i++ {
		v = s.Process(1)
		if v < 0 || v > 1+1e-12 {
			t.Fatalf("smoother output %v out of range at sample %d", v, i)
		}
	}
	if math.Abs(v-1) > 1e-6 {
		t.Fatalf("smoother settled at %v, want ~1", v)
	}
}

func TestSmootherTimeConstant(t *testing.T) {
	// After exactly tau, a step response reaches 1 - 1/e.
	s := NewSmoother(44100, 10)
	samples := int(0.010 * 44100)
	var v float64
	for i := 0; i < samples; i++ {
		v = s.Process(1)
	}
	want := 1 - 1/math.E
	if math.Abs(v-want) > 0.01 {
		t.Fatalf("level after one tau = %v, want ~%v", v, want)
	}
}

func TestSmootherZeroTauPassesThrough(t *testing.T) {
	s := NewSmoother(44100, 0)
	for _, in := range []float64{0.25, -0.9, 1} {
		if got := s.Process(in); got != in {
			t.Fatalf("Process(%v) = %v, want pass-through", in, got)
		}
	}
}

func TestDCBlockerRemovesOffset(t *testing.T) {
	d := NewDCBlocker(44100, 25)
	var v float64
	for i := 0; i < 44100; i++ {
		v = d.ProcessHPF(0.5) // pure DC
	}
	if math.Abs(v) > 1e-3 {
		t.Fatalf("DC residue %v after 1s", v)
	}
}

func TestDCBlockerPassesAudio(t *testing.T) {
	d := NewDCBlocker(44100, 25)
	// 440 Hz sine with a 0.5 DC bias: output should keep the sine and lose
	// the bias.
	var sum, energy float64
	n := 44100
	for i := 0; i < n; i++ {
		in := 0.5 + math.Sin(2*math.Pi*440*float64(i)/44100)
		v := d.ProcessHPF(in)
		if i > 4410 {
			sum += v
			energy += v * v
		}
	}
	mean := sum / float64(n-4410)
	if math.Abs(mean) > 0.01 {
		t.Fatalf("mean %v, want ~0", mean)
	}
	if energy < float64(n-4410)*0.3 {
		t.Fatalf("audio band attenuated too much: energy %v", energy)
	}
}

func TestFirstDifferenceBlocker(t *testing.T) {
	d := NewDCBlocker(44100, 25)
	var v float64
	for i := 0; i < 44100; i++ {
		v = d.Process(1)
	}
	if math.Abs(v) > 1e-3 {
		t.Fatalf("DC residue %v after 1s", v)
	}
}
