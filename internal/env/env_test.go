package env

import "testing"

func TestAnalogAttackDecayShape(t *testing.T) {
	a := NewAnalog(44100)
	a.SetAttack(10)
	a.SetDecay(100)
	a.NoteOn()

	prev := 0.0
	attackSamples := int(10 * 0.001 * 44100)
	for i := 0; i < attackSamples; i++ {
		v := a.Process()
		if v < prev {
			t.Fatalf("attack not monotonic at sample %d: %v < %v", i, v, prev)
		}
		prev = v
	}
	if prev < 0.999 {
		t.Fatalf("level after attack = %v, want ~1", prev)
	}
	for i := 0; i < 1000; i++ {
		v := a.Process()
		if v > prev {
			t.Fatalf("decay not monotonic at sample %d: %v > %v", i, v, prev)
		}
		prev = v
	}
}

func TestAnalogLevelBounds(t *testing.T) {
	a := NewAnalog(44100)
	a.NoteOn()
	for i := 0; i < 100000; i++ {
		if i == 40000 {
			a.NoteOff()
		}
		v := a.Process()
		if v < 0 || v > 1 {
			t.Fatalf("level %v out of [0,1] at sample %d", v, i)
		}
	}
}

func TestNoteOffDuringAttackGoesToRelease(t *testing.T) {
	a := NewAnalog(44100)
	a.SetAttack(100) // long attack so note-off lands mid-attack
	a.NoteOn()
	for i := 0; i < 50; i++ {
		a.Process()
	}
	mid := a.Level()
	if mid <= 0 || mid >= 1 {
		t.Fatalf("expected mid-attack level, got %v", mid)
	}
	a.NoteOff()
	if a.stage != stageRelease {
		t.Fatalf("stage after NoteOff = %v, want release", a.stage)
	}
	// Release must fall from the current level; DECAY would first jump to 1.
	v := a.Process()
	if v > mid {
		t.Fatalf("level rose after NoteOff: %v > %v", v, mid)
	}
}

func TestGateIndependentOfTail(t *testing.T) {
	a := NewAnalog(44100)
	a.SetDecay(1) // tail dies almost immediately
	a.NoteOn()
	for i := 0; i < 2000; i++ {
		a.Process()
	}
	if a.Level() != 0 {
		t.Fatalf("expected tail to reach zero, level = %v", a.Level())
	}
	if !a.IsActive() {
		t.Fatal("gate should stay open until NoteOff")
	}
	a.NoteOff()
	if a.IsActive() {
		t.Fatal("gate should close on NoteOff")
	}
}

func TestDecayStrictlyDecreases(t *testing.T) {
	d := NewDecay(44100)
	d.SetDecay(50)
	d.Trigger()
	if d.Level() != 1 {
		t.Fatalf("level after Trigger = %v, want 1", d.Level())
	}
	prev := d.Level()
	for i := 0; i < 10000; i++ {
		v := d.Process()
		if v >= prev && prev > 0 {
			t.Fatalf("decay not strictly decreasing at sample %d: %v >= %v", i, v, prev)
		}
		if v < 0 {
			t.Fatalf("negative level %v", v)
		}
		prev = v
	}
}

func TestDecayRetrigger(t *testing.T) {
	d := NewDecay(44100)
	d.Trigger()
	for i := 0; i < 5000; i++ {
		d.Process()
	}
	low := d.Level()
	d.Trigger()
	if d.Level() != 1 {
		t.Fatalf("retrigger did not reset level: %v (was %v)", d.Level(), low)
	}
}
