// play_demo plays a built-in sixteen-step acid pattern through the voice.
package main

import (
	"flag"
	"log"
	"time"

	acid303 "github.com/cbegin/acid303-go"
)

type step struct {
	pitch  float64
	gate   bool
	accent bool
	slide  bool
}

// A classic one-bar acid line in A minor.
var pattern = []step{
	{33, true, true, false},
	{33, true, false, false},
	{45, true, false, true},
	{33, true, false, false},
	{36, true, true, false},
	{33, true, false, false},
	{40, true, false, true},
	{38, true, false, true},
	{33, true, true, false},
	{33, false, false, false},
	{45, true, false, false},
	{33, true, false, true},
	{31, true, true, false},
	{33, true, false, true},
	{36, true, false, false},
	{28, true, true, false},
}

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		bpm        = flag.Float64("bpm", 130, "tempo in beats per minute")
		bars       = flag.Int("bars", 8, "number of bars to play (0 = forever)")
		cutoff     = flag.Float64("cutoff", 0.35, "normalized cutoff 0..1")
		resonance  = flag.Float64("resonance", 0.85, "normalized resonance 0..1")
		envMod     = flag.Float64("envmod", 0.6, "normalized envelope mod 0..1")
		drive      = flag.Float64("drive", 0.4, "distortion amount 0..1")
	)
	flag.Parse()

	pl, err := acid303.NewPlayer(*sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	pl.SetCutoff(*cutoff)
	pl.SetResonance(*resonance)
	pl.SetEnvMod(*envMod)
	pl.SetAccent(0.8)
	pl.SetWaveformBlend(0.2)
	pl.SetSubBlend(0.15)
	pl.SetDistortionType(acid303.DistortionDiodeClipper)
	pl.SetDistortionAmount(*drive)
	pl.SetDistortionEnabled(*drive > 0)
	pl.SetDelayTempo(*bpm, 0.75, 0.5)
	pl.SetDelayFeedback(0.45)
	pl.SetDelayMix(0.3)

	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	stepDur := time.Duration(60 / *bpm / 4 * float64(time.Second))
	gateDur := stepDur * 3 / 4
	log.Printf("playing at %.0f BPM (%v per step)", *bpm, stepDur)

	held := -1.0
	for bar := 0; *bars == 0 || bar < *bars; bar++ {
		for i, st := range pattern {
			if !st.gate {
				if held >= 0 {
					pl.NoteOff(held)
					held = -1
				}
				time.Sleep(stepDur)
				continue
			}
			pl.NoteOn(st.pitch, st.accent, st.slide)
			if held >= 0 {
				// Release the previous note after the new one is down so
				// slides play legato.
				pl.NoteOff(held)
				held = -1
			}
			// A slide into the next step keeps this note held across the
			// step boundary.
			next := pattern[(i+1)%len(pattern)]
			if next.gate && next.slide {
				held = st.pitch
				time.Sleep(stepDur)
				continue
			}
			time.Sleep(gateDur)
			pl.NoteOff(st.pitch)
			time.Sleep(stepDur - gateDur)
		}
	}
}
