// play_acid drives the voice from a MIDI input port. Note-ons with velocity
// at or above the accent threshold play accented; overlapping note-ons play
// as slides. A handful of control changes map to the normalized setters.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"

	acid303 "github.com/cbegin/acid303-go"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const accentVelocity = 100

// Control-change assignments, loosely following the common 303-clone layout.
const (
	ccCutoff    = 74
	ccResonance = 71
	ccEnvMod    = 12
	ccDecay     = 75
	ccAccent    = 76
	ccBlend     = 70
	ccDelayMix  = 91
	ccVolume    = 7
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		listPorts  = flag.Bool("list", false, "list MIDI input ports and exit")
		portIdx    = flag.Int("port", 0, "MIDI input port index")
		glideMs    = flag.Float64("glide", 60, "slide time in milliseconds")
		skewed     = flag.Bool("skewed-pulse", true, "use the 53% skewed pulse width")
	)
	flag.Parse()
	defer midi.CloseDriver()

	ins := midi.GetInPorts()
	if *listPorts {
		for _, in := range ins {
			fmt.Printf("%d: %s\n", in.Number(), in.String())
		}
		return
	}
	if len(ins) == 0 {
		log.Fatal("no MIDI inputs available")
	}
	if *portIdx < 0 || *portIdx >= len(ins) {
		log.Fatalf("port index %d out of range (0..%d)", *portIdx, len(ins)-1)
	}
	in := ins[*portIdx]

	pl, err := acid303.NewPlayer(*sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	pl.SetGlideTimeMs(*glideMs)
	pl.SetSkewedPulse(*skewed)
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	// Held keys decide slide: a note-on while another key is down plays
	// legato.
	var (
		mu   sync.Mutex
		held int
	)
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		var cc, val uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			mu.Lock()
			slide := held > 0
			held++
			mu.Unlock()
			pl.NoteOn(float64(key), vel >= accentVelocity, slide)
		case msg.GetNoteEnd(&ch, &key):
			mu.Lock()
			if held > 0 {
				held--
			}
			mu.Unlock()
			pl.NoteOff(float64(key))
		case msg.GetControlChange(&ch, &cc, &val):
			norm := float64(val) / 127
			switch cc {
			case ccCutoff:
				pl.SetCutoff(norm)
			case ccResonance:
				pl.SetResonance(norm)
			case ccEnvMod:
				pl.SetEnvMod(norm)
			case ccDecay:
				pl.SetDecay(norm)
			case ccAccent:
				pl.SetAccent(norm)
			case ccBlend:
				pl.SetWaveformBlend(norm)
			case ccDelayMix:
				pl.SetDelayMix(norm)
			case ccVolume:
				pl.SetVolume(norm)
			}
		}
	})
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", in.String(), err)
	}
	defer stop()

	log.Printf("listening on %s; ctrl-c to quit", in.String())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
