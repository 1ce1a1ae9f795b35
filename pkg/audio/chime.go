// Package audio plays short tones for merge and fragment events.
package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"nbody-sandbox/pkg/simulation"
)

const sampleRate = beep.SampleRate(44100)

// Tone frequencies in Hz.
const (
	MergeTone    = 220.0
	FragmentTone = 880.0
)

// Chime plays a tone per simulation event. The zero value is silent.
type Chime struct {
	enabled  bool
	duration time.Duration
}

// NewChime initializes the speaker. On failure it returns a silent Chime
// together with the error so callers can log and carry on.
func NewChime() (*Chime, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &Chime{}, fmt.Errorf("init speaker: %w", err)
	}
	return &Chime{enabled: true, duration: 60 * time.Millisecond}, nil
}

// ToneFor maps an event kind to its tone.
func ToneFor(k simulation.EventKind) float64 {
	if k == simulation.EventFragment {
		return FragmentTone
	}
	return MergeTone
}

// Play sounds one tone for the first event of each kind in events.
func (c *Chime) Play(events []simulation.Event) {
	if c == nil || !c.enabled || len(events) == 0 {
		return
	}
	played := map[simulation.EventKind]bool{}
	for _, e := range events {
		if played[e.Kind] {
			continue
		}
		played[e.Kind] = true
		c.tone(ToneFor(e.Kind))
	}
}

func (c *Chime) tone(freq float64) {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(c.duration), sine))
}

func (c *Chime) Close() {
	if c != nil && c.enabled {
		speaker.Close()
		c.enabled = false
	}
}
