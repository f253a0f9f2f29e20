// Package audio synthesizes the firework pop and plays it on the speaker.
package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

// Pop parameters.
const (
	SampleRate    beep.SampleRate = 44100
	PopDuration                   = 300 * time.Millisecond
	PopStartHz                    = 880.0
	PopEndHz                      = 220.0
	PopVolume                     = 0.4
	popDecayPerSec                = 12.0
)

// pop is a short downward chirp with an exponential decay.
type pop struct {
	rate  beep.SampleRate
	total int
	pos   int
	phase float64
}

// NewPop returns a streamer that plays one pop and then drains.
func NewPop(rate beep.SampleRate) beep.Streamer {
	return &pop{rate: rate, total: rate.N(PopDuration)}
}

func (p *pop) Stream(samples [][2]float64) (n int, ok bool) {
	if p.pos >= p.total {
		return 0, false
	}

	sr := float64(p.rate)
	for i := range samples {
		if p.pos >= p.total {
			break
		}
		t := float64(p.pos) / sr
		progress := float64(p.pos) / float64(p.total)
		freq := PopStartHz + (PopEndHz-PopStartHz)*progress
		p.phase += 2 * math.Pi * freq / sr

		v := PopVolume * math.Exp(-popDecayPerSec*t) * math.Sin(p.phase)
		samples[i][0] = v
		samples[i][1] = v
		p.pos++
		n++
	}
	return n, true
}

func (p *pop) Err() error { return nil }
