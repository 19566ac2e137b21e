package audio

import (
	"errors"
	"math"
)

const (
	sampleRate = 44100

	// fade in/out length, keeps keying free of clicks
	rampSamples = sampleRate / 200
)

var ErrAudioInit = errors.New("audio init failed")

// gate is an endless sine streamer that is switched on and off instead of
// being queued per element. Fields are only touched under speaker.Lock once
// the gate is playing.
type gate struct {
	volume float64
	freq   float64
	on     bool
	closed bool

	phase float64 // 0..1
	level float64 // envelope 0..1
}

func newGate(volume float64) *gate {
	return &gate{volume: math.Max(0, math.Min(1, volume))}
}

func (g *gate) Stream(samples [][2]float64) (n int, ok bool) {
	if g.closed {
		return 0, false
	}
	const step = 1.0 / rampSamples
	for i := range samples {
		if g.on {
			g.level = math.Min(1, g.level+step)
		} else {
			g.level = math.Max(0, g.level-step)
		}

		value := 0.0
		if g.level > 0 {
			value = math.Sin(2*math.Pi*g.phase) * g.level * g.volume
			g.phase += g.freq / sampleRate
			if g.phase >= 1 {
				g.phase -= 1
			}
		} else {
			g.phase = 0
		}
		samples[i][0] = value
		samples[i][1] = value
	}
	return len(samples), true
}

func (g *gate) Err() error {
	return nil
}

// PeriodFromHz returns a signal period in nanoseconds. 0 is treated as 1Hz.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}
