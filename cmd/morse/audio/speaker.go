//go:build !tinygo && ((linux && cgo) || windows || darwin)

package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gigurra/keyer/cmd/morse/keyer"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

var (
	initOnce sync.Once
	initErr  error

	speakerInit = speaker.Init
)

// Speaker plays the sidetone on the default sound device.
type Speaker struct {
	gate *gate
}

// NewSpeaker initializes the sound device on first use and starts a silent
// gate on it.
func NewSpeaker(volume float64) (*Speaker, error) {
	sr := beep.SampleRate(sampleRate)
	initOnce.Do(func() {
		initErr = speakerInit(sr, sr.N(time.Second/100))
	})
	if initErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioInit, initErr)
	}

	g := newGate(volume)
	speaker.Play(g)
	return &Speaker{gate: g}, nil
}

func (s *Speaker) Start(freqHz uint32) {
	speaker.Lock()
	s.gate.freq = float64(freqHz)
	s.gate.on = true
	speaker.Unlock()
}

func (s *Speaker) Stop() {
	speaker.Lock()
	s.gate.on = false
	speaker.Unlock()
}

// Close silences the gate and removes it from the mixer.
func (s *Speaker) Close() {
	speaker.Lock()
	s.gate.on = false
	s.gate.closed = true
	speaker.Unlock()
}

// Default returns the speaker backend, or one-dit system beeps when the
// sound device cannot be opened. The returned func releases it.
func Default(volume float64, unit time.Duration, w io.Writer) (keyer.Tone, func(), error) {
	s, err := NewSpeaker(volume)
	if err != nil {
		fmt.Fprintf(w, "(%v. Using system beep...)\n", err)
		b := NewBeeper(unit, w)
		return b, b.Close, nil
	}
	return s, s.Close, nil
}
