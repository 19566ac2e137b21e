//go:build !tinygo

package audio

import (
	"io"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

// Beeper sounds a fixed-length system beep at the start of each element,
// for builds without a sound device. Where the system beep is unavailable
// it rings the terminal bell instead.
type Beeper struct {
	pulse    time.Duration
	beep     func(freq float64, ms int) error
	fallback *Bell

	wg sync.WaitGroup
}

// NewBeeper beeps for pulse per element, usually one dit. The bell goes to w.
func NewBeeper(pulse time.Duration, w io.Writer) *Beeper {
	if pulse <= 0 {
		pulse = time.Duration(beeep.DefaultDuration) * time.Millisecond
	}
	return &Beeper{pulse: pulse, beep: beeep.Beep, fallback: NewBell(w)}
}

func (b *Beeper) Start(freqHz uint32) {
	ms := int(b.pulse / time.Millisecond)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.beep(float64(freqHz), ms); err != nil {
			b.fallback.Start(freqHz)
		}
	}()
}

func (b *Beeper) Stop() {}

// Close waits for beeps still sounding.
func (b *Beeper) Close() {
	b.wg.Wait()
}
