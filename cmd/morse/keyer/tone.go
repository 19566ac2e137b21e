package keyer

import (
	"sync"
	"time"
)

// Tone is the sidetone output. Exactly one Player drives it at a time, and
// its calls are assumed to succeed.
type Tone interface {
	Start(freqHz uint32)
	Stop()
}

// ToneEvent is one recorded output transition.
type ToneEvent struct {
	At     time.Duration // offset from the recorder's origin
	On     bool
	FreqHz uint32
}

// Pulse is one tone-on period.
type Pulse struct {
	Start  time.Duration
	End    time.Duration
	FreqHz uint32
}

func (p Pulse) Duration() time.Duration { return p.End - p.Start }

// Recorder is a Tone that only records transitions, timestamped against a
// clock. Used for dry runs and tests.
type Recorder struct {
	mu     sync.Mutex
	clock  Clock
	origin time.Time
	events []ToneEvent
}

// NewRecorder timestamps events relative to clock.Now() at creation.
func NewRecorder(clock Clock) *Recorder {
	return &Recorder{clock: clock, origin: clock.Now()}
}

func (r *Recorder) Start(freqHz uint32) {
	r.record(true, freqHz)
}

func (r *Recorder) Stop() {
	r.record(false, 0)
}

func (r *Recorder) record(on bool, freqHz uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ToneEvent{At: r.clock.Now().Sub(r.origin), On: on, FreqHz: freqHz})
}

// Events returns a copy of every recorded transition.
func (r *Recorder) Events() []ToneEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ToneEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Pulses pairs each Start with the following Stop. A tone still on at the
// end is left out.
func (r *Recorder) Pulses() []Pulse {
	var pulses []Pulse
	var open *Pulse
	for _, ev := range r.Events() {
		switch {
		case ev.On && open == nil:
			open = &Pulse{Start: ev.At, FreqHz: ev.FreqHz}
		case !ev.On && open != nil:
			open.End = ev.At
			pulses = append(pulses, *open)
			open = nil
		}
	}
	return pulses
}
