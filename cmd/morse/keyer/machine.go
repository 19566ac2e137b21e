package keyer

import (
	"time"

	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/rs/zerolog"
)

// State is a step of the per-character keying state machine.
type State uint8

const (
	StateStart State = iota
	StateSendDit
	StateSendDah
	StateSendInterElement
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateSendDit:
		return "send-dit"
	case StateSendDah:
		return "send-dah"
	case StateSendInterElement:
		return "inter-element"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Machine keys one character's elements. It never blocks: the owner calls
// Tick with the current time until Done reports true, and is free to do
// other work between ticks.
type Machine struct {
	tone     Tone
	freqHz   uint32
	timing   Timing
	elements []code.Element
	index    int
	state    State
	deadline time.Time
	log      zerolog.Logger
}

// NewMachine prepares a machine over elements. With no elements it starts
// out done and never touches the tone.
func NewMachine(tone Tone, freqHz uint32, timing Timing, elements []code.Element, log zerolog.Logger) *Machine {
	m := &Machine{
		tone:     tone,
		freqHz:   freqHz,
		timing:   timing,
		elements: elements,
		log:      log,
	}
	if len(elements) == 0 {
		m.state = StateDone
	}
	return m
}

func (m *Machine) State() State        { return m.state }
func (m *Machine) Done() bool          { return m.state == StateDone }
func (m *Machine) Deadline() time.Time { return m.deadline }

// Tick performs at most one transition at now. It returns how long until the
// current deadline when there is nothing to do yet, and 0 after a transition
// or once done.
func (m *Machine) Tick(now time.Time) time.Duration {
	switch m.state {
	case StateStart:
		if m.elements[m.index] == code.Dah {
			m.state = StateSendDah
			m.deadline = now.Add(m.timing.Dah())
		} else {
			m.state = StateSendDit
			m.deadline = now.Add(m.timing.Dit())
		}
		m.tone.Start(m.freqHz)
		m.trace(now)
		return 0

	case StateSendDit, StateSendDah:
		// reached at now == deadline, so ticks on an exact clock land on unit boundaries
		if now.Before(m.deadline) {
			return m.deadline.Sub(now)
		}
		m.tone.Stop()
		// the gap is one unit after a dah as well
		m.deadline = now.Add(m.timing.InterElement())
		m.state = StateSendInterElement
		m.trace(now)
		return 0

	case StateSendInterElement:
		if now.Before(m.deadline) {
			return m.deadline.Sub(now)
		}
		if m.index == len(m.elements)-1 {
			m.state = StateDone
		} else {
			m.index++
			m.state = StateStart
		}
		m.trace(now)
		return 0
	}
	return 0
}

func (m *Machine) trace(now time.Time) {
	ev := m.log.Trace().Stringer("state", m.state).Int("element", m.index)
	switch m.state {
	case StateSendDit, StateSendDah, StateSendInterElement:
		ev = ev.Stringer("kind", m.elements[m.index]).Dur("until", m.deadline.Sub(now))
	}
	ev.Msg("keying")
}
