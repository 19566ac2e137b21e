package keyer

import (
	"time"

	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/rs/zerolog"
)

// Option configures a Player.
type Option func(*Player)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(p *Player) { p.clock = c }
}

// WithSidetone sets the tone frequency in Hz.
func WithSidetone(freqHz uint32) Option {
	return func(p *Player) { p.freqHz = freqHz }
}

// WithPollInterval bounds how long the player sleeps between clock reads.
func WithPollInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.poll = d
		}
	}
}

// WithLogger attaches a logger. Keying transitions are logged at trace level.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Player) { p.log = log }
}

// Player keys single characters on a Tone. Every call blocks until the
// character, including its trailing inter-element gap, has been sent.
type Player struct {
	tone   Tone
	timing Timing
	clock  Clock
	freqHz uint32
	poll   time.Duration
	log    zerolog.Logger
}

func NewPlayer(tone Tone, timing Timing, opts ...Option) *Player {
	p := &Player{
		tone:   tone,
		timing: timing,
		clock:  SystemClock{},
		freqHz: DefaultSidetoneHz,
		poll:   DefaultPollInterval,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) Timing() Timing { return p.timing }

// PlayCharacter sends one pattern. SpacePattern holds silence for the space
// duration without touching the tone.
func (p *Player) PlayCharacter(pattern code.Pattern) {
	if pattern.IsSpace() {
		p.log.Trace().Dur("hold", p.timing.Space()).Msg("space")
		p.hold(p.timing.Space())
		return
	}

	m := NewMachine(p.tone, p.freqHz, p.timing, pattern.Elements(), p.log)
	for !m.Done() {
		if wait := m.Tick(p.clock.Now()); wait > 0 {
			p.clock.Sleep(min(wait, p.poll))
		}
	}
}

// hold blocks for d, polling the clock.
func (p *Player) hold(d time.Duration) {
	deadline := p.clock.Now().Add(d)
	for {
		now := p.clock.Now()
		if !now.Before(deadline) {
			return
		}
		p.clock.Sleep(min(deadline.Sub(now), p.poll))
	}
}
