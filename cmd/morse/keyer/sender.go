package keyer

import (
	"context"
	"sync"
	"time"

	"github.com/gigurra/keyer/cmd/morse/code"
)

// Sender plays whole messages through a Player. Sends are serialized; the
// OnCharacter hook must not call back into the same Sender.
type Sender struct {
	mu     sync.Mutex
	player *Player

	// OnCharacter, when set, is called before each character is keyed.
	OnCharacter func(c rune, p code.Pattern)
}

func NewSender(player *Player) *Sender {
	return &Sender{player: player}
}

// Send keys text and returns once all of it has been sent. A NUL ends the
// message early.
func (s *Sender) Send(text string) {
	_ = s.SendContext(context.Background(), text)
}

// SendContext is Send with cancellation checked between characters. A
// character already being keyed always completes.
func (s *Sender) SendContext(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timing := s.player.Timing()
	for i, c := range text {
		if c == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			s.player.log.Debug().Int("offset", i).Err(err).Msg("send interrupted")
			return err
		}
		p := code.Lookup(c)
		if s.OnCharacter != nil {
			s.OnCharacter(c, p)
		}
		s.player.log.Debug().Str("char", string(c)).Str("pattern", p.Binary()).Msg("sending")
		s.player.PlayCharacter(p)
		s.player.hold(timing.InterCharacter())
	}
	return nil
}

// CharacterDuration is how long PlayCharacter blocks for p: tone time plus
// one inter-element gap per element.
func CharacterDuration(p code.Pattern, timing Timing) time.Duration {
	if p.IsSpace() {
		return timing.Space()
	}
	elems := p.Elements()
	return time.Duration(p.Units()+len(elems)) * timing.Unit
}

// MessageDuration is how long Send blocks for text.
func MessageDuration(text string, timing Timing) time.Duration {
	var total time.Duration
	for _, c := range text {
		if c == 0 {
			break
		}
		total += CharacterDuration(code.Lookup(c), timing) + timing.InterCharacter()
	}
	return total
}
