package keyer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultWPM = 15
	MinWPM     = 5
	MaxWPM     = 60

	// DefaultSidetoneHz is the keyer's sidetone pitch.
	DefaultSidetoneHz = 600

	DefaultPollInterval = time.Millisecond
)

var (
	ErrSpeedOutOfRange = errors.New("speed out of range")
	ErrUnknownWordGap  = errors.New("unknown word gap")
)

// WordGap selects how long a space character is held.
type WordGap int

const (
	// WordGapCompat holds a space for 4 units, as the keyer firmware does.
	// The space's own slot is then 6 units (4 plus the character gap after
	// it) and the silence between the last element of one word and the first
	// of the next is 9 units.
	WordGapCompat WordGap = iota
	// WordGapCanonical holds a space for 2 units so that the silence between
	// words is the standard 7 units: 3 from the preceding character gap, 2
	// held, 2 from the character gap after the space.
	WordGapCanonical
)

func (g WordGap) String() string {
	switch g {
	case WordGapCanonical:
		return "canonical"
	default:
		return "compat"
	}
}

// ParseWordGap accepts "compat" or "canonical".
func ParseWordGap(s string) (WordGap, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "compat":
		return WordGapCompat, nil
	case "canonical":
		return WordGapCanonical, nil
	}
	return WordGapCompat, fmt.Errorf("%w %q (want compat or canonical)", ErrUnknownWordGap, s)
}

// Timing holds every duration derived from the dit unit.
type Timing struct {
	Unit    time.Duration
	WordGap WordGap
}

// NewTiming uses the compat word gap.
func NewTiming(unit time.Duration) Timing {
	return Timing{Unit: unit}
}

func (t Timing) Dit() time.Duration { return t.Unit }
func (t Timing) Dah() time.Duration { return 3 * t.Unit }

// InterElement is the silence after every element, the last one included.
func (t Timing) InterElement() time.Duration { return t.Unit }

// InterCharacter is what the sender adds after each character. The trailing
// inter-element gap already supplied one unit.
func (t Timing) InterCharacter() time.Duration { return 2 * t.Unit }

// Space is how long a space character holds silence.
func (t Timing) Space() time.Duration {
	if t.WordGap == WordGapCanonical {
		return 2 * t.Unit
	}
	return 4 * t.Unit
}

// DitDuration converts a speed to a dit unit using the PARIS standard of
// 50 units per word.
func DitDuration(wpm int) (time.Duration, error) {
	if wpm < MinWPM || wpm > MaxWPM {
		return 0, fmt.Errorf("%w: %d wpm (want %d-%d)", ErrSpeedOutOfRange, wpm, MinWPM, MaxWPM)
	}
	return 1200 * time.Millisecond / time.Duration(wpm), nil
}
