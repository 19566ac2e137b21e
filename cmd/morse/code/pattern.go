package code

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Element is a single dit or dah.
type Element uint8

const (
	Dit Element = 0
	Dah Element = 1
)

// MaxElements is the longest pattern a byte can hold: start bit in bit 7,
// elements in bits 6..0.
const MaxElements = 7

var (
	ErrTooManyElements = errors.New("too many elements for one pattern")
	ErrBadElement      = errors.New("invalid morse element")
)

// Units returns the element's length in dit units.
func (e Element) Units() int {
	if e == Dah {
		return 3
	}
	return 1
}

func (e Element) String() string {
	if e == Dah {
		return "-"
	}
	return "."
}

// IsSpace reports whether p is the interword space sentinel.
func (p Pattern) IsSpace() bool {
	return p == SpacePattern
}

// StartBit returns the position of the start bit, or -1 if p has none.
func (p Pattern) StartBit() int {
	for bit := 7; bit >= 0; bit-- {
		if p&(1<<bit) == 0 {
			return bit
		}
	}
	return -1
}

// Elements decodes p most significant element first. The space sentinel and
// patterns without a start bit give nil; callers handle space themselves.
func (p Pattern) Elements() []Element {
	if p.IsSpace() {
		return nil
	}
	start := p.StartBit()
	if start <= 0 {
		return nil
	}
	out := make([]Element, 0, start)
	for bit := start - 1; bit >= 0; bit-- {
		out = append(out, Element((p>>bit)&1))
	}
	return out
}

// Units returns the summed tone length of p's elements.
func (p Pattern) Units() int {
	return lo.SumBy(p.Elements(), func(e Element) int { return e.Units() })
}

// String renders p as dots and dashes, or a single space for SpacePattern.
func (p Pattern) String() string {
	if p.IsSpace() {
		return " "
	}
	return strings.Join(lo.Map(p.Elements(), func(e Element, _ int) string { return e.String() }), "")
}

// Binary renders p as eight binary digits.
func (p Pattern) Binary() string {
	return fmt.Sprintf("%08b", uint8(p))
}

// FromElements encodes elements into a pattern.
func FromElements(elems []Element) (Pattern, error) {
	if len(elems) > MaxElements {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooManyElements, len(elems), MaxElements)
	}
	n := len(elems)
	// ones above the start bit, zero at n, elements below
	p := Pattern(0xFF << (n + 1))
	for i, e := range elems {
		if e == Dah {
			p |= 1 << (n - 1 - i)
		}
	}
	return p, nil
}

// ParseElements reads a dot/dash string such as ".-.".
func ParseElements(s string) ([]Element, error) {
	out := make([]Element, 0, len(s))
	for i, r := range s {
		switch r {
		case '.':
			out = append(out, Dit)
		case '-':
			out = append(out, Dah)
		default:
			return nil, fmt.Errorf("%w %q at offset %d in %q", ErrBadElement, r, i, s)
		}
	}
	return out, nil
}

// Encode renders text as dot/dash groups, letters separated by a space and
// words by " / ". Characters without a table entry are left out.
func Encode(text string) string {
	var words []string
	for _, word := range strings.Fields(strings.ToUpper(text)) {
		letters := lo.FilterMap([]rune(word), func(r rune, _ int) (string, bool) {
			if !Supported(r) {
				return "", false
			}
			return Lookup(r).String(), true
		})
		if len(letters) > 0 {
			words = append(words, strings.Join(letters, " "))
		}
	}
	return strings.Join(words, " / ")
}

// Decode reverses Encode. Groups that are not in the table are dropped.
func Decode(morse string) string {
	var result strings.Builder
	for i, word := range strings.Split(morse, "/") {
		if i > 0 {
			result.WriteRune(' ')
		}
		for _, group := range strings.Fields(word) {
			elems, err := ParseElements(group)
			if err != nil || len(elems) == 0 {
				continue
			}
			p, err := FromElements(elems)
			if err != nil || p.IsSpace() {
				continue
			}
			if r, ok := Char(p); ok {
				result.WriteRune(r)
			}
		}
	}
	return strings.TrimSpace(result.String())
}
