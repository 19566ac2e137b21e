// Package code holds the Morse character table and the bit-pattern
// encoding the keyer uses to store it.
//
// A Pattern is one byte. Unused high-order bits are padding ones, the first
// zero is the start bit, and every bit below it is one element read from
// most to least significant: 0 is a dit, 1 is a dah.
//
//	'A' = 0b11111001 -> 11111 (padding) 0 (start) 01 (dit, dah)
//
// The scheme comes from Hans Summers' (G0UPL) QRSS beacon keyer.
package code

// Pattern is a self-delimiting Morse character encoding.
type Pattern uint8

// SpacePattern marks an interword space. It is played as a fixed silence and
// is never decoded into elements.
const SpacePattern Pattern = 0b11101111

// Entry is one row of the character table.
type Entry struct {
	Char    rune
	Pattern Pattern
}

var entries = []Entry{
	{'A', 0b11111001}, // .-
	{'B', 0b11101000}, // -...
	{'C', 0b11101010}, // -.-.
	{'D', 0b11110100}, // -..
	{'E', 0b11111100}, // .
	{'F', 0b11100010}, // ..-.
	{'G', 0b11110110}, // --.
	{'H', 0b11100000}, // ....
	{'I', 0b11111000}, // ..
	{'J', 0b11100111}, // .---
	{'K', 0b11110101}, // -.-
	{'L', 0b11100100}, // .-..
	{'M', 0b11111011}, // --
	{'N', 0b11111010}, // -.
	{'O', 0b11110111}, // ---
	{'P', 0b11100110}, // .--.
	{'Q', 0b11101101}, // --.-
	{'R', 0b11110010}, // .-.
	{'S', 0b11110000}, // ...
	{'T', 0b11111101}, // -
	{'U', 0b11110001}, // ..-
	{'V', 0b11100001}, // ...-
	{'W', 0b11110011}, // .--
	{'X', 0b11101001}, // -..-
	{'Y', 0b11101011}, // -.--
	{'Z', 0b11101100}, // --..
	{'0', 0b11011111}, // -----
	{'1', 0b11001111}, // .----
	{'2', 0b11000111}, // ..---
	{'3', 0b11000011}, // ...--
	{'4', 0b11000001}, // ....-
	{'5', 0b11000000}, // .....
	{'6', 0b11010000}, // -....
	{'7', 0b11011000}, // --...
	{'8', 0b11011100}, // ---..
	{'9', 0b11011110}, // ----.
	{' ', SpacePattern},
	{'/', 0b11010010}, // -..-.
	{'?', 0b10001100}, // ..--..
	{'*', 0b11001010}, // .-.-.  AR, end of transmission
	{'#', 0b00000000}, // .......  error
}

type slot struct {
	pattern Pattern
	ok      bool
}

// Indexed by ASCII code. '#' encodes as 0, so presence is tracked apart from
// the value.
var table = func() (t [128]slot) {
	for _, e := range entries {
		t[e.Char] = slot{pattern: e.Pattern, ok: true}
	}
	return t
}()

var reverse = func() map[Pattern]rune {
	m := make(map[Pattern]rune, len(entries))
	for _, e := range entries {
		m[e.Pattern] = e.Char
	}
	return m
}()

// Lookup returns the pattern for c. Characters outside the table, lowercase
// letters included, come back as SpacePattern so an unknown character
// degrades to a pause instead of failing the message.
func Lookup(c rune) Pattern {
	if c < 0 || int(c) >= len(table) || !table[c].ok {
		return SpacePattern
	}
	return table[c].pattern
}

// Supported reports whether c has its own table entry.
func Supported(c rune) bool {
	return c >= 0 && int(c) < len(table) && table[c].ok
}

// Char is the reverse of Lookup.
func Char(p Pattern) (rune, bool) {
	c, ok := reverse[p]
	return c, ok
}

// Entries returns a copy of the table in its canonical order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
