//go:build !tinygo && !((linux && cgo) || windows || darwin)

package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/gigurra/keyer/cmd/morse/keyer"
)

// Default falls back to system beeps, one dit long, with notices on w.
func Default(_ float64, unit time.Duration, w io.Writer) (keyer.Tone, func(), error) {
	fmt.Fprintln(w, "(Audio requires CGO on Linux. Using system beep...)")
	b := NewBeeper(unit, w)
	return b, b.Close, nil
}
