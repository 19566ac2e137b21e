package morse

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/audio"
	"github.com/gigurra/keyer/cmd/morse/config"
	"github.com/gigurra/keyer/cmd/morse/keyer"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// keying carries the flags shared by every command that keys text.
type keying struct {
	WPM     int
	Freq    int
	WordGap string
	Poll    string
	Volume  float64
	Config  string
}

// backend is where keying goes: a tone output and the clock that paces it.
type backend struct {
	tone  keyer.Tone
	clock keyer.Clock
	close func()
}

type backendFunc func(cfg config.Config, stderr io.Writer) (backend, error)

func audioBackend(cfg config.Config, stderr io.Writer) (backend, error) {
	timing, err := cfg.Timing()
	if err != nil {
		return backend{}, err
	}
	tone, release, err := audio.Default(cfg.Volume, timing.Unit, stderr)
	if err != nil {
		return backend{}, err
	}
	return backend{tone: tone, clock: keyer.SystemClock{}, close: release}, nil
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	return changed
}

// resolve layers flags, environment and the config file. Flags only win
// when given explicitly.
func (k keying) resolve(changed map[string]bool) (config.Config, error) {
	cfg := config.Default()
	if k.Freq < config.MinSidetoneHz || k.Freq > config.MaxSidetoneHz {
		return cfg, fmt.Errorf("%w: sidetone %dHz (want %d-%d)", config.ErrInvalid, k.Freq, config.MinSidetoneHz, config.MaxSidetoneHz)
	}
	cfg.WPM = k.WPM
	cfg.SidetoneHz = uint32(k.Freq)
	cfg.Volume = k.Volume
	if k.WordGap != "" {
		gap, err := keyer.ParseWordGap(k.WordGap)
		if err != nil {
			return cfg, err
		}
		cfg.WordGap = gap
	}
	if k.Poll != "" {
		d, err := time.ParseDuration(k.Poll)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", config.FlagPoll, err)
		}
		cfg.PollInterval = d
	}

	path := k.Config
	if path == "" {
		path = config.DefaultPath()
	}
	fc, _, err := config.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := config.Apply(&cfg, fc, changed); err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, changed); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func newSender(cfg config.Config, b backend, log zerolog.Logger) (*keyer.Sender, error) {
	timing, err := cfg.Timing()
	if err != nil {
		return nil, err
	}
	player := keyer.NewPlayer(b.tone, timing,
		keyer.WithClock(b.clock),
		keyer.WithSidetone(cfg.SidetoneHz),
		keyer.WithPollInterval(cfg.PollInterval),
		keyer.WithLogger(log),
	)
	return keyer.NewSender(player), nil
}

func verbosity(verbose, trace bool) int {
	switch {
	case trace:
		return 2
	case verbose:
		return 1
	}
	return 0
}

func newLogger(stderr io.Writer, verbose, trace bool) zerolog.Logger {
	return common.NewLogger(stderr, verbosity(verbose, trace))
}

// keyable upper-cases text, the table only holds capitals.
func keyable(text string) string {
	return strings.ToUpper(text)
}
