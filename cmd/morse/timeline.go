package morse

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/gigurra/keyer/cmd/morse/config"
	"github.com/gigurra/keyer/cmd/morse/keyer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type TimelineParams struct {
	Text    []string `pos:"true" help:"Text to simulate."`
	WPM     int      `short:"w" name:"wpm" help:"Keyer speed in words per minute." default:"15"`
	Freq    int      `short:"f" name:"freq" help:"Sidetone frequency in Hz." default:"600"`
	WordGap string   `name:"word-gap" help:"Word spacing: compat (as the keyer firmware) or canonical (7 units)." default:"compat"`
	Config  string   `short:"c" name:"config" optional:"true" help:"Config file. Defaults to config.toml in the keyer config dir." default:""`
}

func (p *TimelineParams) keying() keying {
	return keying{WPM: p.WPM, Freq: p.Freq, WordGap: p.WordGap, Poll: "1ms", Volume: 0.5, Config: p.Config}
}

// Segment is a stretch of constant tone state while keying one character.
type Segment struct {
	Char  rune
	On    bool
	Start time.Duration
	End   time.Duration
}

func (s Segment) Duration() time.Duration { return s.End - s.Start }

func TimelineCmd() *cobra.Command {
	return boa.CmdT[TimelineParams]{
		Use:         "timeline",
		Short:       "Show the keying timeline for text without playing it",
		Long:        "Simulate sending text on a virtual clock and list every tone-on and silent stretch with its offset and length in dit units.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *TimelineParams, cmd *cobra.Command, args []string) {
			os.Exit(RunTimeline(params, changedFlags(cmd), os.Stdout, os.Stderr))
		},
	}.ToCobra()
}

func RunTimeline(params *TimelineParams, changed map[string]bool, stdout, stderr io.Writer) int {
	cfg, err := params.keying().resolve(changed)
	if err != nil {
		fmt.Fprintf(stderr, "timeline: %v\n", err)
		return 1
	}
	segments, total, err := Simulate(keyable(strings.Join(params.Text, " ")), cfg)
	if err != nil {
		fmt.Fprintf(stderr, "timeline: %v\n", err)
		return 1
	}
	timing, _ := cfg.Timing()
	RenderTimeline(stdout, segments, total, timing)
	return 0
}

// Simulate sends text on a virtual clock and returns the resulting tone
// segments and the total send time.
func Simulate(text string, cfg config.Config) ([]Segment, time.Duration, error) {
	clock := keyer.NewVirtualClock(time.Unix(0, 0))
	rec := keyer.NewRecorder(clock)
	sender, err := newSender(cfg, backend{tone: rec, clock: clock, close: func() {}}, zerolog.Nop())
	if err != nil {
		return nil, 0, err
	}

	type start struct {
		at time.Duration
		c  rune
	}
	var starts []start
	sender.OnCharacter = func(c rune, _ code.Pattern) {
		starts = append(starts, start{at: clock.Elapsed(), c: c})
	}
	sender.Send(text)
	total := clock.Elapsed()

	// cut the recorded transitions, plus every character boundary, into
	// stretches of constant tone state
	type edge struct {
		at   time.Duration
		on   bool
		char bool
	}
	var edges []edge
	events := rec.Events()
	ei, si := 0, 0
	for ei < len(events) || si < len(starts) {
		if si < len(starts) && (ei >= len(events) || starts[si].at <= events[ei].At) {
			edges = append(edges, edge{at: starts[si].at, char: true})
			si++
			continue
		}
		edges = append(edges, edge{at: events[ei].At, on: events[ei].On})
		ei++
	}

	var segments []Segment
	var cur *Segment
	charIdx := -1
	on := false
	for _, e := range edges {
		if e.char {
			charIdx++
		} else {
			on = e.on
		}
		if cur != nil && cur.Start < e.at {
			cur.End = e.at
			segments = append(segments, *cur)
		}
		cur = &Segment{Char: starts[charIdx].c, On: on, Start: e.at}
	}
	if cur != nil && cur.Start < total {
		cur.End = total
		segments = append(segments, *cur)
	}
	return segments, total, nil
}

// RenderTimeline prints segments as a table with millisecond offsets.
func RenderTimeline(w io.Writer, segments []Segment, total time.Duration, timing keyer.Timing) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Char", "Tone", "From (ms)", "To (ms)", "Units"})
	for _, s := range segments {
		name, ok := charNames[s.Char]
		if !ok {
			name = string(s.Char)
			if !code.Supported(s.Char) {
				name += " (pause)"
			}
		}
		state := "off"
		if s.On {
			state = "on"
		}
		t.AppendRow(table.Row{name, state, s.Start.Milliseconds(), s.End.Milliseconds(), units(s.Duration(), timing.Unit)})
	}
	t.AppendFooter(table.Row{"", "total", "", total.Milliseconds(), units(total, timing.Unit)})
	t.Render()
}

func units(d, unit time.Duration) string {
	if unit <= 0 {
		return "-"
	}
	return strconv.FormatFloat(float64(d)/float64(unit), 'f', -1, 64)
}
