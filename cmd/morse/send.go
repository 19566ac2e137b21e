package morse

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/atotto/clipboard"
	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/gigurra/keyer/cmd/morse/keyer"
	"github.com/spf13/cobra"
)

var clipboardReadAll = clipboard.ReadAll

type SendParams struct {
	Text     []string `pos:"true" optional:"true" help:"Text to send. If none provided, reads lines from stdin."`
	Response string   `short:"r" optional:"true" help:"Send a canned keyer response instead (entry, exit, ok, not-ok, error, power-on)." default:""`
	Clip     bool     `short:"p" help:"Send the clipboard contents, line by line." default:"false"`
	Verbose  bool     `short:"v" help:"Log each character as it is sent." default:"false"`
	WPM      int      `short:"w" name:"wpm" help:"Keyer speed in words per minute." default:"15"`
	Freq     int      `short:"f" name:"freq" help:"Sidetone frequency in Hz." default:"600"`
	WordGap  string   `name:"word-gap" help:"Word spacing: compat (as the keyer firmware) or canonical (7 units)." default:"compat"`
	Poll     string   `name:"poll" help:"Clock poll interval while keying." default:"1ms"`
	Volume   float64  `name:"volume" help:"Speaker volume, 0 to 1." default:"0.5"`
	Config   string   `short:"c" name:"config" optional:"true" help:"Config file. Defaults to config.toml in the keyer config dir." default:""`
	Trace    bool     `help:"Log every keying state transition." default:"false"`
}

func (p *SendParams) keying() keying {
	return keying{WPM: p.WPM, Freq: p.Freq, WordGap: p.WordGap, Poll: p.Poll, Volume: p.Volume, Config: p.Config}
}

func SendCmd() *cobra.Command {
	return boa.CmdT[SendParams]{
		Use:         "send",
		Short:       "Key text as sidetone audio",
		Long:        "Play text as Morse sidetone at the configured speed and pitch. Characters outside the keyer's table are sent as pauses.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *SendParams, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			exitCode := RunSend(ctx, params, changedFlags(cmd), audioBackend, os.Stdin, os.Stdout, os.Stderr)
			stop()
			os.Exit(exitCode)
		},
	}.ToCobra()
}

func RunSend(ctx context.Context, params *SendParams, changed map[string]bool, open backendFunc, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := params.keying().resolve(changed)
	if err != nil {
		fmt.Fprintf(stderr, "send: %v\n", err)
		return 1
	}
	log := newLogger(stderr, params.Verbose, params.Trace)

	var lines []string
	switch {
	case params.Response != "":
		text, ok := keyer.ResponseByName(params.Response)
		if !ok {
			fmt.Fprintf(stderr, "send: unknown response %q (want one of %s)\n", params.Response, strings.Join(keyer.ResponseNames(), ", "))
			return 1
		}
		lines = []string{text}
	case params.Clip:
		text, err := clipboardReadAll()
		if err != nil {
			fmt.Fprintf(stderr, "send: reading clipboard: %v\n", err)
			return 1
		}
		lines = strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
		if len(lines) == 0 {
			return 0
		}
	case len(params.Text) > 0:
		lines = []string{strings.Join(params.Text, " ")}
	}

	b, err := open(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "send: %v\n", err)
		return 1
	}
	defer b.close()

	sender, err := newSender(cfg, b, log)
	if err != nil {
		fmt.Fprintf(stderr, "send: %v\n", err)
		return 1
	}
	sender.OnCharacter = func(c rune, p code.Pattern) {
		if p.IsSpace() {
			fmt.Fprint(stdout, "/ ")
			return
		}
		fmt.Fprintf(stdout, "%s ", p)
	}

	log.Debug().Int("wpm", cfg.WPM).Uint32("sidetone_hz", cfg.SidetoneHz).Stringer("word_gap", cfg.WordGap).Msg("keyer ready")

	// false once interrupted
	send := func(line string) bool {
		err := sender.SendContext(ctx, keyable(line))
		fmt.Fprintln(stdout)
		if err != nil {
			log.Debug().Err(err).Msg("send stopped")
		}
		return err == nil
	}

	if lines != nil {
		for _, line := range lines {
			if !send(line) {
				return 130
			}
		}
		return 0
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if !send(scanner.Text()) {
			return 130
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "send: reading stdin: %v\n", err)
		return 1
	}
	return 0
}
