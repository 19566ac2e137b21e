package morse

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/gigurra/keyer/cmd/morse/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// characters typed ahead of the keyer; further keys are dropped
const typeAhead = 256

var (
	liveHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	liveSentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	livePendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	liveCursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	liveHelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type LiveParams struct {
	WPM     int     `short:"w" name:"wpm" help:"Keyer speed in words per minute." default:"15"`
	Freq    int     `short:"f" name:"freq" help:"Sidetone frequency in Hz." default:"600"`
	WordGap string  `name:"word-gap" help:"Word spacing: compat (as the keyer firmware) or canonical (7 units)." default:"compat"`
	Poll    string  `name:"poll" help:"Clock poll interval while keying." default:"1ms"`
	Volume  float64 `name:"volume" help:"Speaker volume, 0 to 1." default:"0.5"`
	Config  string  `short:"c" name:"config" optional:"true" help:"Config file. Defaults to config.toml in the keyer config dir." default:""`
}

func (p *LiveParams) keying() keying {
	return keying{WPM: p.WPM, Freq: p.Freq, WordGap: p.WordGap, Poll: p.Poll, Volume: p.Volume, Config: p.Config}
}

func LiveCmd() *cobra.Command {
	return boa.CmdT[LiveParams]{
		Use:         "live",
		Short:       "Key characters as you type them",
		Long:        "Keyboard keyer. Every key typed is queued and keyed in order; Enter and Space send a word space. Esc or Ctrl+C quits once the current character is done.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *LiveParams, cmd *cobra.Command, args []string) {
			os.Exit(RunLive(params, changedFlags(cmd), audioBackend, os.Stderr))
		},
	}.ToCobra()
}

func RunLive(params *LiveParams, changed map[string]bool, open backendFunc, stderr io.Writer) int {
	cfg, err := params.keying().resolve(changed)
	if err != nil {
		fmt.Fprintf(stderr, "live: %v\n", err)
		return 1
	}
	b, err := open(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "live: %v\n", err)
		return 1
	}
	defer b.close()

	sender, err := newSender(cfg, b, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(stderr, "live: %v\n", err)
		return 1
	}

	queue := make(chan rune, typeAhead)
	p := tea.NewProgram(newLiveModel(cfg, queue))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for c := range queue {
			if err := sender.SendContext(ctx, string(c)); err != nil {
				return
			}
			p.Send(sentMsg{c: c})
		}
	}()

	_, err = p.Run()
	cancel()
	close(queue)
	<-done
	if err != nil {
		fmt.Fprintf(stderr, "live: %v\n", err)
		return 1
	}
	return 0
}

// sentMsg reports that the keyer finished a character.
type sentMsg struct {
	c rune
}

type liveModel struct {
	cfg   config.Config
	queue chan<- rune
	typed []rune
	sent  int
}

func newLiveModel(cfg config.Config, queue chan<- rune) liveModel {
	return liveModel{cfg: cfg, queue: queue}
}

func (m liveModel) Init() tea.Cmd {
	return nil
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeySpace, tea.KeyEnter:
			m = m.enqueue(' ')
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m = m.enqueue(unicode.ToUpper(r))
			}
		}
	case sentMsg:
		if m.sent < len(m.typed) {
			m.sent++
		}
	}
	return m, nil
}

func (m liveModel) enqueue(c rune) liveModel {
	if c != ' ' && !code.Supported(c) {
		return m
	}
	select {
	case m.queue <- c:
		m.typed = append(m.typed, c)
	default:
	}
	return m
}

func (m liveModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(liveHeaderStyle.Render(fmt.Sprintf("keyer live · %d wpm · %d Hz · %s spacing", m.cfg.WPM, m.cfg.SidetoneHz, m.cfg.WordGap)))
	b.WriteString("\n\n  ")
	b.WriteString(liveSentStyle.Render(string(m.typed[:m.sent])))
	b.WriteString(livePendingStyle.Render(string(m.typed[m.sent:])))
	b.WriteString(liveCursorStyle.Render("_"))
	b.WriteString("\n\n  ")
	if m.sent < len(m.typed) {
		next := m.typed[m.sent]
		b.WriteString(liveHelpStyle.Render(fmt.Sprintf("keying %q  %s", next, code.Lookup(next))))
		b.WriteString("\n  ")
	}
	b.WriteString(liveHelpStyle.Render("type to key · esc to quit"))
	b.WriteString("\n")
	return b.String()
}
