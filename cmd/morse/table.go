package morse

import (
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type TableParams struct {
	Filter string `short:"F" optional:"true" help:"Only show characters in this set, e.g. SOS." default:""`
}

var (
	paddingStyle = lipgloss.NewStyle().Faint(true)
	startStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	elementStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

var charNames = map[rune]string{
	' ': "space",
	'*': "* (AR)",
	'#': "# (error)",
}

func TableCmd() *cobra.Command {
	return boa.CmdT[TableParams]{
		Use:         "table",
		Short:       "List the keyer's character table",
		Long:        "Show every character the keyer can send with its bit pattern: padding ones, the start bit, then one bit per element (0 dit, 1 dah).",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *TableParams, cmd *cobra.Command, args []string) {
			RenderTable(os.Stdout, params.Filter, common.IsTerminal(os.Stdout))
		},
	}.ToCobra()
}

// RenderTable writes the character table. filter limits it to the given
// characters, case-insensitively.
func RenderTable(w io.Writer, filter string, styled bool) {
	entries := code.Entries()
	if filter != "" {
		want := strings.ToUpper(filter)
		entries = lo.Filter(entries, func(e code.Entry, _ int) bool {
			return strings.ContainsRune(want, e.Char)
		})
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Char", "Pattern", "Morse", "Elements", "Units"})
	for _, e := range entries {
		name, ok := charNames[e.Char]
		if !ok {
			name = string(e.Char)
		}
		morse := e.Pattern.String()
		elems := len(e.Pattern.Elements())
		units := e.Pattern.Units()
		if e.Pattern.IsSpace() {
			morse = "(pause)"
		}
		t.AppendRow(table.Row{name, binaryField(e.Pattern, styled), morse, elems, units})
	}
	t.Render()
}

// binaryField renders the pattern's bits, styling padding, start bit and
// elements apart when styled is set.
func binaryField(p code.Pattern, styled bool) string {
	bits := p.Binary()
	start := p.StartBit()
	if !styled || start < 0 || p.IsSpace() {
		return bits
	}
	split := 7 - start // index of the start bit in the string
	return paddingStyle.Render(bits[:split]) +
		startStyle.Render(bits[split:split+1]) +
		elementStyle.Render(bits[split+1:])
}
