package morse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/code"
	"github.com/spf13/cobra"
)

type EncodeParams struct {
	Text []string `pos:"true" optional:"true" help:"Text to encode. If none provided, reads from stdin."`
}

type DecodeParams struct {
	Morse []string `pos:"true" optional:"true" help:"Dots and dashes to decode, letters split by spaces and words by '/'. If none provided, reads from stdin."`
}

func EncodeCmd() *cobra.Command {
	return boa.CmdT[EncodeParams]{
		Use:         "encode",
		Short:       "Print text as dots and dashes",
		Long:        "Convert text to the keyer's Morse code. Characters the keyer cannot send are left out.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *EncodeParams, cmd *cobra.Command, args []string) {
			os.Exit(RunLines(params.Text, code.Encode, os.Stdin, os.Stdout, os.Stderr))
		},
	}.ToCobra()
}

func DecodeCmd() *cobra.Command {
	return boa.CmdT[DecodeParams]{
		Use:         "decode",
		Short:       "Turn dots and dashes back into text",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *DecodeParams, cmd *cobra.Command, args []string) {
			os.Exit(RunLines(params.Morse, code.Decode, os.Stdin, os.Stdout, os.Stderr))
		},
	}.ToCobra()
}

// RunLines applies convert to the joined args, or to each stdin line when
// there are none.
func RunLines(args []string, convert func(string) string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(stdout, convert(strings.Join(args, " ")))
		return 0
	}
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		fmt.Fprintln(stdout, convert(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "reading stdin: %v\n", err)
		return 1
	}
	return 0
}
