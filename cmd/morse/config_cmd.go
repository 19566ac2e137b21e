package morse

import (
	"fmt"
	"io"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/config"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type ConfigParams struct {
	WPM     int     `short:"w" name:"wpm" help:"Keyer speed in words per minute." default:"15"`
	Freq    int     `short:"f" name:"freq" help:"Sidetone frequency in Hz." default:"600"`
	WordGap string  `name:"word-gap" help:"Word spacing: compat (as the keyer firmware) or canonical (7 units)." default:"compat"`
	Poll    string  `name:"poll" help:"Clock poll interval while keying." default:"1ms"`
	Volume  float64 `name:"volume" help:"Speaker volume, 0 to 1." default:"0.5"`
	Config  string  `short:"c" name:"config" optional:"true" help:"Config file. Defaults to config.toml in the keyer config dir." default:""`
	Write   bool    `help:"Save the effective settings to the config file." default:"false"`
}

func (p *ConfigParams) keying() keying {
	return keying{WPM: p.WPM, Freq: p.Freq, WordGap: p.WordGap, Poll: p.Poll, Volume: p.Volume, Config: p.Config}
}

func ConfigCmd() *cobra.Command {
	return boa.CmdT[ConfigParams]{
		Use:         "config",
		Short:       "Show or save the effective keyer settings",
		Long:        "Print the settings that result from defaults, the config file, KEYER_* environment variables and flags, as TOML. With --write they are saved to the config file.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *ConfigParams, cmd *cobra.Command, args []string) {
			os.Exit(RunConfig(params, changedFlags(cmd), os.Stdout, os.Stderr))
		},
	}.ToCobra()
}

func RunConfig(params *ConfigParams, changed map[string]bool, stdout, stderr io.Writer) int {
	cfg, err := params.keying().resolve(changed)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	data, err := toml.Marshal(cfg.File())
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	stdout.Write(data)

	if !params.Write {
		return 0
	}
	path := params.Config
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		fmt.Fprintln(stderr, "config: no config directory, pass --config")
		return 1
	}
	if err := config.Save(path, cfg); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "Saved %s\n", path)
	return 0
}
