package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/keyer/cmd/morse"
	"github.com/spf13/cobra"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "keyer",
		Short:   "Morse keyer sidetone",
		Long:    "Key text as Morse sidetone, the way a hardware keyer does, and inspect its character table and timing.",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			morse.SendCmd(),
			morse.EncodeCmd(),
			morse.DecodeCmd(),
			morse.TableCmd(),
			morse.LiveCmd(),
			morse.TimelineCmd(),
			morse.ConfigCmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuilInfo := debug.ReadBuildInfo()
	if !hasBuilInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
