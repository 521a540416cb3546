package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evo-cloud/ambience"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		v := ambience.GetVersion()
		fmt.Fprintf(out, "ambience: %s\n", v.Version)
		fmt.Fprintf(out, "protocol: %s\n", v.Protocol)
		fmt.Fprintf(out, "modes:    %s\n", strings.Join(v.Modes, ", "))

		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fmt.Fprintf(out, "go:       %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Fprintf(out, "commit:   %s\n", s.Value)
			case "vcs.time":
				fmt.Fprintf(out, "date:     %s\n", s.Value)
			}
		}
	},
}
