// Command ambience supervises the containers declared in a configuration
// file.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evo-cloud/ambience/internal/logging"
)

var (
	config fileConfig     // loaded configuration
	logger zerolog.Logger // command logger

	flagConfigPath string
	flagLogLevel   string
	flagLogFormat  string
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", "ambience.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level, overrides the configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (json or console), overrides the configuration file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ambience:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ambience",
	Short:         "Supervise containers through commands or controller processes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// initCommand loads the configuration and builds the logger
func initCommand(_ *cobra.Command, _ []string) error {
	var err error
	config, err = loadConfig(flagConfigPath)
	if err != nil {
		return err
	}

	if flagLogLevel != "" {
		config.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		config.Log.Format = flagLogFormat
	}
	config.Log.ApplyDefaults()
	if err := config.Log.Validate(); err != nil {
		return err
	}

	logger = logging.New(config.Log).With().Str("run", uuid.NewString()).Logger()
	return nil
}
