// Package logging builds the zerolog logger used by the ambience command.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config contains logging configuration
type Config struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Format  string `mapstructure:"format" yaml:"format"`
	Output  string `mapstructure:"output" yaml:"output"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// ApplyDefaults fills in unset fields
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate checks level and format
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log level %q: %w", c.Level, err)
	}
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatConsole:
		return nil
	default:
		return fmt.Errorf("log format must be %s or %s (got: %s)", FormatJSON, FormatConsole, c.Format)
	}
}

// New creates a logger writing to the configured output
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	cfg.ApplyDefaults()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if strings.ToLower(cfg.Format) == FormatConsole {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
			NoColor:    cfg.NoColor,
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}
