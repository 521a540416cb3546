package main

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/evo-cloud/ambience"
	"github.com/evo-cloud/ambience/internal/logging"
)

// fileConfig is the layout of the configuration file
type fileConfig struct {
	Log        logging.Config             `mapstructure:"log"`
	Containers map[string]ambience.Config `mapstructure:"containers"`
}

// loadConfig reads path (YAML, JSON or TOML by extension). Settings may be
// overridden from the environment with the AMBIENCE_ prefix, e.g.
// AMBIENCE_LOG_LEVEL. Container ids are lower-cased.
func loadConfig(path string) (fileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("AMBIENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("log.output", "stderr")

	if err := v.ReadInConfig(); err != nil {
		return fileConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg fileConfig
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		millisecondsHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return fileConfig{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if cfg.Containers == nil {
		cfg.Containers = make(map[string]ambience.Config)
	}
	return cfg, nil
}

// millisecondsHook reads bare numbers as milliseconds when decoding
// durations, so monitorDelay: 1000 means one second
func millisecondsHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch n := data.(type) {
		case int:
			return time.Duration(n) * time.Millisecond, nil
		case int64:
			return time.Duration(n) * time.Millisecond, nil
		case uint64:
			return time.Duration(n) * time.Millisecond, nil
		case float64:
			return time.Duration(n * float64(time.Millisecond)), nil
		default:
			return data, nil
		}
	}
}
