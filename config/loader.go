package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fluentverification/wayfarer/explore"
	"github.com/fluentverification/wayfarer/heuristic"
)

const envPrefix = "WAYFARER"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"mode":              "mode",
	"number":            "number",
	"time-bound":        "time_bound",
	"agnostic":          "agnostic",
	"flow-angle":        "flow_angle",
	"full-expansion":    "full_expansion",
	"trace-file":        "trace_file",
	"seed":              "seed",
	"max-walk-steps":    "max_walk_steps",
	"max-walks":         "max_walks",
	"traceback-slack":   "traceback_slack",
	"progress-interval": "progress_interval",
	"distance-weight":   "distance_weight",
	"rate-weight":       "rate_weight",
	"solver-path":       "solver_path",
	"sampling":          "sampling",
	"log-level":         "log.level",
	"log-format":        "log.format",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	w := heuristic.DefaultFlowWeights()
	v.SetDefault("mode", ModeSubspace)
	v.SetDefault("number", 1)
	v.SetDefault("time_bound", 0.0)
	v.SetDefault("agnostic", false)
	v.SetDefault("flow_angle", false)
	v.SetDefault("full_expansion", false)
	v.SetDefault("trace_file", "")
	v.SetDefault("seed", uint64(1))
	v.SetDefault("max_walk_steps", explore.DefaultMaxWalkSteps)
	v.SetDefault("max_walks", explore.DefaultMaxWalks)
	v.SetDefault("traceback_slack", explore.DefaultTracebackSlack)
	v.SetDefault("progress_interval", explore.DefaultProgressInterval)
	v.SetDefault("distance_weight", w.Distance)
	v.SetDefault("rate_weight", w.Rate)
	v.SetDefault("solver_path", "")
	v.SetDefault("sampling", "uniform")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Default returns the configuration with nothing overridden.
func Default() *Config {
	cfg, err := unmarshal(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: defaults do not unmarshal: %v", err))
	}
	return cfg
}

// Load merges the YAML file at path (skipped when empty), WAYFARER_*
// environment variables and the flags in fs that were set explicitly,
// then validates the result. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}
	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}
	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: bind flag %q: %w", name, err)
		}
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
