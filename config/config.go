// Package config loads wayfarer settings from defaults, an optional YAML
// file, WAYFARER_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/fluentverification/wayfarer/explore"
	"github.com/fluentverification/wayfarer/heuristic"
)

// Exploration modes.
const (
	ModePrimitive = "primitive"
	ModeSubspace  = "subspace"
	ModeSolve     = "solve"
	ModeRandom    = "random"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full set of run settings.
type Config struct {
	Mode             string  `mapstructure:"mode"`
	Number           int     `mapstructure:"number"`
	TimeBound        float64 `mapstructure:"time_bound"`
	Agnostic         bool    `mapstructure:"agnostic"`
	FlowAngle        bool    `mapstructure:"flow_angle"`
	FullExpansion    bool    `mapstructure:"full_expansion"`
	TraceFile        string  `mapstructure:"trace_file"`
	Seed             uint64  `mapstructure:"seed"`
	MaxWalkSteps     int     `mapstructure:"max_walk_steps"`
	MaxWalks         int     `mapstructure:"max_walks"`
	TracebackSlack   int     `mapstructure:"traceback_slack"`
	ProgressInterval int     `mapstructure:"progress_interval"`
	DistanceWeight   float64 `mapstructure:"distance_weight"`
	RateWeight       float64 `mapstructure:"rate_weight"`
	SolverPath       string  `mapstructure:"solver_path"`
	Sampling         string  `mapstructure:"sampling"`
	Log              Log     `mapstructure:"log"`
}

// Log selects the logger's level and handler.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModePrimitive, ModeSubspace, ModeSolve, ModeRandom:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.Number <= 0 {
		return fmt.Errorf("%w: number must be positive, got %d", ErrInvalidConfig, c.Number)
	}
	if c.TimeBound < 0 {
		return fmt.Errorf("%w: negative time bound %g", ErrInvalidConfig, c.TimeBound)
	}
	if c.MaxWalkSteps <= 0 || c.MaxWalks <= 0 {
		return fmt.Errorf("%w: walk budget must be positive, got %d steps and %d walks",
			ErrInvalidConfig, c.MaxWalkSteps, c.MaxWalks)
	}
	if c.TracebackSlack < 0 {
		return fmt.Errorf("%w: negative traceback slack %d", ErrInvalidConfig, c.TracebackSlack)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("%w: negative progress interval %d", ErrInvalidConfig, c.ProgressInterval)
	}
	for name, w := range map[string]float64{"distance_weight": c.DistanceWeight, "rate_weight": c.RateWeight} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: %s %g outside [0,1]", ErrInvalidConfig, name, w)
		}
	}
	if _, err := explore.ParseSampling(c.Sampling); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// ExploreOptions translates the search settings into context options.
func (c *Config) ExploreOptions() []explore.Option {
	sampling, _ := explore.ParseSampling(c.Sampling)
	return []explore.Option{
		explore.WithSeed(c.Seed),
		explore.WithTracebackSlack(c.TracebackSlack),
		explore.WithProgressInterval(c.ProgressInterval),
		explore.WithFullExpansion(c.FullExpansion),
		explore.WithFlowAngle(c.FlowAngle),
		explore.WithFlowWeights(heuristic.FlowWeights{Distance: c.DistanceWeight, Rate: c.RateWeight}),
		explore.WithWalkBudget(c.MaxWalkSteps, c.MaxWalks),
		explore.WithSampling(sampling),
	}
}
