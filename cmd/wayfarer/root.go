package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fluentverification/wayfarer/config"
	"github.com/fluentverification/wayfarer/crn"
	"github.com/fluentverification/wayfarer/dependency"
	"github.com/fluentverification/wayfarer/explore"
	"github.com/fluentverification/wayfarer/logging"
	"github.com/fluentverification/wayfarer/subspace"
)

var errNoNetwork = errors.New("exactly one of --ragtimer, --model or --builtin is required")

// source names where the network comes from.
type source struct {
	ragtimer string
	model    string
	builtin  string
}

type rootOptions struct {
	configPath string
	src        source
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "wayfarer",
		Short:         "Guided state-space exploration for chemical reaction networks",
		Long:          "Wayfarer searches a reaction network for probable traces into a target region and reports a lower bound on the probability of reaching it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	pf.StringVarP(&opts.src.ragtimer, "ragtimer", "r", "", "RAGTIMER network file")
	pf.StringVar(&opts.src.model, "model", "", "YAML network file")
	pf.StringVar(&opts.src.builtin, "builtin", "", "built-in network ("+strings.Join(crn.Models(), ", ")+")")
	def := config.Default()
	pf.String("log-level", def.Log.Level, "debug, info, warn or error")
	pf.String("log-format", def.Log.Format, "console or json")

	root.AddCommand(
		newExploreCmd(opts),
		newDepsCmd(opts),
		newChainCmd(opts),
		newBenchCmd(opts),
		newModelsCmd(),
	)
	return root
}

// addSearchFlags registers the flags shared by every command that runs
// an exploration. Their values only take effect when set explicitly.
func addSearchFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.String("mode", def.Mode, "primitive, subspace, solve or random")
	fs.IntP("number", "n", def.Number, "number of satisfying states to find")
	fs.Float64P("time-bound", "T", def.TimeBound, "time bound of the reachability property, 0 for unbounded")
	fs.Bool("agnostic", def.Agnostic, "build the dependency graph without crediting the initial state")
	fs.Bool("flow-angle", def.FlowAngle, "penalize states whose flow points away from the target")
	fs.Bool("full-expansion", def.FullExpansion, "follow every enabled transition in subspace mode")
	fs.String("trace-file", def.TraceFile, "write witnesses to this file instead of stdout")
	fs.Uint64("seed", def.Seed, "random-walk seed")
	fs.Int("max-walk-steps", def.MaxWalkSteps, "step budget of a single random walk")
	fs.Int("max-walks", def.MaxWalks, "total random walks per run")
	fs.Int("traceback-slack", def.TracebackSlack, "extra paths a traceback may explore")
	fs.Int("progress-interval", def.ProgressInterval, "log progress every n expanded states, 0 to disable")
	fs.Float64("distance-weight", def.DistanceWeight, "distance component of the flow vector")
	fs.Float64("rate-weight", def.RateWeight, "rate component of the flow vector")
	fs.String("solver-path", def.SolverPath, "Storm binary used in solve mode")
	fs.String("sampling", def.Sampling, "random-walk sampling, uniform or rate")
}

// session is everything a command needs after configuration.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	net     *crn.Network
	reg     *prometheus.Registry
	metrics *explore.Metrics
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	net, err := o.src.load(logger)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	return &session{
		cfg:     cfg,
		logger:  logger,
		net:     net,
		reg:     reg,
		metrics: explore.NewMetrics(reg),
	}, nil
}

func (s source) load(logger *slog.Logger) (*crn.Network, error) {
	set := 0
	for _, v := range []string{s.ragtimer, s.model, s.builtin} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errNoNetwork
	}
	switch {
	case s.ragtimer != "":
		return crn.LoadRagtimer(s.ragtimer, crn.WithLogger(logger))
	case s.model != "":
		return crn.LoadYAML(s.model, crn.WithLogger(logger))
	}
	m, ok := crn.Lookup(s.builtin)
	if !ok {
		return nil, fmt.Errorf("unknown built-in model %q (have %s)", s.builtin, strings.Join(crn.Models(), ", "))
	}
	net, err := m.Build()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", s.builtin, err)
	}
	return net, nil
}

// context returns a fresh exploration context for the session.
func (s *session) context() *explore.Context {
	opts := append(s.cfg.ExploreOptions(),
		explore.WithLogger(s.logger),
		explore.WithMetrics(s.metrics))
	return explore.NewContext(s.net, opts...)
}

// decompose builds the dependency graph and its subspaces.
func (s *session) decompose() (*dependency.Graph, *subspace.Decomposition, error) {
	g, err := dependency.Build(s.net, dependency.Options{Agnostic: s.cfg.Agnostic})
	if err != nil {
		return nil, nil, err
	}
	return g, subspace.New(s.net, g, s.logger), nil
}
