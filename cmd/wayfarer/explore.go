package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fluentverification/wayfarer/chain"
	"github.com/fluentverification/wayfarer/config"
	"github.com/fluentverification/wayfarer/explore"
	"github.com/fluentverification/wayfarer/solver"
)

// report is the YAML document written by --report.
type report struct {
	Network   []string        `yaml:"species"`
	Result    *explore.Result `yaml:"result"`
	Solver    *solver.Result  `yaml:"solver,omitempty"`
	Property  string          `yaml:"property,omitempty"`
	Witnesses []witnessReport `yaml:"witnesses"`
}

type witnessReport struct {
	Probability    float64  `yaml:"probability"`
	LogProbability float64  `yaml:"log_probability"`
	States         []string `yaml:"states"`
}

func newExploreCmd(opts *rootOptions) *cobra.Command {
	var reportPath string
	var showMetrics bool
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Search for traces into the target region",
		Example: `  wayfarer explore --builtin threespecies -n 3
  wayfarer explore -r model.ragtimer --mode solve -T 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			rep, err := s.runExplore(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.writeWitnesses(cmd.OutOrStdout(), rep.Result); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, rep.Result.Summary())
			if rep.Solver != nil {
				fmt.Fprintf(out, "Probability (%s): %g\n", rep.Property, rep.Solver.Probability)
			}
			if showMetrics {
				table, err := s.metrics.Table()
				if err != nil {
					return err
				}
				fmt.Fprint(out, table)
			}
			if reportPath != "" {
				return writeReport(reportPath, rep)
			}
			return nil
		},
	}
	addSearchFlags(cmd.Flags())
	cmd.Flags().StringVar(&reportPath, "report", "", "write a YAML run report to this file")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print the run metrics as a table")
	return cmd
}

// runExplore runs the configured mode.
func (s *session) runExplore(ctx context.Context) (*report, error) {
	c := s.context()
	rep := &report{Network: s.net.Species()}
	var err error
	switch s.cfg.Mode {
	case config.ModePrimitive:
		rep.Result, err = explore.FindWitnesses(ctx, c, s.cfg.Number)
	case config.ModeRandom:
		rep.Result, err = explore.FindWitnessesRandomly(ctx, c, s.cfg.Number)
	case config.ModeSubspace:
		_, d, derr := s.decompose()
		if derr != nil {
			return nil, derr
		}
		rep.Result, err = explore.FindWitnessesSubspace(ctx, c, d, s.cfg.Number)
	case config.ModeSolve:
		err = s.solve(ctx, c, rep)
	default:
		return nil, fmt.Errorf("unknown mode %q", s.cfg.Mode)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range rep.Result.Witnesses {
		wr := witnessReport{Probability: w.Probability, LogProbability: w.LogProbability}
		for _, st := range w.States {
			wr.States = append(wr.States, st.String())
		}
		rep.Witnesses = append(rep.Witnesses, wr)
	}
	return rep, nil
}

func (s *session) solve(ctx context.Context, c *explore.Context, rep *report) error {
	_, d, err := s.decompose()
	if err != nil {
		return err
	}
	ch, res, err := chain.Build(ctx, c, d, s.cfg.Number, s.cfg.TimeBound)
	if err != nil {
		return err
	}
	prop := solver.Reachability(ch)
	answer, err := solver.Solve(ctx, solver.NewStorm(s.cfg.SolverPath, s.logger), ch, prop)
	if err != nil {
		return err
	}
	rep.Result = res
	rep.Solver = &answer
	rep.Property = prop.String()
	return nil
}

// writeWitnesses prints the witnesses to out, or to the trace file when
// one is configured.
func (s *session) writeWitnesses(out io.Writer, res *explore.Result) error {
	if s.cfg.TraceFile == "" {
		return explore.WriteWitnesses(out, res.Witnesses)
	}
	f, err := os.Create(s.cfg.TraceFile)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	if err := explore.WriteWitnesses(f, res.Witnesses); err != nil {
		f.Close()
		return fmt.Errorf("write trace file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d witnesses to %s (lower bound %g)\n", len(res.Witnesses), s.cfg.TraceFile, res.LowerBound)
	return nil
}

func writeReport(path string, rep *report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
