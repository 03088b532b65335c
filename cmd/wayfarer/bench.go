package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fluentverification/wayfarer/config"
	"github.com/fluentverification/wayfarer/explore"
	"github.com/fluentverification/wayfarer/subspace"
)

var benchHeader = []string{"Number Sat Requested", "Number Sat Found", "Lower Bound", "Duration"}

func newBenchCmd(opts *rootOptions) *cobra.Command {
	var power, jobs int
	var outPath string
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run explorations for 1, 2, 4, ... requested traces and write CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if power < 0 {
				return fmt.Errorf("power must be non-negative, got %d", power)
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			rows, err := s.bench(cmd.Context(), power, jobs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeBench(out, rows)
		},
	}
	addSearchFlags(cmd.Flags())
	cmd.Flags().IntVarP(&power, "power", "p", 4, "largest request is 2^power")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "concurrent explorations")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "CSV file, stdout when empty")
	return cmd
}

// bench runs one exploration per requested count on its own context.
func (s *session) bench(ctx context.Context, power, jobs int) ([]*explore.Result, error) {
	var d *subspace.Decomposition
	switch s.cfg.Mode {
	case config.ModeSubspace:
		var err error
		if _, d, err = s.decompose(); err != nil {
			return nil, err
		}
	case config.ModeSolve:
		return nil, fmt.Errorf("bench does not support mode %q", s.cfg.Mode)
	}

	results := make([]*explore.Result, power+1)
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := range results {
		count := 1 << i
		g.Go(func() error {
			c := s.context()
			var res *explore.Result
			var err error
			switch s.cfg.Mode {
			case config.ModePrimitive:
				res, err = explore.FindWitnesses(ctx, c, count)
			case config.ModeRandom:
				res, err = explore.FindWitnessesRandomly(ctx, c, count)
			default:
				res, err = explore.FindWitnessesSubspace(ctx, c, d, count)
			}
			if err != nil {
				return fmt.Errorf("bench %d: %w", count, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeBench(w io.Writer, rows []*explore.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(benchHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			strconv.Itoa(r.Requested),
			strconv.Itoa(r.Satisfying),
			strconv.FormatFloat(r.LowerBound, 'g', -1, 64),
			strconv.FormatFloat(r.Duration.Seconds(), 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
