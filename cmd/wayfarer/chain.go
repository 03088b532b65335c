package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fluentverification/wayfarer/chain"
	"github.com/fluentverification/wayfarer/solver"
)

func newChainCmd(opts *rootOptions) *cobra.Command {
	var prefix, dotPath, mermaidPath string
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Build the bounded Markov chain and write it in explicit format",
		Long: "Runs the subspace-guided exploration with an absorbing sink and writes " +
			"<prefix>.tra and <prefix>.lab for an external model checker.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			_, d, err := s.decompose()
			if err != nil {
				return err
			}
			ch, res, err := chain.Build(cmd.Context(), s.context(), d, s.cfg.Number, s.cfg.TimeBound)
			if err != nil {
				return err
			}
			if err := writeChain(ch, prefix); err != nil {
				return err
			}
			if dotPath != "" {
				if err := writeDiagram(dotPath, ch.WriteDOT); err != nil {
					return err
				}
			}
			if mermaidPath != "" {
				if err := writeDiagram(mermaidPath, ch.WriteMermaid); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Summary())
			fmt.Fprintf(out, "Wrote %s.tra and %s.lab: %d states, %d transitions\n",
				prefix, prefix, ch.NumStates(), ch.NumTransitions())
			fmt.Fprintf(out, "Check with: %s\n", solver.Reachability(ch))
			return nil
		},
	}
	addSearchFlags(cmd.Flags())
	cmd.Flags().StringVarP(&prefix, "out", "o", "model", "output file prefix")
	cmd.Flags().StringVar(&dotPath, "dot", "", "also write a Graphviz diagram to this file")
	cmd.Flags().StringVar(&mermaidPath, "mermaid", "", "also write a Mermaid state diagram to this file")
	return cmd
}

func writeChain(ch *chain.Chain, prefix string) (err error) {
	tra, err := os.Create(prefix + ".tra")
	if err != nil {
		return err
	}
	lab, err := os.Create(prefix + ".lab")
	if err != nil {
		tra.Close()
		return err
	}
	defer func() {
		err = errors.Join(err, tra.Close(), lab.Close())
	}()
	return ch.WriteExplicit(tra, lab)
}

func writeDiagram(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
