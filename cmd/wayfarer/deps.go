package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDepsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Print the dependency graph and its subspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			g, d, err := s.decompose()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, g.String())
			transitions := s.net.Transitions()
			for _, sub := range d.Subspaces() {
				note := ""
				if sub.Deficient {
					note = " (rank deficient)"
				}
				fmt.Fprintf(out, "Subspace %d: rank %d, %d member transitions%s\n",
					sub.Level, sub.Rank, len(sub.Members), note)
				for _, idx := range sub.Basis {
					fmt.Fprintf(out, "\t%s\n", transitions[idx].Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("agnostic", false, "build the dependency graph without crediting the initial state")
	return cmd
}
