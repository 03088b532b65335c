package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluentverification/wayfarer/crn"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range crn.Models() {
				m, _ := crn.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, m.Description())
			}
			return nil
		},
	}
}
