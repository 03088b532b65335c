// Command wayfarer explores chemical reaction networks for probable
// traces into a target region and builds bounded Markov chains for an
// external probabilistic model checker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/fluentverification/wayfarer/models/fourspecies"
	_ "github.com/fluentverification/wayfarer/models/threespecies"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
