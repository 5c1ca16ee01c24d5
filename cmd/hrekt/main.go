package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hrekt/hrekt/runner"
	"github.com/projectdiscovery/gologger"
)

func main() {
	// Parse the command line flags and validate them
	options := runner.ParseOptions()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hrektRunner, err := runner.New(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	if err := hrektRunner.RunEnumeration(ctx); err != nil {
		hrektRunner.Close() //nolint
		gologger.Fatal().Msgf("Could not run enumeration: %s\n", err)
	}
	if err := hrektRunner.Close(); err != nil {
		gologger.Warning().Msgf("Could not close runner: %s\n", err)
	}
}
