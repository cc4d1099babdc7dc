// Package main replays Lua board scenarios.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	scenariocmd "github.com/louisbranch/beanmachine/internal/cmd/scenario"
	"github.com/louisbranch/beanmachine/internal/platform/config"
	"github.com/louisbranch/beanmachine/internal/services/board/scenario"
)

func main() {
	cfg, err := scenariocmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scenariocmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, scenario.ErrExpectation) {
			config.ExitCodef(config.ExitExpectations, "Error: %v", err)
		}
		config.Exitf("Error: %v", err)
	}
}
