// Package main draws the bean machine in the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	tuicmd "github.com/louisbranch/beanmachine/internal/cmd/tui"
	"github.com/louisbranch/beanmachine/internal/platform/config"
)

func main() {
	cfg, err := tuicmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tuicmd.Run(ctx, cfg); err != nil {
		config.Exitf("Error: %v", err)
	}
}
