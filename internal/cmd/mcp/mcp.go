// Package mcp parses MCP command flags and serves the board tools on stdio.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/beanmachine/internal/platform/cmd"
	"github.com/louisbranch/beanmachine/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config = service.Config

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.BoardAddr, "board-addr", cfg.BoardAddr, "board gRPC address")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "language of board error messages")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, cfg)
	})
}
