// Package board parses board command flags and starts the board service.
package board

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/beanmachine/internal/core/pacer"
	entrypoint "github.com/louisbranch/beanmachine/internal/platform/cmd"
	"github.com/louisbranch/beanmachine/internal/random"
	server "github.com/louisbranch/beanmachine/internal/services/board/app"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
)

// Config holds board command configuration.
type Config struct {
	Port          int           `env:"BEANMACHINE_BOARD_PORT"           envDefault:"8095"`
	Addr          string        `env:"BEANMACHINE_BOARD_ADDR"`
	HTTPAddr      string        `env:"BEANMACHINE_BOARD_HTTP_ADDR"      envDefault:"127.0.0.1:8096"`
	Rows          int           `env:"BEANMACHINE_BOARD_ROWS"           envDefault:"15"`
	Rate          float64       `env:"BEANMACHINE_BOARD_RATE"           envDefault:"15"`
	BatchSize     int           `env:"BEANMACHINE_BOARD_BATCH_SIZE"     envDefault:"50"`
	Policy        string        `env:"BEANMACHINE_BOARD_POLICY"         envDefault:"drain"`
	MaxCatchUp    int           `env:"BEANMACHINE_BOARD_MAX_CATCH_UP"   envDefault:"8"`
	FrameInterval time.Duration `env:"BEANMACHINE_BOARD_FRAME_INTERVAL" envDefault:"16ms"`
	Seed          int64         `env:"BEANMACHINE_SEED"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The board gRPC port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The board gRPC listen address (overrides -port)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The web view listen address (empty disables it)")
	fs.IntVar(&cfg.Rows, "rows", cfg.Rows, "Number of pin rows")
	fs.Float64Var(&cfg.Rate, "rate", cfg.Rate, "Animation updates per second")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "Particles simulated per update")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "Catch-up policy: drain or single")
	fs.IntVar(&cfg.MaxCatchUp, "max-catch-up", cfg.MaxCatchUp, "Most updates one tick may run (0 removes the cap)")
	fs.DurationVar(&cfg.FrameInterval, "frame-interval", cfg.FrameInterval, "Time between frames")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Coin seed (0 picks a random one)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts cfg into server options, resolving the seed.
func (cfg Config) Options() (server.Options, error) {
	policy, err := pacer.ParsePolicy(cfg.Policy)
	if err != nil {
		return server.Options{}, err
	}
	boardCfg := domain.Config{
		Rows:       cfg.Rows,
		Rate:       cfg.Rate,
		BatchSize:  cfg.BatchSize,
		Policy:     policy,
		MaxCatchUp: cfg.MaxCatchUp,
	}
	if err := boardCfg.Validate(); err != nil {
		return server.Options{}, err
	}
	seed, err := random.ResolveSeed(cfg.Seed)
	if err != nil {
		return server.Options{}, err
	}
	addr := cfg.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.Port)
	}
	return server.Options{
		Addr:          addr,
		HTTPAddr:      cfg.HTTPAddr,
		Board:         boardCfg,
		Seed:          seed,
		FrameInterval: cfg.FrameInterval,
	}, nil
}

// Run starts the board service.
func Run(ctx context.Context, cfg Config) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBoard, func(ctx context.Context) error {
		log.Printf("board %d rows, rate %.2f/s, batch %d, seed %d", opts.Board.Rows, opts.Board.Rate, opts.Board.BatchSize, opts.Seed)
		return server.Run(ctx, opts)
	})
}
