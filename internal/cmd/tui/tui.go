// Package tui parses terminal command flags and runs the board in the terminal.
package tui

import (
	"context"
	"flag"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/louisbranch/beanmachine/internal/core/pacer"
	entrypoint "github.com/louisbranch/beanmachine/internal/platform/cmd"
	"github.com/louisbranch/beanmachine/internal/random"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	boardtui "github.com/louisbranch/beanmachine/internal/services/board/tui"
)

// Config holds terminal command configuration.
type Config struct {
	Rows          int           `env:"BEANMACHINE_TUI_ROWS"           envDefault:"15"`
	Rate          float64       `env:"BEANMACHINE_TUI_RATE"           envDefault:"15"`
	BatchSize     int           `env:"BEANMACHINE_TUI_BATCH_SIZE"     envDefault:"50"`
	FrameInterval time.Duration `env:"BEANMACHINE_TUI_FRAME_INTERVAL" envDefault:"16ms"`
	Seed          int64         `env:"BEANMACHINE_SEED"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Rows, "rows", cfg.Rows, "Number of pin rows")
	fs.Float64Var(&cfg.Rate, "rate", cfg.Rate, "Animation updates per second")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "Particles simulated per update")
	fs.DurationVar(&cfg.FrameInterval, "frame-interval", cfg.FrameInterval, "Time between frames")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Coin seed (0 picks a random one)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewModel builds the board described by cfg and wraps it in a terminal model.
func NewModel(cfg Config) (boardtui.Model, error) {
	seed, err := random.ResolveSeed(cfg.Seed)
	if err != nil {
		return boardtui.Model{}, err
	}
	board, err := domain.New(domain.Config{
		Rows:       cfg.Rows,
		Rate:       cfg.Rate,
		BatchSize:  cfg.BatchSize,
		MaxCatchUp: pacer.DefaultMaxCatchUp,
	}, seed)
	if err != nil {
		return boardtui.Model{}, fmt.Errorf("build board: %w", err)
	}
	return boardtui.New(board, cfg.FrameInterval), nil
}

// Run draws the board until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run terminal view: %w", err)
	}
	return nil
}
