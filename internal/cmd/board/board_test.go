package board

import (
	"flag"
	"testing"
	"time"

	"github.com/louisbranch/beanmachine/internal/core/pacer"
	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8095 {
		t.Fatalf("expected default port 8095, got %d", cfg.Port)
	}
	if cfg.HTTPAddr != "127.0.0.1:8096" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.Rows != 15 || cfg.Rate != 15 || cfg.BatchSize != 50 {
		t.Fatalf("unexpected board defaults: %+v", cfg)
	}
	if cfg.Policy != "drain" || cfg.MaxCatchUp != 8 {
		t.Fatalf("unexpected pacing defaults: %+v", cfg)
	}
	if cfg.FrameInterval != 16*time.Millisecond {
		t.Fatalf("expected 16ms frames, got %v", cfg.FrameInterval)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("BEANMACHINE_BOARD_ROWS", "8")
	t.Setenv("BEANMACHINE_BOARD_RATE", "2.5")
	t.Setenv("BEANMACHINE_SEED", "42")

	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-rows", "10", "-addr", "127.0.0.1:9999", "-policy", "single"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Rows != 10 {
		t.Fatalf("flag should override env rows, got %d", cfg.Rows)
	}
	if cfg.Rate != 2.5 {
		t.Fatalf("expected env rate 2.5, got %v", cfg.Rate)
	}
	if cfg.Seed != 42 {
		t.Fatalf("expected env seed 42, got %d", cfg.Seed)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "127.0.0.1:9999" {
		t.Fatalf("expected addr override, got %q", opts.Addr)
	}
	if opts.Board.Policy != pacer.PolicySingle || opts.Seed != 42 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestOptionsPortAndRandomSeed(t *testing.T) {
	opts, err := Config{Port: 7000, Rows: 3, Rate: 1, BatchSize: 1, Policy: "drain"}.Options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != ":7000" {
		t.Fatalf("expected port addr, got %q", opts.Addr)
	}
	if opts.Seed == 0 {
		t.Fatal("expected a generated seed")
	}
}

func TestOptionsRejectsInvalidBoard(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		code apperrors.Code
	}{
		{name: "rows", cfg: Config{Rows: 0, Rate: 1, BatchSize: 1}, code: apperrors.CodeInvalidRowCount},
		{name: "rate", cfg: Config{Rows: 1, Rate: 0, BatchSize: 1}, code: apperrors.CodeInvalidRate},
		{name: "batch", cfg: Config{Rows: 1, Rate: 1, BatchSize: -1}, code: apperrors.CodeInvalidBatchSize},
		{name: "policy", cfg: Config{Rows: 1, Rate: 1, BatchSize: 1, Policy: "sometimes"}, code: apperrors.CodeInvalidPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Options()
			if !apperrors.IsCode(err, tt.code) {
				t.Fatalf("Options() error = %v, want code %s", err, tt.code)
			}
		})
	}
}
