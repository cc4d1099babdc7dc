package tui

import (
	"flag"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Rows != 15 || cfg.Rate != 15 || cfg.BatchSize != 50 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.FrameInterval != 16*time.Millisecond {
		t.Fatalf("expected 16ms frames, got %v", cfg.FrameInterval)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-rows", "6", "-rate", "3", "-batch", "2", "-seed", "9"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Rows != 6 || cfg.Rate != 3 || cfg.BatchSize != 2 || cfg.Seed != 9 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestNewModel(t *testing.T) {
	model, err := NewModel(Config{Rows: 4, Rate: 10, BatchSize: 1, Seed: 3})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if view := model.View(); !strings.Contains(view, "bin  4") {
		t.Fatalf("view missing last bin:\n%s", view)
	}

	_, err = NewModel(Config{Rows: 0, Rate: 10, BatchSize: 1, Seed: 3})
	if !apperrors.IsCode(err, apperrors.CodeInvalidRowCount) {
		t.Fatalf("NewModel() error = %v, want invalid row count", err)
	}
}
