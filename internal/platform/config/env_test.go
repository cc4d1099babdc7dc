package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port     int           `env:"BEANMACHINE_TEST_PORT" envDefault:"8095"`
	Rate     float64       `env:"BEANMACHINE_TEST_RATE" envDefault:"15"`
	Interval time.Duration `env:"BEANMACHINE_TEST_INTERVAL" envDefault:"16ms"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8095 || cfg.Rate != 15 || cfg.Interval != 16*time.Millisecond {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("BEANMACHINE_TEST_RATE", "2.5")
	t.Setenv("BEANMACHINE_TEST_INTERVAL", "1s")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Rate != 2.5 || cfg.Interval != time.Second {
		t.Fatalf("overrides = %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("BEANMACHINE_TEST_PORT", "not-an-int")

	var cfg envTestConfig
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvFromIgnoresProcessEnv(t *testing.T) {
	t.Setenv("BEANMACHINE_TEST_PORT", "9000")

	var cfg envTestConfig
	if err := ParseEnvFrom(&cfg, map[string]string{"BEANMACHINE_TEST_RATE": "4"}); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8095 {
		t.Fatalf("port = %d, want default 8095", cfg.Port)
	}
	if cfg.Rate != 4 {
		t.Fatalf("rate = %v, want 4", cfg.Rate)
	}

	if err := ParseEnvFrom(&cfg, nil); err != nil {
		t.Fatalf("parse nil environ: %v", err)
	}
}
