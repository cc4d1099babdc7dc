// Package scenario parses scenario command flags and replays Lua scripts.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	entrypoint "github.com/louisbranch/beanmachine/internal/platform/cmd"
	"github.com/louisbranch/beanmachine/internal/services/board/scenario"
	"github.com/louisbranch/beanmachine/internal/services/board/scenario/examples"
)

// Config holds scenario command configuration.
type Config struct {
	Assertions bool `env:"BEANMACHINE_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose    bool `env:"BEANMACHINE_SCENARIO_VERBOSE"`
	Examples   bool
	Paths      []string
}

// ParseConfig parses environment, flags and script paths into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "stop at the first failed expectation (disable to log them)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every step")
	fs.BoolVar(&cfg.Examples, "examples", cfg.Examples, "run the bundled example scenarios")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Paths = fs.Args()
	return cfg, nil
}

// Run executes the configured scenarios and prints one line per result.
// Failed expectations are reported as scenario.ErrExpectation.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(cfg.Paths) == 0 && !cfg.Examples {
		return errors.New("at least one scenario path or -examples is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	runCfg := scenario.Config{
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     log.New(errOut, "", 0),
	}

	failed := 0
	report := func(result scenario.Result) {
		if len(result.Failures) > 0 {
			failed++
			fmt.Fprintf(out, "FAIL %s (%d steps, %d failures)\n", result.Name, result.Steps, len(result.Failures))
			return
		}
		fmt.Fprintf(out, "ok   %s (%d steps, %d paths)\n", result.Name, result.Steps, result.Final.TotalPaths())
	}

	if cfg.Examples {
		results, err := scenario.RunFS(ctx, runCfg, examples.FS)
		for i, result := range results {
			if err != nil && i == len(results)-1 {
				break
			}
			report(result)
		}
		if err != nil {
			return err
		}
	}
	for _, path := range cfg.Paths {
		result, err := scenario.RunFile(ctx, runCfg, path)
		if err != nil {
			return err
		}
		report(result)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d scenario(s) had failures", scenario.ErrExpectation, failed)
	}
	return nil
}
