package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"slices"

	"github.com/louisbranch/beanmachine/internal/core/pathsim"
	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
)

// AssertionMode controls how failed expectations are handled.
type AssertionMode int

const (
	// AssertionStrict stops the scenario at the first failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed expectations and keeps going.
	AssertionLogOnly
)

// ErrExpectation marks a failed scenario expectation.
var ErrExpectation = errors.New("expectation failed")

// Config controls scenario execution.
type Config struct {
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// Runner replays scenarios on fresh boards.
type Runner struct {
	assertions AssertionMode
	verbose    bool
	logger     *log.Logger
}

// NewRunner creates a runner from cfg.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{assertions: cfg.Assertions, verbose: cfg.Verbose, logger: logger}
}

// Result summarizes one scenario run.
type Result struct {
	Name     string
	Steps    int
	Failures []string
	Final    domain.Snapshot
}

// RunFile loads and runs the scenario at path.
func RunFile(ctx context.Context, cfg Config, path string) (Result, error) {
	scenario, err := LoadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return NewRunner(cfg).Run(ctx, scenario)
}

// RunFS runs every .lua file in fsys in lexical order. It stops at the first
// error.
func RunFS(ctx context.Context, cfg Config, fsys fs.FS) ([]Result, error) {
	paths, err := fs.Glob(fsys, "*.lua")
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	slices.Sort(paths)
	runner := NewRunner(cfg)
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		source, err := fs.ReadFile(fsys, path)
		if err != nil {
			return results, fmt.Errorf("read %s: %w", path, err)
		}
		scenario, err := LoadString(path, string(source))
		if err != nil {
			return results, fmt.Errorf("%s: %w", path, err)
		}
		result, err := runner.Run(ctx, scenario)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// scriptCoin replays forced choices first and falls back to a seeded coin.
type scriptCoin struct {
	forced   *pathsim.SequenceCoin
	fallback pathsim.Coin
}

func (c *scriptCoin) Left() bool {
	if c.forced.Remaining() > 0 {
		return c.forced.Left()
	}
	return c.fallback.Left()
}

// Run executes scenario on a new board.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) (Result, error) {
	if scenario == nil {
		return Result{}, errors.New("scenario is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	coin := &scriptCoin{
		forced:   pathsim.NewSequenceCoin(nil),
		fallback: pathsim.NewRandomCoin(scenario.Seed),
	}
	board, err := domain.New(domain.Config{
		Rows:      scenario.Rows,
		Rate:      scenario.Rate,
		BatchSize: scenario.Batch,
	}, scenario.Seed, domain.WithCoin(coin))
	if err != nil {
		return Result{Name: scenario.Name}, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := Result{Name: scenario.Name}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	for index, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Steps++
		err := r.runStep(board, coin, scenario.Rows, step)
		if err == nil {
			r.logf("step %d/%d done: %s", index+1, len(scenario.Steps), step.Kind)
			continue
		}
		wrapped := fmt.Errorf("%s: step %d (%s) at %s: %w", scenario.Name, index+1, step.Kind, step.Line, err)
		if !errors.Is(err, ErrExpectation) || r.assertions == AssertionStrict {
			result.Final = board.Snapshot()
			return result, wrapped
		}
		result.Failures = append(result.Failures, wrapped.Error())
		r.logger.Printf("%v", wrapped)
	}
	result.Final = board.Snapshot()
	r.logf("scenario done: %s", scenario.Name)
	return result, nil
}

func (r *Runner) runStep(board *domain.Board, coin *scriptCoin, rows int, step Step) error {
	switch step.Kind {
	case StepDrop:
		choices, err := pathsim.ParseChoices(step.Choices)
		if err != nil {
			return err
		}
		if len(choices) == 0 || len(choices)%rows != 0 {
			return fmt.Errorf("drop needs a multiple of %d choices, got %d", rows, len(choices))
		}
		coin.forced.Push(choices...)
		_, err = board.Step(len(choices) / rows)
		return err
	case StepSimulate:
		_, err := board.Step(step.Count)
		return err
	case StepTick:
		board.Tick(step.Value)
		return nil
	case StepReset:
		return board.Apply(domain.Input{Kind: domain.InputReset, Source: domain.SourceScenario})
	case StepSetRate:
		return board.Apply(domain.Input{Kind: domain.InputSetRate, Rate: step.Value, Source: domain.SourceScenario})
	case StepRejectRate:
		before := board.Rate()
		err := board.Apply(domain.Input{Kind: domain.InputSetRate, Rate: step.Value, Source: domain.SourceScenario})
		if !apperrors.IsCode(err, apperrors.CodeInvalidRate) {
			return expectf("rate %v accepted, want rejection", step.Value)
		}
		if board.Rate() != before {
			return expectf("rejected rate changed the board to %v", board.Rate())
		}
		return nil
	case StepExpectBins:
		got := board.Snapshot().Histogram().Bins
		if !equalCounts(got, step.Ints) {
			return expectf("bins = %v, want %v", got, step.Ints)
		}
		return nil
	case StepExpectLastPath:
		got := board.Snapshot().LastPath()
		if !slices.Equal(got, step.Ints) {
			return expectf("last path = %v, want %v", got, step.Ints)
		}
		return nil
	case StepExpectTotal:
		if got := board.Snapshot().TotalPaths(); got != uint64(step.Count) {
			return expectf("total paths = %d, want %d", got, step.Count)
		}
		return nil
	case StepExpectBatches:
		if got := board.Snapshot().Batches; got != uint64(step.Count) {
			return expectf("batches = %d, want %d", got, step.Count)
		}
		return nil
	case StepExpectPin:
		if step.Row < 0 || step.Row >= rows || step.Pin < 0 || step.Pin > step.Row {
			return fmt.Errorf("pin (%d, %d) is outside the board", step.Row, step.Pin)
		}
		counts := board.Snapshot().Field.Counts(step.Row, step.Pin)
		if counts.TimesLeft != uint64(step.Left) || counts.TimesRight != uint64(step.Right) {
			return expectf("pin (%d, %d) = left %d right %d, want left %d right %d",
				step.Row, step.Pin, counts.TimesLeft, counts.TimesRight, step.Left, step.Right)
		}
		return nil
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func expectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrExpectation, fmt.Sprintf(format, args...))
}

func equalCounts(got []uint64, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if want[i] < 0 || got[i] != uint64(want[i]) {
			return false
		}
	}
	return true
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose {
		return
	}
	r.logger.Printf(format, args...)
}
