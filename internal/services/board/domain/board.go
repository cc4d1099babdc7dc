// Package domain owns the simulated board: the pin field, the simulator
// and the update pacer, guarded by a single lock.
package domain

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/louisbranch/beanmachine/internal/core/pacer"
	"github.com/louisbranch/beanmachine/internal/core/pathsim"
	"github.com/louisbranch/beanmachine/internal/core/pinfield"
	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

// Board is the shared simulation aggregate.
//
// Every read and write of counts, paths, rate and accumulated time happens
// under mu. Control observers run after mu is released.
type Board struct {
	mu         sync.Mutex
	field      *pinfield.Field
	sim        *pathsim.Simulator
	pacer      *pacer.Pacer
	batchSize  int
	generation uint64
	batches    uint64
	lastBin    int

	onControl func(ControlEvent)
	clock     func() time.Time
}

// Option customizes a board at construction.
type Option func(*Board)

// WithCoin replaces the random coin, typically with a sequence coin.
func WithCoin(coin pathsim.Coin) Option {
	return func(b *Board) {
		b.sim.SetCoin(coin)
	}
}

// WithClock overrides the clock used to stamp control events.
func WithClock(clock func() time.Time) Option {
	return func(b *Board) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// New builds a board from cfg. seed feeds the default random coin.
func New(cfg Config, seed int64, opts ...Option) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := pacer.New(cfg.Rate, cfg.Policy)
	if err != nil {
		return nil, err
	}
	p.SetMaxCatchUp(cfg.MaxCatchUp)

	field := pinfield.New(cfg.Rows)
	b := &Board{
		field:     field,
		sim:       pathsim.New(field, pathsim.NewRandomCoin(seed)),
		pacer:     p,
		batchSize: cfg.BatchSize,
		lastBin:   -1,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// OnControl registers fn to observe every control event. Passing nil
// removes the observer.
func (b *Board) OnControl(fn func(ControlEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onControl = fn
}

// Tick advances the pacer to now (seconds) and simulates every due batch.
// It returns the number of batches run.
func (b *Board) Tick(now float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	due := b.pacer.Tick(now)
	for i := 0; i < due; i++ {
		b.lastBin = b.sim.SimulateBatch(b.batchSize)
		b.batches++
	}
	return due
}

// Step simulates n particles immediately, outside the pacer.
// It returns the landing bin of the last particle, or -1 when n is zero.
func (b *Board) Step(n int) (int, error) {
	if n < 0 {
		return -1, apperrors.WithMetadata(apperrors.CodeInvalidSteps,
			fmt.Sprintf("step count must not be negative, got %d", n),
			map[string]string{"Steps": strconv.Itoa(n)})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n == 0 {
		return -1, nil
	}
	b.lastBin = b.sim.SimulateBatch(n)
	return b.lastBin, nil
}

// Apply handles one input event.
func (b *Board) Apply(in Input) error {
	if in.Source == "" {
		in.Source = SourceLocal
	}
	switch in.Kind {
	case InputReset:
		b.reset(in.Source)
		return nil
	case InputSetRate:
		return b.setRate(in.Rate, in.Source)
	default:
		return apperrors.WithMetadata(apperrors.CodeUnknownInput,
			fmt.Sprintf("unknown input kind %q", in.Kind),
			map[string]string{"Kind": string(in.Kind)})
	}
}

// Reset clears counts, paths and the pacer clock. The rate is kept.
func (b *Board) Reset() {
	b.reset(SourceLocal)
}

// SetRate changes the animation speed. Invalid rates are rejected and the
// previous rate is kept.
func (b *Board) SetRate(rate float64) error {
	return b.setRate(rate, SourceLocal)
}

// Rate returns the current animation speed.
func (b *Board) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pacer.Rate()
}

// Generation returns how many resets the board has seen.
func (b *Board) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// Snapshot copies the board under the lock.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	return Snapshot{
		Field:       b.field.Clone(),
		Rate:        b.pacer.Rate(),
		BatchSize:   b.batchSize,
		Policy:      b.pacer.Policy(),
		Accumulated: b.pacer.Accumulated(),
		Generation:  b.generation,
		Batches:     b.batches,
		LastBin:     b.lastBin,
	}
}

func (b *Board) reset(source Source) {
	b.mu.Lock()
	total := b.field.TotalPaths()
	b.field.Reset()
	b.pacer.ResetClock()
	b.generation++
	b.batches = 0
	b.lastBin = -1
	event := ControlEvent{
		Kind:       ControlReset,
		Source:     source,
		Rate:       b.pacer.Rate(),
		TotalPaths: total,
		CreatedAt:  b.clock().UTC(),
	}
	observer := b.onControl
	b.mu.Unlock()

	notify(observer, event)
}

func (b *Board) setRate(rate float64, source Source) error {
	b.mu.Lock()
	err := b.pacer.SetRate(rate)
	event := ControlEvent{
		Kind:       ControlSetRate,
		Source:     source,
		Rate:       rate,
		TotalPaths: b.field.TotalPaths(),
		CreatedAt:  b.clock().UTC(),
	}
	if err != nil {
		event.Kind = ControlSetRateRejected
		event.Message = err.Error()
	}
	observer := b.onControl
	b.mu.Unlock()

	notify(observer, event)
	return err
}

func notify(observer func(ControlEvent), event ControlEvent) {
	if observer != nil {
		observer(event)
	}
}
