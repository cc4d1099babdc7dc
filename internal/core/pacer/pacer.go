// Package pacer decouples simulation updates from frame delivery.
//
// A Pacer receives monotonic timestamps from a frame source, accumulates the
// elapsed time and reports how many batch updates are due at the configured
// rate (updates per second). Frames may arrive at any cadence; the number of
// updates over a run depends only on elapsed time and rate.
//
// # Catch-up policies
//
//   - PolicyDrain triggers every update that is due on a tick. With a
//     positive catch-up limit, a tick triggers at most that many updates and
//     the backlog beyond one interval is dropped, so resuming after a stall
//     produces a bounded burst.
//   - PolicySingle triggers at most one update per tick and carries the
//     remainder forward.
//
// Both policies agree in steady state; they differ only in how quickly they
// catch up after a long gap between frames.
package pacer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

// Policy selects how a tick handles more than one due update.
type Policy string

const (
	// PolicyDrain triggers every due update on each tick.
	PolicyDrain Policy = "drain"
	// PolicySingle triggers at most one update per tick.
	PolicySingle Policy = "single"
)

// MaxRate is the highest accepted rate in updates per second.
const MaxRate = 10000.0

// DefaultMaxCatchUp is the per-tick drain limit boards start with.
const DefaultMaxCatchUp = 8

// ErrInvalidRate matches (by code) every rejected rate.
var ErrInvalidRate = apperrors.New(apperrors.CodeInvalidRate, "rate must be a positive finite number")

// maxDue bounds a single uncapped drain tick.
const maxDue = math.MaxInt32

// ParsePolicy converts a configuration string to a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case PolicyDrain, "":
		return PolicyDrain, nil
	case PolicySingle:
		return PolicySingle, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidPolicy,
			fmt.Sprintf("unknown catch-up policy %q", value),
			map[string]string{"Policy": value})
	}
}

// ValidateRate reports an error unless rate is positive, finite and at most
// MaxRate.
func ValidateRate(rate float64) error {
	formatted := strconv.FormatFloat(rate, 'g', -1, 64)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidRate,
			fmt.Sprintf("rate must be a positive finite number, got %v", rate),
			map[string]string{"Rate": formatted})
	}
	if rate > MaxRate {
		return apperrors.WithMetadata(apperrors.CodeInvalidRate,
			fmt.Sprintf("rate must not exceed %v, got %v", MaxRate, rate),
			map[string]string{"Rate": formatted, "Max": strconv.FormatFloat(MaxRate, 'g', -1, 64)})
	}
	return nil
}

// Pacer accumulates frame time and decides when updates are due.
//
// Pacer is not safe for concurrent use; the board aggregate guards it.
type Pacer struct {
	rate        float64
	policy      Policy
	maxCatchUp  int
	accumulated float64
	previous    float64
	started     bool
}

// New creates a pacer running at rate updates per second.
func New(rate float64, policy Policy) (*Pacer, error) {
	if err := ValidateRate(rate); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicyDrain
	}
	if policy != PolicyDrain && policy != PolicySingle {
		return nil, apperrors.WithMetadata(apperrors.CodeInvalidPolicy,
			fmt.Sprintf("unknown catch-up policy %q", policy),
			map[string]string{"Policy": string(policy)})
	}
	return &Pacer{rate: rate, policy: policy}, nil
}

// SetMaxCatchUp limits how many updates one drain tick may trigger.
// Zero or a negative value removes the limit; a tick then still never
// reports more than math.MaxInt32 updates.
func (p *Pacer) SetMaxCatchUp(limit int) {
	if limit < 0 {
		limit = 0
	}
	p.maxCatchUp = limit
}

// MaxCatchUp returns the per-tick drain limit (0 = unlimited).
func (p *Pacer) MaxCatchUp() int {
	return p.maxCatchUp
}

// Rate returns the current updates-per-second rate.
func (p *Pacer) Rate() float64 {
	return p.rate
}

// Policy returns the catch-up policy.
func (p *Pacer) Policy() Policy {
	return p.policy
}

// Accumulated returns the time carried toward the next update, in seconds.
func (p *Pacer) Accumulated() float64 {
	return p.accumulated
}

// SetRate replaces the rate. Invalid rates are rejected and the previous
// rate is kept. The new rate applies from the next tick.
func (p *Pacer) SetRate(rate float64) error {
	if err := ValidateRate(rate); err != nil {
		return err
	}
	p.rate = rate
	return nil
}

// ResetClock drops the accumulated time and forgets the previous timestamp.
// The next tick only re-establishes the time origin.
func (p *Pacer) ResetClock() {
	p.accumulated = 0
	p.previous = 0
	p.started = false
}

// Tick advances the pacer to now (seconds) and returns how many updates are due.
//
// The first tick after construction or ResetClock only records now. Time
// going backwards counts as zero elapsed time; non-finite timestamps are
// ignored.
func (p *Pacer) Tick(now float64) int {
	if math.IsNaN(now) || math.IsInf(now, 0) {
		return 0
	}
	if !p.started {
		p.started = true
		p.previous = now
		return 0
	}

	dt := now - p.previous
	if dt < 0 {
		dt = 0
	}
	p.previous = now
	p.accumulated += dt

	interval := 1 / p.rate
	if p.policy == PolicySingle {
		if p.accumulated >= interval {
			p.accumulated -= interval
			return 1
		}
		return 0
	}

	due := math.Floor(p.accumulated / interval)
	if due < 1 {
		return 0
	}
	if p.maxCatchUp > 0 && due > float64(p.maxCatchUp) {
		p.accumulated = math.Mod(p.accumulated, interval)
		return p.maxCatchUp
	}
	if due > maxDue {
		p.accumulated = math.Mod(p.accumulated, interval)
		return maxDue
	}
	p.accumulated = math.Max(0, p.accumulated-due*interval)
	return int(due)
}
