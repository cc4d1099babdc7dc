package pacer

import (
	"errors"
	"math"
	"testing"
	"time"

	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

func mustPacer(t *testing.T, rate float64, policy Policy) *Pacer {
	t.Helper()
	p, err := New(rate, policy)
	if err != nil {
		t.Fatalf("New(%v, %q) error = %v", rate, policy, err)
	}
	return p
}

func TestTick_FirstTickOnlyStartsClock(t *testing.T) {
	p := mustPacer(t, 2, PolicyDrain)
	if due := p.Tick(100); due != 0 {
		t.Fatalf("first Tick() = %d, want 0", due)
	}
	if p.Accumulated() != 0 {
		t.Fatalf("Accumulated() = %v, want 0", p.Accumulated())
	}
}

func TestTick_OneIntervalTriggersOnce(t *testing.T) {
	for _, policy := range []Policy{PolicyDrain, PolicySingle} {
		t.Run(string(policy), func(t *testing.T) {
			p := mustPacer(t, 2, policy)
			p.Tick(0)
			if due := p.Tick(0.5); due != 1 {
				t.Fatalf("Tick(0.5) = %d, want 1", due)
			}
			if p.Accumulated() != 0 {
				t.Fatalf("Accumulated() = %v, want 0", p.Accumulated())
			}
		})
	}
}

func TestTick_DoubleIntervalByPolicy(t *testing.T) {
	drain := mustPacer(t, 2, PolicyDrain)
	drain.Tick(0)
	if due := drain.Tick(1); due != 2 {
		t.Fatalf("drain Tick(1) = %d, want 2", due)
	}

	single := mustPacer(t, 2, PolicySingle)
	single.Tick(0)
	if due := single.Tick(1); due != 1 {
		t.Fatalf("single Tick(1) = %d, want 1", due)
	}
	if single.Accumulated() != 0.5 {
		t.Fatalf("single carried %v, want 0.5", single.Accumulated())
	}
	// The carried interval is due on the next tick even without new time.
	if due := single.Tick(1); due != 1 {
		t.Fatalf("single Tick(1) again = %d, want 1", due)
	}
}

func TestTick_AccumulatesAcrossFrames(t *testing.T) {
	p := mustPacer(t, 1, PolicyDrain)
	p.Tick(0)
	total := 0
	for i := 1; i <= 16; i++ {
		total += p.Tick(float64(i) * 0.25)
	}
	if total != 4 {
		t.Fatalf("total updates = %d, want 4", total)
	}
}

func TestTick_ClampsBackwardsClock(t *testing.T) {
	p := mustPacer(t, 4, PolicyDrain)
	p.Tick(10)
	if due := p.Tick(5); due != 0 {
		t.Fatalf("Tick(5) after 10 = %d, want 0", due)
	}
	if p.Accumulated() != 0 {
		t.Fatalf("Accumulated() = %v, want 0", p.Accumulated())
	}
	// Time resumes from the new (earlier) origin.
	if due := p.Tick(5.25); due != 1 {
		t.Fatalf("Tick(5.25) = %d, want 1", due)
	}
}

func TestTick_IgnoresNonFinite(t *testing.T) {
	p := mustPacer(t, 4, PolicyDrain)
	p.Tick(0)
	if due := p.Tick(math.NaN()); due != 0 {
		t.Fatalf("Tick(NaN) = %d, want 0", due)
	}
	if due := p.Tick(math.Inf(1)); due != 0 {
		t.Fatalf("Tick(+Inf) = %d, want 0", due)
	}
	if due := p.Tick(0.25); due != 1 {
		t.Fatalf("Tick(0.25) = %d, want 1", due)
	}
}

func TestTick_MaxCatchUpBoundsBurst(t *testing.T) {
	p := mustPacer(t, 4, PolicyDrain)
	p.SetMaxCatchUp(3)
	p.Tick(0)
	if due := p.Tick(10.125); due != 3 {
		t.Fatalf("Tick after stall = %d, want 3", due)
	}
	if p.Accumulated() >= 0.25 {
		t.Fatalf("Accumulated() = %v, want below one interval", p.Accumulated())
	}
	if due := p.Tick(10.125); due != 0 {
		t.Fatalf("backlog was not dropped: Tick() = %d", due)
	}
}

func TestTick_DrainTerminatesAtMaxRate(t *testing.T) {
	for _, limit := range []int{0, DefaultMaxCatchUp} {
		p := mustPacer(t, MaxRate, PolicyDrain)
		p.SetMaxCatchUp(limit)
		p.Tick(1e9)

		done := make(chan int, 1)
		go func() { done <- p.Tick(1e9 + 3600) }()
		select {
		case due := <-done:
			if limit > 0 && due != limit {
				t.Fatalf("Tick() with limit %d = %d", limit, due)
			}
			if limit == 0 && due < 35_999_000 {
				t.Fatalf("uncapped Tick() = %d, want the whole hour", due)
			}
		case <-time.After(time.Second):
			t.Fatalf("Tick() with limit %d did not return", limit)
		}
		if p.Accumulated() < 0 || p.Accumulated() >= 1/MaxRate*2 {
			t.Fatalf("Accumulated() = %v, want under one interval", p.Accumulated())
		}
	}
}

func TestTick_UncappedGapIsBounded(t *testing.T) {
	p := mustPacer(t, MaxRate, PolicyDrain)
	p.Tick(0)
	if due := p.Tick(1e300); due != math.MaxInt32 {
		t.Fatalf("Tick(1e300) = %d, want %d", due, math.MaxInt32)
	}
}

func TestValidateRate_RejectsAboveMax(t *testing.T) {
	if err := ValidateRate(MaxRate); err != nil {
		t.Fatalf("ValidateRate(MaxRate) error = %v", err)
	}
	for _, rate := range []float64{MaxRate * 2, 1e20, math.MaxFloat64} {
		p := mustPacer(t, 2, PolicyDrain)
		if err := p.SetRate(rate); !errors.Is(err, ErrInvalidRate) {
			t.Fatalf("SetRate(%v) error = %v, want ErrInvalidRate", rate, err)
		}
		if p.Rate() != 2 {
			t.Fatalf("rate after SetRate(%v) = %v, want 2", rate, p.Rate())
		}
	}
}

func TestSetRate_RejectsInvalid(t *testing.T) {
	tests := []float64{-1, 0, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, rate := range tests {
		p := mustPacer(t, 2, PolicyDrain)
		err := p.SetRate(rate)
		if err == nil {
			t.Fatalf("SetRate(%v) error = nil", rate)
		}
		if !errors.Is(err, ErrInvalidRate) {
			t.Fatalf("SetRate(%v) error = %v, want ErrInvalidRate", rate, err)
		}
		if p.Rate() != 2 {
			t.Fatalf("rate after rejected SetRate(%v) = %v, want 2", rate, p.Rate())
		}
	}
}

func TestSetRate_RejectedLeavesTicksUnchanged(t *testing.T) {
	control := mustPacer(t, 2, PolicyDrain)
	probe := mustPacer(t, 2, PolicyDrain)
	if err := probe.SetRate(-1); err == nil {
		t.Fatal("SetRate(-1) error = nil")
	}
	control.Tick(0)
	probe.Tick(0)
	for _, now := range []float64{0.25, 0.5, 1.5, 1.75} {
		if a, b := control.Tick(now), probe.Tick(now); a != b {
			t.Fatalf("Tick(%v): control = %d, probe = %d", now, a, b)
		}
	}
}

func TestSetRate_AppliesOnNextTick(t *testing.T) {
	p := mustPacer(t, 1, PolicyDrain)
	p.Tick(0)
	if err := p.SetRate(4); err != nil {
		t.Fatalf("SetRate(4) error = %v", err)
	}
	if due := p.Tick(1); due != 4 {
		t.Fatalf("Tick(1) = %d, want 4", due)
	}
}

func TestResetClock(t *testing.T) {
	p := mustPacer(t, 2, PolicyDrain)
	p.Tick(0)
	p.Tick(0.25)
	p.ResetClock()
	if p.Accumulated() != 0 {
		t.Fatalf("Accumulated() = %v, want 0", p.Accumulated())
	}
	if due := p.Tick(50); due != 0 {
		t.Fatalf("Tick after reset = %d, want 0", due)
	}
}

func TestNew_Validates(t *testing.T) {
	if _, err := New(0, PolicyDrain); !apperrors.IsCode(err, apperrors.CodeInvalidRate) {
		t.Fatalf("New(0) error = %v, want invalid rate", err)
	}
	if _, err := New(1, Policy("burst")); !apperrors.IsCode(err, apperrors.CodeInvalidPolicy) {
		t.Fatalf("New(burst) error = %v, want invalid policy", err)
	}
	p := mustPacer(t, 1, "")
	if p.Policy() != PolicyDrain {
		t.Fatalf("default policy = %q, want drain", p.Policy())
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{input: "drain", want: PolicyDrain},
		{input: " Single ", want: PolicySingle},
		{input: "", want: PolicyDrain},
		{input: "burst", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
