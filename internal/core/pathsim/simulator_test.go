package pathsim

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/louisbranch/beanmachine/internal/core/pinfield"
)

func mustChoices(t *testing.T, value string) []bool {
	t.Helper()
	choices, err := ParseChoices(value)
	if err != nil {
		t.Fatalf("ParseChoices(%q) error = %v", value, err)
	}
	return choices
}

func TestSimulate_ForcedThreeRows(t *testing.T) {
	field := pinfield.New(3)
	sim := New(field, NewSequenceCoin(mustChoices(t, "LRL")))

	bin := sim.Simulate()

	if bin != 1 {
		t.Fatalf("Simulate() bin = %d, want 1", bin)
	}
	if got := field.LastPath(); !reflect.DeepEqual(got, []int{0, 0, 1}) {
		t.Fatalf("LastPath() = %v, want [0 0 1]", got)
	}
	if got := field.Counts(0, 0).TimesLeft; got != 1 {
		t.Fatalf("left[0][0] = %d, want 1", got)
	}
	if got := field.Counts(1, 0).TimesRight; got != 1 {
		t.Fatalf("right[1][0] = %d, want 1", got)
	}
	if got := field.Counts(2, 1).TimesLeft; got != 1 {
		t.Fatalf("left[2][1] = %d, want 1", got)
	}
	if field.TotalPaths() != 1 {
		t.Fatalf("TotalPaths() = %d, want 1", field.TotalPaths())
	}
}

func TestSimulateBatch_ForcedTwoRows(t *testing.T) {
	field := pinfield.New(2)
	sim := New(field, NewSequenceCoin(mustChoices(t, "LL, LR, RL, RR")))

	bin := sim.SimulateBatch(4)

	if bin != 2 {
		t.Fatalf("SimulateBatch() last bin = %d, want 2", bin)
	}
	if field.TotalPaths() != 4 {
		t.Fatalf("TotalPaths() = %d, want 4", field.TotalPaths())
	}
	// Only the last particle (RR) is kept in the last path.
	if got := field.LastPath(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("LastPath() = %v, want [0 1]", got)
	}
	bins := []uint64{
		field.Counts(1, 0).TimesLeft,
		field.Counts(1, 0).TimesRight + field.Counts(1, 1).TimesLeft,
		field.Counts(1, 1).TimesRight,
	}
	if !reflect.DeepEqual(bins, []uint64{1, 2, 1}) {
		t.Fatalf("bins = %v, want [1 2 1]", bins)
	}
}

func TestSimulateBatch_ZeroIsNoop(t *testing.T) {
	field := pinfield.New(3)
	sim := New(field, NewSequenceCoin(nil))
	if bin := sim.SimulateBatch(0); bin != -1 {
		t.Fatalf("SimulateBatch(0) = %d, want -1", bin)
	}
	if field.TotalPaths() != 0 {
		t.Fatalf("TotalPaths() = %d, want 0", field.TotalPaths())
	}
}

func TestSimulate_Conservation(t *testing.T) {
	field := pinfield.New(15)
	sim := New(field, NewRandomCoin(42))

	for step := 0; step < 20; step++ {
		sim.SimulateBatch(50)
		total := field.TotalPaths()
		for row := 0; row < field.RowCount(); row++ {
			var sum uint64
			for _, counts := range field.Row(row) {
				sum += counts.Total()
			}
			if sum != total {
				t.Fatalf("step %d row %d: sum = %d, want %d", step, row, sum, total)
			}
		}
	}
}

func TestSimulate_LastPathInRange(t *testing.T) {
	field := pinfield.New(16)
	sim := New(field, NewRandomCoin(7))

	for i := 0; i < 500; i++ {
		sim.Simulate()
		for row, pin := range field.LastPath() {
			if pin < 0 || pin > row {
				t.Fatalf("LastPath()[%d] = %d, out of range [0, %d]", row, pin, row)
			}
		}
	}
}

func TestSimulate_Monotonic(t *testing.T) {
	field := pinfield.New(6)
	sim := New(field, NewRandomCoin(99))

	prev := field.Clone()
	for i := 0; i < 200; i++ {
		sim.Simulate()
		if field.TotalPaths() < prev.TotalPaths() {
			t.Fatalf("TotalPaths decreased: %d -> %d", prev.TotalPaths(), field.TotalPaths())
		}
		for row := 0; row < field.RowCount(); row++ {
			for pin := 0; pin <= row; pin++ {
				before, after := prev.Counts(row, pin), field.Counts(row, pin)
				if after.TimesLeft < before.TimesLeft || after.TimesRight < before.TimesRight {
					t.Fatalf("slot (%d,%d) decreased: %+v -> %+v", row, pin, before, after)
				}
			}
		}
		prev = field.Clone()
	}
}

func TestRandomCoin_Determinism(t *testing.T) {
	a := pinfield.New(10)
	b := pinfield.New(10)
	New(a, NewRandomCoin(12345)).SimulateBatch(300)
	New(b, NewRandomCoin(12345)).SimulateBatch(300)

	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different fields")
	}
}

func TestRandomCoin_RoughlyFair(t *testing.T) {
	coin := NewCoinWithRng(rand.New(rand.NewSource(1)))
	left := 0
	const draws = 20000
	for i := 0; i < draws; i++ {
		if coin.Left() {
			left++
		}
	}
	// 6 standard deviations for p = 0.5.
	if left < 9576 || left > 10424 {
		t.Fatalf("left draws = %d of %d, not plausibly fair", left, draws)
	}
}

func TestSequenceCoin_PanicsWhenExhausted(t *testing.T) {
	coin := NewSequenceCoin([]bool{true})
	coin.Left()
	defer func() {
		if recover() == nil {
			t.Fatal("exhausted coin did not panic")
		}
	}()
	coin.Left()
}

func TestSequenceCoin_Push(t *testing.T) {
	coin := NewSequenceCoin(nil)
	coin.Push(false, true)
	if coin.Remaining() != 2 {
		t.Fatalf("Remaining() = %d, want 2", coin.Remaining())
	}
	if coin.Left() {
		t.Fatal("first pushed choice should be right")
	}
	if !coin.Left() {
		t.Fatal("second pushed choice should be left")
	}
}

func TestParseChoices(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []bool
		wantErr error
	}{
		{name: "simple", input: "LRL", want: []bool{true, false, true}},
		{name: "lowercase and separators", input: "ll, rr", want: []bool{true, true, false, false}},
		{name: "empty", input: "", want: []bool{}},
		{name: "invalid", input: "LX", wantErr: ErrInvalidChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChoices(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseChoices(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseChoices(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
