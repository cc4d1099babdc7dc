package random

import "testing"

func TestResolveSeedKeepsConfigured(t *testing.T) {
	got, err := ResolveSeed(42)
	if err != nil {
		t.Fatalf("ResolveSeed() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("ResolveSeed(42) = %d", got)
	}
}

func TestResolveSeedDrawsWhenZero(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 4; i++ {
		seed, err := ResolveSeed(0)
		if err != nil {
			t.Fatalf("ResolveSeed(0) error = %v", err)
		}
		seen[seed] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected distinct seeds, got %v", seen)
	}
}
