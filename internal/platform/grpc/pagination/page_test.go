package pagination

import (
	"errors"
	"testing"
)

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}
	tests := []struct {
		value int
		want  int
	}{
		{value: 0, want: 20},
		{value: -4, want: 20},
		{value: 7, want: 7},
		{value: 500, want: 100},
	}
	for _, tt := range tests {
		if got := ClampPageSize(tt.value, cfg); got != tt.want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", tt.value, got, tt.want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("ClampPageSize with empty config = %d, want 1", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	id, err := ParseCursor(FormatCursor(42))
	if err != nil || id != 42 {
		t.Fatalf("ParseCursor(FormatCursor(42)) = %d, %v", id, err)
	}
	if id, err := ParseCursor("  "); err != nil || id != 0 {
		t.Fatalf("empty cursor = %d, %v", id, err)
	}
}

func TestParseCursorRejects(t *testing.T) {
	for _, token := range []string{"abc", "-3", "1.5", "9999999999999999999999"} {
		if _, err := ParseCursor(token); !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("ParseCursor(%q) error = %v", token, err)
		}
	}
}
