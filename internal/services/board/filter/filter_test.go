package filter

import (
	"testing"
	"time"

	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

func TestParse_Empty(t *testing.T) {
	cond, err := Parse("   ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cond.Empty() || len(cond.Params) != 0 {
		t.Fatalf("Parse(blank) = %+v, want empty", cond)
	}
}

func TestParse_Translates(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		clause string
		params []any
	}{
		{
			name:   "equals string",
			filter: `kind = "reset"`,
			clause: "kind = ?",
			params: []any{"reset"},
		},
		{
			name:   "and",
			filter: `source = "grpc" AND total_paths >= 100`,
			clause: "(source = ? AND total_paths >= ?)",
			params: []any{"grpc", int64(100)},
		},
		{
			name:   "or with float",
			filter: `rate > 2.5 OR kind != "set_rate"`,
			clause: "(rate > ? OR kind != ?)",
			params: []any{2.5, "set_rate"},
		},
		{
			name:   "timestamp",
			filter: `created_at < timestamp("2026-01-02T03:04:05Z")`,
			clause: "created_at < ?",
			params: []any{time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := Parse(tt.filter)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.filter, err)
			}
			if cond.Clause != tt.clause {
				t.Fatalf("Clause = %q, want %q", cond.Clause, tt.clause)
			}
			if len(cond.Params) != len(tt.params) {
				t.Fatalf("Params = %v, want %v", cond.Params, tt.params)
			}
			for i := range tt.params {
				if cond.Params[i] != tt.params[i] {
					t.Fatalf("Params[%d] = %#v, want %#v", i, cond.Params[i], tt.params[i])
				}
			}
		})
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	for _, filter := range []string{
		`speed = 3`,
		`kind = `,
	} {
		_, err := Parse(filter)
		if !apperrors.IsCode(err, apperrors.CodeInvalidFilter) {
			t.Fatalf("Parse(%q) error = %v, want invalid filter", filter, err)
		}
	}
}
