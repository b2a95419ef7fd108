package filter

import (
	"testing"
	"time"
)

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	cond, err := Parse("   ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cond.Clause != "" || len(cond.Params) != 0 {
		t.Fatalf("cond = %+v, want empty", cond)
	}
}

func TestParseTranslatesToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter string
		clause string
		params []any
	}{
		{
			name:   "equality",
			filter: `status = "pending"`,
			clause: "status = ?",
			params: []any{"pending"},
		},
		{
			name:   "and",
			filter: `status = "accepted" AND food_category = "dairy"`,
			clause: "(status = ? AND food_category = ?)",
			params: []any{"accepted", "dairy"},
		},
		{
			name:   "or",
			filter: `donor_id = "d1" OR shelter_id = "s1"`,
			clause: "(donor_id = ? OR shelter_id = ?)",
			params: []any{"d1", "s1"},
		},
		{
			name:   "not",
			filter: `NOT status = "completed"`,
			clause: "NOT status = ?",
			params: []any{"completed"},
		},
		{
			name:   "timestamp",
			filter: `created_at >= "2026-03-01T00:00:00Z"`,
			clause: "created_at >= ?",
			params: []any{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cond, err := Parse(tc.filter)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.filter, err)
			}
			if cond.Clause != tc.clause {
				t.Fatalf("clause = %q, want %q", cond.Clause, tc.clause)
			}
			if len(cond.Params) != len(tc.params) {
				t.Fatalf("params = %v, want %v", cond.Params, tc.params)
			}
			for i := range cond.Params {
				if cond.Params[i] != tc.params[i] {
					t.Fatalf("param[%d] = %v, want %v", i, cond.Params[i], tc.params[i])
				}
			}
		})
	}
}

func TestParseRejectsBadFilters(t *testing.T) {
	t.Parallel()

	for _, filter := range []string{
		`status = "archived"`,
		`food_category = "rocks"`,
		`pickup_address = "x"`,
		`created_at > "yesterday"`,
		`status = `,
	} {
		if _, err := Parse(filter); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", filter)
		}
	}
}
