package gigaverse

import (
	"testing"
	"time"
)

func TestNextToken(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		nowMs    int64
		expected string
	}{
		{name: "empty stays empty", stored: "", nowMs: 999_999_999, expected: ""},
		{name: "fresh token passes through", stored: "1000", nowMs: 1000 + 179_999, expected: "1000"},
		{name: "exactly at window passes", stored: "1000", nowMs: 1000 + 180_000, expected: "1000"},
		{name: "stale token dropped", stored: "1000", nowMs: 1000 + 180_001, expected: ""},
		{name: "non-numeric token left for server", stored: "opaque-abc", nowMs: 999_999_999, expected: "opaque-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextToken(tt.stored, time.UnixMilli(tt.nowMs))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
