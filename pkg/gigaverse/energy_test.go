package gigaverse

import (
	"math"
	"testing"
	"time"
)

func TestComputeEnergy(t *testing.T) {
	const lastClaim = int64(1_700_000_000)

	tests := []struct {
		name        string
		storedUnits float64
		now         time.Time
		expected    float64
	}{
		{
			name:     "no elapsed time",
			now:      time.UnixMilli(lastClaim * 1000),
			expected: 0,
		},
		{
			name:     "one second of regen",
			now:      time.UnixMilli((lastClaim + 1) * 1000),
			expected: 0.002777777,
		},
		{
			name:        "stored units plus an hour",
			storedUnits: 500_000_000,
			now:         time.UnixMilli((lastClaim + 3600) * 1000),
			expected:    (500_000_000 + 2_777_777*3600.0) / 1_000_000_000,
		},
		{
			name:     "clock skew passes through",
			now:      time.UnixMilli((lastClaim - 10) * 1000),
			expected: -0.02777777,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEnergy(tt.storedUnits, lastClaim, tt.now)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestComputeEnergy_Monotonic(t *testing.T) {
	const lastClaim = int64(1_700_000_000)
	prev := math.Inf(-1)
	for s := int64(0); s <= 600; s += 60 {
		now := time.UnixMilli((lastClaim + s) * 1000)
		got := ComputeEnergy(100, lastClaim, now)
		if got < prev {
			t.Fatalf("Expected non-decreasing energy, got %v after %v at +%ds", got, prev, s)
		}
		prev = got
	}
}
