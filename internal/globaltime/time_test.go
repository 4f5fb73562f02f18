package globaltime

import (
	"testing"
	"time"
)

func TestMockTimeRoundTrip(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	SetMockTime(fixed)
	defer ResetTime()

	if got := Now(); !got.Equal(fixed) {
		t.Fatalf("Now() = %s, want %s", got, fixed)
	}
	if got := UTC(); got.Location() != time.UTC {
		t.Fatalf("UTC() returned non-UTC location %v", got.Location())
	}

	ResetTime()
	if got := Now(); got.Equal(fixed) {
		t.Fatalf("ResetTime did not restore the real clock")
	}
}
