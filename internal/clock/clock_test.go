package clock

import (
	"testing"
	"time"
)

func TestFake_AdvanceAndSet(t *testing.T) {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if got := f.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}

	f.Advance(90 * time.Second)
	if got, want := f.Now(), start.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("after Advance Now() = %v, want %v", got, want)
	}

	later := start.Add(5 * time.Hour)
	f.Set(later)
	if got := f.Now(); !got.Equal(later) {
		t.Errorf("after Set Now() = %v, want %v", got, later)
	}
}
