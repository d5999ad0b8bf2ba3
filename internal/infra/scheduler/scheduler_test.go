//go:build !integration

package scheduler

import (
	"testing"
	"time"
)

func TestUntilNext(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, loc)

	cases := []struct {
		name string
		at   string
		want time.Duration
	}{
		{name: "later today", at: "04:00", want: time.Hour},
		{name: "exactly now rolls over", at: "03:00", want: 24 * time.Hour},
		{name: "already passed rolls over", at: "02:30", want: 23*time.Hour + 30*time.Minute},
		{name: "bad format falls back to a day", at: "four am", want: 24 * time.Hour},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := untilNext(tc.at, now); got != tc.want {
				t.Fatalf("untilNext(%q) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestUntilNextAlwaysPositive(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	for _, at := range []string{"00:00", "12:00", "23:59"} {
		if d := untilNext(at, now); d <= 0 {
			t.Fatalf("untilNext(%q) = %v, want positive", at, d)
		}
	}
}
