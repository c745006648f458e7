package workflow

import (
	"testing"
	"time"
)

func TestLocalDay(t *testing.T) {
	// 2026-08-15 20:00 UTC is already the 16th in Yangon (UTC+6:30)
	instant := time.Date(2026, 8, 15, 20, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		timezone string
		want     string
	}{
		{"utc", "UTC", "2026-08-15"},
		{"ahead of utc rolls the date", "Asia/Yangon", "2026-08-16"},
		{"invalid zone falls back to utc", "Not/AZone", "2026-08-15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := localDay(instant, tc.timezone); got != tc.want {
				t.Errorf("localDay(%s, %q) = %q, want %q", instant, tc.timezone, got, tc.want)
			}
		})
	}
}
