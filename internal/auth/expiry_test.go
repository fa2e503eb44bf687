package auth

import (
	"testing"
	"time"
)

func ist(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, marketLocation)
}

func TestNextDailyCutoff(t *testing.T) {
	cases := []struct {
		name   string
		issued time.Time
		want   time.Time
	}{
		{
			name:   "issued mid-morning expires next day",
			issued: ist(2025, 6, 10, 10, 0),
			want:   ist(2025, 6, 11, 3, 30),
		},
		{
			name:   "issued just before cutoff expires same day",
			issued: ist(2025, 6, 10, 3, 29),
			want:   ist(2025, 6, 10, 3, 30),
		},
		{
			name:   "issued exactly at cutoff belongs to the next window",
			issued: ist(2025, 6, 10, 3, 30),
			want:   ist(2025, 6, 11, 3, 30),
		},
		{
			name:   "issued just after midnight expires same day",
			issued: ist(2025, 6, 10, 0, 15),
			want:   ist(2025, 6, 10, 3, 30),
		},
		{
			name:   "issued late evening expires next day",
			issued: ist(2025, 6, 10, 23, 55),
			want:   ist(2025, 6, 11, 3, 30),
		},
		{
			// 23:00 UTC is 04:30 IST the next day, already past the cutoff.
			name:   "UTC instants convert before the comparison",
			issued: time.Date(2025, 1, 15, 23, 0, 0, 0, time.UTC),
			want:   ist(2025, 1, 17, 3, 30),
		},
		{
			name:   "month boundary rolls over",
			issued: ist(2025, 6, 30, 12, 0),
			want:   ist(2025, 7, 1, 3, 30),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextDailyCutoff(tc.issued)
			if !got.Equal(tc.want) {
				t.Errorf("NextDailyCutoff(%v) = %v, want %v", tc.issued, got, tc.want)
			}
			if !got.After(tc.issued) {
				t.Errorf("cutoff %v must be strictly after issue %v", got, tc.issued)
			}
		})
	}
}
