package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMidnightAfter(t *testing.T) {
	cases := []struct {
		name   string
		at     time.Time
		offset time.Duration
		want   time.Time
	}{
		{
			name: "utc noon expires at utc midnight",
			at:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "positive offset moves midnight earlier in utc",
			at:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			offset: 5 * time.Hour,
			want:   time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
		},
		{
			name:   "offset crossing the date line",
			at:     time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC),
			offset: time.Hour,
			// 00:30 local on the 15th, next local midnight is the 16th.
			want: time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC),
		},
		{
			name:   "negative offset moves midnight later in utc",
			at:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			offset: -(3*time.Hour + 30*time.Minute),
			want:   time.Date(2026, 3, 15, 3, 30, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MidnightAfter(tc.at, tc.offset))
		})
	}
}
