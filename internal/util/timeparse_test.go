package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		since, until string
		wantS, wantU time.Time
	}{
		{"empty", "", "", time.Time{}, time.Time{}},
		{"days", "3d", "", now.AddDate(0, 0, -3), time.Time{}},
		{"weeks", "2w", "", now.AddDate(0, 0, -14), time.Time{}},
		{"months", "1mo", "", now.AddDate(0, -1, 0), time.Time{}},
		{"minutes", "90m", "", now.Add(-90 * time.Minute), time.Time{}},
		{"absolute", "2024-03-01", "2024-03-10T08:30", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)},
		{"swapped", "1d", "3d", now.AddDate(0, 0, -3), now.AddDate(0, 0, -1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, u, err := TimeRange(tc.since, tc.until, now)
			require.NoError(t, err)
			assert.True(t, tc.wantS.Equal(s), "since %v", s)
			assert.True(t, tc.wantU.Equal(u), "until %v", u)
		})
	}
}

func TestTimeRangeErrors(t *testing.T) {
	now := time.Now()
	_, _, err := TimeRange("yesterday", "", now)
	assert.ErrorContains(t, err, "invalid since")
	_, _, err = TimeRange("", "xd", now)
	assert.ErrorContains(t, err, "invalid until")
}
