package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 31), parsed)

	_, err = ParseDate("31/01/2025")
	assert.Error(t, err)
}

func TestDatesBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []time.Time
	}{
		{
			name:  "single day",
			start: date(2025, time.January, 1),
			end:   date(2025, time.January, 1),
			want:  []time.Time{date(2025, time.January, 1)},
		},
		{
			name:  "range crossing a month boundary",
			start: date(2025, time.January, 30),
			end:   date(2025, time.February, 2),
			want: []time.Time{
				date(2025, time.January, 30),
				date(2025, time.January, 31),
				date(2025, time.February, 1),
				date(2025, time.February, 2),
			},
		},
		{
			name:  "start after end is empty",
			start: date(2025, time.January, 3),
			end:   date(2025, time.January, 2),
			want:  []time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DatesBetween(tt.start, tt.end))
		})
	}
}

func TestDatesBetweenLength(t *testing.T) {
	start := date(2024, time.February, 25)
	end := date(2024, time.March, 5)

	days := DatesBetween(start, end)

	require.Len(t, days, 10) // leap year February
	assert.Equal(t, start, days[0])
	assert.Equal(t, end, days[len(days)-1])
	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].AddDate(0, 0, 1), days[i])
	}
}

func TestDatesBetweenIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.January, 1, 23, 59, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 2, 0, 1, 0, 0, time.UTC)

	days := DatesBetween(start, end)

	require.Len(t, days, 2)
	assert.Equal(t, date(2025, time.January, 1), days[0])
	assert.Equal(t, date(2025, time.January, 2), days[1])
}
