package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestQuarter(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Quarter
	}{
		{
			name: "late november has Q3",
			now:  time.Date(2024, time.November, 25, 0, 0, 0, 0, time.UTC),
			want: Quarter{Year: 2024, Q: 3},
		},
		{
			name: "mid august has Q2",
			now:  time.Date(2024, time.August, 20, 0, 0, 0, 0, time.UTC),
			want: Quarter{Year: 2024, Q: 2},
		},
		{
			name: "early january falls back to prior year Q4",
			now:  time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
			want: Quarter{Year: 2024, Q: 4},
		},
		{
			name: "march after Q4 deadline has prior year Q4",
			now:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			want: Quarter{Year: 2024, Q: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LatestQuarter(tt.now))
		})
	}
}

func TestLatestQuarter_JanuaryFallback(t *testing.T) {
	// Before any of the current year's deadlines have passed, but Q4 of
	// last year is past its deadline (Dec 31 + 50 days = ~Feb 19).
	got := LatestQuarter(time.Date(2025, time.February, 25, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Quarter{Year: 2024, Q: 4}, got)
}

func TestParseQuarter(t *testing.T) {
	q, err := ParseQuarter("2024_Q3")
	require.NoError(t, err)
	assert.Equal(t, Quarter{Year: 2024, Q: 3}, q)
	assert.Equal(t, "2024_Q3", q.String())

	for _, bad := range []string{"", "2024", "2024_Q5", "2024_Q0", "garbage", "1990_Q1"} {
		_, err := ParseQuarter(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
