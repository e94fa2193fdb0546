package analytics

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/url"
	"testing"
	"time"
)

func TestParseRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		wantFrom time.Time
		wantTo   time.Time
		wantDays int
	}{
		{
			name:     "default days",
			query:    "",
			wantFrom: now.AddDate(0, 0, -30),
			wantTo:   now,
			wantDays: 30,
		},
		{
			name:     "explicit days",
			query:    "days=7",
			wantFrom: now.AddDate(0, 0, -7),
			wantTo:   now,
			wantDays: 7,
		},
		{
			name:     "date only bounds cover whole days",
			query:    "from=2024-03-01&to=2024-03-07",
			wantFrom: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 3, 7, 23, 59, 59, 999999999, time.UTC),
			wantDays: 7,
		},
		{
			name:     "rfc3339 bounds kept as is",
			query:    "from=2024-03-01T06:00:00Z&to=2024-03-02T06:00:00Z",
			wantFrom: time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC),
			wantDays: 1,
		},
		{
			name:     "same instant counts as one day",
			query:    "from=2024-03-01T06:00:00Z&to=2024-03-01T06:00:00Z",
			wantFrom: time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
			wantDays: 1,
		},
		{
			name:     "few hours count as one day",
			query:    "from=2024-03-01T06:00:00Z&to=2024-03-01T09:30:00Z",
			wantFrom: time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			wantDays: 1,
		},
		{
			name:     "from only ends now",
			query:    "from=2024-03-10",
			wantFrom: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			wantTo:   now,
			wantDays: 6,
		},
		{
			name:     "to only uses default length",
			query:    "to=2024-03-10",
			wantFrom: time.Date(2024, 3, 10, 23, 59, 59, 999999999, time.UTC).AddDate(0, 0, -30),
			wantTo:   time.Date(2024, 3, 10, 23, 59, 59, 999999999, time.UTC),
			wantDays: 30,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			tr, err := ParseRange(q, now, DefaultDays)
			require.NoError(t, err)
			assert.True(t, tt.wantFrom.Equal(tr.From), "from: want %s got %s", tt.wantFrom, tr.From)
			assert.True(t, tt.wantTo.Equal(tr.To), "to: want %s got %s", tt.wantTo, tr.To)
			assert.Equal(t, tt.wantDays, tr.Days)
		})
	}
}

func TestParseRangeErrors(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	for _, query := range []string{
		"days=abc",
		"days=0",
		"days=-3",
		"days=400",
		"from=yesterday",
		"to=2024-13-01",
		"from=2024-03-10&to=2024-03-01",
		"from=2020-01-01&to=2024-01-01",
	} {
		t.Run(query, func(t *testing.T) {
			q, err := url.ParseQuery(query)
			require.NoError(t, err)

			_, err = ParseRange(q, now, DefaultDays)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestPreviousFrom(t *testing.T) {
	tr := TimeRange{
		From: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), tr.PreviousFrom())
}
