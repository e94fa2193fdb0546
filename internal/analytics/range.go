package analytics

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultDays = 30
	MaxDays     = 366

	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

var ErrInvalidRange = errors.New("invalid time range")

// TimeRange is the inclusive window [From, To] the dashboard asked for.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Days int       `json:"days"`
}

// NewTimeRange returns the window of the given number of days ending at now.
func NewTimeRange(now time.Time, days int) TimeRange {
	to := now.UTC()
	return TimeRange{
		From: to.Add(-time.Duration(days) * 24 * time.Hour),
		To:   to,
		Days: days,
	}
}

// PreviousFrom is the start of the equal-length window that ends at From.
func (tr TimeRange) PreviousFrom() time.Time {
	return tr.From.Add(-tr.To.Sub(tr.From))
}

// ParseRange reads from/to/days query parameters. Explicit from/to win over
// days; a date-only "to" covers the whole day.
func ParseRange(q url.Values, now time.Time, defaultDays int) (TimeRange, error) {
	if defaultDays <= 0 {
		defaultDays = DefaultDays
	}
	fromRaw, toRaw := q.Get("from"), q.Get("to")

	if fromRaw == "" && toRaw == "" {
		days := defaultDays
		if s := q.Get("days"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return TimeRange{}, fmt.Errorf("%w: days %q", ErrInvalidRange, s)
			}
			days = n
		}
		if days < 1 || days > MaxDays {
			return TimeRange{}, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidRange, MaxDays)
		}
		return NewTimeRange(now, days), nil
	}

	to := now.UTC()
	if toRaw != "" {
		t, dateOnly, err := parseBound(toRaw)
		if err != nil {
			return TimeRange{}, fmt.Errorf("%w: to %q", ErrInvalidRange, toRaw)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		to = t
	}

	var from time.Time
	if fromRaw != "" {
		t, _, err := parseBound(fromRaw)
		if err != nil {
			return TimeRange{}, fmt.Errorf("%w: from %q", ErrInvalidRange, fromRaw)
		}
		from = t
	} else {
		from = to.Add(-time.Duration(defaultDays) * 24 * time.Hour)
	}

	if from.After(to) {
		return TimeRange{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
	}
	// a window shorter than a day still counts as one day
	days := int(math.Ceil(to.Sub(from).Hours() / 24))
	if days < 1 {
		days = 1
	}
	if days > MaxDays {
		return TimeRange{}, fmt.Errorf("%w: range longer than %d days", ErrInvalidRange, MaxDays)
	}
	return TimeRange{From: from, To: to, Days: days}, nil
}

func parseBound(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	if t, err = time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, err
}
