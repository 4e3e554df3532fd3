package entity

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var (
	ErrUnsupportedResolution = errors.New("unsupported resolution")
	ErrInvalidDuration       = errors.New("invalid duration")
)

type Resolution string

const (
	ResolutionHour  Resolution = "hour"
	ResolutionDay   Resolution = "day"
	ResolutionMonth Resolution = "month"
)

var SupportedResolutions = []Resolution{
	ResolutionHour,
	ResolutionDay,
	ResolutionMonth,
}

func (r Resolution) IsValid() bool {
	for _, sr := range SupportedResolutions {
		if r == sr {
			return true
		}
	}
	return false
}

func (r Resolution) String() string {
	return string(r)
}

// Truncate returns the start of the bucket t falls in.
func (r Resolution) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch r {
	case ResolutionHour:
		return t.Truncate(time.Hour)
	case ResolutionMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the bucket following the one starting at t.
func (r Resolution) Next(t time.Time) time.Time {
	switch r {
	case ResolutionHour:
		return t.Add(time.Hour)
	case ResolutionMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

var durationRegex = regexp.MustCompile(`^([0-9]+)([hdm])$`)

// Duration is a period counted back from the end of a stats query,
// e.g. "3h", "7d" or "1m" (months).
type Duration string

func (d Duration) IsValid() bool {
	return durationRegex.MatchString(string(d))
}

// Before returns the time that lies d before end.
func (d Duration) Before(end time.Time) (time.Time, error) {
	m := durationRegex.FindStringSubmatch(string(d))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDuration, string(d))
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDuration, string(d))
	}

	var start time.Time
	switch m[2] {
	case "h":
		if int64(n) > math.MaxInt64/int64(time.Hour) {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDuration, string(d))
		}
		start = end.Add(-time.Duration(n) * time.Hour)
	case "m":
		start = end.AddDate(0, -n, 0)
	default:
		start = end.AddDate(0, 0, -n)
	}

	// calendar arithmetic wraps around for absurd counts
	if start.After(end) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDuration, string(d))
	}

	return start, nil
}
