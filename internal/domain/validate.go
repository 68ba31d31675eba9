package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the stored and accepted deadline format.
const DateTimeLayout = "2006-01-02 15:04"

// DisplayDateTimeLayout is used when listing deadlines.
const DisplayDateTimeLayout = "02.01.2006 15:04"

// MaxReminderMinutes caps reminder offsets at one year.
const MaxReminderMinutes = 365 * 24 * 60

var (
	timeRangeRe = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)
	dateTimeRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`)
)

// TimeRange is a class interval in minutes since midnight.
type TimeRange struct {
	Start int
	End   int
}

// ParseTimeRange validates an HH:MM-HH:MM interval.
func ParseTimeRange(s string) (TimeRange, error) {
	v := strings.TrimSpace(s)
	if !timeRangeRe.MatchString(v) {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	start, ok1 := clockMinutes(v[:5])
	end, ok2 := clockMinutes(v[6:])
	if !ok1 || !ok2 {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	return TimeRange{Start: start, End: end}, nil
}

// ValidateTimeRange returns the trimmed interval when it is well formed.
func ValidateTimeRange(s string) (string, error) {
	if _, err := ParseTimeRange(s); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func clockMinutes(hhmm string) (int, bool) {
	h, err := strconv.Atoi(hhmm[:2])
	if err != nil || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(hhmm[3:])
	if err != nil || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ParseDateTime parses a YYYY-MM-DD HH:MM value in loc, rejecting impossible dates.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(s)
	if !dateTimeRe.MatchString(v) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateTime, s)
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateTimeLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDateTime, err)
	}
	return t, nil
}

// ValidateDateTime returns the trimmed value when it parses as a calendar date and time.
func ValidateDateTime(s string) (string, error) {
	if _, err := ParseDateTime(s, time.UTC); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// ParseReminder parses minutes-before as a non-negative integer.
func ParseReminder(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReminder, s)
	}
	if n < 0 || n > MaxReminderMinutes {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidReminder, n)
	}
	return n, nil
}

// RequireText trims s and rejects blank input.
func RequireText(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", ErrEmptyText
	}
	return v, nil
}
