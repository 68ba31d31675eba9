package domain

import (
	"fmt"
	"strings"
	"time"
)

// Weekdays lists recognised weekday names in display order, Monday first.
var Weekdays = []string{
	"понедельник",
	"вторник",
	"среда",
	"четверг",
	"пятница",
	"суббота",
	"воскресенье",
}

// NormalizeWeekday returns the canonical lowercase weekday for s.
func NormalizeWeekday(s string) (string, error) {
	i := WeekdayIndex(s)
	if i < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return Weekdays[i], nil
}

// WeekdayIndex returns the Monday-based position of day, ignoring case, or -1.
func WeekdayIndex(day string) int {
	day = strings.ToLower(strings.TrimSpace(day))
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

// WeekdayOf maps t to its weekday name in the location of t.
func WeekdayOf(t time.Time) string {
	return Weekdays[(int(t.Weekday())+6)%7]
}

// TitleWeekday capitalises the first letter for display.
func TitleWeekday(day string) string {
	r := []rune(strings.ToLower(day))
	if len(r) == 0 {
		return day
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
