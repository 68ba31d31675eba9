package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeWeekday(t *testing.T) {
	valid := map[string]string{
		"понедельник":    "понедельник",
		"  Вторник ":     "вторник",
		"СРЕДА":          "среда",
		"воскресенье\n": "воскресенье",
	}
	for in, want := range valid {
		got, err := NormalizeWeekday(in)
		if err != nil {
			t.Fatalf("NormalizeWeekday(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("NormalizeWeekday(%q) = %q, want %q", in, got, want)
		}
	}

	invalid := []string{"", "monday", "пн", "понедельникк", "day_среда", "1"}
	for _, in := range invalid {
		if _, err := NormalizeWeekday(in); !errors.Is(err, ErrInvalidWeekday) {
			t.Fatalf("NormalizeWeekday(%q) err = %v, want ErrInvalidWeekday", in, err)
		}
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2024-01-01 was a Monday.
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, want := range Weekdays {
		if got := WeekdayOf(base.AddDate(0, 0, i)); got != want {
			t.Fatalf("day %d: got %q, want %q", i, got, want)
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	tr, err := ParseTimeRange(" 14:30-15:30 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Start != 14*60+30 || tr.End != 15*60+30 {
		t.Fatalf("unexpected range: %+v", tr)
	}

	bad := []string{"", "14:30", "1430-1530", "14:30 - 15:30", "9:00-10:30", "24:00-25:00", "10:60-11:00", "ab:cd-ef:gh", "14:30-15:30x"}
	for _, in := range bad {
		if _, err := ParseTimeRange(in); !errors.Is(err, ErrInvalidTimeRange) {
			t.Fatalf("ParseTimeRange(%q) err = %v, want ErrInvalidTimeRange", in, err)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	got, err := ParseDateTime("2024-12-31 23:59", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 12, 31, 23, 59, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	bad := []string{"", "2024-12-31", "31.12.2024 23:59", "2024-02-30 10:00", "2024-13-01 10:00", "2024-12-31 24:00", "2024-1-2 10:00", "2024-12-31T23:59"}
	for _, in := range bad {
		if _, err := ParseDateTime(in, loc); !errors.Is(err, ErrInvalidDateTime) {
			t.Fatalf("ParseDateTime(%q) err = %v, want ErrInvalidDateTime", in, err)
		}
	}
}

func TestParseReminder(t *testing.T) {
	for in, want := range map[string]int{"0": 0, "15": 15, " 60 ": 60} {
		got, err := ParseReminder(in)
		if err != nil || got != want {
			t.Fatalf("ParseReminder(%q) = %d, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "-1", "abc", "1.5", "99999999999999999999", "600000"} {
		if _, err := ParseReminder(in); !errors.Is(err, ErrInvalidReminder) {
			t.Fatalf("ParseReminder(%q) err = %v, want ErrInvalidReminder", in, err)
		}
	}
}
