package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Offsets assumed for stored entries that carry no reminderBefore.
const (
	DefaultClassReminder    = 15
	DefaultDeadlineReminder = 60
)

// NewEntryID returns a sortable identifier for a fresh entry.
func NewEntryID() string {
	return ulid.Make().String()
}

// ScheduleEntry is a weekly recurring class.
type ScheduleEntry struct {
	ID             string `json:"id,omitempty"`
	Day            string `json:"day"`
	Time           string `json:"time"`
	ClassName      string `json:"className"`
	Professor      string `json:"professor"`
	ReminderBefore int    `json:"reminderBefore"`
}

// Validate checks the weekday, interval and reminder offset.
func (e ScheduleEntry) Validate() error {
	if WeekdayIndex(e.Day) < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidWeekday, e.Day)
	}
	if _, err := ParseTimeRange(e.Time); err != nil {
		return err
	}
	if e.ReminderBefore < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidReminder, e.ReminderBefore)
	}
	return nil
}

// UnmarshalJSON applies DefaultClassReminder when reminderBefore is absent.
func (e *ScheduleEntry) UnmarshalJSON(data []byte) error {
	type plain ScheduleEntry
	aux := struct {
		*plain
		ReminderBefore *int `json:"reminderBefore"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.ReminderBefore = reminderOr(aux.ReminderBefore, DefaultClassReminder)
	return nil
}

// StartMinutes returns the class start as minutes since midnight.
func (e ScheduleEntry) StartMinutes() (int, error) {
	tr, err := ParseTimeRange(e.Time)
	if err != nil {
		return 0, err
	}
	return tr.Start, nil
}

// DeadlineEntry is a one-off due date.
type DeadlineEntry struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	DateTime       string `json:"datetime"`
	Description    string `json:"description"`
	ReminderBefore int    `json:"reminderBefore"`
}

// Validate checks the date and reminder offset.
func (e DeadlineEntry) Validate() error {
	if _, err := ParseDateTime(e.DateTime, time.UTC); err != nil {
		return err
	}
	if e.ReminderBefore < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidReminder, e.ReminderBefore)
	}
	return nil
}

// UnmarshalJSON applies DefaultDeadlineReminder when reminderBefore is absent.
func (e *DeadlineEntry) UnmarshalJSON(data []byte) error {
	type plain DeadlineEntry
	aux := struct {
		*plain
		ReminderBefore *int `json:"reminderBefore"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.ReminderBefore = reminderOr(aux.ReminderBefore, DefaultDeadlineReminder)
	return nil
}

func reminderOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// Due resolves the deadline instant in loc.
func (e DeadlineEntry) Due(loc *time.Location) (time.Time, error) {
	return ParseDateTime(e.DateTime, loc)
}
