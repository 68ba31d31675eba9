package domain

import "errors"

var (
	// ErrInvalidWeekday is returned for names outside the seven recognised weekdays.
	ErrInvalidWeekday = errors.New("invalid weekday")
	// ErrInvalidTimeRange is returned when a class time is not HH:MM-HH:MM.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrInvalidDateTime is returned when a deadline is not a valid YYYY-MM-DD HH:MM.
	ErrInvalidDateTime = errors.New("invalid date time")
	// ErrInvalidReminder is returned for reminder offsets that are not non-negative integers.
	ErrInvalidReminder = errors.New("invalid reminder")
	// ErrEmptyText is returned for blank free-text fields.
	ErrEmptyText = errors.New("empty text")
	// ErrEntryNotFound is returned when an entry reference no longer resolves.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrIndexOutOfRange is returned when a positional reference is stale.
	ErrIndexOutOfRange = errors.New("index out of range")
)
