package domain

import (
	"fmt"
	"time"
)

// UserRecord is everything persisted for one Telegram user.
type UserRecord struct {
	UserID    int64
	Schedule  []ScheduleEntry
	Deadlines []DeadlineEntry
	// State holds free-form transient data; it is cleared on reset.
	State     map[string]any
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so cached records cannot be mutated in place.
func (r UserRecord) Clone() UserRecord {
	out := r
	out.Schedule = append([]ScheduleEntry(nil), r.Schedule...)
	out.Deadlines = append([]DeadlineEntry(nil), r.Deadlines...)
	if r.State != nil {
		out.State = make(map[string]any, len(r.State))
		for k, v := range r.State {
			out.State[k] = v
		}
	}
	return out
}

// EnsureIDs assigns identifiers to entries stored without one and reports whether any changed.
func (r *UserRecord) EnsureIDs() bool {
	changed := false
	for i := range r.Schedule {
		if r.Schedule[i].ID == "" {
			r.Schedule[i].ID = NewEntryID()
			changed = true
		}
	}
	for i := range r.Deadlines {
		if r.Deadlines[i].ID == "" {
			r.Deadlines[i].ID = NewEntryID()
			changed = true
		}
	}
	return changed
}

// ScheduleIndex returns the position of the entry with id, or -1.
func (r *UserRecord) ScheduleIndex(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range r.Schedule {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// DeadlineIndex returns the position of the deadline with id, or -1.
func (r *UserRecord) DeadlineIndex(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range r.Deadlines {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// FindSchedule looks up a schedule entry by id.
func (r *UserRecord) FindSchedule(id string) (ScheduleEntry, bool) {
	if i := r.ScheduleIndex(id); i >= 0 {
		return r.Schedule[i], true
	}
	return ScheduleEntry{}, false
}

// FindDeadline looks up a deadline by id.
func (r *UserRecord) FindDeadline(id string) (DeadlineEntry, bool) {
	if i := r.DeadlineIndex(id); i >= 0 {
		return r.Deadlines[i], true
	}
	return DeadlineEntry{}, false
}

// AddSchedule appends e, assigning an id when missing.
func (r *UserRecord) AddSchedule(e ScheduleEntry) ScheduleEntry {
	if e.ID == "" {
		e.ID = NewEntryID()
	}
	r.Schedule = append(r.Schedule, e)
	return e
}

// AddDeadline appends e, assigning an id when missing.
func (r *UserRecord) AddDeadline(e DeadlineEntry) DeadlineEntry {
	if e.ID == "" {
		e.ID = NewEntryID()
	}
	r.Deadlines = append(r.Deadlines, e)
	return e
}

// UpdateSchedule applies fn to the entry with id.
func (r *UserRecord) UpdateSchedule(id string, fn func(*ScheduleEntry) error) error {
	i := r.ScheduleIndex(id)
	if i < 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrEntryNotFound)
	}
	return fn(&r.Schedule[i])
}

// UpdateDeadline applies fn to the deadline with id.
func (r *UserRecord) UpdateDeadline(id string, fn func(*DeadlineEntry) error) error {
	i := r.DeadlineIndex(id)
	if i < 0 {
		return fmt.Errorf("deadline %s: %w", id, ErrEntryNotFound)
	}
	return fn(&r.Deadlines[i])
}

// RemoveSchedule deletes the entry with id.
func (r *UserRecord) RemoveSchedule(id string) (ScheduleEntry, error) {
	i := r.ScheduleIndex(id)
	if i < 0 {
		return ScheduleEntry{}, fmt.Errorf("schedule %s: %w", id, ErrEntryNotFound)
	}
	return r.RemoveScheduleAt(i)
}

// RemoveDeadline deletes the deadline with id.
func (r *UserRecord) RemoveDeadline(id string) (DeadlineEntry, error) {
	i := r.DeadlineIndex(id)
	if i < 0 {
		return DeadlineEntry{}, fmt.Errorf("deadline %s: %w", id, ErrEntryNotFound)
	}
	return r.RemoveDeadlineAt(i)
}

// RemoveScheduleAt deletes by position; later entries shift down by one.
func (r *UserRecord) RemoveScheduleAt(i int) (ScheduleEntry, error) {
	if i < 0 || i >= len(r.Schedule) {
		return ScheduleEntry{}, fmt.Errorf("schedule[%d] of %d: %w", i, len(r.Schedule), ErrIndexOutOfRange)
	}
	removed := r.Schedule[i]
	r.Schedule = append(r.Schedule[:i:i], r.Schedule[i+1:]...)
	return removed, nil
}

// RemoveDeadlineAt deletes by position; later entries shift down by one.
func (r *UserRecord) RemoveDeadlineAt(i int) (DeadlineEntry, error) {
	if i < 0 || i >= len(r.Deadlines) {
		return DeadlineEntry{}, fmt.Errorf("deadlines[%d] of %d: %w", i, len(r.Deadlines), ErrIndexOutOfRange)
	}
	removed := r.Deadlines[i]
	r.Deadlines = append(r.Deadlines[:i:i], r.Deadlines[i+1:]...)
	return removed, nil
}

// Reset drops all entries and transient state.
func (r *UserRecord) Reset() {
	r.Schedule = []ScheduleEntry{}
	r.Deadlines = []DeadlineEntry{}
	r.State = map[string]any{}
}
