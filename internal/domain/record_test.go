package domain

import (
	"errors"
	"testing"
)

func sampleRecord() UserRecord {
	r := UserRecord{UserID: 1}
	for _, name := range []string{"a", "b", "c", "d"} {
		r.AddSchedule(ScheduleEntry{Day: "понедельник", Time: "10:00-11:00", ClassName: name})
	}
	return r
}

func TestRemoveScheduleAtShifts(t *testing.T) {
	r := sampleRecord()
	removed, err := r.RemoveScheduleAt(1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ClassName != "b" {
		t.Fatalf("removed %q, want b", removed.ClassName)
	}
	got := []string{}
	for _, e := range r.Schedule {
		got = append(got, e.ClassName)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "c" || got[2] != "d" {
		t.Fatalf("unexpected order after delete: %v", got)
	}

	// The last original index no longer exists.
	if _, err := r.RemoveScheduleAt(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("stale index err = %v, want ErrIndexOutOfRange", err)
	}
	if len(r.Schedule) != 3 {
		t.Fatalf("stale delete must not mutate, len=%d", len(r.Schedule))
	}
}

func TestRemoveByIDDetectsStaleReference(t *testing.T) {
	r := sampleRecord()
	target := r.Schedule[2].ID
	if _, err := r.RemoveSchedule(target); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := r.RemoveSchedule(target); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("second remove err = %v, want ErrEntryNotFound", err)
	}
	if r.ScheduleIndex(r.Schedule[2].ID) != 2 || r.Schedule[2].ClassName != "d" {
		t.Fatalf("ids must stay bound to their entries")
	}
}

func TestCloneIsolation(t *testing.T) {
	r := sampleRecord()
	r.State = map[string]any{"k": "v"}
	c := r.Clone()
	c.Schedule[0].ClassName = "changed"
	c.State["k"] = "other"
	if _, err := c.RemoveScheduleAt(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if r.Schedule[0].ClassName != "a" || len(r.Schedule) != 4 {
		t.Fatalf("original mutated through clone: %+v", r.Schedule[0])
	}
	if r.State["k"] != "v" {
		t.Fatalf("state mutated through clone")
	}
}

func TestEnsureIDs(t *testing.T) {
	r := UserRecord{
		Schedule:  []ScheduleEntry{{Day: "среда"}, {ID: "keep", Day: "среда"}},
		Deadlines: []DeadlineEntry{{Name: "x"}},
	}
	if !r.EnsureIDs() {
		t.Fatal("expected ids to be assigned")
	}
	if r.Schedule[0].ID == "" || r.Deadlines[0].ID == "" {
		t.Fatal("missing ids after EnsureIDs")
	}
	if r.Schedule[1].ID != "keep" {
		t.Fatalf("existing id replaced: %q", r.Schedule[1].ID)
	}
	if r.EnsureIDs() {
		t.Fatal("second EnsureIDs should be a no-op")
	}
}

func TestUpdateDeadlineNotFound(t *testing.T) {
	r := UserRecord{}
	d := r.AddDeadline(DeadlineEntry{Name: "essay", DateTime: "2024-05-01 10:00"})
	err := r.UpdateDeadline(d.ID, func(e *DeadlineEntry) error {
		e.Name = "thesis"
		return nil
	})
	if err != nil || r.Deadlines[0].Name != "thesis" {
		t.Fatalf("update failed: %v %+v", err, r.Deadlines[0])
	}
	if err := r.UpdateDeadline("missing", func(*DeadlineEntry) error { return nil }); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}
