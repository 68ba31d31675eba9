package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	coredatabase "github.com/m3rciful/typekeeper/core/database"
	"github.com/m3rciful/typekeeper/internal/domain"
	"github.com/m3rciful/typekeeper/migrations"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "users.db")}
	db, err := coredatabase.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := coredatabase.RunMigrations(ctx, cfg, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestLoadCreatesEmptyRecord(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	rec, err := store.Load(ctx, 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.UserID != 42 || len(rec.Schedule) != 0 || len(rec.Deadlines) != 0 {
		t.Fatalf("unexpected fresh record: %+v", rec)
	}
	if rec.Schedule == nil || rec.Deadlines == nil || rec.State == nil {
		t.Fatal("fresh record must carry empty, non-nil collections")
	}
	// Loading again does not create a second row.
	if _, err := store.Load(ctx, 42); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if n, err := store.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestSaveLoadRoundTripUnicode(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	rec, err := store.Load(ctx, 7)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec.AddSchedule(domain.ScheduleEntry{
		Day: "среда", Time: "09:00-10:30", ClassName: "Матанализ 📐", Professor: "Иванов И.И.", ReminderBefore: 15,
	})
	rec.AddDeadline(domain.DeadlineEntry{
		Name: "Курсовая «ТОЭ»", DateTime: "2026-12-01 23:59", Description: "", ReminderBefore: 1440,
	})
	if err := store.Save(ctx, &rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, 7)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(got.Schedule, rec.Schedule) {
		t.Fatalf("schedule mismatch:\n got %+v\nwant %+v", got.Schedule, rec.Schedule)
	}
	if !reflect.DeepEqual(got.Deadlines, rec.Deadlines) {
		t.Fatalf("deadlines mismatch:\n got %+v\nwant %+v", got.Deadlines, rec.Deadlines)
	}
	if got.Version != rec.Version {
		t.Fatalf("version = %d, want %d", got.Version, rec.Version)
	}
}

func TestSaveRejectsStaleVersion(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	a, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	b := a.Clone()

	a.AddSchedule(domain.ScheduleEntry{Day: "вторник", Time: "10:00-11:00", ClassName: "A"})
	if err := store.Save(ctx, &a); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	b.AddSchedule(domain.ScheduleEntry{Day: "вторник", Time: "12:00-13:00", ClassName: "B"})
	if err := store.Save(ctx, &b); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale Save err = %v, want ErrConflict", err)
	}

	got, err := store.Load(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Schedule) != 1 || got.Schedule[0].ClassName != "A" {
		t.Fatalf("stale write leaked: %+v", got.Schedule)
	}
}

func TestLoadBackfillsMissingIDs(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	legacy := `[{"day":"пятница","time":"08:00-09:30","className":"Физика","professor":"Петров","reminderBefore":10}]`
	if _, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO users (user_id, schedule) VALUES (?, ?)`), 5, legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec, err := store.Load(ctx, 5)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Schedule) != 1 || rec.Schedule[0].ID == "" {
		t.Fatalf("id not backfilled: %+v", rec.Schedule)
	}
	if rec.Schedule[0].ReminderBefore != 10 {
		t.Fatalf("stored reminder changed: %d", rec.Schedule[0].ReminderBefore)
	}
	again, err := store.Load(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if again.Schedule[0].ID != rec.Schedule[0].ID {
		t.Fatalf("backfilled id not persisted: %s != %s", again.Schedule[0].ID, rec.Schedule[0].ID)
	}
}

func TestLoadDefaultsMissingReminder(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO users (user_id, schedule, deadlines) VALUES (?, ?, ?)`), 6,
		`[{"day":"понедельник","time":"09:00-10:30","className":"Матан","professor":"Иванов"}]`,
		`[{"name":"Курсовая","datetime":"2026-05-01 10:00","description":""}]`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec, err := store.Load(ctx, 6)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := rec.Schedule[0].ReminderBefore; got != domain.DefaultClassReminder {
		t.Fatalf("class reminder = %d, want %d", got, domain.DefaultClassReminder)
	}
	if got := rec.Deadlines[0].ReminderBefore; got != domain.DefaultDeadlineReminder {
		t.Fatalf("deadline reminder = %d, want %d", got, domain.DefaultDeadlineReminder)
	}
}

func TestLoadToleratesCorruptColumn(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO users (user_id, schedule, deadlines) VALUES (?, ?, ?)`),
		9, `not json`, `[{"name":"Отчёт","datetime":"2026-05-01 10:00","description":"","reminderBefore":5,"id":"x1"}]`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec, err := store.Load(ctx, 9)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Schedule) != 0 {
		t.Fatalf("corrupt schedule should decode empty, got %+v", rec.Schedule)
	}
	if len(rec.Deadlines) != 1 || rec.Deadlines[0].Name != "Отчёт" {
		t.Fatalf("deadlines = %+v", rec.Deadlines)
	}
}

func TestUpdateSerializesConcurrentWriters(t *testing.T) {
	users := NewUsers(NewStore(openTestDB(t)), nil)
	ctx := context.Background()
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := users.Update(ctx, 100, func(rec *domain.UserRecord) error {
				rec.AddDeadline(domain.DeadlineEntry{Name: string(rune('A' + i)), DateTime: "2026-01-01 10:00"})
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	rec, err := users.store.Load(ctx, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Deadlines) != writers {
		t.Fatalf("lost update: %d deadlines, want %d", len(rec.Deadlines), writers)
	}
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	users := NewUsers(NewStore(openTestDB(t)), nil)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := users.Update(ctx, 3, func(rec *domain.UserRecord) error {
		rec.AddSchedule(domain.ScheduleEntry{Day: "среда", Time: "10:00-11:00"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	rec, err := users.Get(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Schedule) != 0 {
		t.Fatalf("aborted update persisted: %+v", rec.Schedule)
	}
}

func TestUsersGetUsesCache(t *testing.T) {
	db := openTestDB(t)
	users := NewUsers(NewStore(db), NewCache(time.Minute))
	ctx := context.Background()

	if _, err := users.Update(ctx, 11, func(rec *domain.UserRecord) error {
		rec.AddSchedule(domain.ScheduleEntry{Day: "среда", Time: "10:00-11:00", ClassName: "Химия"})
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	// A write behind the service's back is invisible until the entry expires.
	if _, err := db.ExecContext(ctx, db.Rebind(`UPDATE users SET schedule = '[]' WHERE user_id = ?`), 11); err != nil {
		t.Fatal(err)
	}
	rec, err := users.Get(ctx, 11)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Schedule) != 1 {
		t.Fatalf("expected cached copy, got %+v", rec.Schedule)
	}
	users.cache.Invalidate(11)
	rec, err = users.Get(ctx, 11)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Schedule) != 0 {
		t.Fatalf("expected reload after invalidate, got %+v", rec.Schedule)
	}
}
