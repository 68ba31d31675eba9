// Package reminder fires class and deadline reminders once per minute.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/m3rciful/typekeeper/core/logger"
	"github.com/m3rciful/typekeeper/core/telegram/format"
	"github.com/m3rciful/typekeeper/internal/domain"
)

const component = "reminders"

// firedRetention bounds how long fired markers are remembered.
const firedRetention = 2 * time.Hour

// Lister yields every stored record.
type Lister interface {
	All(ctx context.Context) ([]domain.UserRecord, error)
}

// Notifier delivers a Markdown reminder to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Result summarizes one scan.
type Result struct {
	Users   int
	Fired   int
	Skipped int
	Failed  int
}

type firedKey struct {
	userID  int64
	entryID string
	trigger int64
}

// Scanner evaluates reminder triggers against a wall clock in loc.
type Scanner struct {
	source   Lister
	notifier Notifier
	loc      *time.Location

	mu    sync.Mutex
	fired map[firedKey]time.Time
}

// NewScanner builds a scanner. A nil loc means UTC.
func NewScanner(source Lister, notifier Notifier, loc *time.Location) *Scanner {
	if loc == nil {
		loc = time.UTC
	}
	return &Scanner{
		source:   source,
		notifier: notifier,
		loc:      loc,
		fired:    make(map[firedKey]time.Time),
	}
}

// Location is the zone used for weekday and wall-clock comparisons.
func (s *Scanner) Location() *time.Location { return s.loc }

// Scan checks every entry of every user against now and sends due reminders.
// Malformed entries are skipped; a failed send is logged and does not stop the scan.
func (s *Scanner) Scan(ctx context.Context, now time.Time) (Result, error) {
	start := time.Now()
	ctx = logger.WithJob(ctx, "reminders.scan")
	now = now.In(s.loc)

	records, err := s.source.All(ctx)
	if err != nil {
		logger.Error(ctx, component, "scan", slog.String("status", "fail"), logger.Err(err))
		return Result{}, fmt.Errorf("list users: %w", err)
	}

	res := Result{Users: len(records)}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		userCtx := logger.WithUser(ctx, rec.UserID)
		s.scanSchedule(userCtx, rec, now, &res)
		s.scanDeadlines(userCtx, rec, now, &res)
	}
	s.prune(now)

	level := slog.LevelDebug
	if res.Fired > 0 || res.Failed > 0 {
		level = slog.LevelInfo
	}
	logger.Event(ctx, component, level, "scan",
		slog.String("status", "ok"),
		slog.Int("users", res.Users),
		slog.Int("fired", res.Fired),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *Scanner) scanSchedule(ctx context.Context, rec domain.UserRecord, now time.Time, res *Result) {
	today := domain.WeekdayOf(now)
	nowMinutes := now.Hour()*60 + now.Minute()
	minute := now.Truncate(time.Minute)

	for i, e := range rec.Schedule {
		if domain.WeekdayIndex(e.Day) < 0 {
			s.skip(ctx, entryKey(e.ID, "s", i), "schedule", fmt.Errorf("%w: %q", domain.ErrInvalidWeekday, e.Day), res)
			continue
		}
		startMinutes, err := e.StartMinutes()
		if err != nil {
			s.skip(ctx, entryKey(e.ID, "s", i), "schedule", err, res)
			continue
		}
		if domain.WeekdayIndex(e.Day) != domain.WeekdayIndex(today) {
			continue
		}
		if startMinutes-nowMinutes != e.ReminderBefore {
			continue
		}
		s.fire(ctx, firedKey{rec.UserID, entryKey(e.ID, "s", i), minute.Unix()}, "schedule", ScheduleText(e), now, res)
	}
}

func (s *Scanner) scanDeadlines(ctx context.Context, rec domain.UserRecord, now time.Time, res *Result) {
	for i, e := range rec.Deadlines {
		due, err := e.Due(s.loc)
		if err != nil {
			s.skip(ctx, entryKey(e.ID, "d", i), "deadline", err, res)
			continue
		}
		trigger := due.Add(-time.Duration(e.ReminderBefore) * time.Minute)
		if now.Before(trigger) || !now.Before(trigger.Add(time.Minute)) {
			continue
		}
		s.fire(ctx, firedKey{rec.UserID, entryKey(e.ID, "d", i), trigger.Unix()}, "deadline", DeadlineText(e), now, res)
	}
}

func (s *Scanner) fire(ctx context.Context, key firedKey, kind, text string, now time.Time, res *Result) {
	s.mu.Lock()
	_, done := s.fired[key]
	s.mu.Unlock()
	if done {
		logger.Debug(ctx, component, "fire",
			slog.String("outcome", "duplicate"),
			slog.String("entry_id", key.entryID),
		)
		return
	}

	if err := s.notifier.Notify(ctx, key.userID, text); err != nil {
		res.Failed++
		logger.Warn(ctx, component, "fire",
			slog.String("status", "fail"),
			slog.String("kind", kind),
			slog.String("entry_id", key.entryID),
			logger.Err(err),
		)
		return
	}

	s.mu.Lock()
	s.fired[key] = now
	s.mu.Unlock()
	res.Fired++
	logger.Info(ctx, component, "fire",
		slog.String("status", "ok"),
		slog.String("kind", kind),
		slog.String("entry_id", key.entryID),
	)
}

func (s *Scanner) skip(ctx context.Context, entryID, kind string, err error, res *Result) {
	res.Skipped++
	logger.Warn(ctx, component, "entry.skip",
		slog.String("status", "skip"),
		slog.String("kind", kind),
		slog.String("entry_id", entryID),
		logger.Err(err),
	)
}

func (s *Scanner) prune(now time.Time) {
	cutoff := now.Add(-firedRetention)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, at := range s.fired {
		if at.Before(cutoff) {
			delete(s.fired, k)
		}
	}
}

// entryKey falls back to the position for entries that have no id yet.
func entryKey(id, prefix string, i int) string {
	if id != "" {
		return id
	}
	return prefix + "#" + strconv.Itoa(i)
}

// ScheduleText is the class reminder message.
func ScheduleText(e domain.ScheduleEntry) string {
	return fmt.Sprintf("🔔 Напоминание: через %d минут(у) начинается пара: %s. Преподаватель: %s.",
		e.ReminderBefore, format.Bold(e.ClassName), format.EscapeMarkdown(e.Professor))
}

// DeadlineText is the deadline reminder message.
func DeadlineText(e domain.DeadlineEntry) string {
	return fmt.Sprintf("⚠️ Напоминание! Дедлайн по %s наступит через %d минут(у).",
		format.Bold(e.Name), e.ReminderBefore)
}
