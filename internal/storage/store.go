// Package storage persists user records and serializes per-user updates.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/m3rciful/typekeeper/core/logger"
	"github.com/m3rciful/typekeeper/internal/domain"
)

// ErrConflict is returned by Save when the stored version moved since the record was loaded.
var ErrConflict = errors.New("storage: version conflict")

const component = "storage"

// Store reads and writes the users table.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type userRow struct {
	UserID    int64          `db:"user_id"`
	Schedule  types.JSONText `db:"schedule"`
	Deadlines types.JSONText `db:"deadlines"`
	State     types.JSONText `db:"state"`
	Version   int64          `db:"version"`
	CreatedAt dbTime         `db:"created_at"`
	UpdatedAt dbTime         `db:"updated_at"`
}

const selectUser = `SELECT user_id, schedule, deadlines, state, version, created_at, updated_at FROM users`

// Load returns the record for userID, creating an empty one on first access.
// Columns that fail to decode come back empty and are logged.
func (s *Store) Load(ctx context.Context, userID int64) (domain.UserRecord, error) {
	start := time.Now()
	insert := s.db.Rebind(`INSERT INTO users (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, insert, userID); err != nil {
		return domain.UserRecord{}, s.fail(ctx, "load", userID, err)
	}

	var row userRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(selectUser+` WHERE user_id = ?`), userID); err != nil {
		return domain.UserRecord{}, s.fail(ctx, "load", userID, err)
	}
	rec := s.decode(ctx, row)

	if rec.EnsureIDs() {
		if err := s.Save(ctx, &rec); err != nil {
			return domain.UserRecord{}, err
		}
		logger.Info(ctx, component, "backfill_ids",
			slog.Int64("user_id", userID),
			slog.Int64("version", rec.Version),
		)
	}
	logger.Debug(ctx, component, "load",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Duration("duration", time.Since(start)),
	)
	return rec, nil
}

// Save writes the whole record if the stored version still equals rec.Version.
// On success rec.Version and rec.UpdatedAt are advanced.
func (s *Store) Save(ctx context.Context, rec *domain.UserRecord) error {
	schedule, err := encodeJSON(rec.Schedule, "[]")
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	deadlines, err := encodeJSON(rec.Deadlines, "[]")
	if err != nil {
		return fmt.Errorf("encode deadlines: %w", err)
	}
	state, err := encodeJSON(rec.State, "{}")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	q := s.db.Rebind(`INSERT INTO users (user_id, schedule, deadlines, state, version, updated_at)
VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT (user_id) DO UPDATE SET
	schedule = excluded.schedule,
	deadlines = excluded.deadlines,
	state = excluded.state,
	version = users.version + 1,
	updated_at = CURRENT_TIMESTAMP
WHERE users.version = ?`)
	res, err := s.db.ExecContext(ctx, q, rec.UserID, schedule, deadlines, state, rec.Version)
	if err != nil {
		return s.fail(ctx, "save", rec.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail(ctx, "save", rec.UserID, err)
	}
	if n == 0 {
		logger.Warn(ctx, component, "save",
			slog.String("status", "conflict"),
			slog.Int64("user_id", rec.UserID),
			slog.Int64("version", rec.Version),
		)
		return fmt.Errorf("user %d at version %d: %w", rec.UserID, rec.Version, ErrConflict)
	}
	rec.Version++
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

// All returns every stored record. Used by the reminder scan.
func (s *Store) All(ctx context.Context) ([]domain.UserRecord, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, selectUser+` ORDER BY user_id`); err != nil {
		return nil, s.fail(ctx, "all", 0, err)
	}
	out := make([]domain.UserRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.decode(ctx, row))
	}
	return out, nil
}

// Count returns the number of stored users.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, s.fail(ctx, "count", 0, err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) decode(ctx context.Context, row userRow) domain.UserRecord {
	rec := domain.UserRecord{
		UserID:    row.UserID,
		Schedule:  []domain.ScheduleEntry{},
		Deadlines: []domain.DeadlineEntry{},
		State:     map[string]any{},
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	decodeColumn(ctx, row.UserID, "schedule", row.Schedule, &rec.Schedule)
	decodeColumn(ctx, row.UserID, "deadlines", row.Deadlines, &rec.Deadlines)
	decodeColumn(ctx, row.UserID, "state", row.State, &rec.State)
	if rec.Schedule == nil {
		rec.Schedule = []domain.ScheduleEntry{}
	}
	if rec.Deadlines == nil {
		rec.Deadlines = []domain.DeadlineEntry{}
	}
	if rec.State == nil {
		rec.State = map[string]any{}
	}
	return rec
}

func decodeColumn[T any](ctx context.Context, userID int64, column string, raw types.JSONText, dst *T) {
	if len(raw) == 0 {
		return
	}
	var v T
	if err := raw.Unmarshal(&v); err != nil {
		logger.Warn(ctx, component, "decode",
			slog.String("status", "skip"),
			slog.Int64("user_id", userID),
			slog.String("field", column),
			logger.Err(err),
		)
		return
	}
	*dst = v
}

// encodeJSON returns text rather than bytes so lib/pq sends it as a jsonb literal.
func encodeJSON(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func (s *Store) fail(ctx context.Context, op string, userID int64, err error) error {
	attrs := []slog.Attr{slog.String("status", "fail"), logger.Err(err)}
	if userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	logger.Error(ctx, component, op, attrs...)
	if userID != 0 {
		return fmt.Errorf("%s user %d: %w", op, userID, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// dbTime scans timestamps from drivers that return time.Time, text or bytes.
type dbTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("unsupported timestamp type %T", src)
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

var _ sql.Scanner = (*dbTime)(nil)
