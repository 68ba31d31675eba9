package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/typekeeper/core/logger"
	"github.com/m3rciful/typekeeper/internal/domain"
)

// Users combines the Store, the Cache and the per-user Locks.
// Every mutation goes through Update.
type Users struct {
	store *Store
	cache *Cache
	locks *Locks
}

// NewUsers wires a record service; a nil cache gets the default TTL.
func NewUsers(store *Store, cache *Cache) *Users {
	if cache == nil {
		cache = NewCache(0)
	}
	return &Users{store: store, cache: cache, locks: NewLocks()}
}

// Get returns the cached record or loads it, creating it on first access.
func (u *Users) Get(ctx context.Context, userID int64) (domain.UserRecord, error) {
	if rec, ok := u.cache.Get(userID); ok {
		logger.Debug(ctx, component, "get", slog.String("cache", "hit"), slog.Int64("user_id", userID))
		return rec, nil
	}
	unlock := u.locks.Lock(userID)
	defer unlock()
	return u.load(ctx, userID)
}

func (u *Users) load(ctx context.Context, userID int64) (domain.UserRecord, error) {
	rec, err := u.store.Load(ctx, userID)
	if err != nil {
		return domain.UserRecord{}, err
	}
	u.cache.Put(rec)
	logger.Debug(ctx, component, "get", slog.String("cache", "miss"), slog.Int64("user_id", userID))
	return rec, nil
}

// Update runs fn on a fresh copy of the record under the user's lock and saves the result.
// If fn returns an error nothing is written. On any failure the cache entry is dropped.
func (u *Users) Update(ctx context.Context, userID int64, fn func(*domain.UserRecord) error) (domain.UserRecord, error) {
	unlock := u.locks.Lock(userID)
	defer unlock()

	rec, err := u.store.Load(ctx, userID)
	if err != nil {
		u.cache.Invalidate(userID)
		return domain.UserRecord{}, err
	}
	if err := fn(&rec); err != nil {
		return domain.UserRecord{}, err
	}
	if err := u.store.Save(ctx, &rec); err != nil {
		u.cache.Invalidate(userID)
		return domain.UserRecord{}, err
	}
	u.cache.Put(rec)
	logger.Debug(ctx, component, "update",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Int64("version", rec.Version),
	)
	return rec.Clone(), nil
}

// All lists every record straight from the Store.
func (u *Users) All(ctx context.Context) ([]domain.UserRecord, error) {
	return u.store.All(ctx)
}

// Count returns the number of stored users.
func (u *Users) Count(ctx context.Context) (int, error) {
	return u.store.Count(ctx)
}

// Ping checks the underlying database.
func (u *Users) Ping(ctx context.Context) error {
	return u.store.Ping(ctx)
}

// StartSweeper evicts expired cache entries every interval until ctx is done.
func (u *Users) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = u.cache.ttl
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := u.cache.Sweep(); n > 0 {
					logger.Debug(ctx, component, "sweep",
						slog.String("cache", "evict"),
						slog.Int("count", n),
					)
				}
			}
		}
	}()
}
