package state

import (
	"context"
	"time"
)

// DefaultTTL bounds how long an abandoned session survives.
const DefaultTTL = 24 * time.Hour

// Store holds one session value per user.
type Store[T any] interface {
	// Get returns the session and true, or the zero value and false when none is live.
	Get(ctx context.Context, userID int64) (T, bool, error)
	// Set stores the session and restarts its TTL.
	Set(ctx context.Context, userID int64, session T) error
	// Clear removes the session.
	Clear(ctx context.Context, userID int64) error
}
