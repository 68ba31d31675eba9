package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// UserLocker serializes work per user id.
type UserLocker interface {
	Lock(userID int64) (unlock func())
}

// SerializeUpdates runs one update at a time per sender. Telebot handles
// updates concurrently, and conversation steps read then write the session.
// The locker must not be shared with code that locks again inside a handler.
func SerializeUpdates(locks UserLocker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || locks == nil {
				return next(c)
			}
			unlock := locks.Lock(user.ID)
			defer unlock()
			return next(c)
		}
	}
}
