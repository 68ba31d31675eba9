package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/typekeeper/core/telegram"
	"github.com/m3rciful/typekeeper/core/telegram/callbacks"
	"github.com/m3rciful/typekeeper/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute routes every inline button press through the registry by its unique.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	h := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.CallbackKey(c)
		s := summary{
			name:   "callback." + handlerName(key),
			start:  start,
			extras: []slog.Attr{slog.String("cb_key", key)},
		}

		cb, ok := reg.GetCallback(key)
		if !ok || cb == nil {
			fallback := opts.NotFound
			if fallback == nil {
				fallback = reg.CallbackNotFound()
			}
			s.outcome = "not_found"
			return handle(c, s, func() error {
				if fallback == nil {
					return c.Respond()
				}
				return fallback(c)
			})
		}

		_ = c.Respond()
		return handle(c, s, func() error { return cb(c) })
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
	}
}
