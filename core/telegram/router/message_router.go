package router

import (
	"context"
	"time"

	tg "github.com/m3rciful/typekeeper/core/telegram"
	tghelpers "github.com/m3rciful/typekeeper/core/telegram/helpers"
	"github.com/m3rciful/typekeeper/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

var timeNow = time.Now

// FSM is the conversation engine as seen by the text router.
type FSM interface {
	InProgress(ctx context.Context, userID int64) bool
	HandleText(c tele.Context) error
}

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes routes plain text: menu labels and commands first, then an
// active conversation, then the fallbacks.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := timeNow()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handle(c, summary{name: handlerName(key), start: start}, func() error {
					return cmd.Handler(c)
				})
			}
		}

		if fsm != nil && c.Sender() != nil && fsm.InProgress(tghelpers.BuildContext(c), c.Sender().ID) {
			return handle(c, summary{name: "fsm", start: start}, func() error {
				return fsm.HandleText(c)
			})
		}

		if opts.UnknownText != nil {
			return handle(c, summary{name: "unknown_text", start: start}, func() error {
				return opts.UnknownText(c)
			})
		}
		logSummary(c, summary{name: "unknown_text", start: start, status: "skip", outcome: "ok"}, nil)
		return nil
	}

	document := func(c tele.Context) error {
		start := timeNow()
		if opts.UnknownDocument != nil {
			return handle(c, summary{name: "unexpected_document", start: start}, func() error {
				return opts.UnknownDocument(c)
			})
		}
		logSummary(c, summary{name: "unexpected_document", start: start, status: "skip", outcome: "ok"}, nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnDocument, Handler: wrap(document)},
	}
}
