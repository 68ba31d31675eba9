package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/typekeeper/core/logger"
	tg "github.com/m3rciful/typekeeper/core/telegram"
	"github.com/m3rciful/typekeeper/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes wraps each registered slash command with recover, logging and admin checks.
// Menu label aliases are resolved by TextRoutes.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	admin := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		routes = append(routes, tg.Route{Endpoint: name, Handler: wrapCommand(name, def.Handler, def.AdminOnly, admin)})
	}

	logger.Info(context.Background(), "tg.wire", "routes.commands",
		slog.String("status", "ok"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

func wrapCommand(name string, h tele.HandlerFunc, adminOnly bool, admin tele.MiddlewareFunc) tele.HandlerFunc {
	if adminOnly {
		h = admin(h)
	}
	summarized := func(c tele.Context) error {
		return handle(c, summary{name: handlerName(name), start: timeNow()}, func() error { return h(c) })
	}
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(summarized))
}
