// Package app assembles typekeeper from its parts.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/typekeeper/core/bootstrap"
	"github.com/m3rciful/typekeeper/core/logger"
	coretelegram "github.com/m3rciful/typekeeper/core/telegram"
	"github.com/m3rciful/typekeeper/core/telegram/router"
	"github.com/m3rciful/typekeeper/core/telegram/state"
	"github.com/m3rciful/typekeeper/core/telegram/ui"
	"github.com/m3rciful/typekeeper/internal/bot"
	"github.com/m3rciful/typekeeper/internal/config"
	"github.com/m3rciful/typekeeper/internal/conversation"
	"github.com/m3rciful/typekeeper/internal/health"
	"github.com/m3rciful/typekeeper/internal/reminder"
	"github.com/m3rciful/typekeeper/internal/storage"
	"github.com/m3rciful/typekeeper/migrations"
)

// AllowedUpdates are the update kinds the bot handles.
var AllowedUpdates = []string{"message", "callback_query"}

// App owns every long-lived component.
type App struct {
	cfg     *config.Config
	users   *storage.Users
	bot     *bot.Bot
	cleanup bootstrap.Cleanup
	runner  *reminder.Runner
}

// New initializes logging, the database and sessions, and builds the bot.
// On failure everything acquired so far is released.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}

	bg, stop := context.WithCancel(context.WithoutCancel(ctx))
	a := &App{cfg: cfg}
	a.cleanup.Add("db", func(context.Context) error { return res.DB.Close() })
	a.cleanup.Add("background", func(context.Context) error {
		stop()
		return nil
	})

	a.users = storage.NewUsers(storage.NewStore(res.DB), storage.NewCache(cfg.Cache.TTL))
	a.users.StartSweeper(bg, cfg.Cache.TTL)

	sessions, err := a.sessions(ctx, bg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.bot = bot.New(conversation.NewEngine(a.users, sessions), a.users)

	if cfg.HTTP.Listen != "" {
		srv := health.NewServer(cfg.HTTP.Listen, a.users)
		srv.Start(bg)
		a.cleanup.Add("http", srv.Shutdown)
	}

	logger.Info(ctx, "app", "init",
		slog.String("status", "ok"),
		slog.String("db", cfg.Database.Target()),
		slog.String("sessions", cfg.Sessions.Backend),
		slog.String("timezone", cfg.Reminders.Timezone),
		slog.Bool("reminders", cfg.Reminders.On()),
	)
	return a, nil
}

func (a *App) sessions(ctx, bg context.Context) (state.Store[conversation.Session], error) {
	sc := a.cfg.Sessions
	if sc.Backend != config.SessionsRedis {
		mem := state.NewMemoryStore[conversation.Session](sc.TTL)
		mem.StartSweeper(bg, time.Hour)
		return mem, nil
	}
	client, err := state.NewRedisClient(ctx, sc.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("app: sessions: %w", err)
	}
	a.cleanup.Add("redis", func(context.Context) error { return client.Close() })
	return state.NewRedisStore[conversation.Session](client, sc.Prefix, sc.TTL), nil
}

// TelegramRunOptions registers handlers and returns the bot runtime configuration.
// The reminder scheduler starts once the bot exists and stops before it.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg := coretelegram.NewRegistry()
	if err := a.bot.Register(reg); err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: register handlers: %w", err)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: a.bot.AdminReject,
	})
	var fallbacks ui.FallbackProvider = a.bot
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: fallbacks.UnknownCallback()}))
	routes = append(routes, router.TextRoutes(a.bot, reg, router.TextOptions{
		UnknownText:     fallbacks.UnknownText(),
		UnknownDocument: fallbacks.UnknownDocument(),
	})...)

	return coretelegram.RunOptions{
		Config:   core,
		Registry: reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, coretelegram.MiddlewareOptions{
			OnLimited: a.bot.OnLimited,
			// Separate from the storage locks: handlers take those again.
			Locks: storage.NewLocks(),
		}),
		Routes:         routes,
		AllowedUpdates: AllowedUpdates,
		OnStart:        a.startReminders,
		OnStop:         a.stopReminders,
	}, nil
}

func (a *App) startReminders(ctx context.Context, rt coretelegram.Runtime) error {
	if !a.cfg.Reminders.On() {
		logger.Info(ctx, "reminders", "start", slog.String("status", "skip"), slog.String("reason", "disabled"))
		return nil
	}
	scanner := reminder.NewScanner(a.users, bot.NewNotifier(rt.Bot), a.cfg.Reminders.Location())
	runner, err := reminder.NewRunner(scanner, a.cfg.Reminders.Spec)
	if err != nil {
		return err
	}
	if err := runner.Start(ctx); err != nil {
		return err
	}
	a.runner = runner
	return nil
}

func (a *App) stopReminders(ctx context.Context, _ coretelegram.Runtime) error {
	if a.runner != nil {
		a.runner.Stop(ctx)
	}
	return nil
}

// Close stops background work and releases connections.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.cleanup.Close(ctx)
}
