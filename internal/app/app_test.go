package app

import (
	"context"
	"path/filepath"
	"testing"

	coredatabase "github.com/m3rciful/typekeeper/core/database"
	coretelegram "github.com/m3rciful/typekeeper/core/telegram"
	"github.com/m3rciful/typekeeper/core/telegram/state"
	"github.com/m3rciful/typekeeper/internal/bot"
	"github.com/m3rciful/typekeeper/internal/config"
	"github.com/m3rciful/typekeeper/internal/conversation"
	"github.com/m3rciful/typekeeper/internal/storage"
	"github.com/m3rciful/typekeeper/migrations"

	tele "gopkg.in/telebot.v4"
)

func testApp(t *testing.T) *App {
	t.Helper()
	ctx := context.Background()
	dbCfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "tk.db")}
	db, err := coredatabase.Connect(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := coredatabase.RunMigrations(ctx, dbCfg, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	off := false
	cfg := &config.Config{Database: dbCfg}
	cfg.Telegram.Token = "t"
	cfg.Telegram.AdminID = 1
	cfg.RateLimit.IntervalMS = 300
	cfg.Reminders.Enabled = &off

	users := storage.NewUsers(storage.NewStore(db), nil)
	engine := conversation.NewEngine(users, state.NewMemoryStore[conversation.Session](0))
	return &App{cfg: cfg, users: users, bot: bot.New(engine, users)}
}

func TestTelegramRunOptions(t *testing.T) {
	a := testApp(t)
	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("TelegramRunOptions: %v", err)
	}

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/start", "/add_schedule", "/stats", tele.OnCallback, tele.OnText, tele.OnDocument} {
		if !endpoints[want] {
			t.Errorf("route %v missing", want)
		}
	}

	var names []string
	for _, mw := range opts.Middlewares {
		names = append(names, mw.Name)
	}
	want := []string{"recover", "rate_limit", "logger", "serialize", "metrics"}
	if len(names) != len(want) {
		t.Fatalf("middlewares = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("middlewares = %v", names)
		}
	}
	if len(opts.AllowedUpdates) != 2 {
		t.Fatalf("allowed updates = %v", opts.AllowedUpdates)
	}
}

func TestRemindersDisabled(t *testing.T) {
	a := testApp(t)
	if err := a.startReminders(context.Background(), coretelegram.Runtime{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if a.runner != nil {
		t.Fatalf("runner started while disabled")
	}
	if err := a.stopReminders(context.Background(), coretelegram.Runtime{}); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
